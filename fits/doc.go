// Package fits reads and writes FITS files: header keys, binary tables
// and images.
//
// A Fits handle holds the whole file in memory and tracks a current HDU.
// Operations act on the current HDU and record their first failure in
// the handle's status, after which they do nothing until ClearStatus is
// called:
//
//	f, _ := fits.CreateFile("!out.fits")
//	defer f.Close()
//
//	fits.UpdateKey(f, "OBSERVER", "Hubble", "who took the data")
//	f.CreateTable(0, []string{"id", "flux"}, []string{"1K", "1D"}, "SOURCES")
//	fits.WriteTableScalar(f, 0, 0, int64(42))
//	fits.WriteTableScalar(f, 0, 1, 3.5)
//	if err := f.CheckStatus("writing sources"); err != nil {
//	    log.Fatal(err)
//	}
//
// Typed operations are generic functions over fixed type sets: KeyValue
// for header keys, Element for table cells and Pixel for images.
//
// Type mapping for table columns:
//
//	Go type      TFORM  Stored as
//	bool         X      bits
//	int8         S      B with TZERO = -128
//	uint8        B      B
//	int16        I      I
//	uint16       U      I with TZERO = 32768
//	int32        J      J
//	uint32       V      J with TZERO = 2147483648
//	int64        K      K
//	uint64       W      K with TZERO = 2^63
//	float32      E      E
//	float64      D      D
//	Angle        D      D
//	complex64    C      C
//	complex128   M      M
//	string       A      A
//
// Files whose names end in ".gz" or ".zst" are compressed on write;
// compressed input is recognized when opening.
package fits
