package fits

// HDUInfo summarizes one HDU.
type HDUInfo struct {
	Index      int
	Type       HDUType
	Name       string // EXTNAME, if present
	Cards      int    // Number of header cards, excluding END
	Bitpix     int
	Shape      []int64 // Image axis lengths, NAXIS1 first
	Rows       int64   // Table rows
	Columns    []ColumnInfo
	HeapSize   int64
	HeapUnused int64 // Bytes of the heap released by rewritten cells
}

// WalkFunc is called for each HDU during traversal. err is any error
// encountered describing the HDU; info then holds what could be read.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(info HDUInfo, err error) error

// Walk calls fn for every HDU of f in order. The current HDU is not
// changed.
//
// Example:
//
//	fits.Walk(f, func(info fits.HDUInfo, err error) error {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(info.Index, info.Type, info.Name)
//	    return nil
//	})
func Walk(f *Fits, fn WalkFunc) error {
	if err := f.check(); err != nil {
		return err
	}
	for i, h := range f.hdus {
		info, err := h.info(i)
		if err := fn(info, err); err != nil {
			return err
		}
	}
	return nil
}

// Info summarizes the current HDU.
func (f *Fits) Info() (HDUInfo, error) {
	h, err := f.current(false)
	if err != nil {
		return HDUInfo{}, err
	}
	info, err := h.info(f.cur)
	if err != nil {
		return info, f.fail(statusFor(err, StatusUnknownRec), err, "HDU %d", f.cur)
	}
	return info, nil
}

func (h *hdu) info(index int) (HDUInfo, error) {
	info := HDUInfo{Index: index, Cards: len(h.cards)}
	info.Name, _ = h.stringKey("EXTNAME")
	if bitpix, _, err := h.intKey("BITPIX"); err == nil {
		info.Bitpix = int(bitpix)
	}

	kind, err := h.kind()
	if err != nil {
		return info, err
	}
	info.Type = kind
	switch kind {
	case ImageHDU:
		l, err := h.image()
		if err != nil {
			return info, err
		}
		info.Shape = l.shape
	case BinaryTableHDU:
		t, err := h.table()
		if err != nil {
			return info, err
		}
		info.Rows = t.rows
		info.Columns = t.columnInfo()
		if h.heap != nil {
			info.HeapSize = h.heap.Size()
			info.HeapUnused = h.heap.Unused()
		}
	case ASCIITableHDU:
		rows, _, err := h.intKey("NAXIS2")
		if err != nil {
			return info, err
		}
		info.Rows = rows
	}
	return info, nil
}
