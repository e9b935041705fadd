// Package dtype provides FITS element type handling and Go type conversion.
//
// This package bridges the gap between the FITS binary table and image type
// systems and Go's type system, providing functionality to:
//
//   - Parse and format TFORM column descriptors
//   - Map Go element types to format codes and BITPIX values
//   - Decode big-endian cell and pixel bytes to canonical Go values
//   - Encode canonical values back to bytes with range checking
//
// # Type Mapping Strategy
//
// Go types are mapped to FITS codes as follows. Unsigned and signed-byte
// variants are stored in the next signed type with a TZERO (or BZERO)
// offset, the convention every FITS reader understands:
//
//	Go Type          | TFORM      | BITPIX | Zero offset
//	-----------------|------------|--------|-------------
//	bool             | X (bits)   |        |
//	int8             | B          | 8      | -128
//	uint8            | B          | 8      |
//	int16            | I          | 16     |
//	uint16           | I (U)      | 16     | 32768
//	int32            | J          | 32     |
//	uint32           | J (V)      | 32     | 2147483648
//	int64            | K          | 64     |
//	uint64           | K (W)      | 64     | 9223372036854775808
//	float32          | E          | -32    |
//	float64          | D          | -64    |
//	complex64        | C          |        |
//	complex128       | M          |        |
//	string           | A          |        |
//
// The pseudo-codes U, V, W and S are accepted by [ParseFormat] and resolved
// to the stored code plus its zero offset.
//
// # Canonical Values
//
// Decoding produces one of six canonical Go types per element: int64,
// uint64, float64, complex128, bool or string. [Assign] converts a canonical
// value to the caller's element type with overflow checking; [Canonical]
// performs the reverse step before [Encode].
//
// # Key Functions
//
//   - [ParseFormat]: Parses a TFORM value into a [Format]
//   - [CodeFor]: Returns the format code and zero offset for a Go type
//   - [Decode]: Converts cell bytes to canonical values
//   - [Encode]: Converts canonical values to cell bytes
//   - [Assign]: Stores a canonical value into a Go variable
package dtype
