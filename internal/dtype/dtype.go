package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Code is a binary table format code.
type Code byte

// Format codes.
const (
	Logical    Code = 'L'
	Bit        Code = 'X'
	Byte       Code = 'B'
	Short      Code = 'I'
	Int        Code = 'J'
	Long       Code = 'K'
	Char       Code = 'A'
	Float      Code = 'E'
	Double     Code = 'D'
	Complex    Code = 'C'
	DblComplex Code = 'M'
	DescP      Code = 'P'
	DescQ      Code = 'Q'
)

// Zero offsets used for unsigned and signed-byte storage.
const (
	ZeroInt8   = -128.0
	ZeroUint16 = 32768.0
	ZeroUint32 = 2147483648.0
	ZeroUint64 = 9223372036854775808.0
)

var (
	ErrBadFormat    = errors.New("illegal TFORM format")
	ErrBadCode      = errors.New("unrecognizable TFORM datatype code")
	ErrTypeMismatch = errors.New("incompatible data type")
	ErrOverflow     = errors.New("overflow during datatype conversion")
)

// Size returns the size in bytes of one element, or 0 for bits.
func (c Code) Size() int {
	switch c {
	case Logical, Byte, Char:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double, Complex:
		return 8
	case DblComplex:
		return 16
	}
	return 0
}

// Bytes returns the number of bytes n elements occupy.
func (c Code) Bytes(n int64) int64 {
	if c == Bit {
		return (n + 7) / 8
	}
	return n * int64(c.Size())
}

// IsNumeric reports whether c holds numbers.
func (c Code) IsNumeric() bool {
	switch c {
	case Byte, Short, Int, Long, Float, Double, Complex, DblComplex:
		return true
	}
	return false
}

func (c Code) valid() bool {
	return c == Bit || c.Size() > 0
}

// Format is a parsed TFORM value.
type Format struct {
	Repeat int64   // Elements per cell; the descriptor count for variable-length columns
	Code   Code    // Element code; for variable-length columns, the heap element code
	Desc   Code    // DescP or DescQ for variable-length columns, 0 otherwise
	Max    int64   // Declared maximum element count of a variable-length column, -1 if absent
	Zero   float64 // Zero offset implied by a U, V, W or S pseudo-code
}

// VarLen reports whether the column stores its data in the heap.
func (f Format) VarLen() bool {
	return f.Desc != 0
}

// Width returns the number of bytes the column occupies in a row.
func (f Format) Width() int64 {
	switch f.Desc {
	case DescP:
		return 8 * f.Repeat
	case DescQ:
		return 16 * f.Repeat
	}
	return f.Code.Bytes(f.Repeat)
}

// String formats f as a TFORM value using stored codes.
func (f Format) String() string {
	if f.VarLen() {
		s := fmt.Sprintf("%d%c%c", f.Repeat, f.Desc, f.Code)
		if f.Max >= 0 {
			s += fmt.Sprintf("(%d)", f.Max)
		}
		return s
	}
	return fmt.Sprintf("%d%c", f.Repeat, f.Code)
}

// pseudo maps the unsigned and signed-byte pseudo-codes to stored codes.
var pseudo = map[byte]struct {
	code Code
	zero float64
}{
	'S': {Byte, ZeroInt8},
	'U': {Short, ZeroUint16},
	'V': {Int, ZeroUint32},
	'W': {Long, ZeroUint64},
}

func parseCode(b byte) (Code, float64, error) {
	if p, ok := pseudo[b]; ok {
		return p.code, p.zero, nil
	}
	c := Code(b)
	if !c.valid() {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCode, string(b))
	}
	return c, 0, nil
}

// ParseFormat parses a binary table TFORM value such as "3E", "1PJ(12)" or
// "20A". Repeat defaults to 1.
func ParseFormat(tform string) (Format, error) {
	s := strings.ToUpper(strings.TrimSpace(tform))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	f := Format{Repeat: 1, Max: -1}
	if i > 0 {
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return Format{}, fmt.Errorf("%w: %q", ErrBadFormat, tform)
		}
		f.Repeat = n
	}
	if i >= len(s) {
		return Format{}, fmt.Errorf("%w: %q", ErrBadFormat, tform)
	}

	if c := Code(s[i]); c == DescP || c == DescQ {
		f.Desc = c
		i++
		if i >= len(s) {
			return Format{}, fmt.Errorf("%w: %q", ErrBadFormat, tform)
		}
		code, zero, err := parseCode(s[i])
		if err != nil {
			return Format{}, err
		}
		f.Code, f.Zero = code, zero
		rest := s[i+1:]
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			limit, err := strconv.ParseInt(rest[1:len(rest)-1], 10, 64)
			if err != nil || limit < 0 {
				return Format{}, fmt.Errorf("%w: %q", ErrBadFormat, tform)
			}
			f.Max = limit
		}
		return f, nil
	}

	code, zero, err := parseCode(s[i])
	if err != nil {
		return Format{}, err
	}
	f.Code, f.Zero = code, zero
	return f, nil
}

// CodeFor returns the format code, the pseudo-code written in TFORM
// values, and the zero offset used to store values of type t.
func CodeFor(t reflect.Type) (code Code, letter byte, zero float64, err error) {
	switch t.Kind() {
	case reflect.Bool:
		return Bit, 'X', 0, nil
	case reflect.Int8:
		return Byte, 'S', ZeroInt8, nil
	case reflect.Uint8:
		return Byte, 'B', 0, nil
	case reflect.Int16:
		return Short, 'I', 0, nil
	case reflect.Uint16:
		return Short, 'U', ZeroUint16, nil
	case reflect.Int32:
		return Int, 'J', 0, nil
	case reflect.Uint32:
		return Int, 'V', ZeroUint32, nil
	case reflect.Int64:
		return Long, 'K', 0, nil
	case reflect.Uint64:
		return Long, 'W', ZeroUint64, nil
	case reflect.Float32:
		return Float, 'E', 0, nil
	case reflect.Float64:
		return Double, 'D', 0, nil
	case reflect.Complex64:
		return Complex, 'C', 0, nil
	case reflect.Complex128:
		return DblComplex, 'M', 0, nil
	case reflect.String:
		return Char, 'A', 0, nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %v", ErrTypeMismatch, t)
}

// BitpixFor returns the image BITPIX and BZERO used to store pixels of
// type t.
func BitpixFor(t reflect.Type) (bitpix int, zero float64, err error) {
	code, _, zero, err := CodeFor(t)
	if err != nil {
		return 0, 0, err
	}
	switch code {
	case Byte:
		return 8, zero, nil
	case Short:
		return 16, zero, nil
	case Int:
		return 32, zero, nil
	case Long:
		return 64, zero, nil
	case Float:
		return -32, 0, nil
	case Double:
		return -64, 0, nil
	}
	return 0, 0, fmt.Errorf("%w: %v is not a pixel type", ErrTypeMismatch, t)
}

// CodeForBitpix returns the element code that stores image pixels of the
// given BITPIX.
func CodeForBitpix(bitpix int) (Code, error) {
	switch bitpix {
	case 8:
		return Byte, nil
	case 16:
		return Short, nil
	case 32:
		return Int, nil
	case 64:
		return Long, nil
	case -32:
		return Float, nil
	case -64:
		return Double, nil
	}
	return 0, fmt.Errorf("illegal BITPIX value %d", bitpix)
}
