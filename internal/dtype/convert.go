package dtype

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/binary"
)

// Decode converts n elements of the given code from big-endian bytes to
// canonical values, applying the zero offset. A character cell decodes to a
// single string with trailing blanks and NULs removed.
func Decode(code Code, zero float64, data []byte, n int) ([]any, error) {
	if code == Char {
		return []any{strings.TrimRight(string(data), " \x00")}, nil
	}
	if need := code.Bytes(int64(n)); int64(len(data)) < need {
		return nil, fmt.Errorf("cell holds %d bytes, %d elements of %q need %d", len(data), n, rune(code), need)
	}

	out := make([]any, n)
	if code == Bit {
		for i := range out {
			out[i] = data[i/8]&(0x80>>(i%8)) != 0
		}
		return out, nil
	}

	r := binary.NewReader(binary.NewBuffer(data))
	for i := range out {
		v, err := decodeOne(r, code, zero)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeOne(r *binary.Reader, code Code, zero float64) (any, error) {
	switch code {
	case Logical:
		b, err := r.ReadUint8()
		return b == 'T', err
	case Byte:
		b, err := r.ReadUint8()
		if zero == 0 {
			return uint64(b), err
		}
		return offsetInt(int64(b), zero, 0), err
	case Short:
		v, err := r.ReadInt16()
		return offsetInt(int64(v), zero, ZeroUint16), err
	case Int:
		v, err := r.ReadInt32()
		return offsetInt(int64(v), zero, ZeroUint32), err
	case Long:
		v, err := r.ReadInt64()
		if zero == ZeroUint64 {
			return uint64(v) ^ (1 << 63), err
		}
		return offsetInt(v, zero, 0), err
	case Float:
		v, err := r.ReadFloat32()
		return float64(v) + zero, err
	case Double:
		v, err := r.ReadFloat64()
		return v + zero, err
	case Complex:
		re, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		im, err := r.ReadFloat32()
		return complex(float64(re), float64(im)), err
	case DblComplex:
		re, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		im, err := r.ReadFloat64()
		return complex(re, im), err
	}
	return nil, fmt.Errorf("%w: %q", ErrBadCode, rune(code))
}

// offsetInt applies a zero offset to a stored integer. The unsigned offset
// of the stored type yields a uint64; other integral offsets yield int64.
func offsetInt(raw int64, zero, unsigned float64) any {
	switch {
	case zero == 0:
		return raw
	case unsigned != 0 && zero == unsigned:
		return uint64(raw + int64(unsigned))
	case zero == math.Trunc(zero):
		return raw + int64(zero)
	}
	return float64(raw) + zero
}

// Assign stores canonical value v in dst, converting between numeric kinds
// with overflow checking. Booleans and strings only assign to their own
// kinds.
func Assign(dst reflect.Value, v any) error {
	switch dst.Kind() {
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(v, dst.Type())
		}
		dst.SetBool(b)
		return nil

	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return mismatch(v, dst.Type())
		}
		dst.SetString(s)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		switch x := v.(type) {
		case int64:
			i = x
		case uint64:
			if x > math.MaxInt64 {
				return overflow(v, dst.Type())
			}
			i = int64(x)
		case float64:
			if math.IsNaN(x) || x < math.MinInt64 || x >= math.MaxInt64 {
				return overflow(v, dst.Type())
			}
			i = int64(x)
		default:
			return mismatch(v, dst.Type())
		}
		if dst.OverflowInt(i) {
			return overflow(v, dst.Type())
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		switch x := v.(type) {
		case int64:
			if x < 0 {
				return overflow(v, dst.Type())
			}
			u = uint64(x)
		case uint64:
			u = x
		case float64:
			if math.IsNaN(x) || x < 0 || x >= math.MaxUint64 {
				return overflow(v, dst.Type())
			}
			u = uint64(x)
		default:
			return mismatch(v, dst.Type())
		}
		if dst.OverflowUint(u) {
			return overflow(v, dst.Type())
		}
		dst.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(v)
		if !ok {
			return mismatch(v, dst.Type())
		}
		if dst.Kind() == reflect.Float32 {
			f = roundFloat32(f)
		}
		if dst.OverflowFloat(f) {
			return overflow(v, dst.Type())
		}
		dst.SetFloat(f)
		return nil

	case reflect.Complex64, reflect.Complex128:
		var c complex128
		if x, ok := v.(complex128); ok {
			c = x
		} else if f, ok := toFloat(v); ok {
			c = complex(f, 0)
		} else {
			return mismatch(v, dst.Type())
		}
		if dst.Kind() == reflect.Complex64 {
			c = complex(roundFloat32(real(c)), roundFloat32(imag(c)))
		}
		if dst.OverflowComplex(c) {
			return overflow(v, dst.Type())
		}
		dst.SetComplex(c)
		return nil
	}
	return mismatch(v, dst.Type())
}

// Canonical returns the canonical form of a Go element value.
func Canonical(src reflect.Value) (any, error) {
	switch src.Kind() {
	case reflect.Bool:
		return src.Bool(), nil
	case reflect.String:
		return src.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return src.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return src.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return src.Float(), nil
	case reflect.Complex64, reflect.Complex128:
		return src.Complex(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, src.Type())
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// float32Limit is the smallest magnitude that rounds to infinity in
// float32: MaxFloat32 plus half an ulp.
const float32Limit = 0x1p128 - 0x1p103

// roundFloat32 maps magnitudes that round to MaxFloat32 onto it. The
// shortest decimal of MaxFloat32 parses to a slightly larger float64.
func roundFloat32(f float64) float64 {
	if a := math.Abs(f); a > math.MaxFloat32 && a < float32Limit {
		return math.Copysign(math.MaxFloat32, f)
	}
	return f
}

func mismatch(v any, t reflect.Type) error {
	return fmt.Errorf("%w: cannot convert %T to %v", ErrTypeMismatch, v, t)
}

func overflow(v any, t reflect.Type) error {
	return fmt.Errorf("%w: %v does not fit in %v", ErrOverflow, v, t)
}
