package dtype

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-afw/internal/binary"
)

// Encode converts canonical values to big-endian bytes for the given code,
// removing the zero offset, and writes them at the start of dst. dst must
// be large enough for len(vals) elements; a character cell takes a single
// string which is blank padded to len(dst).
func Encode(code Code, zero float64, vals []any, dst []byte) error {
	if code == Char {
		if len(vals) != 1 {
			return fmt.Errorf("%w: character cells hold one string, got %d values", ErrTypeMismatch, len(vals))
		}
		s, ok := vals[0].(string)
		if !ok {
			return fmt.Errorf("%w: cannot store %T in character column", ErrTypeMismatch, vals[0])
		}
		if len(s) > len(dst) {
			return fmt.Errorf("%w: string of %d characters in %d character cell", ErrOverflow, len(s), len(dst))
		}
		n := copy(dst, s)
		for i := n; i < len(dst); i++ {
			dst[i] = ' '
		}
		return nil
	}
	if need := code.Bytes(int64(len(vals))); int64(len(dst)) < need {
		return fmt.Errorf("cell holds %d bytes, %d elements of %q need %d", len(dst), len(vals), rune(code), need)
	}

	if code == Bit {
		for i, v := range vals {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: cannot store %T in bit column", ErrTypeMismatch, v)
			}
			mask := byte(0x80 >> (i % 8))
			if b {
				dst[i/8] |= mask
			} else {
				dst[i/8] &^= mask
			}
		}
		return nil
	}

	w := binary.NewWriter(binary.NewBuffer(dst[:0:len(dst)]))
	for _, v := range vals {
		if err := encodeOne(w, code, zero, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeOne(w *binary.Writer, code Code, zero float64, v any) error {
	switch code {
	case Logical:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: cannot store %T in logical column", ErrTypeMismatch, v)
		}
		if b {
			return w.WriteUint8('T')
		}
		return w.WriteUint8('F')

	case Byte:
		raw, err := storedInt(v, zero, 0, math.MaxUint8)
		if err != nil {
			return err
		}
		return w.WriteUint8(uint8(raw))
	case Short:
		raw, err := storedInt(v, zero, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return w.WriteInt16(int16(raw))
	case Int:
		raw, err := storedInt(v, zero, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return w.WriteInt32(int32(raw))
	case Long:
		if zero == ZeroUint64 {
			u, err := storedUint64(v)
			if err != nil {
				return err
			}
			return w.WriteUint64(u ^ (1 << 63))
		}
		raw, err := storedInt(v, zero, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		return w.WriteInt64(raw)

	case Float:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w: cannot store %T in float column", ErrTypeMismatch, v)
		}
		f -= zero
		if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return fmt.Errorf("%w: %v does not fit in float32", ErrOverflow, f)
		}
		return w.WriteFloat32(float32(f))
	case Double:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w: cannot store %T in double column", ErrTypeMismatch, v)
		}
		return w.WriteFloat64(f - zero)

	case Complex, DblComplex:
		var c complex128
		if x, ok := v.(complex128); ok {
			c = x
		} else if f, ok := toFloat(v); ok {
			c = complex(f, 0)
		} else {
			return fmt.Errorf("%w: cannot store %T in complex column", ErrTypeMismatch, v)
		}
		if code == Complex {
			if err := w.WriteFloat32(float32(real(c))); err != nil {
				return err
			}
			return w.WriteFloat32(float32(imag(c)))
		}
		if err := w.WriteFloat64(real(c)); err != nil {
			return err
		}
		return w.WriteFloat64(imag(c))
	}
	return fmt.Errorf("%w: %q", ErrBadCode, rune(code))
}

// storedInt returns the stored integer for v after removing zero, checked
// against [lo, hi].
func storedInt(v any, zero float64, lo, hi int64) (int64, error) {
	var raw int64
	switch x := v.(type) {
	case int64:
		z := int64(zero)
		if (z > 0 && x < math.MinInt64+z) || (z < 0 && x > math.MaxInt64+z) {
			return 0, fmt.Errorf("%w: %d", ErrOverflow, x)
		}
		raw = x - z
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", ErrOverflow, x)
		}
		raw = int64(x) - int64(zero)
	case float64:
		f := x - zero
		if math.IsNaN(f) || f < float64(lo) || f > float64(hi) {
			return 0, fmt.Errorf("%w: %v", ErrOverflow, x)
		}
		raw = int64(f)
	default:
		return 0, fmt.Errorf("%w: cannot store %T in integer column", ErrTypeMismatch, v)
	}
	if raw < lo || raw > hi {
		return 0, fmt.Errorf("%w: %v", ErrOverflow, v)
	}
	return raw, nil
}

func storedUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("%w: %d", ErrOverflow, x)
		}
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		if math.IsNaN(x) || x < 0 || x >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrOverflow, x)
		}
		return uint64(x), nil
	}
	return 0, fmt.Errorf("%w: cannot store %T in integer column", ErrTypeMismatch, v)
}
