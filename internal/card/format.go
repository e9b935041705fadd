package card

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fixedWidth is the width fixed-format values are right justified to,
// ending in column 30.
const fixedWidth = 20

// FormatBool renders a logical value.
func FormatBool(v bool) string {
	if v {
		return fmt.Sprintf("%*s", fixedWidth, "T")
	}
	return fmt.Sprintf("%*s", fixedWidth, "F")
}

// FormatInt renders a signed integer value.
func FormatInt(v int64) string {
	return fmt.Sprintf("%*d", fixedWidth, v)
}

// FormatUint renders an unsigned integer value.
func FormatUint(v uint64) string {
	return fmt.Sprintf("%*d", fixedWidth, v)
}

// FormatFloat renders a floating point value with the shortest text that
// reads back to the same value at the given bit size. The text always
// contains a decimal point so that it is never mistaken for an integer.
func FormatFloat(v float64, bitSize int) (string, error) {
	s, err := floatText(v, bitSize)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%*s", fixedWidth, s), nil
}

// FormatComplex renders a complex value as "(re, im)".
func FormatComplex(v complex128, bitSize int) (string, error) {
	re, err := floatText(real(v), bitSize/2)
	if err != nil {
		return "", err
	}
	im, err := floatText(imag(v), bitSize/2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%*s", fixedWidth, "("+re+", "+im+")"), nil
}

func floatText(v float64, bitSize int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %v", ErrBadFloat, v)
	}
	s := strconv.FormatFloat(v, 'G', -1, bitSize)
	if strings.ContainsRune(s, '.') {
		return s, nil
	}
	if e := strings.IndexByte(s, 'E'); e >= 0 {
		return s[:e] + "." + s[e:], nil
	}
	return s + ".", nil
}

// ParseBool parses a logical value.
func ParseBool(value string) (bool, error) {
	switch strings.TrimSpace(value) {
	case "T", "t":
		return true, nil
	case "F", "f":
		return false, nil
	}
	return false, fmt.Errorf("not a logical value: %q", value)
}

// ParseInt parses an integer value.
func ParseInt(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "+"), 10, 64)
}

// ParseUint parses an unsigned integer value.
func ParseUint(value string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(value), "+"), 10, 64)
}

// ParseFloat parses a floating point value, accepting the Fortran 'D'
// exponent marker.
func ParseFloat(value string) (float64, error) {
	s := strings.TrimSpace(value)
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}

// ParseComplex parses a "(re, im)" value.
func ParseComplex(value string) (complex128, error) {
	s := strings.TrimSpace(value)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return 0, fmt.Errorf("not a complex value: %q", value)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("not a complex value: %q", value)
	}
	re, err := ParseFloat(parts[0])
	if err != nil {
		return 0, err
	}
	im, err := ParseFloat(parts[1])
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}
