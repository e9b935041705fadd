package fits

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/card"
	"github.com/robert-malhotra/go-afw/internal/dtype"
)

// Angle is an angle in radians. It is stored like float64.
type Angle float64

// KeyValue is the set of types a header key can hold.
type KeyValue interface {
	bool | int | uint | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float32 | float64 | complex64 | complex128 | string | Angle
}

// keyCards formats the card or cards for a keyword.
func keyCards(key string, value any, comment string) ([]string, error) {
	var text string
	var err error
	switch v := value.(type) {
	case bool:
		text = card.FormatBool(v)
	case int:
		text = card.FormatInt(int64(v))
	case int8:
		text = card.FormatInt(int64(v))
	case int16:
		text = card.FormatInt(int64(v))
	case int32:
		text = card.FormatInt(int64(v))
	case int64:
		text = card.FormatInt(v)
	case uint:
		text = card.FormatUint(uint64(v))
	case uint8:
		text = card.FormatUint(uint64(v))
	case uint16:
		text = card.FormatUint(uint64(v))
	case uint32:
		text = card.FormatUint(uint64(v))
	case uint64:
		text = card.FormatUint(v)
	case float32:
		text, err = card.FormatFloat(float64(v), 32)
	case float64:
		text, err = card.FormatFloat(v, 64)
	case Angle:
		text, err = card.FormatFloat(float64(v), 64)
	case complex64:
		text, err = card.FormatComplex(complex128(v), 64)
	case complex128:
		text, err = card.FormatComplex(v, 128)
	case string:
		return card.NewString(key, v, comment)
	default:
		return nil, fmt.Errorf("%w: %T is not a header value type", dtype.ErrTypeMismatch, value)
	}
	if err != nil {
		return nil, err
	}
	c, err := card.New(key, text, comment)
	if err != nil {
		return nil, err
	}
	return []string{c}, nil
}

func isCommentaryString(key string, value any) (string, bool) {
	if key != card.Comment && key != card.History {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// UpdateKey sets key in the current header. The first card with that
// name is overwritten, keeping its comment when comment is empty;
// otherwise a new card is appended. COMMENT and HISTORY never name a
// single card, so their text is always appended as a new commentary card.
func UpdateKey[T KeyValue](f *Fits, key string, value T, comment string) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, err := f.current(true)
	if err != nil {
		return err
	}
	key = card.Normalize(key)
	if text, ok := isCommentaryString(key, value); ok {
		h.append(card.NewCommentary(key, text)...)
	} else if err := h.update(key, value, comment); err != nil {
		return f.fail(statusFor(err, StatusBadKeychar), err, "updating key %q", key)
	}
	f.touch()
	return nil
}

// WriteKey appends key to the current header. Strings written under
// COMMENT or HISTORY become free text cards.
func WriteKey[T KeyValue](f *Fits, key string, value T, comment string) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, err := f.current(true)
	if err != nil {
		return err
	}
	key = card.Normalize(key)
	if text, ok := isCommentaryString(key, value); ok {
		h.append(card.NewCommentary(key, text)...)
	} else if err := h.write(key, value, comment); err != nil {
		return f.fail(statusFor(err, StatusBadKeychar), err, "writing key %q", key)
	}
	f.touch()
	return nil
}

// UpdateColumnKey is UpdateKey for the column keyword prefix+(n+1), e.g.
// TTYPE3 for prefix "TTYPE" and column 2.
func UpdateColumnKey[T KeyValue](f *Fits, prefix string, n int, value T, comment string) error {
	return UpdateKey(f, columnKey(prefix, n), value, comment)
}

// WriteColumnKey is WriteKey for the column keyword prefix+(n+1).
func WriteColumnKey[T KeyValue](f *Fits, prefix string, n int, value T, comment string) error {
	return WriteKey(f, columnKey(prefix, n), value, comment)
}

func columnKey(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n+1)
}

// DeleteKey removes the first card named key from the current header.
func (f *Fits) DeleteKey(key string) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, err := f.current(false)
	if err != nil {
		return err
	}
	key = card.Normalize(key)
	if !h.remove(key) {
		return f.fail(StatusKeyNotFound, nil, "deleting key %q", key)
	}
	f.touch()
	return nil
}

// ReadKey reads key from the current header, converting the value to T.
// String values are reassembled from continuation cards, and their
// leading and trailing blanks are dropped.
func ReadKey[T KeyValue](f *Fits, key string) (T, error) {
	v, _, err := ReadKeyWithComment[T](f, key)
	return v, err
}

// ReadKeyWithComment is ReadKey that also returns the key's comment.
func ReadKeyWithComment[T KeyValue](f *Fits, key string) (T, string, error) {
	var out T
	h, err := f.current(false)
	if err != nil {
		return out, "", err
	}
	key = card.Normalize(key)
	i := h.find(key)
	if i < 0 {
		return out, "", f.fail(StatusKeyNotFound, nil, "reading key %q", key)
	}
	raw, comment, _, err := h.entry(i)
	if err != nil {
		return out, "", f.fail(statusFor(err, StatusNoQuote), err, "reading key %q", key)
	}
	if raw == "" {
		return out, "", f.fail(StatusValueUndefined, nil, "reading key %q", key)
	}
	if status, err := parseKey(raw, reflect.ValueOf(&out).Elem()); err != nil {
		return out, "", f.fail(status, err, "reading key %q", key)
	}
	return out, comment, nil
}

// parseKey converts raw value text into dst, returning the status that
// describes a failure.
func parseKey(raw string, dst reflect.Value) (int, error) {
	switch dst.Kind() {
	case reflect.String:
		if !strings.HasPrefix(raw, "'") {
			dst.SetString(strings.Trim(raw, " "))
			return 0, nil
		}
		s, err := card.Unquote(raw)
		if err != nil {
			return StatusNoQuote, err
		}
		dst.SetString(strings.Trim(s, " "))
		return 0, nil

	case reflect.Bool:
		b, err := card.ParseBool(raw)
		if err != nil {
			return StatusBadLogicalKey, err
		}
		dst.SetBool(b)
		return 0, nil

	case reflect.Complex64, reflect.Complex128:
		c, err := card.ParseComplex(raw)
		if err != nil {
			v, ok := parseNumber(raw)
			if !ok {
				return StatusBadDoubleKey, err
			}
			return assignKey(dst, v)
		}
		return assignKey(dst, c)
	}

	v, ok := parseNumber(raw)
	if !ok {
		switch dst.Kind() {
		case reflect.Float32:
			return StatusBadFloatKey, fmt.Errorf("%s is not a number", raw)
		case reflect.Float64:
			return StatusBadDoubleKey, fmt.Errorf("%s is not a number", raw)
		}
		return StatusBadIntKey, fmt.Errorf("%s is not a number", raw)
	}
	return assignKey(dst, v)
}

func assignKey(dst reflect.Value, v any) (int, error) {
	if err := dtype.Assign(dst, v); err != nil {
		return statusFor(err, StatusBadDatatype), err
	}
	return 0, nil
}

// parseNumber parses integer or floating point value text.
func parseNumber(raw string) (any, bool) {
	if i, err := card.ParseInt(raw); err == nil {
		return i, true
	}
	if u, err := card.ParseUint(raw); err == nil {
		return u, true
	}
	if x, err := card.ParseFloat(raw); err == nil {
		return x, true
	}
	return nil, false
}

// ForEachKey calls fn for every card of the current header in order,
// passing the keyword, the raw value text (strings keep their quotes) and
// the comment. A string continued over CONTINUE cards is passed once with
// its fragments and comments joined. An error from fn stops the walk and
// is returned as is.
func (f *Fits) ForEachKey(fn func(key, value, comment string) error) error {
	h, err := f.current(false)
	if err != nil {
		return err
	}
	for i := 0; i < len(h.cards); {
		key := card.Keyword(h.cards[i])
		value, comment, next, err := h.entry(i)
		if err != nil {
			return f.fail(statusFor(err, StatusNoQuote), err, "")
		}
		if err := fn(key, value, comment); err != nil {
			return err
		}
		i = next
	}
	return nil
}
