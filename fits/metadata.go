package fits

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/card"
)

// Metadata is a container of named values that headers are read into and
// written from.
type Metadata interface {
	// Names returns the names of all values.
	Names() []string
	// TypeOf returns the element type stored under name, or nil.
	TypeOf(name string) reflect.Type
	// Array returns all values stored under name as a slice.
	Array(name string) any
	// Add appends value to those stored under name.
	Add(name string, value any) error
}

// OrderedMetadata is Metadata that keeps names in insertion order and a
// comment per name.
type OrderedMetadata interface {
	Metadata
	Comment(name string) string
	AddWithComment(name string, value any, comment string) error
}

var (
	boolPattern   = regexp.MustCompile(`^[tTfF]$`)
	intPattern    = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern  = regexp.MustCompile(`^[+-]?([0-9]*\.[0-9]+|[0-9]+\.[0-9]*)([eE][+-]?[0-9]+)?$`)
	stringPattern = regexp.MustCompile(`^'(.*?) *'$`)
)

// isStructural reports whether key describes the data layout and is
// maintained by the library rather than by metadata.
func isStructural(key string) bool {
	switch key {
	case "SIMPLE", "BITPIX", "EXTEND", "GCOUNT", "PCOUNT", "XTENSION", "BSCALE", "BZERO":
		return true
	}
	return strings.HasPrefix(key, "NAXIS")
}

// ReadMetadata adds every key of the current header to md. Values are
// classified from their text as bool, int (int64 when outside the 32-bit
// range), float64 or string; COMMENT and HISTORY cards add their text.
// With strip set, structural keys are skipped.
func (f *Fits) ReadMetadata(md Metadata, strip bool) error {
	ordered, _ := md.(OrderedMetadata)
	add := func(key string, value any, comment string) error {
		if ordered != nil {
			return ordered.AddWithComment(key, value, comment)
		}
		return md.Add(key, value)
	}

	return f.ForEachKey(func(key, value, comment string) error {
		if key == "" || (strip && isStructural(key)) {
			return nil
		}
		v, err := classify(key, value, comment)
		if err != nil {
			return f.fail(StatusUnknownRec, nil, "%v", err)
		}
		if v == nil {
			return nil
		}
		if err := add(key, v, comment); err != nil {
			return fmt.Errorf("adding header key %q: %w", key, err)
		}
		return nil
	})
}

// classify converts raw header value text into a metadata value. A nil
// value with no error means the card is skipped.
func classify(key, value, comment string) (any, error) {
	switch {
	case boolPattern.MatchString(value):
		return value == "T" || value == "t", nil
	case intPattern.MatchString(value):
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse header value for key '%s': '%s'", key, value)
		}
		if n < 1<<31 && n > -(1<<31) {
			return int(n), nil
		}
		return n, nil
	case floatPattern.MatchString(value):
		x, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse header value for key '%s': '%s'", key, value)
		}
		return x, nil
	}
	if m := stringPattern.FindStringSubmatch(value); m != nil {
		return strings.ReplaceAll(m[1], "''", "'"), nil
	}
	switch {
	case key == card.History:
		return comment, nil
	case key == card.Comment:
		if comment == citation[0] || comment == citation[1] {
			return nil, nil
		}
		return comment, nil
	}
	return nil, fmt.Errorf("could not parse header value for key '%s': '%s'", key, value)
}

// WriteMetadata appends the values of md to the current header, skipping
// structural keys. Array values are written as repeated cards. Values of
// a type that has no header representation are logged and skipped.
func (f *Fits) WriteMetadata(md Metadata) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	ordered, _ := md.(OrderedMetadata)

	for _, name := range md.Names() {
		if isStructural(name) {
			continue
		}
		comment := ""
		if ordered != nil {
			comment = ordered.Comment(name)
		}
		if err := f.writeProperty(md, name, comment); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fits) writeProperty(md Metadata, name, comment string) error {
	t := md.TypeOf(name)
	if t == nil {
		return nil
	}
	values := reflect.ValueOf(md.Array(name))
	if values.Kind() != reflect.Slice {
		f.opts.logger.Warn("skipping metadata value that is not an array",
			slog.String("key", name), slog.String("type", t.String()))
		return nil
	}

	for i := 0; i < values.Len(); i++ {
		v := values.Index(i)
		var err error
		switch t {
		case reflect.TypeFor[bool]():
			err = WriteKey(f, name, v.Bool(), comment)
		case reflect.TypeFor[int32]():
			err = WriteKey(f, name, int32(v.Int()), comment)
		case reflect.TypeFor[int]():
			err = WriteKey(f, name, int(v.Int()), comment)
		case reflect.TypeFor[int64]():
			err = WriteKey(f, name, v.Int(), comment)
		case reflect.TypeFor[float64]():
			err = WriteKey(f, name, v.Float(), comment)
		case reflect.TypeFor[string]():
			err = WriteKey(f, name, v.String(), comment)
		default:
			f.opts.logger.Warn("skipping metadata value of unsupported type",
				slog.String("file", f.filename),
				slog.String("key", name),
				slog.String("type", t.String()))
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}
