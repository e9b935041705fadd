package compress

import (
	"bytes"
	"strings"
)

// Codec is the interface implemented by all file compressors.
type Codec interface {
	// Name returns the codec name.
	Name() string

	// Decode transforms compressed data to the raw FITS stream.
	Decode(input []byte) ([]byte, error)

	// Encode compresses a raw FITS stream.
	Encode(input []byte) ([]byte, error)
}

// registered lists codecs with the magic bytes and suffix that select them.
var registered = []struct {
	magic  []byte
	suffix string
	codec  Codec
}{
	{[]byte{0x1f, 0x8b}, ".gz", NewGzip(DefaultLevel)},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, ".zst", NewZstd()},
}

// Detect returns the codec whose magic bytes start data, or nil for an
// uncompressed stream.
func Detect(data []byte) Codec {
	for _, r := range registered {
		if bytes.HasPrefix(data, r.magic) {
			return r.codec
		}
	}
	return nil
}

// ForName returns the codec selected by the suffix of a file name, or nil
// when the name implies plain output.
func ForName(name string) Codec {
	lower := strings.ToLower(name)
	for _, r := range registered {
		if strings.HasSuffix(lower, r.suffix) {
			return r.codec
		}
	}
	return nil
}
