package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DefaultLevel is the gzip compression level used for new files.
const DefaultLevel = 6

// Gzip implements the gzip wrapper used by .fits.gz files.
type Gzip struct {
	level int
}

// NewGzip creates a gzip codec. Levels outside 1-9 select DefaultLevel.
func NewGzip(level int) *Gzip {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = DefaultLevel
	}
	return &Gzip{level: level}
}

func (g *Gzip) Name() string {
	return "gzip"
}

func (g *Gzip) Decode(input []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return output, nil
}

func (g *Gzip) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		w.Close()
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}
