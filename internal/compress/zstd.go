package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd implements the zstd wrapper used by .fits.zst files.
type Zstd struct{}

// NewZstd creates a zstd codec.
func NewZstd() *Zstd {
	return &Zstd{}
}

func (z *Zstd) Name() string {
	return "zstd"
}

func (z *Zstd) Decode(input []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	output, err := dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return output, nil
}

func (z *Zstd) Encode(input []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(input, nil), nil
}
