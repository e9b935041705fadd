package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitsLike() []byte {
	data := bytes.Repeat([]byte(" "), 2880)
	copy(data, "SIMPLE  =                    T")
	return data
}

func TestCodecRoundTrip(t *testing.T) {
	for _, codec := range []Codec{NewGzip(DefaultLevel), NewZstd()} {
		t.Run(codec.Name(), func(t *testing.T) {
			raw := fitsLike()

			packed, err := codec.Encode(raw)
			require.NoError(t, err)
			assert.Less(t, len(packed), len(raw))

			require.NotNil(t, Detect(packed))
			assert.Equal(t, codec.Name(), Detect(packed).Name())

			unpacked, err := codec.Decode(packed)
			require.NoError(t, err)
			assert.Equal(t, raw, unpacked)
		})
	}
}

func TestDetectPlain(t *testing.T) {
	assert.Nil(t, Detect(fitsLike()))
	assert.Nil(t, Detect(nil))
}

func TestForName(t *testing.T) {
	assert.Equal(t, "gzip", ForName("image.fits.gz").Name())
	assert.Equal(t, "gzip", ForName("IMAGE.FITS.GZ").Name())
	assert.Equal(t, "zstd", ForName("cat.fits.zst").Name())
	assert.Nil(t, ForName("plain.fits"))
}

func TestGzipDecodeGarbage(t *testing.T) {
	_, err := NewGzip(DefaultLevel).Decode([]byte{0x1f, 0x8b, 0x00})
	assert.Error(t, err)
}

func TestNewGzipLevel(t *testing.T) {
	assert.Equal(t, DefaultLevel, NewGzip(42).level)
	assert.Equal(t, 9, NewGzip(9).level)
}
