// Package compress implements transparent whole-file compression for FITS
// files.
//
// Compressed FITS files are ordinary FITS byte streams wrapped in a
// general-purpose compressor. Reading detects the wrapper from its magic
// bytes; writing picks it from the file name suffix:
//
//	Suffix  | Magic         | Codec
//	--------|---------------|------------------------------
//	.gz     | 1f 8b         | gzip (klauspost/compress/gzip)
//	.zst    | 28 b5 2f fd   | zstd (klauspost/compress/zstd)
//
// # Usage
//
//	codec := compress.Detect(raw)
//	if codec != nil {
//	    raw, err = codec.Decode(raw)
//	}
//
//	codec := compress.ForName("image.fits.gz")
//	out, err := codec.Encode(fitsBytes)
package compress
