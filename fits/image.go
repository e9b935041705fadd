package fits

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-afw/internal/block"
	"github.com/robert-malhotra/go-afw/internal/card"
	"github.com/robert-malhotra/go-afw/internal/dtype"
)

// Pixel is the set of image pixel types.
type Pixel interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

var errNotImage = errors.New("HDU is not an image")

// imageLayout is the parsed structure of an image header.
type imageLayout struct {
	code  dtype.Code
	shape []int64 // NAXIS1 first
	zero  float64
	scale float64
}

func (l imageLayout) pixels() int64 {
	if len(l.shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range l.shape {
		n *= d
	}
	return n
}

// image parses the image structure of the HDU.
func (h *hdu) image() (imageLayout, error) {
	kind, err := h.kind()
	if err != nil {
		return imageLayout{}, err
	}
	if kind != ImageHDU {
		return imageLayout{}, fmt.Errorf("%w: %s", errNotImage, kind)
	}

	bitpix, _, err := h.intKey("BITPIX")
	if err != nil {
		return imageLayout{}, fmt.Errorf("%w: %v", block.ErrBitpix, err)
	}
	code, err := dtype.CodeForBitpix(int(bitpix))
	if err != nil {
		return imageLayout{}, fmt.Errorf("%w: %v", block.ErrBitpix, err)
	}
	naxis, _, err := h.intKey("NAXIS")
	if err != nil || naxis < 0 || naxis > 999 {
		return imageLayout{}, fmt.Errorf("%w: %d", block.ErrNaxis, naxis)
	}

	l := imageLayout{code: code, shape: make([]int64, naxis), scale: 1}
	for i := range l.shape {
		n, ok, err := h.intKey(fmt.Sprintf("NAXIS%d", i+1))
		if err != nil || !ok || n < 0 {
			return imageLayout{}, fmt.Errorf("%w: NAXIS%d", block.ErrNaxis, i+1)
		}
		l.shape[i] = n
	}
	if z, ok, err := h.floatKey("BZERO"); err != nil {
		return imageLayout{}, err
	} else if ok {
		l.zero = z
	}
	if s, ok, err := h.floatKey("BSCALE"); err != nil {
		return imageLayout{}, err
	} else if ok && s != 0 {
		l.scale = s
	}
	if need := code.Bytes(l.pixels()); int64(len(h.data)) < need {
		return imageLayout{}, fmt.Errorf("%w: %d bytes of pixel data, %d needed", block.ErrTruncated, len(h.data), need)
	}
	return l, nil
}

// imageHDU returns the current HDU and its image layout.
func (f *Fits) imageHDU() (*hdu, imageLayout, error) {
	h, err := f.current(false)
	if err != nil {
		return nil, imageLayout{}, err
	}
	l, err := h.image()
	if err != nil {
		return nil, imageLayout{}, f.fail(statusFor(err, StatusNotImage), err, "")
	}
	return h, l, nil
}

// CreateImage appends an image HDU of T pixels with the given axis
// lengths (NAXIS1 first) and makes it current. In an empty file the image
// becomes the primary HDU. Unsigned and signed byte pixels are stored
// with the conventional BZERO offset.
func CreateImage[T Pixel](f *Fits, naxes ...int64) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	bitpix, zero, err := dtype.BitpixFor(reflect.TypeFor[T]())
	if err != nil {
		return f.fail(StatusBadBitpix, err, "")
	}
	for i, n := range naxes {
		if n < 0 {
			return f.fail(StatusBadNaxes, nil, "NAXIS%d = %d", i+1, n)
		}
	}

	primary := len(f.hdus) == 0
	h := &hdu{}
	if primary {
		h.append(fixedCard("SIMPLE", true, "file does conform to FITS standard"))
	} else {
		h.append(fixedCard("XTENSION", "IMAGE", "IMAGE extension"))
	}
	h.append(
		fixedCard("BITPIX", bitpix, "number of bits per data pixel"),
		fixedCard("NAXIS", len(naxes), "number of data axes"),
	)
	for i, n := range naxes {
		h.append(fixedCard(fmt.Sprintf("NAXIS%d", i+1), n, fmt.Sprintf("length of data axis %d", i+1)))
	}
	if primary {
		h.append(fixedCard("EXTEND", true, "FITS dataset may contain extensions"))
	} else {
		h.append(
			fixedCard("PCOUNT", 0, "required keyword; must = 0"),
			fixedCard("GCOUNT", 1, "required keyword; must = 1"),
		)
	}
	switch zero {
	case 0:
	case dtype.ZeroUint64:
		h.append(fixedCard("BZERO", uint64(1<<63), "offset data range to that of unsigned long"))
		h.append(fixedCard("BSCALE", 1, "default scaling factor"))
	default:
		h.append(fixedCard("BZERO", int64(zero), "offset data range"))
		h.append(fixedCard("BSCALE", 1, "default scaling factor"))
	}
	if primary {
		for _, text := range citation {
			h.append(card.NewCommentary(card.Comment, text)...)
		}
	}

	code, _ := dtype.CodeForBitpix(bitpix)
	h.data = make([]byte, code.Bytes(imageLayout{shape: naxes}.pixels()))

	f.hdus = append(f.hdus, h)
	f.cur = len(f.hdus) - 1
	f.touch()
	return nil
}

// ImageShape returns the axis lengths of the current image, NAXIS1 first.
func (f *Fits) ImageShape() ([]int64, error) {
	_, l, err := f.imageHDU()
	if err != nil {
		return nil, err
	}
	return l.shape, nil
}

// WriteImage replaces the pixels of the current image. len(pixels) must
// equal the number of pixels, NAXIS1 varying fastest.
func WriteImage[T Pixel](f *Fits, pixels []T) error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, l, err := f.imageHDU()
	if err != nil {
		return err
	}
	if int64(len(pixels)) != l.pixels() {
		return f.fail(StatusBadElemNum, errElemRange, "%d pixels written to image of %d", len(pixels), l.pixels())
	}

	vals, err := canonical(pixels)
	if err != nil {
		return f.fail(StatusBadDatatype, err, "")
	}
	zero := l.zero
	if l.scale != 1 {
		for i, v := range vals {
			x := (toFloat64(v) - l.zero) / l.scale
			if l.code != dtype.Float && l.code != dtype.Double {
				x = math.Round(x)
			}
			vals[i] = x
		}
		zero = 0
	}
	if err := dtype.Encode(l.code, zero, vals, h.data); err != nil {
		return f.fail(statusFor(err, StatusWriteError), err, "writing image")
	}
	f.touch()
	return nil
}

// ReadImage returns the pixels of the current image converted to T,
// NAXIS1 varying fastest.
func ReadImage[T Pixel](f *Fits) ([]T, error) {
	h, l, err := f.imageHDU()
	if err != nil {
		return nil, err
	}
	n := int(l.pixels())
	zero := l.zero
	if l.scale != 1 {
		zero = 0
	}
	decoded, err := dtype.Decode(l.code, zero, h.data, n)
	if err != nil {
		return nil, f.fail(statusFor(err, StatusReadError), err, "reading image")
	}

	out := make([]T, n)
	for i, v := range decoded {
		if l.scale != 1 {
			v = toFloat64(v)*l.scale + l.zero
		}
		if err := dtype.Assign(reflect.ValueOf(&out[i]).Elem(), v); err != nil {
			return nil, f.fail(statusFor(err, StatusBadDatatype), err, "reading pixel %d", i)
		}
	}
	return out, nil
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}
