package block

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/binary"
	"github.com/robert-malhotra/go-afw/internal/card"
)

// Size is the FITS logical record length.
const Size = 2880

// CardsPerBlock is the number of header cards in one record.
const CardsPerBlock = Size / card.Width

// Signature is the start of every FITS file.
var Signature = []byte("SIMPLE  =")

// Errors
var (
	ErrNotFITS   = errors.New("not a FITS file: SIMPLE signature not found")
	ErrNoEnd     = errors.New("header has no END card")
	ErrTruncated = errors.New("data unit extends past end of file")
	ErrBitpix    = errors.New("illegal BITPIX value")
	ErrNaxis     = errors.New("illegal NAXIS value")
)

// Unit is one Header/Data Unit. Cards excludes END; Data holds the main
// data followed by any heap, without padding.
type Unit struct {
	Cards []string
	Data  []byte
}

// IsFITS reports whether data starts with the FITS signature.
func IsFITS(data []byte) bool {
	return len(data) >= len(Signature) && string(data[:len(Signature)]) == string(Signature)
}

// Split parses a complete file image into HDUs. Bytes after the last
// complete HDU that do not start a new extension are ignored.
func Split(data []byte) ([]Unit, error) {
	if !IsFITS(data) {
		return nil, ErrNotFITS
	}

	r := binary.NewReader(binary.NewBuffer(data))
	var units []Unit
	for r.Pos() < int64(len(data)) {
		if len(units) > 0 {
			next, err := r.Peek(8)
			if err != nil || strings.TrimRight(string(next), " ") != "XTENSION" {
				break
			}
		}

		cards, err := readHeader(r, int64(len(data)))
		if err != nil {
			return units, fmt.Errorf("HDU %d: %w", len(units), err)
		}

		size, err := DataSize(cards)
		if err != nil {
			return units, fmt.Errorf("HDU %d: %w", len(units), err)
		}
		if r.Pos()+size > int64(len(data)) {
			return units, fmt.Errorf("HDU %d: %w", len(units), ErrTruncated)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return units, fmt.Errorf("HDU %d: %w", len(units), err)
		}
		r.Align(Size)

		units = append(units, Unit{Cards: cards, Data: payload})
	}
	return units, nil
}

// readHeader reads cards up to END and leaves r at the start of the data.
func readHeader(r *binary.Reader, limit int64) ([]string, error) {
	var cards []string
	for {
		if r.Pos()+card.Width > limit {
			return nil, ErrNoEnd
		}
		raw, err := r.ReadBytes(card.Width)
		if err != nil {
			return nil, err
		}
		c := string(raw)
		if card.Keyword(c) == card.End && !card.HasValue(c) {
			r.Align(Size)
			return cards, nil
		}
		cards = append(cards, c)
	}
}

// intValue returns the integer value of the first card named key.
func intValue(cards []string, key string) (int64, bool, error) {
	for _, c := range cards {
		if card.Keyword(c) != key {
			continue
		}
		v, _, err := card.Split(c)
		if err != nil {
			return 0, true, err
		}
		n, err := card.ParseInt(v)
		return n, true, err
	}
	return 0, false, nil
}

// DataSize returns the number of data bytes (main data plus heap) that
// follow a header.
func DataSize(cards []string) (int64, error) {
	bitpix, ok, err := intValue(cards, "BITPIX")
	if err != nil || !ok {
		return 0, fmt.Errorf("%w: missing or unreadable", ErrBitpix)
	}
	switch bitpix {
	case 8, 16, 32, 64, -32, -64:
	default:
		return 0, fmt.Errorf("%w: %d", ErrBitpix, bitpix)
	}

	naxis, ok, err := intValue(cards, "NAXIS")
	if err != nil || !ok || naxis < 0 || naxis > 999 {
		return 0, fmt.Errorf("%w: %d", ErrNaxis, naxis)
	}
	if naxis == 0 {
		return 0, nil
	}

	elements := int64(1)
	for i := int64(1); i <= naxis; i++ {
		n, ok, err := intValue(cards, fmt.Sprintf("NAXIS%d", i))
		if err != nil || !ok || n < 0 {
			return 0, fmt.Errorf("%w: NAXIS%d", ErrNaxis, i)
		}
		elements *= n
	}

	pcount, _, err := intValue(cards, "PCOUNT")
	if err != nil {
		return 0, err
	}
	gcount, ok, err := intValue(cards, "GCOUNT")
	if err != nil {
		return 0, err
	}
	if !ok {
		gcount = 1
	}

	bytesPer := bitpix
	if bytesPer < 0 {
		bytesPer = -bytesPer
	}
	return bytesPer / 8 * gcount * (pcount + elements), nil
}

// Encode serializes units with END cards and record padding.
func Encode(units []Unit) ([]byte, error) {
	buf := binary.NewBuffer(nil)
	w := binary.NewWriter(buf)
	for i, u := range units {
		for _, c := range u.Cards {
			if err := w.WriteBytes([]byte(card.Pad(c))); err != nil {
				return nil, fmt.Errorf("HDU %d header: %w", i, err)
			}
		}
		if err := w.WriteBytes([]byte(card.EndCard)); err != nil {
			return nil, fmt.Errorf("HDU %d header: %w", i, err)
		}
		if err := w.WritePadding(Size, ' '); err != nil {
			return nil, fmt.Errorf("HDU %d header: %w", i, err)
		}
		if err := w.WriteBytes(u.Data); err != nil {
			return nil, fmt.Errorf("HDU %d data: %w", i, err)
		}
		if err := w.WritePadding(Size, 0); err != nil {
			return nil, fmt.Errorf("HDU %d data: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
