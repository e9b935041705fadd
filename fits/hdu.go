package fits

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/binary"
	"github.com/robert-malhotra/go-afw/internal/block"
	"github.com/robert-malhotra/go-afw/internal/card"
	"github.com/robert-malhotra/go-afw/internal/heap"
)

// HDUType identifies the kind of an HDU.
type HDUType int

// HDU types, numbered as in cfitsio.
const (
	ImageHDU HDUType = iota
	ASCIITableHDU
	BinaryTableHDU
)

func (t HDUType) String() string {
	switch t {
	case ImageHDU:
		return "IMAGE"
	case ASCIITableHDU:
		return "TABLE"
	case BinaryTableHDU:
		return "BINTABLE"
	}
	return fmt.Sprintf("HDUType(%d)", int(t))
}

// citation is the pair of COMMENT cards written into every new primary
// header.
var citation = [2]string{
	"  FITS (Flexible Image Transport System) format is defined in 'Astronomy",
	"  and Astrophysics', volume 376, page 359; bibcode: 2001A&A...376..359H",
}

var (
	errHeapRange   = errors.New("heap area lies outside the data unit")
	errUnknownExt  = errors.New("unknown extension type")
	errBadContinue = errors.New("invalid CONTINUE")
)

// hdu is one Header/Data Unit held in memory. For binary tables data
// holds the main table only and the heap is kept separately.
type hdu struct {
	cards  []string
	data   []byte
	heap   *heap.Heap
	layout *tableLayout
}

// loadHDU builds an hdu from a parsed unit, separating a table heap from
// the main data.
func loadHDU(u block.Unit) (*hdu, error) {
	h := &hdu{cards: u.Cards, data: u.Data}
	kind, err := h.kind()
	if err != nil || kind != BinaryTableHDU {
		return h, nil
	}

	width, _, err := h.intKey("NAXIS1")
	if err != nil {
		return nil, err
	}
	rows, _, err := h.intKey("NAXIS2")
	if err != nil {
		return nil, err
	}
	pcount, _, err := h.intKey("PCOUNT")
	if err != nil {
		return nil, err
	}
	main := width * rows
	start, ok, err := h.intKey("THEAP")
	if err != nil {
		return nil, err
	}
	if !ok {
		start = main
	}
	end := main + pcount
	if start < main || start > end || end > int64(len(u.Data)) {
		return nil, fmt.Errorf("%w: THEAP %d, PCOUNT %d", errHeapRange, start, pcount)
	}
	h.data = u.Data[:main]
	h.heap = heap.New(slices.Clone(u.Data[start:end]))
	return h, nil
}

// newPrimary returns an empty primary HDU.
func newPrimary() *hdu {
	h := &hdu{}
	h.cards = append(h.cards,
		fixedCard("SIMPLE", true, "file does conform to FITS standard"),
		fixedCard("BITPIX", 8, "number of bits per data pixel"),
		fixedCard("NAXIS", 0, "number of data axes"),
		fixedCard("EXTEND", true, "FITS dataset may contain extensions"),
	)
	for _, text := range citation {
		h.cards = append(h.cards, card.NewCommentary(card.Comment, text)...)
	}
	return h
}

// fixedCard formats a structural card whose keyword and value are known
// to be valid.
func fixedCard(key string, value any, comment string) string {
	cards, err := keyCards(key, value, comment)
	if err != nil {
		panic(fmt.Sprintf("fits: formatting %s: %v", key, err))
	}
	return cards[0]
}

// kind returns the type of the HDU from its XTENSION card.
func (h *hdu) kind() (HDUType, error) {
	x, ok := h.stringKey("XTENSION")
	if !ok {
		return ImageHDU, nil
	}
	switch x {
	case "IMAGE":
		return ImageHDU, nil
	case "TABLE":
		return ASCIITableHDU, nil
	case "BINTABLE", "A3DTABLE":
		return BinaryTableHDU, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownExt, x)
}

// find returns the index of the first card named key, or -1.
func (h *hdu) find(key string) int {
	for i, c := range h.cards {
		if card.Keyword(c) == key {
			return i
		}
	}
	return -1
}

// entry returns the raw value and comment of the card at i with any
// long-string continuation reassembled, and the index of the next card.
func (h *hdu) entry(i int) (value, comment string, next int, err error) {
	value, comment, err = card.Split(h.cards[i])
	if err != nil {
		return "", "", i + 1, err
	}
	next = i + 1
	for card.IsContinued(value) && next < len(h.cards) {
		c := h.cards[next]
		if card.Keyword(c) != card.Continue {
			break
		}
		fragment, more, err := card.ContinueFragment(c)
		if err != nil {
			return "", "", next + 1, fmt.Errorf("%w at header key %d: \"%s\"",
				errBadContinue, next+1, strings.TrimRight(c, " "))
		}
		value = value[:len(value)-2] + fragment
		comment += more
		next++
	}
	return value, comment, next, nil
}

// intKey returns the integer value of the first card named key.
func (h *hdu) intKey(key string) (int64, bool, error) {
	i := h.find(key)
	if i < 0 {
		return 0, false, nil
	}
	v, _, err := card.Split(h.cards[i])
	if err != nil {
		return 0, true, err
	}
	n, err := card.ParseInt(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// floatKey returns the floating point value of the first card named key.
func (h *hdu) floatKey(key string) (float64, bool, error) {
	i := h.find(key)
	if i < 0 {
		return 0, false, nil
	}
	v, _, err := card.Split(h.cards[i])
	if err != nil {
		return 0, true, err
	}
	x, err := card.ParseFloat(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return x, true, nil
}

// stringKey returns the string value of the first card named key.
func (h *hdu) stringKey(key string) (string, bool) {
	i := h.find(key)
	if i < 0 {
		return "", false
	}
	v, _, _, err := h.entry(i)
	if err != nil {
		return "", false
	}
	s, err := card.Unquote(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// update replaces the first card named key, keeping its comment when
// comment is empty, or appends a new card.
func (h *hdu) update(key string, value any, comment string) error {
	i := h.find(key)
	next := i + 1
	if i >= 0 {
		_, old, n, err := h.entry(i)
		if err == nil {
			next = n
			if comment == "" {
				comment = old
			}
		}
	}
	cards, err := keyCards(key, value, comment)
	if err != nil {
		return err
	}
	if i < 0 {
		h.cards = append(h.cards, cards...)
	} else {
		h.cards = slices.Replace(h.cards, i, next, cards...)
	}
	h.layout = nil
	return nil
}

// write appends the cards for key.
func (h *hdu) write(key string, value any, comment string) error {
	cards, err := keyCards(key, value, comment)
	if err != nil {
		return err
	}
	h.append(cards...)
	return nil
}

func (h *hdu) append(cards ...string) {
	h.cards = append(h.cards, cards...)
	h.layout = nil
}

// remove deletes the first card named key and its continuations.
func (h *hdu) remove(key string) bool {
	i := h.find(key)
	if i < 0 {
		return false
	}
	next := i + 1
	if _, _, n, err := h.entry(i); err == nil {
		next = n
	}
	h.cards = slices.Delete(h.cards, i, next)
	h.layout = nil
	return true
}

// payload returns the data unit as written to disk: the main data
// followed by the heap.
func (h *hdu) payload() []byte {
	if h.heap == nil {
		return h.data
	}
	heapBytes := h.heap.Bytes()
	data := make([]byte, 0, len(h.data)+len(heapBytes))
	data = append(data, h.data...)
	return append(data, heapBytes...)
}

// unit returns the HDU as written to disk, with PCOUNT and the optional
// DATASUM brought up to date.
func (h *hdu) unit(dataSum bool) (block.Unit, error) {
	if h.heap != nil {
		if err := h.heap.Validate(); err != nil {
			return block.Unit{}, fmt.Errorf("%w: %w", errHeapRange, err)
		}
		if err := h.update("PCOUNT", h.heap.Size(), ""); err != nil {
			return block.Unit{}, err
		}
		h.remove("THEAP")
	}
	data := h.payload()
	if dataSum {
		sum := strconv.FormatUint(uint64(binary.DataSum(data)), 10)
		if err := h.update("DATASUM", sum, "data unit checksum"); err != nil {
			return block.Unit{}, err
		}
	}
	return block.Unit{Cards: slices.Clone(h.cards), Data: data}, nil
}

// current returns the current HDU. When create is set an empty writeable
// file first gets a primary HDU.
func (f *Fits) current(create bool) (*hdu, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if len(f.hdus) == 0 {
		if !create || !f.writeable {
			return nil, f.fail(StatusBadHDUNum, nil, "file has no HDUs")
		}
		f.hdus = append(f.hdus, newPrimary())
		f.cur = 0
		f.touch()
	}
	return f.hdus[f.cur], nil
}

// CreateEmpty appends an HDU with no data and makes it current: the
// default primary HDU in an empty file, an empty IMAGE extension
// otherwise.
func (f *Fits) CreateEmpty() error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	if len(f.hdus) > 0 {
		return CreateImage[uint8](f)
	}
	f.hdus = append(f.hdus, newPrimary())
	f.cur = 0
	f.touch()
	return nil
}

// CountHDUs returns the number of HDUs in the file.
func (f *Fits) CountHDUs() int {
	return len(f.hdus)
}

// CurrentHDU returns the 0-based index of the current HDU.
func (f *Fits) CurrentHDU() int {
	return f.cur
}

// SetHDU makes HDU n (0-based) current.
func (f *Fits) SetHDU(n int) error {
	if err := f.check(); err != nil {
		return err
	}
	if n < 0 || n >= len(f.hdus) {
		return f.fail(StatusBadHDUNum, nil, "HDU %d requested, file has %d", n, len(f.hdus))
	}
	f.cur = n
	return nil
}

// SetHDUByName makes the first HDU whose EXTNAME matches extname current.
// Names compare case-insensitively.
func (f *Fits) SetHDUByName(extname string) error {
	if err := f.check(); err != nil {
		return err
	}
	for i, h := range f.hdus {
		if name, ok := h.stringKey("EXTNAME"); ok && strings.EqualFold(name, extname) {
			f.cur = i
			return nil
		}
	}
	return f.fail(StatusBadHDUNum, nil, "no HDU named %q", extname)
}

// HDUType returns the type of the current HDU.
func (f *Fits) HDUType() (HDUType, error) {
	h, err := f.current(false)
	if err != nil {
		return 0, err
	}
	kind, err := h.kind()
	if err != nil {
		return 0, f.fail(StatusUnknownExt, err, "")
	}
	return kind, nil
}
