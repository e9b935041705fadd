package block

import (
	"errors"
	"testing"

	"github.com/robert-malhotra/go-afw/internal/card"
)

func mustCard(t *testing.T, key string, v int64) string {
	t.Helper()
	c, err := card.New(key, card.FormatInt(v), "")
	if err != nil {
		t.Fatalf("card.New failed: %v", err)
	}
	return c
}

func primaryCards(t *testing.T) []string {
	simple, _ := card.New("SIMPLE", card.FormatBool(true), "")
	return []string{
		simple,
		mustCard(t, "BITPIX", 16),
		mustCard(t, "NAXIS", 2),
		mustCard(t, "NAXIS1", 3),
		mustCard(t, "NAXIS2", 2),
	}
}

func tableCards(t *testing.T, rows, width, pcount int64) []string {
	xt, _ := card.New("XTENSION", card.Quote("BINTABLE"), "")
	return []string{
		xt,
		mustCard(t, "BITPIX", 8),
		mustCard(t, "NAXIS", 2),
		mustCard(t, "NAXIS1", width),
		mustCard(t, "NAXIS2", rows),
		mustCard(t, "PCOUNT", pcount),
		mustCard(t, "GCOUNT", 1),
	}
}

func TestDataSize(t *testing.T) {
	size, err := DataSize(primaryCards(t))
	if err != nil {
		t.Fatalf("DataSize failed: %v", err)
	}
	if size != 12 {
		t.Errorf("expected 12 bytes, got %d", size)
	}

	size, err = DataSize(tableCards(t, 4, 10, 7))
	if err != nil {
		t.Fatalf("DataSize failed: %v", err)
	}
	if size != 47 {
		t.Errorf("expected 47 bytes, got %d", size)
	}
}

func TestDataSizeBadBitpix(t *testing.T) {
	cards := primaryCards(t)
	cards[1] = mustCard(t, "BITPIX", 12)
	if _, err := DataSize(cards); !errors.Is(err, ErrBitpix) {
		t.Errorf("expected ErrBitpix, got %v", err)
	}
}

func TestEncodeSplitRoundTrip(t *testing.T) {
	units := []Unit{
		{Cards: primaryCards(t), Data: []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}},
		{Cards: tableCards(t, 2, 3, 0), Data: []byte("abcdef")},
	}

	data, err := Encode(units)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 4*Size {
		t.Fatalf("expected %d bytes, got %d", 4*Size, len(data))
	}
	if !IsFITS(data) {
		t.Error("encoded data lacks FITS signature")
	}

	got, err := Split(data)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 HDUs, got %d", len(got))
	}
	if len(got[0].Cards) != 5 || string(got[1].Data) != "abcdef" {
		t.Errorf("unexpected units: %d cards, data %q", len(got[0].Cards), got[1].Data)
	}
}

func TestSplitNotFITS(t *testing.T) {
	if _, err := Split([]byte("\x89HDF\r\n\x1a\n")); !errors.Is(err, ErrNotFITS) {
		t.Errorf("expected ErrNotFITS, got %v", err)
	}
}

func TestSplitNoEnd(t *testing.T) {
	data := []byte(card.Pad("SIMPLE  =                    T"))
	if _, err := Split(data); !errors.Is(err, ErrNoEnd) {
		t.Errorf("expected ErrNoEnd, got %v", err)
	}
}

func TestSplitTruncated(t *testing.T) {
	data, err := Encode([]Unit{{Cards: primaryCards(t), Data: make([]byte, 12)}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Split(data[:Size+4]); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestSplitIgnoresTrailingJunk(t *testing.T) {
	data, err := Encode([]Unit{{Cards: primaryCards(t), Data: make([]byte, 12)}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data = append(data, make([]byte, 100)...)

	units, err := Split(data)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(units) != 1 {
		t.Errorf("expected 1 HDU, got %d", len(units))
	}
}
