package fits

import (
	"strconv"

	"github.com/robert-malhotra/go-afw/internal/binary"
)

// WriteDataSum records the checksum of the current HDU's data unit in its
// DATASUM card.
func (f *Fits) WriteDataSum() error {
	if err := f.checkWrite(); err != nil {
		return err
	}
	h, err := f.current(true)
	if err != nil {
		return err
	}
	if _, err := h.unit(true); err != nil {
		return f.fail(statusFor(err, StatusWriteError), err, "")
	}
	f.touch()
	return nil
}

// VerifyDataSum reports whether the data unit of the current HDU matches
// its DATASUM card.
func (f *Fits) VerifyDataSum() (bool, error) {
	h, err := f.current(false)
	if err != nil {
		return false, err
	}
	text, ok := h.stringKey("DATASUM")
	if !ok {
		return false, f.fail(StatusKeyNotFound, nil, "reading key %q", "DATASUM")
	}
	want, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return false, f.fail(StatusBadC2I, err, "reading key %q", "DATASUM")
	}
	return binary.DataSum(h.payload()) == uint32(want), nil
}
