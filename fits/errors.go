package fits

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/block"
	"github.com/robert-malhotra/go-afw/internal/card"
	"github.com/robert-malhotra/go-afw/internal/dtype"
)

// Status codes. The numbering and texts follow cfitsio so that messages
// read the same as those produced by C tools.
const (
	StatusOK               = 0
	StatusFileNotOpened    = 104
	StatusFileNotCreated   = 105
	StatusWriteError       = 106
	StatusEndOfFile        = 107
	StatusReadError        = 108
	StatusFileNotClosed    = 110
	StatusReadOnlyFile     = 112
	StatusMemoryAllocation = 113
	StatusBadFileptr       = 114
	StatusKeyNotFound      = 202
	StatusKeyOutOfBounds   = 203
	StatusValueUndefined   = 204
	StatusNoQuote          = 205
	StatusBadKeychar       = 207
	StatusNotPosInt        = 209
	StatusNoEnd            = 210
	StatusBadBitpix        = 211
	StatusBadNaxis         = 212
	StatusBadNaxes         = 213
	StatusBadPcount        = 214
	StatusBadTfields       = 216
	StatusNegRows          = 218
	StatusColNotFound      = 219
	StatusNoSimple         = 221
	StatusNoXtension       = 225
	StatusNotBtable        = 227
	StatusNoTform          = 232
	StatusNotImage         = 233
	StatusNotTable         = 235
	StatusBadRowWidth      = 241
	StatusUnknownExt       = 251
	StatusUnknownRec       = 252
	StatusBadTform         = 261
	StatusBadTformDtype    = 262
	StatusBadHDUNum        = 301
	StatusBadColNum        = 302
	StatusBadRowNum        = 307
	StatusBadElemNum       = 308
	StatusNotLogicalCol    = 310
	StatusNotVariLen       = 317
	StatusBadI2C           = 401
	StatusBadF2C           = 402
	StatusBadIntKey        = 403
	StatusBadLogicalKey    = 404
	StatusBadFloatKey      = 405
	StatusBadDoubleKey     = 406
	StatusBadC2I           = 407
	StatusBadC2F           = 408
	StatusBadC2D           = 409
	StatusBadDatatype      = 410
	StatusNumOverflow      = 412
)

var statusText = map[int]string{
	StatusOK:               "OK - no error",
	StatusFileNotOpened:    "could not open the named file",
	StatusFileNotCreated:   "couldn't create the named file",
	StatusWriteError:       "error writing to FITS file",
	StatusEndOfFile:        "tried to move past end of file",
	StatusReadError:        "error reading from FITS file",
	StatusFileNotClosed:    "could not close the file",
	StatusReadOnlyFile:     "cannot write to readonly file",
	StatusMemoryAllocation: "could not allocate memory",
	StatusBadFileptr:       "invalid fitsfile pointer",
	StatusKeyNotFound:      "keyword not found in header",
	StatusKeyOutOfBounds:   "keyword number out of bounds",
	StatusValueUndefined:   "keyword value is undefined",
	StatusNoQuote:          "string missing closing quote",
	StatusBadKeychar:       "illegal character in keyword",
	StatusNotPosInt:        "keyword value not positive integer",
	StatusNoEnd:            "couldn't find END keyword",
	StatusBadBitpix:        "illegal BITPIX keyword value",
	StatusBadNaxis:         "illegal NAXIS keyword value",
	StatusBadNaxes:         "illegal NAXISn keyword value",
	StatusBadPcount:        "illegal PCOUNT keyword value",
	StatusBadTfields:       "illegal TFIELDS keyword value",
	StatusNegRows:          "negative number of rows in table",
	StatusColNotFound:      "named column not found",
	StatusNoSimple:         "first keyword not SIMPLE",
	StatusNoXtension:       "missing XTENSION keyword",
	StatusNotBtable:        "CHDU is not a binary table",
	StatusNoTform:          "missing TFORMn keyword",
	StatusNotImage:         "CHDU is not an IMAGE extension",
	StatusNotTable:         "CHDU is not a table",
	StatusBadRowWidth:      "sum of column widths not = NAXIS1",
	StatusUnknownExt:       "unrecognizable type of FITS extension",
	StatusUnknownRec:       "unrecognizable FITS record",
	StatusBadTform:         "illegal TFORM format code",
	StatusBadTformDtype:    "unsupported TFORM datatype code",
	StatusBadHDUNum:        "illegal HDU number",
	StatusBadColNum:        "column number < 1 or > tfields",
	StatusBadRowNum:        "bad first row number",
	StatusBadElemNum:       "bad first element number",
	StatusNotLogicalCol:    "column is not logical data type",
	StatusNotVariLen:       "not a variable length column",
	StatusBadI2C:           "bad int to string conversion",
	StatusBadF2C:           "bad float to string conversion",
	StatusBadIntKey:        "keyword value is not an integer",
	StatusBadLogicalKey:    "keyword value is not a logical",
	StatusBadFloatKey:      "keyword value is not a floating point",
	StatusBadDoubleKey:     "keyword value is not a double",
	StatusBadC2I:           "bad string to int conversion",
	StatusBadC2F:           "bad string to float conversion",
	StatusBadC2D:           "bad string to double conversion",
	StatusBadDatatype:      "illegal datatype code value",
	StatusNumOverflow:      "numerical overflow during type conversion",
}

// StatusText returns the description of a status code.
func StatusText(status int) string {
	if s, ok := statusText[status]; ok {
		return s
	}
	return fmt.Sprintf("unknown error status %d", status)
}

// isTypeStatus reports whether status describes a mismatch between the
// requested type and the HDU or column being accessed.
func isTypeStatus(status int) bool {
	switch status {
	case StatusNotBtable, StatusNotImage, StatusNotTable, StatusBadTformDtype,
		StatusNotLogicalCol, StatusBadDatatype:
		return true
	}
	return false
}

// ErrClosed is the cause of every error returned by a closed handle.
var ErrClosed = errors.New("file is closed")

// FitsError reports a failed FITS operation.
type FitsError struct {
	File    string // File name, if known
	Status  int    // Status code, 0 when the failure has no status
	Message string // Caller context
	Err     error  // Underlying cause, if any
}

func (e *FitsError) Error() string {
	var b strings.Builder
	b.WriteString("fits error")
	if e.File != "" {
		fmt.Fprintf(&b, " (%s)", e.File)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %s (%d)", StatusText(e.Status), e.Status)
	}
	if e.Message != "" {
		b.WriteString(" : ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *FitsError) Unwrap() error {
	return e.Err
}

// FitsTypeError reports that a file, HDU or column does not have the type
// an operation requires. errors.As finds both the FitsTypeError and the
// FitsError it wraps.
type FitsTypeError struct {
	Err *FitsError
}

// NewTypeError returns a FitsTypeError for callers that detect a type
// mismatch themselves.
func NewTypeError(file string, status int, message string) *FitsTypeError {
	return &FitsTypeError{Err: &FitsError{File: file, Status: status, Message: message}}
}

func (e *FitsTypeError) Error() string {
	return e.Err.Error()
}

func (e *FitsTypeError) Unwrap() error {
	return e.Err
}

// newError builds the error for status, choosing FitsTypeError for type
// mismatch statuses.
func newError(file string, status int, cause error, msg string) error {
	if cause != nil {
		if msg == "" {
			msg = cause.Error()
		} else {
			msg += ": " + cause.Error()
		}
	}
	e := &FitsError{File: file, Status: status, Message: msg, Err: cause}
	if isTypeStatus(status) {
		return &FitsTypeError{Err: e}
	}
	return e
}

// statusFor maps errors from the internal packages to status codes,
// returning fallback for anything unrecognized.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, card.ErrBadKeyword), errors.Is(err, card.ErrValueTooLong):
		return StatusBadKeychar
	case errors.Is(err, card.ErrBadFloat):
		return StatusBadF2C
	case errors.Is(err, card.ErrNoQuote), errors.Is(err, errBadContinue):
		return StatusNoQuote
	case errors.Is(err, errHeapRange):
		return StatusBadPcount
	case errors.Is(err, errUnknownExt):
		return StatusUnknownExt
	case errors.Is(err, errNotTable):
		return StatusNotTable
	case errors.Is(err, errNotBinary):
		return StatusNotBtable
	case errors.Is(err, errNotImage):
		return StatusNotImage
	case errors.Is(err, errNoTform):
		return StatusNoTform
	case errors.Is(err, errBadTfields):
		return StatusBadTfields
	case errors.Is(err, errNegRows):
		return StatusNegRows
	case errors.Is(err, errRowWidth):
		return StatusBadRowWidth
	case errors.Is(err, errRowRange):
		return StatusBadRowNum
	case errors.Is(err, errElemRange):
		return StatusBadElemNum
	case errors.Is(err, errNotVarLen):
		return StatusNotVariLen
	case errors.Is(err, errNotLogical):
		return StatusNotLogicalCol
	case errors.Is(err, errColNotFound):
		return StatusColNotFound
	case errors.Is(err, dtype.ErrOverflow):
		return StatusNumOverflow
	case errors.Is(err, dtype.ErrTypeMismatch):
		return StatusBadDatatype
	case errors.Is(err, dtype.ErrBadCode):
		return StatusBadTformDtype
	case errors.Is(err, dtype.ErrBadFormat):
		return StatusBadTform
	case errors.Is(err, block.ErrNotFITS):
		return StatusUnknownRec
	case errors.Is(err, block.ErrNoEnd):
		return StatusNoEnd
	case errors.Is(err, block.ErrTruncated), errors.Is(err, io.ErrUnexpectedEOF):
		return StatusEndOfFile
	case errors.Is(err, block.ErrBitpix):
		return StatusBadBitpix
	case errors.Is(err, block.ErrNaxis):
		return StatusBadNaxis
	}
	return fallback
}
