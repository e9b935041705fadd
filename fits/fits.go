package fits

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/robert-malhotra/go-afw/internal/block"
	"github.com/robert-malhotra/go-afw/internal/compress"
)

// Fits is a handle to one FITS file. The whole file is held in memory;
// modifications reach the disk on Flush or Close.
//
// A handle carries a status. The first failing operation sets it and
// every later operation returns the same error without doing anything,
// until ClearStatus is called. Callers may check each returned error, or
// ignore them and call CheckStatus once at a convenient point.
type Fits struct {
	filename  string
	file      *os.File
	writeable bool
	closed    bool
	dirty     bool

	status int
	err    error

	hdus  []*hdu
	cur   int
	codec compress.Codec
	opts  *options
}

func newFits(filename string, writeable bool, opts []Option) *Fits {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Fits{filename: filename, writeable: writeable, opts: o}
}

// CreateFile creates a new FITS file. A leading '!' in filename allows an
// existing file to be overwritten. Names ending in ".gz" or ".zst" are
// written compressed.
//
// The handle is returned even when creation fails; its status then
// holds the failure.
func CreateFile(filename string, opts ...Option) (*Fits, error) {
	name, overwrite := strings.CutPrefix(filename, "!")
	f := newFits(name, true, opts)

	flag := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if overwrite {
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return f, f.fail(StatusFileNotCreated, nil, "file already exists (prefix the name with '!' to overwrite)")
		}
		return f, f.fail(StatusFileNotCreated, err, "")
	}
	f.file = file
	f.codec = compress.ForName(name)
	if _, ok := f.codec.(*compress.Gzip); ok && f.opts.gzipLvl > 0 {
		f.codec = compress.NewGzip(f.opts.gzipLvl)
	}
	f.dirty = true
	f.opts.logger.Debug("created fits file", slog.String("file", name))
	return f, nil
}

// OpenFile opens and parses an existing FITS file. Compressed files are
// recognized by their magic bytes. The handle is returned even when
// opening fails; its status then holds the failure.
func OpenFile(filename string, writeable bool, opts ...Option) (*Fits, error) {
	f := newFits(filename, writeable, opts)

	flag := os.O_RDONLY
	if writeable {
		flag = os.O_RDWR
	}
	file, err := os.OpenFile(filename, flag, 0)
	if err != nil {
		return f, f.fail(StatusFileNotOpened, err, "")
	}
	f.file = file

	data, err := io.ReadAll(file)
	if err != nil {
		return f, f.fail(StatusReadError, err, "")
	}
	if codec := compress.Detect(data); codec != nil {
		if data, err = codec.Decode(data); err != nil {
			return f, f.fail(StatusReadError, err, "decompressing %s", codec.Name())
		}
		f.codec = codec
	}
	if len(data) == 0 {
		return f, nil
	}

	units, err := block.Split(data)
	if err != nil {
		return f, f.fail(statusFor(err, StatusUnknownRec), err, "")
	}
	for i, u := range units {
		h, err := loadHDU(u)
		if err != nil {
			return f, f.fail(statusFor(err, StatusUnknownRec), err, "HDU %d", i)
		}
		f.hdus = append(f.hdus, h)
	}

	f.opts.logger.Debug("opened fits file",
		slog.String("file", filename),
		slog.Int("hdus", len(f.hdus)),
		slog.Bool("writeable", writeable))
	return f, nil
}

// FileName returns the name of the file.
func (f *Fits) FileName() string {
	return f.filename
}

// Status returns the current status code.
func (f *Fits) Status() int {
	return f.status
}

// CheckStatus returns the stored error, if any, prefixed with context.
// The status is left set.
func (f *Fits) CheckStatus(context string) error {
	if f.status == 0 {
		return nil
	}
	if context == "" {
		return f.err
	}
	var fe *FitsError
	if !errors.As(f.err, &fe) {
		return newError(f.filename, f.status, f.err, context)
	}
	msg := context
	if fe.Message != "" {
		msg += ": " + fe.Message
	}
	return newError(fe.File, fe.Status, nil, msg)
}

// ClearStatus resets the status so that operations run again.
func (f *Fits) ClearStatus() {
	f.status = 0
	f.err = nil
}

// fail records a failure and returns its error. Only the first failure
// is kept as the status.
func (f *Fits) fail(status int, cause error, format string, args ...any) error {
	err := newError(f.filename, status, cause, fmt.Sprintf(format, args...))
	if f.status == 0 {
		f.status = status
		f.err = err
	}
	return err
}

// check returns the error that prevents an operation from running.
func (f *Fits) check() error {
	if f.closed || (f.file == nil && f.status == 0) {
		return newError(f.filename, StatusBadFileptr, ErrClosed, "")
	}
	if f.status != 0 {
		return f.err
	}
	return nil
}

// checkWrite is check for operations that modify the file.
func (f *Fits) checkWrite() error {
	if err := f.check(); err != nil {
		return err
	}
	if !f.writeable {
		return f.fail(StatusReadOnlyFile, nil, "")
	}
	return nil
}

// Flush writes pending modifications to disk.
func (f *Fits) Flush() error {
	if err := f.check(); err != nil {
		return err
	}
	if !f.writeable || !f.dirty {
		return nil
	}
	if len(f.hdus) == 0 {
		f.hdus = append(f.hdus, newPrimary())
	}

	units := make([]block.Unit, len(f.hdus))
	for i, h := range f.hdus {
		u, err := h.unit(f.opts.dataSum)
		if err != nil {
			return f.fail(statusFor(err, StatusWriteError), err, "HDU %d", i)
		}
		units[i] = u
	}
	data, err := block.Encode(units)
	if err != nil {
		return f.fail(StatusWriteError, err, "")
	}
	if f.codec != nil {
		if data, err = f.codec.Encode(data); err != nil {
			return f.fail(StatusWriteError, err, "compressing %s", f.codec.Name())
		}
	}

	if err := f.file.Truncate(0); err != nil {
		return f.fail(StatusWriteError, err, "")
	}
	if _, err := f.file.WriteAt(data, 0); err != nil {
		return f.fail(StatusWriteError, err, "")
	}
	f.dirty = false
	f.opts.logger.Debug("flushed fits file",
		slog.String("file", f.filename),
		slog.Int("hdus", len(f.hdus)),
		slog.Int("bytes", len(data)))
	return nil
}

// Close flushes modifications and releases the file. Calling Close again
// does nothing. While the status holds a failure, Close still releases
// the file but discards pending modifications and returns the stored
// error.
func (f *Fits) Close() error {
	if f.closed {
		return nil
	}

	var err error
	switch {
	case f.status != 0:
		err = f.err
		if f.file != nil && f.dirty {
			f.opts.logger.Warn("discarding unwritten changes",
				slog.String("file", f.filename),
				slog.Int("status", f.status))
		}
	case f.file != nil:
		err = f.Flush()
	}
	f.closed = true
	f.hdus = nil

	if f.file == nil {
		return err
	}
	if cerr := f.file.Close(); cerr != nil && err == nil {
		err = f.fail(StatusFileNotClosed, cerr, "")
	}
	f.opts.logger.Debug("closed fits file", slog.String("file", f.filename))
	return err
}

// touch marks the in-memory image as modified.
func (f *Fits) touch() {
	f.dirty = true
}
