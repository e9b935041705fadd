package fits

import "log/slog"

// Option configures a Fits handle.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	dataSum bool
	gzipLvl int
}

func defaultOptions() *options {
	return &options{
		logger:  slog.Default(),
		gzipLvl: -1,
	}
}

// WithLogger sets the logger used for warnings and debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDataSum makes the handle write a DATASUM card into every HDU it
// flushes.
func WithDataSum() Option {
	return func(o *options) {
		o.dataSum = true
	}
}

// WithGzipLevel sets the compression level used when the file name ends
// in ".gz" (1-9).
func WithGzipLevel(level int) Option {
	return func(o *options) {
		if level >= 1 && level <= 9 {
			o.gzipLvl = level
		}
	}
}
