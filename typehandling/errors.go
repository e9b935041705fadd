package typehandling

import "errors"

var (
	// ErrOutOfRange is wrapped by every OutOfRangeError.
	ErrOutOfRange = errors.New("key not found")
	// ErrUnsupportedOperation is returned by Storable methods that an
	// implementation chooses not to provide.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// OutOfRangeError reports a lookup of a key that is absent or bound to a
// value of another type. The two cases are not distinguished.
type OutOfRangeError struct {
	Key string // Key as formatted by Key.String
}

func (e *OutOfRangeError) Error() string {
	return "key not found: " + e.Key
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
