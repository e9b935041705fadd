package typehandling

import "fmt"

// Storable is an object that can be held in a heterogeneous map.
// Implementations are normally pointer types, so that objects returned
// by AtStorable and AtShared can be modified in place.
//
// Clone, ToString and Hash are optional: an implementation may return
// an error wrapping ErrUnsupportedOperation instead. Embedding
// StorableBase provides that behaviour for every method not overridden.
type Storable interface {
	// Clone returns a deep copy.
	Clone() (Storable, error)
	// ToString returns a text representation.
	ToString() (string, error)
	// Hash returns a hash consistent with Equals.
	Hash() (uint64, error)
	// Equals reports whether other is equal to the receiver.
	Equals(other Storable) bool
}

// StorableBase implements every Storable method as unsupported, and
// Equals as always false.
type StorableBase struct{}

func (StorableBase) Clone() (Storable, error) {
	return nil, fmt.Errorf("%w: cloning is not supported", ErrUnsupportedOperation)
}

func (StorableBase) ToString() (string, error) {
	return "", fmt.Errorf("%w: no string representation available", ErrUnsupportedOperation)
}

func (StorableBase) Hash() (uint64, error) {
	return 0, fmt.Errorf("%w: hashes are not supported", ErrUnsupportedOperation)
}

func (StorableBase) Equals(Storable) bool {
	return false
}

// Equal reports whether a and b are equal, as decided by a.Equals. Two
// nil objects are equal.
func Equal(a, b Storable) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// Format returns the text representation of s, or its type name in angle
// brackets when s has none.
func Format(s Storable) string {
	if s == nil {
		return "<nil>"
	}
	text, err := s.ToString()
	if err != nil {
		return fmt.Sprintf("<%T>", s)
	}
	return text
}
