package typehandling

import "fmt"

// HeteroMap is the read-only surface of a heterogeneous map with
// identifiers of type K. Typed access goes through At, AtStorable,
// AtShared, ContainsKey and Count.
type HeteroMap[K comparable] interface {
	// Size returns the number of entries.
	Size() int
	// Empty reports whether the map has no entries.
	Empty() bool
	// MaxSize returns the largest number of entries the map can hold.
	MaxSize() int
	// Contains reports whether an entry of any type exists for id.
	Contains(id K) bool
	// Keys returns a snapshot of the identifiers in the map.
	Keys() []K
	// UnsafeLookup returns the entry for id without checking its type.
	UnsafeLookup(id K) (Value, error)
}

// MutableHeteroMap is a HeteroMap that can be modified. Typed
// modification goes through Insert, InsertStorable, InsertShared and
// Erase.
type MutableHeteroMap[K comparable] interface {
	HeteroMap[K]
	// Clear removes every entry.
	Clear()
	// UnsafeInsert adds an entry for id unless one exists, reporting
	// whether it did.
	UnsafeInsert(id K, value Value) bool
	// UnsafeErase removes the entry for id, reporting whether there was
	// one.
	UnsafeErase(id K) bool
}

func lookup[K comparable, V any](m HeteroMap[K], key Key[K, V]) (Value, error) {
	v, err := m.UnsafeLookup(key.ID())
	if err != nil || !holds[V](v) {
		return Value{}, &OutOfRangeError{Key: key.String()}
	}
	return v, nil
}

// At returns a pointer to the primitive value bound to key. Writing
// through the pointer updates the map.
func At[K comparable, V Primitive](m HeteroMap[K], key Key[K, V]) (*V, error) {
	v, err := lookup(m, key)
	if err != nil {
		return nil, err
	}
	return v.ref.(*V), nil
}

// AtStorable returns the map-owned object bound to key. V may be the
// object's concrete type or any interface it satisfies.
func AtStorable[K comparable, V Storable](m HeteroMap[K], key Key[K, V]) (V, error) {
	v, err := lookup(m, key)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.ref.(V), nil
}

// AtShared returns the shared object bound to key, which may be nil.
func AtShared[K comparable, V Storable](m HeteroMap[K], key Key[K, Shared[V]]) (V, error) {
	v, err := lookup(m, key)
	if err != nil {
		var zero V
		return zero, err
	}
	s, _ := v.ref.(V)
	return s, nil
}

// ContainsKey reports whether key's identifier is bound to a value of
// key's type.
func ContainsKey[K comparable, V any](m HeteroMap[K], key Key[K, V]) bool {
	if !m.Contains(key.ID()) {
		return false
	}
	v, err := m.UnsafeLookup(key.ID())
	return err == nil && holds[V](v)
}

// Count returns 1 if ContainsKey is true for key and 0 otherwise.
func Count[K comparable, V any](m HeteroMap[K], key Key[K, V]) int {
	if ContainsKey(m, key) {
		return 1
	}
	return 0
}

// Insert binds value to key unless the identifier already has an entry
// of any type. It reports whether the value was inserted.
func Insert[K comparable, V Primitive](m MutableHeteroMap[K], key Key[K, V], value V) bool {
	if m.Contains(key.ID()) {
		return false
	}
	return m.UnsafeInsert(key.ID(), ValueOf(value))
}

// InsertStorable binds a clone of value to key unless the identifier
// already has an entry. When the clone fails, or does not have type V,
// the map is left unchanged and the error is returned.
func InsertStorable[K comparable, V Storable](m MutableHeteroMap[K], key Key[K, V], value V) (bool, error) {
	if m.Contains(key.ID()) {
		return false, nil
	}
	if any(value) == nil {
		return false, fmt.Errorf("inserting %v: nil object", key)
	}
	clone, err := value.Clone()
	if err != nil {
		return false, fmt.Errorf("inserting %v: %w", key, err)
	}
	if _, ok := clone.(V); !ok {
		return false, fmt.Errorf("inserting %v: clone of %T has type %T", key, value, clone)
	}
	return m.UnsafeInsert(key.ID(), OwnedValue(clone)), nil
}

// InsertShared binds value itself to key unless the identifier already
// has an entry. The map and the caller share the object. A nil value is
// stored as such and matches any shared key.
func InsertShared[K comparable, V Storable](m MutableHeteroMap[K], key Key[K, Shared[V]], value V) bool {
	if m.Contains(key.ID()) {
		return false
	}
	return m.UnsafeInsert(key.ID(), SharedValue(value))
}

// Erase removes the entry for key's identifier if it holds a value of
// key's type. An entry of another type is left alone.
func Erase[K comparable, V any](m MutableHeteroMap[K], key Key[K, V]) bool {
	if !ContainsKey(m, key) {
		return false
	}
	return m.UnsafeErase(key.ID())
}
