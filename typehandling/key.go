package typehandling

import (
	"cmp"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Key is an identifier of type K bound to the value type V.
//
// Keys with the same identifier and different value types are different
// keys, but a map still holds only one of them at a time.
type Key[K comparable, V any] struct {
	id K
}

// MakeKey returns the key for id with value type V.
func MakeKey[V any, K comparable](id K) Key[K, V] {
	return Key[K, V]{id: id}
}

// ID returns the identifier.
func (k Key[K, V]) ID() K {
	return k.id
}

// Type returns the value type.
func (k Key[K, V]) Type() reflect.Type {
	return reflect.TypeFor[V]()
}

// Equal reports whether other is a Key with the same identifier and the
// same value type.
func (k Key[K, V]) Equal(other any) bool {
	o, ok := other.(Key[K, V])
	return ok && o.id == k.id
}

// String formats the key as "id<type>".
func (k Key[K, V]) String() string {
	return fmt.Sprintf("%v<%v>", k.id, k.Type())
}

// Hash returns a hash of the identifier. Keys that differ only in value
// type hash alike.
func (k Key[K, V]) Hash() uint64 {
	return xxhash.Sum64String(fmt.Sprint(k.id))
}

// Less orders keys by identifier alone. It is not consistent with Equal:
// keys with the same identifier and different value types are unequal,
// yet neither is less than the other.
func Less[K cmp.Ordered, V, U any](a Key[K, V], b Key[K, U]) bool {
	return cmp.Less(a.id, b.id)
}
