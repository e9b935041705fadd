package typehandling

import "fmt"

// Primitive is the set of non-object value types a map can hold.
type Primitive interface {
	bool | int | float32 | float64 | string
}

// Kind identifies which of the value alternatives a Value holds.
type Kind uint8

// Value kinds.
const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat32
	KindFloat64
	KindString
	KindStorable // Owned by the map
	KindShared   // Shared with the caller
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindStorable:
		return "storable"
	case KindShared:
		return "shared storable"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a type-erased map value. Primitive values are held by
// reference, so every copy of a Value refers to the same storage and
// updates made through At are seen by later lookups.
type Value struct {
	kind Kind
	ref  any // *bool, *int, *float32, *float64, *string, or Storable
}

// ValueOf returns a Value holding a fresh copy of v.
func ValueOf[V Primitive](v V) Value {
	p := new(V)
	*p = v
	var kind Kind
	switch any(v).(type) {
	case bool:
		kind = KindBool
	case int:
		kind = KindInt
	case float32:
		kind = KindFloat32
	case float64:
		kind = KindFloat64
	case string:
		kind = KindString
	}
	return Value{kind: kind, ref: p}
}

// OwnedValue returns a Value holding s as a map-owned object. s should
// already be a private copy.
func OwnedValue(s Storable) Value {
	return Value{kind: KindStorable, ref: s}
}

// SharedValue returns a Value holding s shared with its other holders.
func SharedValue(s Storable) Value {
	return Value{kind: KindShared, ref: s}
}

// Kind returns the kind of value held.
func (v Value) Kind() Kind {
	return v.kind
}

// Interface returns the held value: the primitive itself, or the
// Storable object.
func (v Value) Interface() any {
	switch p := v.ref.(type) {
	case *bool:
		return *p
	case *int:
		return *p
	case *float32:
		return *p
	case *float64:
		return *p
	case *string:
		return *p
	}
	return v.ref
}

// holds reports whether v can be accessed with a key of value type V.
func holds[V any](v Value) bool {
	switch v.kind {
	case KindStorable:
		_, ok := v.ref.(V)
		return ok
	case KindShared:
		var zero V
		m, ok := any(zero).(sharedMarker)
		if !ok {
			return false
		}
		// A nil shared object matches every shared key.
		s, _ := v.ref.(Storable)
		return s == nil || m.accepts(s)
	case KindInvalid:
		return false
	}
	_, ok := v.ref.(*V)
	return ok
}

// Shared is the value type of keys for shared Storable objects of type
// T. T may be a concrete type or an interface that the stored object
// satisfies.
type Shared[T Storable] struct{}

type sharedMarker interface {
	accepts(s Storable) bool
}

func (Shared[T]) accepts(s Storable) bool {
	_, ok := s.(T)
	return ok
}
