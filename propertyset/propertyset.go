package propertyset

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrTypeMismatch = errors.New("property type mismatch")
)

// entry holds the values stored under one name as a slice of their type.
type entry struct {
	typ    reflect.Type
	values reflect.Value
}

func newEntry(t reflect.Type) *entry {
	return &entry{typ: t, values: reflect.MakeSlice(reflect.SliceOf(t), 0, 1)}
}

// elements returns the values to store for v: the elements of a slice,
// or v itself.
func elements(v any) (reflect.Type, []reflect.Value, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("%w: nil value", ErrTypeMismatch)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return rv.Type(), []reflect.Value{rv}, nil
	}
	out := make([]reflect.Value, rv.Len())
	for i := range out {
		out[i] = rv.Index(i)
	}
	return rv.Type().Elem(), out, nil
}

func (e *entry) add(name string, t reflect.Type, vals []reflect.Value) error {
	if t != e.typ {
		return fmt.Errorf("%w: %s holds %v, cannot add %v", ErrTypeMismatch, name, e.typ, t)
	}
	e.values = reflect.Append(e.values, vals...)
	return nil
}

// PropertySet is an unordered collection of named values.
type PropertySet struct {
	entries map[string]*entry
}

// New returns an empty PropertySet.
func New() *PropertySet {
	return &PropertySet{entries: make(map[string]*entry)}
}

// Names returns the names in the set, sorted.
func (s *PropertySet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of names in the set.
func (s *PropertySet) Len() int {
	return len(s.entries)
}

// Exists reports whether name has any values.
func (s *PropertySet) Exists(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// TypeOf returns the type of the values stored under name, or nil.
func (s *PropertySet) TypeOf(name string) reflect.Type {
	if e, ok := s.entries[name]; ok {
		return e.typ
	}
	return nil
}

// IsArray reports whether name holds more than one value.
func (s *PropertySet) IsArray(name string) bool {
	return s.ValueCount(name) > 1
}

// ValueCount returns the number of values stored under name.
func (s *PropertySet) ValueCount(name string) int {
	if e, ok := s.entries[name]; ok {
		return e.values.Len()
	}
	return 0
}

// Array returns a copy of the values stored under name as a slice of
// their type, or nil.
func (s *PropertySet) Array(name string) any {
	e, ok := s.entries[name]
	if !ok {
		return nil
	}
	out := reflect.MakeSlice(e.values.Type(), e.values.Len(), e.values.Len())
	reflect.Copy(out, e.values)
	return out.Interface()
}

// Add appends value to the values stored under name. A slice adds each
// of its elements. All values under one name must share a type.
func (s *PropertySet) Add(name string, value any) error {
	t, vals, err := elements(value)
	if err != nil {
		return err
	}
	e, ok := s.entries[name]
	if !ok {
		e = newEntry(t)
		s.entries[name] = e
	}
	return e.add(name, t, vals)
}

// Set replaces the values stored under name.
func (s *PropertySet) Set(name string, value any) error {
	t, vals, err := elements(value)
	if err != nil {
		return err
	}
	e := newEntry(t)
	if err := e.add(name, t, vals); err != nil {
		return err
	}
	s.entries[name] = e
	return nil
}

// Remove deletes name and its values.
func (s *PropertySet) Remove(name string) {
	delete(s.entries, name)
}

// Arrayer is implemented by PropertySet and PropertyList.
type Arrayer interface {
	Array(name string) any
}

// Get returns the last value stored under name.
func Get[T any](s Arrayer, name string) (T, error) {
	var zero T
	vals, err := GetArray[T](s, name)
	if err != nil {
		return zero, err
	}
	if len(vals) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return vals[len(vals)-1], nil
}

// GetArray returns all values stored under name.
func GetArray[T any](s Arrayer, name string) ([]T, error) {
	a := s.Array(name)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	vals, ok := a.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, name, a)
	}
	return vals, nil
}
