package typehandling

import (
	"fmt"
	"math"
	"slices"
)

// SimpleHeteroMap is a MutableHeteroMap backed by a Go map. Keys are
// returned in insertion order.
type SimpleHeteroMap[K comparable] struct {
	entries map[K]Value
	order   []K
}

var _ MutableHeteroMap[string] = (*SimpleHeteroMap[string])(nil)

// NewSimpleHeteroMap returns an empty map. The zero SimpleHeteroMap is
// also empty and ready to use.
func NewSimpleHeteroMap[K comparable]() *SimpleHeteroMap[K] {
	return &SimpleHeteroMap[K]{entries: make(map[K]Value)}
}

func (m *SimpleHeteroMap[K]) Size() int { return len(m.entries) }
func (m *SimpleHeteroMap[K]) Empty() bool { return len(m.entries) == 0 }
func (m *SimpleHeteroMap[K]) MaxSize() int { return math.MaxInt }

func (m *SimpleHeteroMap[K]) Contains(id K) bool {
	_, ok := m.entries[id]
	return ok
}

func (m *SimpleHeteroMap[K]) Keys() []K {
	return slices.Clone(m.order)
}

func (m *SimpleHeteroMap[K]) UnsafeLookup(id K) (Value, error) {
	v, ok := m.entries[id]
	if !ok {
		return Value{}, &OutOfRangeError{Key: fmt.Sprint(id)}
	}
	return v, nil
}

func (m *SimpleHeteroMap[K]) Clear() {
	clear(m.entries)
	m.order = nil
}

func (m *SimpleHeteroMap[K]) UnsafeInsert(id K, value Value) bool {
	if _, ok := m.entries[id]; ok {
		return false
	}
	if m.entries == nil {
		m.entries = make(map[K]Value)
	}
	m.entries[id] = value
	m.order = append(m.order, id)
	return true
}

func (m *SimpleHeteroMap[K]) UnsafeErase(id K) bool {
	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == id })
	return true
}
