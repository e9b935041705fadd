package typehandling

import (
	"cmp"
	"fmt"
	"math"

	"github.com/google/btree"
)

// sortedDegree is the B-tree degree of a SortedHeteroMap.
const sortedDegree = 16

type sortedEntry[K cmp.Ordered] struct {
	id    K
	value Value
}

// SortedHeteroMap is a MutableHeteroMap backed by a B-tree. Keys are
// returned in ascending order.
type SortedHeteroMap[K cmp.Ordered] struct {
	tree *btree.BTreeG[sortedEntry[K]]
}

var _ MutableHeteroMap[string] = (*SortedHeteroMap[string])(nil)

// NewSortedHeteroMap returns an empty map. The zero SortedHeteroMap is
// also empty and ready to use.
func NewSortedHeteroMap[K cmp.Ordered]() *SortedHeteroMap[K] {
	m := &SortedHeteroMap[K]{}
	m.entries()
	return m
}

// entries returns the tree, creating it on first use.
func (m *SortedHeteroMap[K]) entries() *btree.BTreeG[sortedEntry[K]] {
	if m.tree == nil {
		less := func(a, b sortedEntry[K]) bool { return cmp.Less(a.id, b.id) }
		m.tree = btree.NewG(sortedDegree, less)
	}
	return m.tree
}

func (m *SortedHeteroMap[K]) Size() int { return m.entries().Len() }
func (m *SortedHeteroMap[K]) Empty() bool { return m.entries().Len() == 0 }
func (m *SortedHeteroMap[K]) MaxSize() int { return math.MaxInt }

func (m *SortedHeteroMap[K]) Contains(id K) bool {
	return m.entries().Has(sortedEntry[K]{id: id})
}

func (m *SortedHeteroMap[K]) Keys() []K {
	keys := make([]K, 0, m.entries().Len())
	m.entries().Ascend(func(e sortedEntry[K]) bool {
		keys = append(keys, e.id)
		return true
	})
	return keys
}

func (m *SortedHeteroMap[K]) UnsafeLookup(id K) (Value, error) {
	e, ok := m.entries().Get(sortedEntry[K]{id: id})
	if !ok {
		return Value{}, &OutOfRangeError{Key: fmt.Sprint(id)}
	}
	return e.value, nil
}

func (m *SortedHeteroMap[K]) Clear() {
	m.entries().Clear(false)
}

func (m *SortedHeteroMap[K]) UnsafeInsert(id K, value Value) bool {
	if m.entries().Has(sortedEntry[K]{id: id}) {
		return false
	}
	m.entries().ReplaceOrInsert(sortedEntry[K]{id: id, value: value})
	return true
}

func (m *SortedHeteroMap[K]) UnsafeErase(id K) bool {
	_, ok := m.entries().Delete(sortedEntry[K]{id: id})
	return ok
}
