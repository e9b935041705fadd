package heteromaptest

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/robert-malhotra/go-afw/typehandling"
)

// SimpleStorable is the smallest useful Storable: it clones and prints
// but has no state. Every SimpleStorable equals every other, and any
// ComplexStorable.
type SimpleStorable struct {
	typehandling.StorableBase
}

func (*SimpleStorable) Clone() (typehandling.Storable, error) {
	return &SimpleStorable{}, nil
}

func (*SimpleStorable) ToString() (string, error) {
	return "Simplest possible representation", nil
}

func (*SimpleStorable) Equals(other typehandling.Storable) bool {
	switch other.(type) {
	case *SimpleStorable, *ComplexStorable:
		return true
	}
	return false
}

// ComplexStorable holds a number and supports every Storable operation.
// Its Equals is deliberately asymmetric with SimpleStorable's.
type ComplexStorable struct {
	typehandling.StorableBase
	Storage float64
}

// NewComplexStorable returns a ComplexStorable holding v.
func NewComplexStorable(v float64) *ComplexStorable {
	return &ComplexStorable{Storage: v}
}

func (c *ComplexStorable) Clone() (typehandling.Storable, error) {
	return NewComplexStorable(c.Storage), nil
}

func (c *ComplexStorable) ToString() (string, error) {
	return fmt.Sprintf("ComplexStorable(%f)", c.Storage), nil
}

func (c *ComplexStorable) Hash() (uint64, error) {
	return xxhash.Sum64(binary.BigEndian.AppendUint64(nil, math.Float64bits(c.Storage))), nil
}

func (c *ComplexStorable) Equals(other typehandling.Storable) bool {
	o, ok := other.(*ComplexStorable)
	return ok && o.Storage == c.Storage
}

// OpaqueStorable supports no optional operation, so it cannot be
// inserted by value.
type OpaqueStorable struct {
	typehandling.StorableBase
}
