package typehandling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-afw/typehandling"
	"github.com/robert-malhotra/go-afw/typehandling/heteromaptest"
)

func TestStorableBase(t *testing.T) {
	var s typehandling.Storable = &heteromaptest.OpaqueStorable{}

	_, err := s.Clone()
	assert.ErrorIs(t, err, typehandling.ErrUnsupportedOperation)
	_, err = s.ToString()
	assert.ErrorIs(t, err, typehandling.ErrUnsupportedOperation)
	_, err = s.Hash()
	assert.ErrorIs(t, err, typehandling.ErrUnsupportedOperation)
	assert.False(t, s.Equals(s))
}

func TestStorableEqual(t *testing.T) {
	simple := &heteromaptest.SimpleStorable{}
	complex1 := heteromaptest.NewComplexStorable(1)

	assert.True(t, typehandling.Equal(nil, nil))
	assert.False(t, typehandling.Equal(simple, nil))
	assert.False(t, typehandling.Equal(nil, simple))
	assert.True(t, typehandling.Equal(simple, &heteromaptest.SimpleStorable{}))
	assert.True(t, typehandling.Equal(complex1, heteromaptest.NewComplexStorable(1)))
	assert.False(t, typehandling.Equal(complex1, heteromaptest.NewComplexStorable(2)))

	// Equality is decided by the left operand.
	assert.True(t, typehandling.Equal(simple, complex1))
	assert.False(t, typehandling.Equal(complex1, simple))
}

func TestStorableHash(t *testing.T) {
	a, err := heteromaptest.NewComplexStorable(2.5).Hash()
	require.NoError(t, err)
	b, err := heteromaptest.NewComplexStorable(2.5).Hash()
	require.NoError(t, err)
	c, err := heteromaptest.NewComplexStorable(-2.5).Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestStorableFormat(t *testing.T) {
	assert.Equal(t, "Simplest possible representation", typehandling.Format(&heteromaptest.SimpleStorable{}))
	assert.Equal(t, "ComplexStorable(1.500000)", typehandling.Format(heteromaptest.NewComplexStorable(1.5)))
	assert.Equal(t, "<*heteromaptest.OpaqueStorable>", typehandling.Format(&heteromaptest.OpaqueStorable{}))
	assert.Equal(t, "<nil>", typehandling.Format(nil))
}

func TestStorableClone(t *testing.T) {
	orig := heteromaptest.NewComplexStorable(9)
	clone, err := orig.Clone()
	require.NoError(t, err)
	assert.True(t, typehandling.Equal(orig, clone))
	assert.NotSame(t, orig, clone)

	orig.Storage = 10
	assert.False(t, typehandling.Equal(orig, clone))
}
