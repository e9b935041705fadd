// Package heteromaptest checks that a typehandling.MutableHeteroMap
// implementation satisfies the map contract.
//
// An implementation's tests call the suites with a constructor:
//
//	func TestMyMap(t *testing.T) {
//	    heteromaptest.RunHeteroMap(t, func() typehandling.MutableHeteroMap[int] {
//	        return NewMyMap[int]()
//	    })
//	    heteromaptest.RunMutableHeteroMap(t, func() typehandling.MutableHeteroMap[string] {
//	        return NewMyMap[string]()
//	    })
//	}
package heteromaptest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-afw/typehandling"
)

// Keys and values of the map checked by RunHeteroMap. Value2 is an int
// stored under a float64 key.
var (
	Key0 = typehandling.MakeKey[bool](0)
	Key1 = typehandling.MakeKey[int](1)
	Key2 = typehandling.MakeKey[float64](2)
	Key3 = typehandling.MakeKey[string](3)
	Key4 = typehandling.MakeKey[typehandling.Shared[*SimpleStorable]](4)
	Key5 = typehandling.MakeKey[*ComplexStorable](5)
)

const (
	Value0 = true
	Value1 = 42
	Value2 = Value1
	Value3 = "How many roads must a man walk down?"
)

// Value5 is the object inserted under Key5.
var Value5 = NewComplexStorable(-100.0)

// populate fills m with Key0..Key5.
func populate(t *testing.T, m typehandling.MutableHeteroMap[int]) typehandling.MutableHeteroMap[int] {
	t.Helper()
	require.True(t, typehandling.Insert(m, Key0, Value0))
	require.True(t, typehandling.Insert(m, Key1, Value1))
	require.True(t, typehandling.Insert(m, Key2, Value2))
	require.True(t, typehandling.Insert(m, Key3, Value3))
	require.True(t, typehandling.InsertShared(m, Key4, &SimpleStorable{}))
	ok, err := typehandling.InsertStorable(m, Key5, Value5)
	require.NoError(t, err)
	require.True(t, ok)
	return m
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var oe *typehandling.OutOfRangeError
	assert.ErrorAs(t, err, &oe)
	assert.ErrorIs(t, err, typehandling.ErrOutOfRange)
}

// RunHeteroMap checks the read-only surface of maps made by newMap,
// which must return empty maps.
func RunHeteroMap(t *testing.T, newMap func() typehandling.MutableHeteroMap[int]) {
	t.Run("At", func(t *testing.T) {
		m := populate(t, newMap())

		p0, err := typehandling.At(m, Key0)
		require.NoError(t, err)
		assert.Equal(t, Value0, *p0)
		*p0 = false
		p0, err = typehandling.At(m, Key0)
		require.NoError(t, err)
		assert.False(t, *p0)
		_, err = typehandling.At(m, typehandling.MakeKey[int](Key0.ID()))
		requireNotFound(t, err)

		p1, err := typehandling.At(m, Key1)
		require.NoError(t, err)
		assert.Equal(t, Value1, *p1)
		*p1++
		p1, err = typehandling.At(m, Key1)
		require.NoError(t, err)
		assert.Equal(t, Value1+1, *p1)
		_, err = typehandling.At(m, typehandling.MakeKey[bool](Key1.ID()))
		requireNotFound(t, err)

		p2, err := typehandling.At(m, Key2)
		require.NoError(t, err)
		assert.Equal(t, float64(Value2), *p2)
		*p2 = 0
		p2, err = typehandling.At(m, Key2)
		require.NoError(t, err)
		assert.Zero(t, *p2)
		_, err = typehandling.At(m, typehandling.MakeKey[int](Key2.ID()))
		requireNotFound(t, err)

		p3, err := typehandling.At(m, Key3)
		require.NoError(t, err)
		assert.Equal(t, Value3, *p3)
		*p3 += " Oops, wrong question."
		p3, err = typehandling.At(m, Key3)
		require.NoError(t, err)
		assert.Equal(t, Value3+" Oops, wrong question.", *p3)

		s4, err := typehandling.AtShared(m, Key4)
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(s4, &SimpleStorable{}))
		_, err = typehandling.AtStorable(m, typehandling.MakeKey[*SimpleStorable](Key4.ID()))
		requireNotFound(t, err)

		s5, err := typehandling.AtStorable(m, Key5)
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(s5, Value5))
		assert.NotSame(t, Value5, s5, "the map holds a clone")
		base, err := typehandling.AtStorable(m, typehandling.MakeKey[typehandling.Storable](Key5.ID()))
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(base, Value5))
		_, err = typehandling.AtStorable(m, typehandling.MakeKey[*SimpleStorable](Key5.ID()))
		requireNotFound(t, err)
		_, err = typehandling.AtShared(m, typehandling.MakeKey[typehandling.Shared[*ComplexStorable]](Key5.ID()))
		requireNotFound(t, err)

		*s5 = *NewComplexStorable(5.0)
		s5, err = typehandling.AtStorable(m, Key5)
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(s5, NewComplexStorable(5.0)))

		_, err = typehandling.At(m, typehandling.MakeKey[int](6))
		requireNotFound(t, err)
	})

	t.Run("Size", func(t *testing.T) {
		m := populate(t, newMap())
		assert.Equal(t, 6, m.Size())
		assert.False(t, m.Empty())
		assert.GreaterOrEqual(t, m.MaxSize(), m.Size())
	})

	t.Run("WeakContains", func(t *testing.T) {
		m := populate(t, newMap())
		for id := range 6 {
			assert.True(t, m.Contains(id), "id %d", id)
		}
		assert.False(t, m.Contains(6))
	})

	t.Run("Contains", func(t *testing.T) {
		m := populate(t, newMap())

		assert.True(t, typehandling.ContainsKey(m, Key0))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[int](Key0.ID())))
		assert.True(t, typehandling.ContainsKey(m, Key1))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[bool](Key1.ID())))
		assert.True(t, typehandling.ContainsKey(m, Key2))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[int](Key2.ID())))
		assert.True(t, typehandling.ContainsKey(m, Key3))
		assert.True(t, typehandling.ContainsKey(m, Key4))
		assert.True(t, typehandling.ContainsKey(m, typehandling.MakeKey[typehandling.Shared[typehandling.Storable]](Key4.ID())))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[*SimpleStorable](Key4.ID())))
		assert.True(t, typehandling.ContainsKey(m, Key5))
		assert.True(t, typehandling.ContainsKey(m, typehandling.MakeKey[typehandling.Storable](Key5.ID())))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[*SimpleStorable](Key5.ID())))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[string](6)))

		assert.Equal(t, 1, typehandling.Count(m, Key3))
		assert.Equal(t, 0, typehandling.Count(m, typehandling.MakeKey[float32](Key3.ID())))
	})

	t.Run("Keys", func(t *testing.T) {
		m := populate(t, newMap())
		keys := m.Keys()
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, keys)

		// The snapshot does not follow later changes.
		typehandling.Erase(m, Key0)
		assert.Len(t, keys, 6)
	})
}

// RunMutableHeteroMap checks the mutable surface of maps made by newMap,
// which must return empty maps.
func RunMutableHeteroMap(t *testing.T, newMap func() typehandling.MutableHeteroMap[string]) {
	t.Run("MutableSize", func(t *testing.T) {
		m := newMap()
		require.Zero(t, m.Size())
		require.True(t, m.Empty())

		typehandling.Insert(m, typehandling.MakeKey[int]("Negative One"), -1)
		assert.Equal(t, 1, m.Size())
		assert.False(t, m.Empty())

		typehandling.Erase(m, typehandling.MakeKey[int]("Negative One"))
		assert.Zero(t, m.Size())
		assert.True(t, m.Empty())
	})

	t.Run("ClearIdempotent", func(t *testing.T) {
		m := newMap()
		require.True(t, m.Empty())
		m.Clear()
		assert.True(t, m.Empty())
		m.Clear()
		assert.True(t, m.Empty())
	})

	t.Run("Clear", func(t *testing.T) {
		m := newMap()
		typehandling.Insert(m, typehandling.MakeKey[int]("prime"), 3)
		typehandling.Insert(m, typehandling.MakeKey[string]("foo"), "bar")
		require.False(t, m.Empty())

		m.Clear()
		assert.True(t, m.Empty())
		assert.Empty(t, m.Keys())
		assert.False(t, m.Contains("prime"))
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[int]("prime"), 5))
	})

	t.Run("InsertInt", func(t *testing.T) {
		m := newMap()
		cube := typehandling.MakeKey[int]("cube")
		assert.True(t, typehandling.Insert(m, cube, 27))
		assert.False(t, typehandling.Insert(m, cube, 0))

		assert.Equal(t, 1, m.Size())
		assert.True(t, m.Contains("cube"))
		assert.True(t, typehandling.ContainsKey(m, cube))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[float64]("cube")))
		p, err := typehandling.At(m, cube)
		require.NoError(t, err)
		assert.Equal(t, 27, *p)

		*p = 0
		p, err = typehandling.At(m, cube)
		require.NoError(t, err)
		assert.Zero(t, *p)
	})

	t.Run("InsertString", func(t *testing.T) {
		m := newMap()
		answer := typehandling.MakeKey[string]("Ultimate answer")
		ok := typehandling.MakeKey[string]("OK")
		assert.True(t, typehandling.Insert(m, answer, "Something philosophical"))
		assert.True(t, typehandling.Insert(m, ok, "Ook!"))
		text := "I have a most elegant and wonderful proof, but this string is too small to contain it."
		assert.False(t, typehandling.Insert(m, answer, text))

		assert.Equal(t, 2, m.Size())
		p, err := typehandling.At(m, answer)
		require.NoError(t, err)
		assert.Equal(t, "Something philosophical", *p)
		p, err = typehandling.At(m, ok)
		require.NoError(t, err)
		assert.Equal(t, "Ook!", *p)
	})

	t.Run("InsertStorable", func(t *testing.T) {
		m := newMap()
		foo := typehandling.MakeKey[typehandling.Storable]("foo")
		bar := typehandling.MakeKey[typehandling.Shared[*ComplexStorable]]("bar")

		object := NewComplexStorable(3.1416)
		inserted, err := typehandling.InsertStorable(m, foo, typehandling.Storable(object))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.True(t, typehandling.InsertShared(m, bar, NewComplexStorable(3.141)))

		inserted, err = typehandling.InsertStorable(m, foo, typehandling.Storable(&SimpleStorable{}))
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.False(t, typehandling.InsertShared(m,
			typehandling.MakeKey[typehandling.Shared[*SimpleStorable]]("bar"), &SimpleStorable{}))

		assert.Equal(t, 2, m.Size())
		assert.True(t, typehandling.ContainsKey(m, foo))
		assert.True(t, typehandling.ContainsKey(m, bar))

		stored, err := typehandling.AtStorable(m, foo)
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(object, stored))
		object.Storage = 1.4
		assert.False(t, typehandling.Equal(object, stored), "the map keeps its own copy")

		shared, err := typehandling.AtShared(m, bar)
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(shared, NewComplexStorable(3.141)))
	})

	t.Run("SharedSemantics", func(t *testing.T) {
		m := newMap()
		key := typehandling.MakeKey[typehandling.Shared[*ComplexStorable]]("shared")
		object := NewComplexStorable(1)
		require.True(t, typehandling.InsertShared(m, key, object))

		object.Storage = 2
		got, err := typehandling.AtShared(m, key)
		require.NoError(t, err)
		assert.Same(t, object, got)
		assert.Equal(t, 2.0, got.Storage)
	})

	t.Run("NilShared", func(t *testing.T) {
		m := newMap()
		key := typehandling.MakeKey[typehandling.Shared[typehandling.Storable]]("nothing")
		require.True(t, typehandling.InsertShared(m, key, nil))

		assert.True(t, typehandling.ContainsKey(m, key))
		assert.Equal(t, 1, typehandling.Count(m, key))
		narrow := typehandling.MakeKey[typehandling.Shared[*ComplexStorable]]("nothing")
		assert.True(t, typehandling.ContainsKey(m, narrow))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[typehandling.Storable]("nothing")))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[int]("nothing")))

		got, err := typehandling.AtShared(m, key)
		require.NoError(t, err)
		assert.Nil(t, got)
		typed, err := typehandling.AtShared(m, narrow)
		require.NoError(t, err)
		assert.Nil(t, typed)

		assert.False(t, typehandling.Erase(m, typehandling.MakeKey[string]("nothing")))
		assert.True(t, typehandling.Erase(m, key))
		assert.True(t, m.Empty())
	})

	t.Run("InsertNilStorable", func(t *testing.T) {
		m := newMap()
		inserted, err := typehandling.InsertStorable(m, typehandling.MakeKey[typehandling.Storable]("nothing"), nil)
		assert.Error(t, err)
		assert.False(t, inserted)
		assert.True(t, m.Empty())
	})

	t.Run("InsertUncloneable", func(t *testing.T) {
		m := newMap()
		inserted, err := typehandling.InsertStorable(m, typehandling.MakeKey[*OpaqueStorable]("opaque"), &OpaqueStorable{})
		assert.ErrorIs(t, err, typehandling.ErrUnsupportedOperation)
		assert.False(t, inserted)
		assert.True(t, m.Empty(), "a failed insert leaves the map unchanged")
	})

	t.Run("InterleavedInserts", func(t *testing.T) {
		m := newMap()
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[int]("key1"), 3))
		assert.False(t, typehandling.Insert(m, typehandling.MakeKey[float64]("key1"), 1.0))
		inserted, err := typehandling.InsertStorable(m, typehandling.MakeKey[typehandling.Storable]("key2"), typehandling.Storable(&SimpleStorable{}))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[string]("key3"), "Test value"))
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[string]("key4"), "This is some text"))
		message := "Unknown value for key5."
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[string]("key5"), message))
		assert.False(t, typehandling.Insert(m, typehandling.MakeKey[int]("key3"), 20))
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[float64]("key6"), 42))

		assert.Equal(t, 6, m.Size())
		p1, err := typehandling.At(m, typehandling.MakeKey[int]("key1"))
		require.NoError(t, err)
		assert.Equal(t, 3, *p1)
		p6, err := typehandling.At(m, typehandling.MakeKey[float64]("key6"))
		require.NoError(t, err)
		assert.Equal(t, 42.0, *p6)
		s2, err := typehandling.AtStorable(m, typehandling.MakeKey[typehandling.Storable]("key2"))
		require.NoError(t, err)
		assert.True(t, typehandling.Equal(s2, &SimpleStorable{}))
		for key, want := range map[string]string{"key3": "Test value", "key4": "This is some text", "key5": message} {
			p, err := typehandling.At(m, typehandling.MakeKey[string](key))
			require.NoError(t, err)
			assert.Equal(t, want, *p)
		}
	})

	t.Run("Erase", func(t *testing.T) {
		m := newMap()
		typehandling.Insert(m, typehandling.MakeKey[int]("Ultimate answer"), 42)
		require.Equal(t, 1, m.Size())

		assert.False(t, typehandling.Erase(m, typehandling.MakeKey[string]("Ultimate answer")))
		assert.Equal(t, 1, m.Size())
		assert.True(t, typehandling.Erase(m, typehandling.MakeKey[int]("Ultimate answer")))
		assert.Zero(t, m.Size())
		assert.False(t, typehandling.Erase(m, typehandling.MakeKey[int]("Ultimate answer")))
	})

	t.Run("InsertEraseInsert", func(t *testing.T) {
		m := newMap()
		answer := "Ultimate answer"
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[int](answer), 42))
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[int]("OK"), 200))
		assert.True(t, typehandling.Erase(m, typehandling.MakeKey[int](answer)))
		assert.True(t, typehandling.Insert(m, typehandling.MakeKey[float64](answer), 3.1415927))

		assert.Equal(t, 2, m.Size())
		assert.True(t, m.Contains("OK"))
		assert.False(t, typehandling.ContainsKey(m, typehandling.MakeKey[int](answer)))
		assert.True(t, typehandling.ContainsKey(m, typehandling.MakeKey[float64](answer)))
		p, err := typehandling.At(m, typehandling.MakeKey[float64](answer))
		require.NoError(t, err)
		assert.Equal(t, 3.1415927, *p)
	})
}
