package fits

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-afw/internal/block"
	"github.com/robert-malhotra/go-afw/internal/dtype"
)

func TestMakeColumnFormat(t *testing.T) {
	assert.Equal(t, "1J", MakeColumnFormat[int32](1))
	assert.Equal(t, "3E", MakeColumnFormat[float32](3))
	assert.Equal(t, "20A", MakeColumnFormat[string](20))
	assert.Equal(t, "1PD(12)", MakeColumnFormat[float64](-12))
	assert.Equal(t, "1PK", MakeColumnFormat[int64](0))
	assert.Equal(t, "1X", MakeColumnFormat[bool](1))
	assert.Equal(t, "2S", MakeColumnFormat[int8](2))
	assert.Equal(t, "1U", MakeColumnFormat[uint16](1))
	assert.Equal(t, "1V", MakeColumnFormat[uint32](1))
	assert.Equal(t, "1W", MakeColumnFormat[uint64](1))
	assert.Equal(t, "1B", MakeColumnFormat[uint8](1))
	assert.Equal(t, "1PM(4)", MakeColumnFormat[complex128](-4))
	assert.Equal(t, "1D", MakeColumnFormat[Angle](1))
}

func scalarRoundTrip[T Element](t *testing.T, f *Fits, name string, values ...T) {
	t.Helper()
	col, err := AddColumn[T](f, name, 1, "")
	require.NoError(t, err)
	for row, v := range values {
		require.NoError(t, WriteTableScalar(f, int64(row), col, v))
	}
	for row, v := range values {
		got, err := ReadTableScalar[T](f, int64(row), col)
		require.NoError(t, err)
		assert.Equal(t, v, got, "%s row %d", name, row)
	}
}

func TestTableScalarTypes(t *testing.T) {
	f, path := newFile(t, "scalars.fits")
	require.NoError(t, f.CreateTable(0, nil, nil, "SCALARS"))

	scalarRoundTrip(t, f, "bool", true, false)
	scalarRoundTrip(t, f, "int8", int8(math.MinInt8), int8(math.MaxInt8))
	scalarRoundTrip(t, f, "uint8", uint8(0), uint8(math.MaxUint8))
	scalarRoundTrip(t, f, "int16", int16(math.MinInt16), int16(math.MaxInt16))
	scalarRoundTrip(t, f, "uint16", uint16(0), uint16(math.MaxUint16))
	scalarRoundTrip(t, f, "int32", int32(math.MinInt32), int32(math.MaxInt32))
	scalarRoundTrip(t, f, "uint32", uint32(0), uint32(math.MaxUint32))
	scalarRoundTrip(t, f, "int64", int64(math.MinInt64), int64(math.MaxInt64))
	scalarRoundTrip(t, f, "uint64", uint64(0), uint64(math.MaxUint64))
	scalarRoundTrip(t, f, "float32", float32(-1.5), float32(math.MaxFloat32))
	scalarRoundTrip(t, f, "float64", math.Pi, -math.SmallestNonzeroFloat64)
	scalarRoundTrip(t, f, "complex64", complex64(complex(1, -1)), complex64(0))
	scalarRoundTrip(t, f, "complex128", complex(math.E, math.Pi), complex(-1, 0))
	scalarRoundTrip(t, f, "angle", Angle(math.Pi/2), Angle(-math.Pi))

	// Unsigned and signed-byte columns are stored with a zero offset.
	for col, want := range map[int]string{1: "-128", 4: "32768", 6: "2147483648", 8: "9223372036854775808"} {
		zero, err := ReadKey[string](f, columnKey("TZERO", col))
		require.NoError(t, err)
		assert.Equal(t, want, zero, "TZERO%d", col+1)
	}
	tform, err := ReadKey[string](f, "TFORM5")
	require.NoError(t, err)
	assert.Equal(t, "1I", tform, "unsigned columns store the signed code")

	g := reopen(t, f, path, false)
	require.NoError(t, g.SetHDUByName("scalars"))
	n, err := g.CountRows()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	u, err := ReadTableScalar[uint64](g, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)
	i, err := ReadTableScalar[int8](g, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int8(math.MinInt8), i)
}

func TestFixedArrayColumns(t *testing.T) {
	f, path := newFile(t, "fixed.fits")
	require.NoError(t, f.CreateTable(2,
		[]string{"flux", "name", "flags", "mask"},
		[]string{"3E", "8A", "2L", "10X"}, "CAT"))

	require.NoError(t, WriteTableArray(f, 0, 0, []float32{1, 2, 3}))
	require.NoError(t, WriteTableArray(f, 1, 0, []float32{4}))
	require.NoError(t, WriteTableScalar(f, 0, 1, "alpha"))
	require.NoError(t, WriteTableScalar(f, 1, 1, "betagamm"))
	require.NoError(t, WriteTableArray(f, 0, 2, []bool{true, false}))
	mask := []bool{true, false, true, true, false, false, false, false, true, true}
	require.NoError(t, WriteTableArray(f, 1, 3, mask))

	g := reopen(t, f, path, false)
	require.NoError(t, g.SetHDU(1))

	flux := make([]float32, 3)
	require.NoError(t, ReadTableArray(g, 0, 0, flux))
	assert.Equal(t, []float32{1, 2, 3}, flux)
	require.NoError(t, ReadTableArray(g, 1, 0, flux))
	assert.Equal(t, []float32{4, 0, 0}, flux)

	// Values convert to wider types on read.
	wide := make([]float64, 2)
	require.NoError(t, ReadTableArray(g, 0, 0, wide))
	assert.Equal(t, []float64{1, 2}, wide)

	name, err := ReadTableScalar[string](g, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name)
	name, err = ReadTableScalar[string](g, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "betagamm", name)

	flags := make([]bool, 2)
	require.NoError(t, ReadTableArray(g, 0, 2, flags))
	assert.Equal(t, []bool{true, false}, flags)
	got := make([]bool, 10)
	require.NoError(t, ReadTableArray(g, 1, 3, got))
	assert.Equal(t, mask, got)

	size, err := g.GetTableArraySize(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
	cols, err := g.Columns()
	require.NoError(t, err)
	assert.Equal(t, ColumnInfo{Name: "name", Format: "8A", Repeat: 8}, cols[1])
	idx, err := g.FindColumn("FLAGS")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestVariableLengthColumns(t *testing.T) {
	f, path := newFile(t, "varlen.fits")
	require.NoError(t, f.CreateTable(0,
		[]string{"counts", "spectrum", "label"},
		[]string{MakeColumnFormat[int32](0), "1QD(5)", MakeColumnFormat[string](-16)}, ""))

	require.NoError(t, WriteTableArray(f, 0, 0, []int32{1, 2, 3}))
	require.NoError(t, WriteTableArray(f, 1, 0, []int32{}))
	require.NoError(t, WriteTableArray(f, 2, 0, []int32{7, 8, 9, 10, 11, 12}))
	// Rewriting a cell with more elements moves it within the heap.
	require.NoError(t, WriteTableArray(f, 0, 0, []int32{1, 2, 3, 4, 5}))
	require.NoError(t, WriteTableArray(f, 1, 1, []float64{0.5, 1.5}))
	require.NoError(t, WriteTableScalar(f, 2, 2, "variable text"))

	g := reopen(t, f, path, true)
	require.NoError(t, g.SetHDU(1))
	rows, err := g.CountRows()
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)

	for row, want := range [][]int32{{1, 2, 3, 4, 5}, {}, {7, 8, 9, 10, 11, 12}} {
		n, err := g.GetTableRowArraySize(int64(row), 0)
		require.NoError(t, err)
		require.Equal(t, int64(len(want)), n)
		got := make([]int32, n)
		require.NoError(t, ReadTableArray(g, int64(row), 0, got))
		assert.Equal(t, want, got)
	}

	spectrum := make([]float64, 2)
	require.NoError(t, ReadTableArray(g, 1, 1, spectrum))
	assert.Equal(t, []float64{0.5, 1.5}, spectrum)
	label, err := ReadTableScalar[string](g, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "variable text", label)

	size, err := g.GetTableArraySize(0)
	require.NoError(t, err)
	assert.Zero(t, size, "no declared maximum")
	size, err = g.GetTableArraySize(1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	info, err := g.Info()
	require.NoError(t, err)
	assert.Positive(t, info.HeapSize)
	assert.True(t, info.Columns[0].VarLen)

	// More elements than stored are refused.
	_, err = ReadTableScalar[int32](g, 1, 0)
	requireStatus(t, err, StatusBadElemNum)
	g.ClearStatus()

	// The declared maximum is enforced.
	err = WriteTableArray(g, 0, 1, make([]float64, 6))
	requireStatus(t, err, StatusBadElemNum)
	g.ClearStatus()
}

func TestAddColumnWidensRows(t *testing.T) {
	f, _ := newFile(t, "widen.fits")
	require.NoError(t, f.CreateTable(2, []string{"a"}, []string{"1J"}, ""))
	require.NoError(t, WriteTableScalar(f, 0, 0, int32(10)))
	require.NoError(t, WriteTableScalar(f, 1, 0, int32(20)))

	col, err := AddColumn[float64](f, "b", 2, "second column")
	require.NoError(t, err)
	assert.Equal(t, 1, col)

	width, err := ReadKey[int](f, "NAXIS1")
	require.NoError(t, err)
	assert.Equal(t, 4+16, width)
	fields, err := ReadKey[int](f, "TFIELDS")
	require.NoError(t, err)
	assert.Equal(t, 2, fields)
	_, comment, err := ReadKeyWithComment[string](f, "TTYPE2")
	require.NoError(t, err)
	assert.Equal(t, "second column", comment)

	for row, want := range []int32{10, 20} {
		v, err := ReadTableScalar[int32](f, int64(row), 0)
		require.NoError(t, err)
		assert.Equal(t, want, v)
		b := make([]float64, 2)
		require.NoError(t, ReadTableArray(f, int64(row), 1, b))
		assert.Equal(t, []float64{0, 0}, b)
	}

	require.NoError(t, WriteTableArray(f, 1, 1, []float64{1.5, 2.5}))
	v, err := ReadTableScalar[int32](f, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v)
}

func TestAddRows(t *testing.T) {
	f, _ := newFile(t, "rows.fits")
	require.NoError(t, f.CreateTable(2, []string{"a"}, []string{"1K"}, ""))

	first, err := f.AddRows(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first)
	n, err := f.CountRows()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// Writing past the end extends the table.
	require.NoError(t, WriteTableScalar(f, 9, 0, int64(99)))
	n, err = f.CountRows()
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	v, err := ReadTableScalar[int64](f, 4, 0)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = f.AddRows(-1)
	requireStatus(t, err, StatusNegRows)
	f.ClearStatus()
}

func TestCreateTableErrors(t *testing.T) {
	f, _ := newFile(t, "badtable.fits")

	err := f.CreateTable(-1, nil, nil, "")
	requireStatus(t, err, StatusNegRows)
	f.ClearStatus()

	err = f.CreateTable(1, []string{"a", "b"}, []string{"1J"}, "")
	requireStatus(t, err, StatusBadTfields)
	f.ClearStatus()

	err = f.CreateTable(1, []string{"a"}, []string{"1Z"}, "")
	requireStatus(t, err, StatusBadTformDtype)
	var te *FitsTypeError
	assert.ErrorAs(t, err, &te)
	f.ClearStatus()

	err = f.CreateTable(1, []string{"a"}, []string{"P"}, "")
	requireStatus(t, err, StatusBadTform)
	f.ClearStatus()

	assert.Zero(t, f.CountHDUs(), "failed creations add nothing")
}

func TestTableErrors(t *testing.T) {
	f, _ := newFile(t, "tableerr.fits")
	require.NoError(t, f.CreateTable(2,
		[]string{"n", "s", "flag", "v"},
		[]string{"2I", "4A", "1L", "1PE(3)"}, ""))

	tests := []struct {
		name    string
		op      func() error
		status  int
		typeErr bool
	}{
		{"column out of range", func() error { return WriteTableScalar(f, 0, 4, int16(1)) }, StatusBadColNum, false},
		{"negative column", func() error { _, err := f.GetTableArraySize(-1); return err }, StatusBadColNum, false},
		{"negative row", func() error { return WriteTableScalar(f, -1, 0, int16(1)) }, StatusBadRowNum, false},
		{"read past end", func() error { _, err := ReadTableScalar[int16](f, 2, 0); return err }, StatusBadRowNum, false},
		{"too many elements", func() error { return WriteTableArray(f, 0, 0, []int16{1, 2, 3}) }, StatusBadElemNum, false},
		{"read too many", func() error { return ReadTableArray(f, 0, 0, make([]int16, 3)) }, StatusBadElemNum, false},
		{"string too long", func() error { return WriteTableScalar(f, 0, 1, "toolong") }, StatusBadElemNum, false},
		{"two strings", func() error { return WriteTableArray(f, 0, 1, []string{"a", "b"}) }, StatusBadDatatype, true},
		{"bool in numeric column", func() error { return WriteTableScalar(f, 0, 0, true) }, StatusNotLogicalCol, true},
		{"read bool from numeric", func() error { _, err := ReadTableScalar[bool](f, 0, 0); return err }, StatusNotLogicalCol, true},
		{"number in logical column", func() error { return WriteTableScalar(f, 0, 2, int16(1)) }, StatusBadDatatype, true},
		{"string in numeric column", func() error { return WriteTableScalar(f, 0, 0, "x") }, StatusBadDatatype, true},
		{"overflow on write", func() error { return WriteTableScalar(f, 0, 0, int64(1)<<20) }, StatusNumOverflow, false},
		{"fixed column row size", func() error { _, err := f.GetTableRowArraySize(0, 0); return err }, StatusNotVariLen, false},
		{"row size past end", func() error { _, err := f.GetTableRowArraySize(5, 3); return err }, StatusBadRowNum, false},
		{"missing column", func() error { _, err := f.FindColumn("nope"); return err }, StatusColNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			requireStatus(t, err, tt.status)
			var te *FitsTypeError
			assert.Equal(t, tt.typeErr, errors.As(err, &te))
			f.ClearStatus()
		})
	}

	// Overflow on read.
	require.NoError(t, WriteTableScalar(f, 0, 0, int16(300)))
	_, err := ReadTableScalar[int8](f, 0, 0)
	requireStatus(t, err, StatusNumOverflow)
	f.ClearStatus()
}

func TestTableOpsOnImage(t *testing.T) {
	f, _ := newFile(t, "notable.fits")
	require.NoError(t, CreateImage[int16](f, 2, 2))

	_, err := f.CountRows()
	requireStatus(t, err, StatusNotTable)
	var te *FitsTypeError
	assert.ErrorAs(t, err, &te)
	f.ClearStatus()

	_, err = AddColumn[int32](f, "x", 1, "")
	requireStatus(t, err, StatusNotTable)
	f.ClearStatus()
}

func TestTableRowWidthMismatch(t *testing.T) {
	f, _ := newFile(t, "width.fits")
	require.NoError(t, f.CreateTable(1, []string{"a"}, []string{"1J"}, ""))
	require.NoError(t, UpdateKey(f, "NAXIS1", 8, ""))

	_, err := f.CountRows()
	requireStatus(t, err, StatusBadRowWidth)
	f.ClearStatus()
	require.NoError(t, UpdateKey(f, "NAXIS1", 4, ""))
}

func TestLoadHDUHeapBounds(t *testing.T) {
	h := &hdu{}
	h.append(
		fixedCard("XTENSION", "BINTABLE", ""),
		fixedCard("BITPIX", 8, ""),
		fixedCard("NAXIS", 2, ""),
		fixedCard("NAXIS1", 8, ""),
		fixedCard("NAXIS2", 1, ""),
		fixedCard("PCOUNT", 16, ""),
		fixedCard("GCOUNT", 1, ""),
		fixedCard("TFIELDS", 1, ""),
		fixedCard("TFORM1", "1PJ", ""),
	)

	data := make([]byte, 8+16)
	loaded, err := loadHDU(block.Unit{Cards: h.cards, Data: data})
	require.NoError(t, err)
	assert.Len(t, loaded.data, 8)
	assert.Equal(t, int64(16), loaded.heap.Size())

	// THEAP may leave a gap after the main table.
	withGap := append(h.cards[:len(h.cards):len(h.cards)], fixedCard("THEAP", 12, ""))
	loaded, err = loadHDU(block.Unit{Cards: withGap, Data: data})
	require.NoError(t, err)
	assert.Equal(t, int64(12), loaded.heap.Size())

	badHeap := append(h.cards[:len(h.cards):len(h.cards)], fixedCard("THEAP", 40, ""))
	_, err = loadHDU(block.Unit{Cards: badHeap, Data: data})
	assert.ErrorIs(t, err, errHeapRange)
	assert.Equal(t, StatusBadPcount, statusFor(err, 0))
}

func TestCanonicalFormat(t *testing.T) {
	format, err := dtype.ParseFormat(MakeColumnFormat[uint16](-7))
	require.NoError(t, err)
	assert.Equal(t, "1PI(7)", format.String())
	assert.Equal(t, dtype.ZeroUint16, format.Zero)
}
