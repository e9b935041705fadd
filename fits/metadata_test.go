package fits

import (
	"bytes"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-afw/internal/card"
	"github.com/robert-malhotra/go-afw/propertyset"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key, value, comment string
		want                any
	}{
		{"FLAG", "T", "", true},
		{"FLAG", "f", "", false},
		{"N", "42", "", 42},
		{"N", "-7", "", -7},
		{"N", "+2147483647", "", 2147483647},
		{"N", "2147483648", "", int64(2147483648)},
		{"N", "-2147483648", "", int64(-2147483648)},
		{"X", "3.14", "", 3.14},
		{"X", "1.E-05", "", 1e-5},
		{"X", "-.5", "", -0.5},
		{"S", "'hi there'", "", "hi there"},
		{"S", "'padded   '", "", "padded"},
		{"S", "'it''s'", "", "it's"},
		{"S", "''", "", ""},
		{"HISTORY", "", "flat fielded", "flat fielded"},
		{"COMMENT", "", "a remark", "a remark"},
		{"COMMENT", "", citation[0], nil},
		{"COMMENT", "", citation[1], nil},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := classify(tt.key, tt.value, tt.comment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := classify("CPLX", "(1., 2.)", "")
	require.Error(t, err)
	assert.Equal(t, "could not parse header value for key 'CPLX': '(1., 2.)'", err.Error())
}

func TestReadMetadata(t *testing.T) {
	f, path := newFile(t, "md.fits")
	require.NoError(t, UpdateKey(f, "OBJECT", "M31", "target"))
	require.NoError(t, UpdateKey(f, "EXPTIME", 30.5, "exposure [s]"))
	require.NoError(t, UpdateKey(f, "NCOMBINE", 5, ""))
	require.NoError(t, UpdateKey(f, "FLAG", true, ""))
	require.NoError(t, UpdateKey(f, "HISTORY", "bias subtracted", ""))
	g := reopen(t, f, path, false)

	md := propertyset.NewList()
	require.NoError(t, g.ReadMetadata(md, true))
	assert.Equal(t, []string{"OBJECT", "EXPTIME", "NCOMBINE", "FLAG", "HISTORY"}, md.Names())

	obj, err := propertyset.Get[string](md, "OBJECT")
	require.NoError(t, err)
	assert.Equal(t, "M31", obj)
	assert.Equal(t, "target", md.Comment("OBJECT"))
	exptime, err := propertyset.Get[float64](md, "EXPTIME")
	require.NoError(t, err)
	assert.Equal(t, 30.5, exptime)
	n, err := propertyset.Get[int](md, "NCOMBINE")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	flag, err := propertyset.Get[bool](md, "FLAG")
	require.NoError(t, err)
	assert.True(t, flag)
	history, err := propertyset.GetArray[string](md, "HISTORY")
	require.NoError(t, err)
	assert.Equal(t, []string{"bias subtracted"}, history)

	// Without stripping, structural keys are kept.
	all := propertyset.New()
	require.NoError(t, g.ReadMetadata(all, false))
	for _, key := range []string{"SIMPLE", "BITPIX", "NAXIS", "EXTEND", "OBJECT"} {
		assert.True(t, all.Exists(key), key)
	}
	assert.False(t, all.Exists("COMMENT"), "the format citation is skipped")
	bitpix, err := propertyset.Get[int](all, "BITPIX")
	require.NoError(t, err)
	assert.Equal(t, 8, bitpix)
}

func TestReadMetadataBigInt(t *testing.T) {
	f, _ := newFile(t, "bigint.fits")
	require.NoError(t, UpdateKey(f, "SMALL", int64(2147483647), ""))
	require.NoError(t, UpdateKey(f, "BIG", int64(1)<<40, ""))

	md := propertyset.New()
	require.NoError(t, f.ReadMetadata(md, true))
	assert.Equal(t, reflect.TypeFor[int](), md.TypeOf("SMALL"))
	assert.Equal(t, reflect.TypeFor[int64](), md.TypeOf("BIG"))
	big, err := propertyset.Get[int64](md, "BIG")
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, big)
}

func TestReadMetadataParseError(t *testing.T) {
	f, _ := newFile(t, "badmd.fits")
	require.NoError(t, UpdateKey(f, "CPLX", complex(1, 2), ""))

	err := f.ReadMetadata(propertyset.New(), true)
	fe := requireStatus(t, err, StatusUnknownRec)
	assert.Equal(t, "could not parse header value for key 'CPLX': '(1., 2.)'", fe.Message)
	assert.Equal(t, StatusUnknownRec, f.Status())
	f.ClearStatus()
}

func TestReadMetadataTypeClash(t *testing.T) {
	f, _ := newFile(t, "clash.fits")
	require.NoError(t, WriteKey(f, "DUP", 1, ""))
	require.NoError(t, WriteKey(f, "DUP", "one", ""))

	err := f.ReadMetadata(propertyset.New(), true)
	assert.ErrorIs(t, err, propertyset.ErrTypeMismatch)
	assert.Contains(t, err.Error(), `adding header key "DUP"`)
	assert.Zero(t, f.Status())
}

func TestWriteMetadata(t *testing.T) {
	f, path := newFile(t, "wmd.fits")
	md := propertyset.NewList()
	require.NoError(t, md.AddWithComment("EXPTIME", 30.0, "exposure [s]"))
	require.NoError(t, md.Add("OBJECT", "M31"))
	require.NoError(t, md.Add("NCOMBINE", 5))
	require.NoError(t, md.Add("COUNTS", int32(7)))
	require.NoError(t, md.Add("BIG", int64(1)<<40))
	require.NoError(t, md.Add("FLAG", false))
	require.NoError(t, md.Add("FILTER", []string{"g", "r"}))
	require.NoError(t, md.Add("HISTORY", []string{"step one", "step two"}))
	require.NoError(t, md.Add("NAXIS", 3))
	require.NoError(t, f.WriteMetadata(md))

	g := reopen(t, f, path, false)
	naxis, err := ReadKey[int](g, "NAXIS")
	require.NoError(t, err)
	assert.Zero(t, naxis, "structural keys are not written")
	_, comment, err := ReadKeyWithComment[float64](g, "EXPTIME")
	require.NoError(t, err)
	assert.Equal(t, "exposure [s]", comment)

	back := propertyset.NewList()
	require.NoError(t, g.ReadMetadata(back, true))
	assert.Equal(t, []string{"EXPTIME", "OBJECT", "NCOMBINE", "COUNTS", "BIG", "FLAG", "FILTER", "HISTORY"}, back.Names())

	filters, err := propertyset.GetArray[string](back, "FILTER")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "r"}, filters)
	history, err := propertyset.GetArray[string](back, "HISTORY")
	require.NoError(t, err)
	assert.Equal(t, []string{"step one", "step two"}, history)
	counts, err := propertyset.Get[int](back, "COUNTS")
	require.NoError(t, err)
	assert.Equal(t, 7, counts)
	big, err := propertyset.Get[int64](back, "BIG")
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, big)
	flag, err := propertyset.Get[bool](back, "FLAG")
	require.NoError(t, err)
	assert.False(t, flag)
}

func TestWriteMetadataUnsupportedType(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	f, _ := newFile(t, "unsupported.fits", WithLogger(logger))

	md := propertyset.New()
	require.NoError(t, md.Add("RATIO", float32(0.5)))
	require.NoError(t, md.Add("GAIN", 2.5))
	require.NoError(t, f.WriteMetadata(md))

	assert.Contains(t, logs.String(), "skipping metadata value of unsupported type")
	assert.Contains(t, logs.String(), "key=RATIO")
	assert.Equal(t, -1, f.hdus[0].find("RATIO"))
	gain, err := ReadKey[float64](f, "GAIN")
	require.NoError(t, err)
	assert.Equal(t, 2.5, gain)
	h := f.hdus[0]
	assert.Equal(t, "GAIN", card.Keyword(h.cards[len(h.cards)-1]))
}
