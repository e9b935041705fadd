package fits

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-afw/internal/card"
)

func TestWalk(t *testing.T) {
	f, path := newFile(t, "walk.fits")
	require.NoError(t, CreateImage[float32](f, 10, 20))
	require.NoError(t, f.CreateTable(4, []string{"id", "v"}, []string{"1K", "1PE"}, "EVENTS"))
	require.NoError(t, WriteTableArray(f, 0, 1, []float32{1, 2, 3}))
	require.NoError(t, CreateImage[uint8](f, 5))
	require.NoError(t, f.SetHDU(1))
	g := reopen(t, f, path, false)
	require.NoError(t, g.SetHDU(1))

	var infos []HDUInfo
	require.NoError(t, Walk(g, func(info HDUInfo, err error) error {
		require.NoError(t, err)
		infos = append(infos, info)
		return nil
	}))
	require.Len(t, infos, 3)
	assert.Equal(t, 1, g.CurrentHDU(), "walking does not move the cursor")

	assert.Equal(t, ImageHDU, infos[0].Type)
	assert.Equal(t, -32, infos[0].Bitpix)
	assert.Equal(t, []int64{10, 20}, infos[0].Shape)

	assert.Equal(t, BinaryTableHDU, infos[1].Type)
	assert.Equal(t, "EVENTS", infos[1].Name)
	assert.Equal(t, int64(4), infos[1].Rows)
	assert.Equal(t, int64(12), infos[1].HeapSize)
	require.Len(t, infos[1].Columns, 2)
	assert.Equal(t, "id", infos[1].Columns[0].Name)
	assert.True(t, infos[1].Columns[1].VarLen)

	assert.Equal(t, 2, infos[2].Index)
	assert.Equal(t, []int64{5}, infos[2].Shape)
	assert.Equal(t, 8, infos[2].Bitpix)
}

func TestWalkStops(t *testing.T) {
	f, _ := newFile(t, "walkstop.fits")
	require.NoError(t, CreateImage[int16](f, 1))
	require.NoError(t, CreateImage[int16](f, 1))

	stop := errors.New("stop")
	calls := 0
	err := Walk(f, func(info HDUInfo, err error) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalkReportsBadHDU(t *testing.T) {
	f, _ := newFile(t, "walkbad.fits")
	require.NoError(t, CreateImage[int16](f, 1))
	require.NoError(t, CreateImage[int16](f, 1))
	h := f.hdus[1]
	h.cards[0] = card.Pad("XTENSION= 'FOREIGN '")

	var errs []error
	require.NoError(t, Walk(f, func(info HDUInfo, err error) error {
		errs = append(errs, err)
		return nil
	}))
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errUnknownExt)

	require.NoError(t, f.SetHDU(1))
	_, err := f.HDUType()
	requireStatus(t, err, StatusUnknownExt)
	f.ClearStatus()
	_, err = f.Info()
	requireStatus(t, err, StatusUnknownExt)
	f.ClearStatus()

	h.cards[0] = card.Pad("XTENSION= 'IMAGE   '")
}

func TestNavigationErrors(t *testing.T) {
	f, _ := newFile(t, "nav.fits")

	_, err := f.HDUType()
	requireStatus(t, err, StatusBadHDUNum)
	f.ClearStatus()

	require.NoError(t, CreateImage[int16](f, 1))
	requireStatus(t, f.SetHDU(1), StatusBadHDUNum)
	f.ClearStatus()
	requireStatus(t, f.SetHDUByName("SCI"), StatusBadHDUNum)
	f.ClearStatus()
	assert.Equal(t, 0, f.CurrentHDU())
}

func TestInfoHeapUnused(t *testing.T) {
	f, _ := newFile(t, "unused.fits")
	require.NoError(t, f.CreateTable(3, []string{"v"}, []string{"1PJ"}, ""))
	require.NoError(t, WriteTableArray(f, 0, 0, []int32{1, 2, 3}))
	require.NoError(t, WriteTableArray(f, 1, 0, []int32{4, 5, 6, 7, 8, 9}))
	require.NoError(t, WriteTableArray(f, 0, 0, []int32{1, 2, 3, 4, 5}))

	info, err := f.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(56), info.HeapSize)
	assert.Equal(t, int64(12), info.HeapUnused)

	// The released space is reused by a later array that fits.
	require.NoError(t, WriteTableArray(f, 2, 0, []int32{10, 11, 12}))
	info, err = f.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(56), info.HeapSize)
	assert.Zero(t, info.HeapUnused)
	require.NoError(t, f.Flush())
}
