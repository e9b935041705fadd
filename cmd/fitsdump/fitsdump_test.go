package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-afw/fits"
	"github.com/robert-malhotra/go-afw/typehandling"
)

// writeSample creates a file with a 3x2 primary image and a two-column
// EVENTS table, each with a DATASUM card.
func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.fits")
	f, err := fits.CreateFile(path, fits.WithDataSum())
	require.NoError(t, err)
	require.NoError(t, fits.CreateImage[int16](f, 3, 2))
	require.NoError(t, fits.WriteImage(f, []int16{1, 2, 3, 4, 5, 6}))
	require.NoError(t, fits.UpdateKey(f, "OBSERVER", "Hubble", "who"))
	require.NoError(t, f.CreateTable(4, []string{"id", "energy"}, []string{"1J", "1PE"}, "EVENTS"))
	for row := range int64(4) {
		require.NoError(t, fits.WriteTableScalar(f, row, 0, int32(row)))
	}
	require.NoError(t, fits.WriteTableArray(f, 0, 1, []float32{1, 2, 3}))
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	err := cmd.Execute()
	return out.String(), err
}

func findKey(keys []keyReport, name string) (keyReport, bool) {
	for _, k := range keys {
		if k.Name == name {
			return k, true
		}
	}
	return keyReport{}, false
}

func TestDumpJSON(t *testing.T) {
	path := writeSample(t)
	missing := filepath.Join(t.TempDir(), "missing.fits")

	text, err := run(t, "--format", "json", "--jobs", "2", path, missing)
	require.EqualError(t, err, "1 of 2 files could not be read")

	var out output
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Files, 2)

	sample := out.Files[0]
	assert.Equal(t, path, sample.File)
	assert.Empty(t, sample.Error)
	require.Len(t, sample.HDUs, 2)

	primary := sample.HDUs[0]
	assert.Equal(t, "IMAGE", primary.Type)
	assert.Equal(t, 16, primary.Bitpix)
	assert.Equal(t, []int64{3, 2}, primary.Shape)
	assert.Equal(t, dataSumOK, primary.DataSum)
	observer, ok := findKey(primary.Keys, "OBSERVER")
	require.True(t, ok)
	assert.Equal(t, "Hubble", observer.Value)
	assert.Equal(t, "who", observer.Comment)
	_, ok = findKey(primary.Keys, "NAXIS1")
	assert.True(t, ok)

	table := sample.HDUs[1]
	assert.Equal(t, "BINTABLE", table.Type)
	assert.Equal(t, "EVENTS", table.Name)
	assert.Equal(t, int64(4), table.Rows)
	assert.Equal(t, int64(12), table.HeapSize)
	assert.Equal(t, dataSumOK, table.DataSum)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, columnReport{Name: "id", Format: "1J", Repeat: 1}, table.Columns[0])
	assert.True(t, table.Columns[1].VarLen)

	assert.Equal(t, missing, out.Files[1].File)
	assert.NotEmpty(t, out.Files[1].Error)
	assert.Empty(t, out.Files[1].HDUs)

	assert.Equal(t, 2.0, out.Summary["files"])
	assert.Equal(t, 1.0, out.Summary["failed files"])
	assert.Equal(t, 2.0, out.Summary["hdus"])
	assert.Equal(t, 1.0, out.Summary["tables"])
	assert.Equal(t, 12.0, out.Summary["heap bytes"])
	assert.Equal(t, true, out.Summary["all checksums valid"])
	assert.Contains(t, out.Summary["first error"], missing)
}

func TestDumpYAMLFromConfigFile(t *testing.T) {
	path := writeSample(t)
	cfgFile := filepath.Join(t.TempDir(), "fitsdump.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: yaml\nstrip: true\nsummary: false\n"), 0o644))

	text, err := run(t, "--config", cfgFile, path)
	require.NoError(t, err)

	var out output
	require.NoError(t, yaml.Unmarshal([]byte(text), &out))
	require.Len(t, out.Files, 1)
	assert.Nil(t, out.Summary)

	primary := out.Files[0].HDUs[0]
	_, ok := findKey(primary.Keys, "NAXIS1")
	assert.False(t, ok, "structural keys are stripped")
	_, ok = findKey(primary.Keys, "OBSERVER")
	assert.True(t, ok)
}

func TestDumpFlagOverridesConfigFile(t *testing.T) {
	path := writeSample(t)
	cfgFile := filepath.Join(t.TempDir(), "fitsdump.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: yaml\n"), 0o644))

	text, err := run(t, "--config", cfgFile, "--format", "json", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(text)))
}

func TestDumpCBORFromEnv(t *testing.T) {
	path := writeSample(t)
	t.Setenv("FITSDUMP_FORMAT", "cbor")
	t.Setenv("FITSDUMP_LOG_LEVEL", "debug")

	text, err := run(t, path)
	require.NoError(t, err)

	var out output
	require.NoError(t, cbor.Unmarshal([]byte(text), &out))
	require.Len(t, out.Files, 1)
	require.Len(t, out.Files[0].HDUs, 2)
	assert.Equal(t, "EVENTS", out.Files[0].HDUs[1].Name)
}

func TestDumpText(t *testing.T) {
	path := writeSample(t)

	text, err := run(t, path)
	require.NoError(t, err)
	assert.Contains(t, text, "== "+path+"\n")
	assert.Contains(t, text, "-- HDU 0 IMAGE\n")
	assert.Contains(t, text, "   bitpix 16, shape [3 2]\n")
	assert.Contains(t, text, `-- HDU 1 BINTABLE "EVENTS"`)
	assert.Contains(t, text, "   4 rows, heap 12 bytes\n")
	assert.Contains(t, text, `OBSERVER = "Hubble" / who`)
	assert.Contains(t, text, "SIMPLE   = T")
	assert.Contains(t, text, "datasum ok")
	assert.Contains(t, text, "== summary\n")
}

func TestDumpNoFiles(t *testing.T) {
	_, err := run(t)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		cfgFile string
		wantErr string
	}{
		{name: "defaults", set: map[string]any{"format": "TEXT", "log-level": "warn", "jobs": 0}},
		{name: "bad format", set: map[string]any{"format": "xml", "log-level": "warn"}, wantErr: `unknown format "xml"`},
		{name: "bad level", set: map[string]any{"format": "json", "log-level": "loud"}, wantErr: "log-level"},
		{name: "missing file", cfgFile: filepath.Join(t.TempDir(), "absent.yaml"), wantErr: "reading config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			cfg, err := loadConfig(v, tt.cfgFile)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", cfg.Format)
			assert.Equal(t, 1, cfg.Jobs)
		})
	}
}

func TestSummarize(t *testing.T) {
	reports := []fileReport{
		{File: "a.fits", HDUs: []hduReport{
			{Index: 0, Type: "IMAGE", DataSum: dataSumOK},
			{Index: 1, Type: "BINTABLE", Rows: 10, HeapSize: 40, DataSum: dataSumMismatch},
			{Index: 2, Error: "unknown extension type"},
		}},
		{File: "b.fits", Error: "could not open"},
	}
	s := summarize(reports)

	get := func(name string) int {
		p, err := typehandling.At(s, typehandling.MakeKey[int](name))
		require.NoError(t, err)
		return *p
	}
	assert.Equal(t, 2, get("files"))
	assert.Equal(t, 1, get("failed files"))
	assert.Equal(t, 3, get("hdus"))
	assert.Equal(t, 1, get("images"))
	assert.Equal(t, 1, get("tables"))
	assert.Equal(t, 10, get("table rows"))
	assert.Equal(t, 40, get("heap bytes"))
	assert.Equal(t, 2, get("checksums verified"))
	assert.Equal(t, 1, get("checksum mismatches"))

	first, err := typehandling.At(s, firstErrorKey)
	require.NoError(t, err)
	assert.Equal(t, "a.fits[2]: unknown extension type", *first)
	valid, err := typehandling.At(s, allValidKey)
	require.NoError(t, err)
	assert.False(t, *valid)

	assert.Equal(t, []string{
		"all checksums valid", "checksum mismatches", "checksums verified", "failed files",
		"files", "first error", "hdus", "heap bytes", "images", "table rows", "tables",
	}, s.Keys())
}

func TestWriteHDUHeapFree(t *testing.T) {
	var b strings.Builder
	writeHDU(&b, hduReport{
		Index:    1,
		Type:     "BINTABLE",
		Rows:     3,
		HeapSize: 56,
		HeapFree: 12,
		Columns:  []columnReport{{Name: "v", Format: "1PJ(0)", Repeat: 0, VarLen: true}},
	})
	assert.Contains(t, b.String(), "   3 rows, heap 56 bytes (12 unused)\n")
}
