package main

import (
	"context"
	"log/slog"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-afw/fits"
	"github.com/robert-malhotra/go-afw/propertyset"
)

type fileReport struct {
	File  string      `json:"file" yaml:"file" cbor:"file"`
	HDUs  []hduReport `json:"hdus,omitempty" yaml:"hdus,omitempty" cbor:"hdus,omitempty"`
	Error string      `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

type hduReport struct {
	Index    int            `json:"index" yaml:"index" cbor:"index"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" cbor:"name,omitempty"`
	Bitpix   int            `json:"bitpix,omitempty" yaml:"bitpix,omitempty" cbor:"bitpix,omitempty"`
	Shape    []int64        `json:"shape,omitempty" yaml:"shape,omitempty,flow" cbor:"shape,omitempty"`
	Rows     int64          `json:"rows,omitempty" yaml:"rows,omitempty" cbor:"rows,omitempty"`
	HeapSize int64          `json:"heapSize,omitempty" yaml:"heapSize,omitempty" cbor:"heapSize,omitempty"`
	HeapFree int64          `json:"heapFree,omitempty" yaml:"heapFree,omitempty" cbor:"heapFree,omitempty"`
	Columns  []columnReport `json:"columns,omitempty" yaml:"columns,omitempty" cbor:"columns,omitempty"`
	DataSum  string         `json:"dataSum,omitempty" yaml:"dataSum,omitempty" cbor:"dataSum,omitempty"`
	Keys     []keyReport    `json:"keys,omitempty" yaml:"keys,omitempty" cbor:"keys,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

type columnReport struct {
	Name   string `json:"name" yaml:"name" cbor:"name"`
	Format string `json:"format" yaml:"format" cbor:"format"`
	Unit   string `json:"unit,omitempty" yaml:"unit,omitempty" cbor:"unit,omitempty"`
	Repeat int64  `json:"repeat" yaml:"repeat" cbor:"repeat"`
	VarLen bool   `json:"varLen,omitempty" yaml:"varLen,omitempty" cbor:"varLen,omitempty"`
}

type keyReport struct {
	Name    string `json:"name" yaml:"name" cbor:"name"`
	Value   any    `json:"value" yaml:"value" cbor:"value"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" cbor:"comment,omitempty"`
}

// DataSum outcomes.
const (
	dataSumOK       = "ok"
	dataSumMismatch = "mismatch"
)

// dumpFiles reports on every file, at most cfg.Jobs at a time. Problems
// with a file are recorded in its report; the returned error is only set
// when ctx is cancelled.
func dumpFiles(ctx context.Context, files []string, cfg config, logger *slog.Logger) ([]fileReport, error) {
	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = dumpFile(path, cfg.Strip, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func dumpFile(path string, strip bool, logger *slog.Logger) fileReport {
	logger.Debug("dumping file", "path", path)
	report := fileReport{File: path}

	f, err := fits.OpenFile(path, false, fits.WithLogger(logger))
	if err != nil {
		logger.Warn("cannot open file", "path", path, "error", err)
		report.Error = err.Error()
		return report
	}
	defer f.Close()

	err = fits.Walk(f, func(info fits.HDUInfo, err error) error {
		h := newHDUReport(info)
		if err == nil {
			err = describeHDU(f, info.Index, strip, &h)
		}
		if err != nil {
			logger.Warn("cannot describe HDU", "path", path, "hdu", info.Index, "error", err)
			h.Error = err.Error()
			f.ClearStatus()
		}
		report.HDUs = append(report.HDUs, h)
		return nil
	})
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func newHDUReport(info fits.HDUInfo) hduReport {
	h := hduReport{
		Index:    info.Index,
		Name:     info.Name,
		Bitpix:   info.Bitpix,
		Shape:    info.Shape,
		Rows:     info.Rows,
		HeapSize: info.HeapSize,
		HeapFree: info.HeapUnused,
	}
	for _, c := range info.Columns {
		h.Columns = append(h.Columns, columnReport{
			Name:   c.Name,
			Format: c.Format,
			Unit:   c.Unit,
			Repeat: c.Repeat,
			VarLen: c.VarLen,
		})
	}
	return h
}

// describeHDU adds the type, header keys and checksum state of HDU index
// to h.
func describeHDU(f *fits.Fits, index int, strip bool, h *hduReport) error {
	if err := f.SetHDU(index); err != nil {
		return err
	}
	kind, err := f.HDUType()
	if err != nil {
		return err
	}
	h.Type = kind.String()

	md := propertyset.NewList()
	if err := f.ReadMetadata(md, strip); err != nil {
		return err
	}
	for _, name := range md.Names() {
		h.Keys = append(h.Keys, keyReport{
			Name:    name,
			Value:   plainValue(md, name),
			Comment: md.Comment(name),
		})
	}

	if md.Exists("DATASUM") {
		ok, err := f.VerifyDataSum()
		if err != nil {
			return err
		}
		h.DataSum = dataSumMismatch
		if ok {
			h.DataSum = dataSumOK
		}
	}
	return nil
}

// plainValue returns the single value stored under name, or all of them
// as a slice when the key is repeated.
func plainValue(md *propertyset.PropertyList, name string) any {
	values := reflect.ValueOf(md.Array(name))
	if values.Len() == 1 {
		return values.Index(0).Interface()
	}
	return values.Interface()
}
