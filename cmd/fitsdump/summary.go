package main

import (
	"fmt"

	"github.com/robert-malhotra/go-afw/fits"
	"github.com/robert-malhotra/go-afw/typehandling"
)

// summary holds totals over a run, keyed by their printed names.
type summary = typehandling.SortedHeteroMap[string]

var (
	filesKey      = typehandling.MakeKey[int]("files")
	failedKey     = typehandling.MakeKey[int]("failed files")
	hdusKey       = typehandling.MakeKey[int]("hdus")
	imagesKey     = typehandling.MakeKey[int]("images")
	tablesKey     = typehandling.MakeKey[int]("tables")
	rowsKey       = typehandling.MakeKey[int]("table rows")
	heapKey       = typehandling.MakeKey[int]("heap bytes")
	checkedKey    = typehandling.MakeKey[int]("checksums verified")
	mismatchKey   = typehandling.MakeKey[int]("checksum mismatches")
	firstErrorKey = typehandling.MakeKey[string]("first error")
	allValidKey   = typehandling.MakeKey[bool]("all checksums valid")
)

var counters = []typehandling.Key[string, int]{
	filesKey, failedKey, hdusKey, imagesKey, tablesKey, rowsKey, heapKey, checkedKey, mismatchKey,
}

func summarize(reports []fileReport) *summary {
	s := typehandling.NewSortedHeteroMap[string]()
	for _, k := range counters {
		typehandling.Insert(s, k, 0)
	}
	add := func(k typehandling.Key[string, int], n int) {
		p, err := typehandling.At(s, k)
		if err != nil {
			panic(err)
		}
		*p += n
	}
	// Only the first failure is kept: later inserts under the same key
	// are refused.
	fail := func(file, msg string) {
		typehandling.Insert(s, firstErrorKey, fmt.Sprintf("%s: %s", file, msg))
	}

	for _, r := range reports {
		add(filesKey, 1)
		if r.Error != "" {
			add(failedKey, 1)
			fail(r.File, r.Error)
		}
		for _, h := range r.HDUs {
			add(hdusKey, 1)
			switch h.Type {
			case fits.ImageHDU.String():
				add(imagesKey, 1)
			case fits.BinaryTableHDU.String(), fits.ASCIITableHDU.String():
				add(tablesKey, 1)
				add(rowsKey, int(h.Rows))
				add(heapKey, int(h.HeapSize))
			}
			switch h.DataSum {
			case dataSumOK:
				add(checkedKey, 1)
			case dataSumMismatch:
				add(checkedKey, 1)
				add(mismatchKey, 1)
			}
			if h.Error != "" {
				fail(fmt.Sprintf("%s[%d]", r.File, h.Index), h.Error)
			}
		}
	}

	checked, _ := typehandling.At(s, checkedKey)
	mismatched, _ := typehandling.At(s, mismatchKey)
	if *checked > 0 {
		typehandling.Insert(s, allValidKey, *mismatched == 0)
	}
	return s
}

// summaryValues flattens s into plain values for encoding.
func summaryValues(s *summary) map[string]any {
	values := make(map[string]any, s.Size())
	for _, k := range s.Keys() {
		v, err := s.UnsafeLookup(k)
		if err != nil {
			continue
		}
		values[k] = v.Interface()
	}
	return values
}
