package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type output struct {
	Files   []fileReport   `json:"files" yaml:"files" cbor:"files"`
	Summary map[string]any `json:"summary,omitempty" yaml:"summary,omitempty" cbor:"summary,omitempty"`
}

// render writes reports, and s when it is not nil, to w in format.
func render(w io.Writer, format string, reports []fileReport, s *summary) error {
	out := output{Files: reports}
	if s != nil {
		out.Summary = summaryValues(s)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		return cbor.NewEncoder(w).Encode(out)
	case "text":
		return renderText(w, reports, s)
	}
	return fmt.Errorf("unknown format %q", format)
}

func renderText(w io.Writer, reports []fileReport, s *summary) error {
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "== %s\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(&b, "   error: %s\n", r.Error)
		}
		for _, h := range r.HDUs {
			writeHDU(&b, h)
		}
		b.WriteByte('\n')
	}

	if s != nil {
		b.WriteString("== summary\n")
		for _, k := range s.Keys() {
			v, err := s.UnsafeLookup(k)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "   %-20s %v\n", k+":", v.Interface())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHDU(b *strings.Builder, h hduReport) {
	fmt.Fprintf(b, "-- HDU %d", h.Index)
	if h.Type != "" {
		fmt.Fprintf(b, " %s", h.Type)
	}
	if h.Name != "" {
		fmt.Fprintf(b, " %q", h.Name)
	}
	b.WriteByte('\n')

	if h.Error != "" {
		fmt.Fprintf(b, "   error: %s\n", h.Error)
	}
	if len(h.Shape) > 0 {
		fmt.Fprintf(b, "   bitpix %d, shape %v\n", h.Bitpix, h.Shape)
	}
	if len(h.Columns) > 0 {
		fmt.Fprintf(b, "   %d rows, heap %d bytes", h.Rows, h.HeapSize)
		if h.HeapFree > 0 {
			fmt.Fprintf(b, " (%d unused)", h.HeapFree)
		}
		b.WriteByte('\n')
		for i, c := range h.Columns {
			fmt.Fprintf(b, "   %3d %-16s %-10s %s\n", i+1, c.Name, c.Format, c.Unit)
		}
	}
	if h.DataSum != "" {
		fmt.Fprintf(b, "   datasum %s\n", h.DataSum)
	}
	for _, k := range h.Keys {
		fmt.Fprintf(b, "   %-8s = %s", k.Name, formatValue(k.Value))
		if k.Comment != "" {
			fmt.Fprintf(b, " / %s", k.Comment)
		}
		b.WriteByte('\n')
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case bool:
		if x {
			return "T"
		}
		return "F"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
