// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package sink

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Format selects how a Writer renders items.
type Format string

const (
	// FormatJSON writes one JSON array holding all items.
	FormatJSON Format = "json"
	// FormatJSONLines writes one JSON document per line.
	FormatJSONLines Format = "jsonl"
	// FormatHCL writes an HCL file with a single "result" attribute.
	FormatHCL Format = "hcl"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatJSON, FormatJSONLines, FormatHCL}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q: must be one of %v", s, Formats)
}

// Writer renders items to an io.Writer. JSON formats stream; HCL is
// buffered until Close.
type Writer struct {
	w      io.Writer
	format Format
	count  int
	values []cty.Value
}

// NewWriter returns a Writer for format.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &Writer{w: w, format: format}, nil
}

// Emit renders v.
func (w *Writer) Emit(v cty.Value) error {
	if w.format == FormatHCL {
		w.values = append(w.values, v)
		w.count++
		return nil
	}

	data, err := marshalJSON(v)
	if err != nil {
		return err
	}

	switch {
	case w.format == FormatJSONLines:
		_, err = fmt.Fprintf(w.w, "%s\n", data)
	case w.count == 0:
		_, err = fmt.Fprintf(w.w, "[\n  %s", data)
	default:
		_, err = fmt.Fprintf(w.w, ",\n  %s", data)
	}
	if err != nil {
		return fmt.Errorf("failed to write result item %d: %w", w.count+1, err)
	}
	w.count++
	return nil
}

// Close finishes the document.
func (w *Writer) Close() error {
	var err error
	switch w.format {
	case FormatJSON:
		if w.count == 0 {
			_, err = io.WriteString(w.w, "[]\n")
		} else {
			_, err = io.WriteString(w.w, "\n]\n")
		}
	case FormatHCL:
		f := hclwrite.NewEmptyFile()
		f.Body().SetAttributeValue("result", cty.TupleVal(w.values))
		_, err = w.w.Write(hclwrite.Format(f.Bytes()))
	}
	if err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Count reports how many items were emitted.
func (w *Writer) Count() int { return w.count }

func marshalJSON(v cty.Value) ([]byte, error) {
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("cannot write a result item that is not fully known")
	}
	data, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode result item: %w", err)
	}
	return data, nil
}
