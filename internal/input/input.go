// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package input reads the document a transformation runs over and turns it
// into a single cty.Value.
//
// Why cty and not plain Go maps?
//
// Expressions are evaluated by HCL, which only understands cty values. Doing
// the conversion once, at the edge, keeps the engine free of format-specific
// code: JSON, YAML and HCL documents all look the same to a program.
package input

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// Stdin is the path that stands for standard input.
const Stdin = "-"

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("cannot tell the input format of %q: use a .json, .yaml, .yml or .hcl file", path)
}

// Load reads the document at path. An empty path yields a null document and
// Stdin reads JSON from stdin.
func Load(ctx context.Context, path string, stdin io.Reader) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	if path == "" {
		logger.Debug("No input document, using null.")
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	if path == Stdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to read input from stdin: %w", err)
		}
		logger.Debug("Input read from stdin.", "bytes", len(data))
		return Decode(data, FormatJSON, "<stdin>")
	}

	format, err := FormatFor(path)
	if err != nil {
		return cty.NilVal, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to read input file: %w", err)
	}
	logger.Debug("Input file read.", "path", path, "format", format, "bytes", len(data))
	return Decode(data, format, path)
}

// Decode parses data in the given format. filename is used in error messages.
func Decode(data []byte, format Format, filename string) (cty.Value, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data, filename)
	case FormatYAML:
		return decodeYAML(data, filename)
	case FormatHCL:
		return decodeHCL(data, filename)
	}
	return cty.NilVal, fmt.Errorf("unsupported input format %q", format)
}

func decodeJSON(data []byte, filename string) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse JSON input %s: %w", filename, err)
	}
	v, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to decode JSON input %s: %w", filename, err)
	}
	return v, nil
}

// decodeHCL reads a file of top-level attributes into an object. Blocks are
// not allowed and attribute expressions must be constant.
func decodeHCL(data []byte, filename string) (cty.Value, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse HCL input: %w", diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to decode HCL input: %w", diags)
	}

	vals := make(map[string]cty.Value, len(attrs))
	var all hcl.Diagnostics
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		all = append(all, diags...)
		vals[name] = v
	}
	if all.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate HCL input: %w", all)
	}
	return cty.ObjectVal(vals), nil
}
