// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Program structure, the root container for everything
// loaded from a user's .hcl program files.
//
// Why merge files into one Program?
//
// A transformation can be split across many files: a library of templates in
// one, extension declarations in another. Names are resolved program-wide, so
// a template may call a template declared in a sibling file and use a prefix
// bound anywhere in the program. Loading therefore discovers every file first
// and merges all of them into one Program before any name is resolved.
package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/fsutil"
)

// Program is the merged content of all program files.
type Program struct {
	Namespaces []*Namespace
	Extensions []*Extension
	Templates  []*Element
	Files      []string
}

// NewProgram creates and returns an empty Program.
func NewProgram() *Program {
	return &Program{}
}

// Namespace binds a prefix to a namespace URI.
type Namespace struct {
	Prefix   string
	URI      string
	DefRange hcl.Range
}

// Extension declares that the namespace bound to Prefix is implemented by a
// script.
type Extension struct {
	Prefix        string
	Script        *Script
	DefRange      hcl.Range
	FSInformation *FSInfo
}

// Script is the `script` block of an extension.
type Script struct {
	Lang   string `hcl:"lang,optional"`
	Src    string `hcl:"src,optional"`
	Source string `hcl:"source,optional"`
}

// hclProgramFile represents the top-level structure of a program file for
// decoding.
type hclProgramFile struct {
	Namespaces []*hclNamespace `hcl:"namespace,block"`
	Extensions []*hclExtension `hcl:"extension,block"`
	Templates  []*hclTemplate  `hcl:"template,block"`
}

type hclNamespace struct {
	Prefix   string    `hcl:"prefix,label"`
	URI      string    `hcl:"uri"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclExtension struct {
	Prefix   string    `hcl:"prefix,label"`
	Script   *Script   `hcl:"script,block"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclTemplate struct {
	Name     string    `hcl:"name,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

// decodeProgramFile decodes one parsed file and appends its content to p.
func (p *Program) decodeProgramFile(file *hcl.File, filePath string) hcl.Diagnostics {
	var parsed hclProgramFile
	diags := gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return diags
	}

	for _, ns := range parsed.Namespaces {
		p.Namespaces = append(p.Namespaces, &Namespace{Prefix: ns.Prefix, URI: ns.URI, DefRange: ns.DefRange})
	}

	for _, ext := range parsed.Extensions {
		if ext.Script == nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing script block",
				Detail:   fmt.Sprintf("Extension %q must contain a script block.", ext.Prefix),
				Subject:  ext.DefRange.Ptr(),
			})
			continue
		}
		if ext.Script.Src != "" && ext.Script.Source != "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Conflicting script sources",
				Detail:   "Only one of \"src\" and \"source\" can be set.",
				Subject:  ext.DefRange.Ptr(),
			})
			continue
		}
		p.Extensions = append(p.Extensions, &Extension{
			Prefix:        ext.Prefix,
			Script:        ext.Script,
			DefRange:      ext.DefRange,
			FSInformation: NewFSInfo(filePath),
		})
	}

	for _, tpl := range parsed.Templates {
		el, elDiags := parseElement(KindTemplate, tpl.Name, tpl.Body, tpl.DefRange, filePath)
		diags = append(diags, elDiags...)
		if el != nil {
			p.Templates = append(p.Templates, el)
		}
	}

	p.Files = append(p.Files, filePath)
	return diags
}

// ParseProgramSource parses a single program from memory. It is used by
// tests and by callers that do not read programs from disk.
func ParseProgramSource(src []byte, filename string) (*Program, hcl.Diagnostics) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	p := NewProgram()
	diags = append(diags, p.decodeProgramFile(file, filename)...)
	if diags.HasErrors() {
		return nil, diags
	}
	return p, diags
}

// ResolveProgramPath returns the program files at path: the file itself, or
// every .hcl file below a directory.
func ResolveProgramPath(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("program path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		logger.Debug("Program path is a directory, scanning for HCL files.", "directory", path)
		return fsutil.FindFilesByExtension(path, ".hcl")
	}

	if filepath.Ext(path) != ".hcl" {
		return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
	}
	return []string{path}, nil
}

// LoadProgram finds and parses all program files at path into one Program.
func LoadProgram(ctx context.Context, path string) (*Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading program from path.", "path", path)

	files, err := ResolveProgramPath(ctx, path)
	if err != nil {
		return nil, err
	}

	program := NewProgram()
	if len(files) == 0 {
		logger.Warn("No .hcl program files found in path.", "path", path)
		return program, nil
	}

	parser := hclparse.NewParser()
	parsed := make([]*hcl.File, len(files))
	scripts := map[string]bool{}
	for i, filePath := range files {
		file, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}
		parsed[i] = file
		for _, src := range scriptSources(file, filePath) {
			scripts[src] = true
		}
	}

	for i, filePath := range files {
		if scripts[absPath(filePath)] {
			logger.Debug("Skipping extension script file.", "path", filePath)
			continue
		}
		if diags := program.decodeProgramFile(parsed[i], filePath); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
		}
		logger.Debug("Program file loaded.", "path", filePath)
	}

	logger.Debug("Finished loading program.", "files", len(program.Files), "templates", len(program.Templates))
	return program, nil
}

var (
	extensionBlockSchema = &hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{{Type: "extension", LabelNames: []string{"prefix"}}}}
	scriptBlockSchema    = &hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{{Type: "script"}}}
	scriptSrcSchema      = &hcl.BodySchema{Attributes: []hcl.AttributeSchema{{Name: "src"}}}
)

// scriptSources returns the absolute paths of the script files that the
// extension blocks of file refer to. Such files hold function definitions,
// not program content. Malformed blocks are ignored here; decoding reports
// them.
func scriptSources(file *hcl.File, filePath string) []string {
	var out []string
	content, _, _ := file.Body.PartialContent(extensionBlockSchema)
	for _, ext := range content.Blocks {
		extContent, _, _ := ext.Body.PartialContent(scriptBlockSchema)
		for _, script := range extContent.Blocks {
			attrs, _, _ := script.Body.PartialContent(scriptSrcSchema)
			attr, ok := attrs.Attributes["src"]
			if !ok {
				continue
			}
			var src string
			if diags := gohcl.DecodeExpression(attr.Expr, nil, &src); diags.HasErrors() || src == "" {
				continue
			}
			if !filepath.IsAbs(src) {
				src = filepath.Join(filepath.Dir(filePath), src)
			}
			out = append(out, absPath(src))
		}
	}
	return out
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
