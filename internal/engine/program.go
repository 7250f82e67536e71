// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/extension"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// MaxCallDepth bounds nested template invocations.
const MaxCallDepth = 1000

// Template is a named, parameterised list of instructions.
type Template struct {
	Name   model.QName
	Params []*Param
	Body   []Instruction
	Range  hcl.Range
}

// ExtensionDecl binds a prefix to an extension namespace and the script that
// implements it.
type ExtensionDecl struct {
	Prefix    string
	Namespace string
	Lang      string
	// Src is the script file, already resolved against the program location.
	Src    string
	Source string
	Range  hcl.Range
}

// Program is a compiled transformation. It is immutable and may be run
// concurrently.
type Program struct {
	Templates  map[model.QName]*Template
	Initial    model.QName
	Extensions []*ExtensionDecl
}

// Run executes prog over input, sending result items to out. The context must
// carry a logger.
func Run(ctx context.Context, prog *Program, input cty.Value, out Output) error {
	st := NewState(ctx, input, out)
	st.program = prog

	reg := extension.NewRegistry(extension.DefaultLanguages(), StandardFunctions())
	if err := st.initExtensions(reg, prog.Extensions); err != nil {
		return err
	}

	tpl, ok := prog.Templates[prog.Initial]
	if !ok {
		return fmt.Errorf("initial template %q is not defined", prog.Initial)
	}

	st.logger.Debug("Transformation started.", "template", prog.Initial.String())
	err := st.invoke(tpl, nil)
	var sig *BreakSignal
	if errors.As(err, &sig) {
		return fmt.Errorf("internal error: %w", err)
	}
	if err != nil {
		return err
	}
	st.logger.Debug("Transformation finished.")
	return nil
}

// initExtensions registers every declared extension namespace and exposes
// its functions as prefix::name.
func (s *State) initExtensions(reg *extension.Registry, decls []*ExtensionDecl) error {
	for _, decl := range decls {
		h, err := reg.RegisterIfAbsent(decl.Namespace, decl.Lang, decl.Src, decl.Source)
		if err != nil {
			return fmt.Errorf("extension %q (%s): %w", decl.Prefix, decl.Namespace, err)
		}
		for name, fn := range h.Functions() {
			s.base.Functions[decl.Prefix+"::"+name] = fn
		}
		s.logger.Debug("Extension namespace ready.", "prefix", decl.Prefix, "namespace", decl.Namespace, "functions", len(h.Functions()))
	}
	return nil
}

// invoke runs tpl in an isolated scope. args holds caller-supplied values by
// param name.
func (s *State) invoke(tpl *Template, args map[model.QName]cty.Value) error {
	if s.depth >= MaxCallDepth {
		return fmt.Errorf("template %q: maximum call depth of %d exceeded", tpl.Name, MaxCallDepth)
	}
	s.depth++
	defer func() { s.depth-- }()

	frame := s.vars.PushIsolated()
	defer s.vars.Pop()

	for _, p := range tpl.Params {
		var (
			v   cty.Value
			err error
		)
		if arg, ok := args[p.Name]; ok {
			v, err = p.convert(arg)
		} else {
			v, err = p.value(s)
		}
		if err != nil {
			return err
		}
		frame.Declare(p.Ref, v)
	}
	return runInstructions(s, tpl.Body)
}
