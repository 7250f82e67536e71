// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/varstack"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Output receives the result items of a run, in order.
type Output interface {
	Emit(v cty.Value) error
}

// OutputFunc adapts a function to Output.
type OutputFunc func(v cty.Value) error

func (f OutputFunc) Emit(v cty.Value) error { return f(v) }

// Focus is the context item together with its position in the sequence being
// processed. Size is -1 when the length of that sequence is unknown.
type Focus struct {
	Item     cty.Value
	Position int
	Size     int
}

// Activation is one entry of the chain of instructions currently executing.
// The chain follows the runtime call path, so a template invoked by name sees
// the activations of its caller.
type Activation struct {
	Instruction Instruction

	parent      *Activation
	hasKey      bool
	groupingKey cty.Value
	group       []cty.Value
	frame       *iterationFrame
}

// Parent returns the enclosing activation, or nil at the root.
func (a *Activation) Parent() *Activation {
	return a.parent
}

// GroupingKey returns the grouping key this activation carries, if any.
func (a *Activation) GroupingKey() (cty.Value, bool) {
	if !a.hasKey {
		return cty.NilVal, false
	}
	return a.groupingKey, true
}

// State is everything one run of a program owns. It is not safe for
// concurrent use.
type State struct {
	ctx    context.Context
	logger *slog.Logger
	vars   *varstack.Stack
	input  cty.Value
	out    Output

	focus  []Focus
	active *Activation
	base   *hcl.EvalContext

	program *Program
	depth   int
}

// NewState prepares a run over input. The context must carry a logger (see
// ctxlog).
func NewState(ctx context.Context, input cty.Value, out Output) *State {
	s := &State{
		ctx:    ctx,
		logger: ctxlog.FromContext(ctx),
		vars:   varstack.New(),
		input:  input,
		out:    out,
	}
	s.base = &hcl.EvalContext{Functions: s.builtinFunctions()}
	s.vars.PushIsolated()
	s.focus = append(s.focus, Focus{Item: input, Position: 1, Size: 1})
	return s
}

// Context returns the run's context.
func (s *State) Context() context.Context { return s.ctx }

// Logger returns the run's logger.
func (s *State) Logger() *slog.Logger { return s.logger }

// Vars returns the run's variable store.
func (s *State) Vars() *varstack.Stack { return s.vars }

// Current returns the innermost active instruction, or nil.
func (s *State) Current() *Activation { return s.active }

// Emit appends v to the result.
func (s *State) Emit(v cty.Value) error {
	return s.out.Emit(v)
}

// AddFunctions makes fns callable from expressions. Existing names are
// replaced.
func (s *State) AddFunctions(fns map[string]function.Function) {
	for name, fn := range fns {
		s.base.Functions[name] = fn
	}
}

// HasFunction reports whether name is callable from expressions.
func (s *State) HasFunction(name string) bool {
	_, ok := s.base.Functions[name]
	return ok
}

// Focus returns the current context item.
func (s *State) Focus() Focus {
	return s.focus[len(s.focus)-1]
}

// PushFocus makes f the context item until the matching PopFocus.
func (s *State) PushFocus(f Focus) {
	s.focus = append(s.focus, f)
}

// SetFocus replaces the current context item in place.
func (s *State) SetFocus(f Focus) {
	s.focus[len(s.focus)-1] = f
}

// PopFocus restores the context item that was current before PushFocus.
func (s *State) PopFocus() {
	if len(s.focus) == 1 {
		panic("engine: focus stack underflow")
	}
	s.focus = s.focus[:len(s.focus)-1]
}

// enter pushes an activation for in onto the active chain.
func (s *State) enter(in Instruction) *Activation {
	a := &Activation{Instruction: in, parent: s.active}
	s.active = a
	return a
}

// leave pops a, which must be the innermost activation.
func (s *State) leave(a *Activation) {
	if s.active != a {
		panic("engine: activation chain out of order")
	}
	s.active = a.parent
}

// EvalContext builds the expression context for the current point of
// execution: the context item, its position, the visible variables and all
// callable functions.
func (s *State) EvalContext() *hcl.EvalContext {
	f := s.Focus()
	item := f.Item
	if item == cty.NilVal {
		item = cty.NullVal(cty.DynamicPseudoType)
	}
	last := cty.NullVal(cty.Number)
	if f.Size >= 0 {
		last = cty.NumberIntVal(int64(f.Size))
	}

	vars := map[string]cty.Value{
		"input":    s.input,
		"item":     item,
		"position": cty.NumberIntVal(int64(f.Position)),
		"last":     last,
	}

	// Prefixed names are stored as "prefix.local" and exposed as objects.
	prefixed := make(map[string]map[string]cty.Value)
	for name, v := range s.vars.Visible() {
		prefix, local, ok := strings.Cut(name, ".")
		if !ok {
			vars[name] = v
			continue
		}
		if prefixed[prefix] == nil {
			prefixed[prefix] = make(map[string]cty.Value)
		}
		prefixed[prefix][local] = v
	}
	for prefix, attrs := range prefixed {
		vars[prefix] = cty.ObjectVal(attrs)
	}

	ctx := s.base.NewChild()
	ctx.Variables = vars
	return ctx
}
