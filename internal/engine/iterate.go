// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"errors"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/specialistvlad/xformgo/internal/varstack"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Instruction is one executable node of a compiled program.
type Instruction interface {
	Execute(st *State) error
}

// Iterate loops over the items selected by Select, threading Params from one
// pass to the next. Children holds, in order, the param declarations, an
// optional OnCompletion, the body instructions and an optional trailing
// NextIteration.
type Iterate struct {
	Select   Expression
	Children []Instruction
	Range    hcl.Range

	once  sync.Once
	index *iterateIndex
	err   error
}

func (it *Iterate) SourceRange() hcl.Range { return it.Range }

type iterState int

const (
	stateInit iterState = iota
	stateRunning
	stateBroken
	stateExhausted
	stateCompleting
	stateDone
)

var iterStateNames = [...]string{"init", "running", "broken", "exhausted", "completing", "done"}

func (s iterState) String() string { return iterStateNames[s] }

// iterationFrame is the runtime record of one execution of an Iterate. A new
// frame is allocated on every Execute, so recursion and nesting never share
// one.
type iterationFrame struct {
	construct *Iterate
	vars      *varstack.Frame
	slots     []int
	processed int
	state     iterState
}

// Execute runs the loop. The selected sequence is released, the parameter
// frame popped and the caller's context item restored on every exit path.
func (it *Iterate) Execute(st *State) error {
	if err := it.Validate(); err != nil {
		return err
	}
	idx := it.index
	frame := &iterationFrame{construct: it, state: stateInit}

	sel := it.Select
	if sel == nil {
		sel = ChildrenOf
	}
	seq, err := sel.EvaluateSequence(st)
	if err != nil {
		return err
	}
	cur := NewCursor(seq)
	defer cur.Release()

	act := st.enter(it)
	defer st.leave(act)
	act.frame = frame

	// Params are evaluated against the caller's context, before the first
	// item is made current.
	frame.vars = st.vars.Push()
	defer st.vars.Pop()
	for _, p := range idx.params {
		v, err := p.value(st)
		if err != nil {
			return err
		}
		frame.slots = append(frame.slots, frame.vars.Declare(p.Ref, v))
	}

	origin := st.Focus()
	st.PushFocus(Focus{Item: cty.NilVal, Position: 0, Size: cur.Size()})
	defer st.PopFocus()

	frame.state = stateRunning
	for frame.state == stateRunning {
		if err := st.ctx.Err(); err != nil {
			return err
		}
		item, ok := cur.Advance()
		if !ok {
			frame.state = stateExhausted
			break
		}
		st.SetFocus(Focus{Item: item, Position: cur.Position(), Size: cur.Size()})
		frame.processed++

		broken, err := it.pass(st, frame)
		if err != nil {
			return err
		}
		if broken {
			frame.state = stateBroken
		}
	}
	st.logger.Debug("Iterate loop ended.", "state", frame.state, "items", frame.processed)

	if frame.state == stateExhausted && idx.onCompletion != nil {
		frame.state = stateCompleting
		if frame.processed == 0 {
			st.SetFocus(origin)
		}
		if err := idx.onCompletion.Execute(st); err != nil {
			return err
		}
	}
	frame.state = stateDone
	return nil
}

// pass runs the body once for the current item. It reports true when a break
// owned by frame was raised.
func (it *Iterate) pass(st *State, frame *iterationFrame) (bool, error) {
	st.vars.Push()
	defer st.vars.Pop()

	for _, child := range it.index.body {
		if err := child.Execute(st); err != nil {
			var sig *BreakSignal
			if errors.As(err, &sig) && sig.owner == frame {
				return true, nil
			}
			return false, err
		}
	}

	next := it.index.next
	if next == nil {
		return false, nil
	}

	// All new values are computed against the current item before any
	// parameter is rebound.
	values := make([]cty.Value, len(next.WithParams))
	for i, wp := range next.WithParams {
		v, err := wp.value(st, it.index.params[i])
		if err != nil {
			return false, err
		}
		values[i] = v
	}
	for i, v := range values {
		frame.vars.Set(frame.slots[i], v)
	}
	return false, nil
}

// iterationFrame returns the frame of the innermost active execution of
// owner, or of any iterate when owner is nil.
func (s *State) iterationFrame(owner *Iterate) *iterationFrame {
	for a := s.active; a != nil; a = a.parent {
		if a.frame == nil {
			continue
		}
		if owner == nil || a.frame.construct == owner {
			return a.frame
		}
	}
	return nil
}

// Param declares a loop or template parameter.
type Param struct {
	Name model.QName
	// Ref is the name the value is bound to in the variable store.
	Ref    string
	Select Expression
	// Type, when not cty.NilType, is the declared type values are converted to.
	Type  cty.Type
	Range hcl.Range
}

func (p *Param) SourceRange() hcl.Range { return p.Range }

// Execute is never valid: params are bound by the construct that declares
// them.
func (p *Param) Execute(*State) error {
	return errors.New("param executed outside of iterate or template")
}

func (p *Param) value(st *State) (cty.Value, error) {
	v := cty.NullVal(cty.DynamicPseudoType)
	if p.Select != nil {
		var err error
		if v, err = p.Select.EvaluateScalar(st); err != nil {
			return cty.NilVal, err
		}
	}
	return p.convert(v)
}

func (p *Param) convert(v cty.Value) (cty.Value, error) {
	if p.Type == cty.NilType {
		return v, nil
	}
	out, err := convert.Convert(v, p.Type)
	if err != nil {
		return cty.NilVal, &TypeError{Name: p.Name.String(), Want: p.Type, Err: err, Subject: p.Range}
	}
	return out, nil
}

// OnCompletion runs once after the selected sequence is exhausted, with the
// final parameter values in scope.
type OnCompletion struct {
	Select Expression
	Body   []Instruction
	Range  hcl.Range
}

func (oc *OnCompletion) SourceRange() hcl.Range { return oc.Range }

func (oc *OnCompletion) Execute(st *State) error {
	act := st.enter(oc)
	defer st.leave(act)
	return runConstructor(st, oc.Select, oc.Body)
}

// NextIteration rebinds the params of its iterate for the next pass.
type NextIteration struct {
	WithParams []*WithParam
	Range      hcl.Range
}

func (ni *NextIteration) SourceRange() hcl.Range { return ni.Range }

// Execute is never valid: the owning iterate evaluates the bindings itself.
func (ni *NextIteration) Execute(*State) error {
	return errors.New("next_iteration executed outside of iterate")
}

// WithParam supplies a parameter value, to next_iteration or call_template.
type WithParam struct {
	Name   model.QName
	Select Expression
	Range  hcl.Range
}

func (wp *WithParam) value(st *State, target *Param) (cty.Value, error) {
	v := cty.NullVal(cty.DynamicPseudoType)
	if wp.Select != nil {
		var err error
		if v, err = wp.Select.EvaluateScalar(st); err != nil {
			return cty.NilVal, err
		}
	}
	if target == nil {
		return v, nil
	}
	return target.convert(v)
}

// Break ends the iterate that owns it: its own output is produced, the rest
// of the current pass is skipped and on_completion does not run.
type Break struct {
	Select Expression
	Body   []Instruction
	// Owner is the lexically enclosing iterate. When nil, the innermost
	// active iterate is used.
	Owner *Iterate
	Range hcl.Range
}

func (b *Break) SourceRange() hcl.Range { return b.Range }

func (b *Break) Execute(st *State) error {
	frame := st.iterationFrame(b.Owner)
	if frame == nil {
		return errors.New("break executed outside of an active iterate")
	}

	act := st.enter(b)
	defer st.leave(act)
	if err := runConstructor(st, b.Select, b.Body); err != nil {
		return err
	}
	return &BreakSignal{owner: frame}
}
