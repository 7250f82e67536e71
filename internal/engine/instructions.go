// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// runConstructor emits the value of sel, when present, and then runs body in
// a fresh variable scope.
func runConstructor(st *State, sel Expression, body []Instruction) error {
	st.vars.Push()
	defer st.vars.Pop()

	if sel != nil {
		v, err := sel.EvaluateScalar(st)
		if err != nil {
			return err
		}
		if err := st.Emit(v); err != nil {
			return err
		}
	}
	return runInstructions(st, body)
}

func runInstructions(st *State, body []Instruction) error {
	for _, in := range body {
		if err := in.Execute(st); err != nil {
			return err
		}
	}
	return nil
}

// runBody runs body in its own variable scope.
func runBody(st *State, body []Instruction) error {
	st.vars.Push()
	defer st.vars.Pop()
	return runInstructions(st, body)
}

// Value appends the value of Select to the result as a single item.
type Value struct {
	Select Expression
	Range  hcl.Range
}

func (in *Value) SourceRange() hcl.Range { return in.Range }

func (in *Value) Execute(st *State) error {
	v, err := in.Select.EvaluateScalar(st)
	if err != nil {
		return err
	}
	return st.Emit(v)
}

// Variable binds a name in the enclosing scope for the instructions that
// follow it.
type Variable struct {
	Name   model.QName
	Ref    string
	Select Expression
	Type   cty.Type
	Range  hcl.Range
}

func (in *Variable) SourceRange() hcl.Range { return in.Range }

func (in *Variable) Execute(st *State) error {
	v := cty.NullVal(cty.DynamicPseudoType)
	if in.Select != nil {
		var err error
		if v, err = in.Select.EvaluateScalar(st); err != nil {
			return err
		}
	}
	if in.Type != cty.NilType {
		converted, err := convert.Convert(v, in.Type)
		if err != nil {
			return &TypeError{Name: in.Name.String(), Want: in.Type, Err: err, Subject: in.Range}
		}
		v = converted
	}
	st.vars.Top().Declare(in.Ref, v)
	return nil
}

// If runs Body when Test is true.
type If struct {
	Test  Expression
	Body  []Instruction
	Range hcl.Range
}

func (in *If) SourceRange() hcl.Range { return in.Range }

func (in *If) Execute(st *State) error {
	ok, err := evalTest(st, in.Test, in.Range)
	if err != nil || !ok {
		return err
	}
	act := st.enter(in)
	defer st.leave(act)
	return runBody(st, in.Body)
}

// When is one branch of Choose.
type When struct {
	Test  Expression
	Body  []Instruction
	Range hcl.Range
}

// Choose runs the body of the first When whose test is true, or Otherwise.
type Choose struct {
	Whens     []*When
	Otherwise []Instruction
	Range     hcl.Range
}

func (in *Choose) SourceRange() hcl.Range { return in.Range }

func (in *Choose) Execute(st *State) error {
	act := st.enter(in)
	defer st.leave(act)

	for _, w := range in.Whens {
		ok, err := evalTest(st, w.Test, w.Range)
		if err != nil {
			return err
		}
		if ok {
			return runBody(st, w.Body)
		}
	}
	return runBody(st, in.Otherwise)
}

func evalTest(st *State, test Expression, subject hcl.Range) (bool, error) {
	v, err := test.EvaluateScalar(st)
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, &TypeError{Name: "test", Want: cty.Bool, Err: err, Subject: subject}
	}
	if !b.IsKnown() {
		return false, nil
	}
	var out bool
	if err := gocty.FromCtyValue(b, &out); err != nil {
		return false, &TypeError{Name: "test", Want: cty.Bool, Err: err, Subject: subject}
	}
	return out, nil
}

// ForEach runs Body once per selected item, with that item as context.
type ForEach struct {
	Select Expression
	Body   []Instruction
	Range  hcl.Range
}

func (in *ForEach) SourceRange() hcl.Range { return in.Range }

func (in *ForEach) Execute(st *State) error {
	seq, err := in.Select.EvaluateSequence(st)
	if err != nil {
		return err
	}
	cur := NewCursor(seq)
	defer cur.Release()

	act := st.enter(in)
	defer st.leave(act)

	st.PushFocus(Focus{Item: cty.NilVal, Size: cur.Size()})
	defer st.PopFocus()
	for {
		item, ok := cur.Advance()
		if !ok {
			return nil
		}
		st.SetFocus(Focus{Item: item, Position: cur.Position(), Size: cur.Size()})
		if err := runBody(st, in.Body); err != nil {
			return err
		}
	}
}

// ForEachGroup partitions the selected items by the value of GroupBy and runs
// Body once per group, in order of first appearance. While the body runs the
// group's key and members are available to current_grouping_key() and
// current_group(). Items whose key is null belong to no group.
type ForEachGroup struct {
	Select  Expression
	GroupBy Expression
	Body    []Instruction
	Range   hcl.Range
}

func (in *ForEachGroup) SourceRange() hcl.Range { return in.Range }

type group struct {
	key     cty.Value
	members []cty.Value
}

func (in *ForEachGroup) Execute(st *State) error {
	seq, err := in.Select.EvaluateSequence(st)
	if err != nil {
		return err
	}
	items := Collect(seq)

	groups, err := in.partition(st, items)
	if err != nil {
		return err
	}

	act := st.enter(in)
	defer st.leave(act)

	st.PushFocus(Focus{Item: cty.NilVal, Size: len(groups)})
	defer st.PopFocus()
	for i, g := range groups {
		act.setGroup(g.key, g.members)
		st.SetFocus(Focus{Item: g.members[0], Position: i + 1, Size: len(groups)})
		if err := runBody(st, in.Body); err != nil {
			return err
		}
	}
	return nil
}

func (in *ForEachGroup) partition(st *State, items []cty.Value) ([]*group, error) {
	st.PushFocus(Focus{Item: cty.NilVal, Size: len(items)})
	defer st.PopFocus()

	var groups []*group
	for i, item := range items {
		st.SetFocus(Focus{Item: item, Position: i + 1, Size: len(items)})
		key, err := in.GroupBy.EvaluateScalar(st)
		if err != nil {
			return nil, err
		}
		if key.IsNull() {
			continue
		}

		var target *group
		for _, g := range groups {
			if g.key.RawEquals(key) {
				target = g
				break
			}
		}
		if target == nil {
			target = &group{key: key}
			groups = append(groups, target)
		}
		target.members = append(target.members, item)
	}
	return groups, nil
}

// CallTemplate invokes a named template. Its params receive the values of
// the matching WithParams, evaluated in the caller's context; the rest fall
// back to their own select.
type CallTemplate struct {
	Name       model.QName
	WithParams []*WithParam
	// Template is resolved at compile time. When nil, the program's template
	// table is consulted at run time.
	Template *Template
	Range    hcl.Range
}

func (in *CallTemplate) SourceRange() hcl.Range { return in.Range }

func (in *CallTemplate) Execute(st *State) error {
	tpl := in.Template
	if tpl == nil && st.program != nil {
		tpl = st.program.Templates[in.Name]
	}
	if tpl == nil {
		return fmt.Errorf("call_template: no template named %q", in.Name)
	}

	args := make(map[model.QName]cty.Value, len(in.WithParams))
	for _, wp := range in.WithParams {
		v, err := wp.value(st, nil)
		if err != nil {
			return err
		}
		args[wp.Name] = v
	}

	act := st.enter(in)
	defer st.leave(act)
	return st.invoke(tpl, args)
}

// Message writes the value of Select, followed by anything Body emits, to
// the run log. When Terminate evaluates to true the run stops with a
// *TerminateError.
type Message struct {
	Select    Expression
	Terminate Expression
	Body      []Instruction
	Range     hcl.Range
}

func (in *Message) SourceRange() hcl.Range { return in.Range }

func (in *Message) Execute(st *State) error {
	var parts []cty.Value
	if in.Select != nil {
		v, err := in.Select.EvaluateScalar(st)
		if err != nil {
			return err
		}
		parts = append(parts, v)
	}

	if len(in.Body) > 0 {
		saved := st.out
		st.out = OutputFunc(func(v cty.Value) error {
			parts = append(parts, v)
			return nil
		})
		err := runBody(st, in.Body)
		st.out = saved
		if err != nil {
			return err
		}
	}

	text := ""
	for _, p := range parts {
		text += displayString(p)
	}

	terminate := false
	if in.Terminate != nil {
		var err error
		if terminate, err = evalTest(st, in.Terminate, in.Range); err != nil {
			return err
		}
	}

	st.logger.Info("Message.", "message", text, "terminate", terminate)
	if terminate {
		return &TerminateError{Message: text}
	}
	return nil
}

// displayString renders a value for humans: strings as-is, anything else as
// JSON.
func displayString(v cty.Value) string {
	if v.IsNull() {
		return ""
	}
	if v.Type() == cty.String && v.IsKnown() {
		return v.AsString()
	}
	if !v.IsWhollyKnown() {
		return "(unknown)"
	}
	buf, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(buf)
}
