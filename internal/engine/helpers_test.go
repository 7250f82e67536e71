package engine_test

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/engine"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func expr(t *testing.T, src string) engine.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return engine.NewHCLExpression(e)
}

func name(local string) model.QName {
	return model.LocalName(local)
}

// collector gathers everything a run emits.
type collector struct {
	values []cty.Value
}

func (c *collector) Emit(v cty.Value) error {
	c.values = append(c.values, v)
	return nil
}

// texts renders values as compact JSON so results compare independently of
// number precision.
func (c *collector) texts(t *testing.T) []string {
	t.Helper()
	out := make([]string, 0, len(c.values))
	for _, v := range c.values {
		buf, err := ctyjson.Marshal(v, v.Type())
		require.NoError(t, err)
		out = append(out, string(buf))
	}
	return out
}

func newState(input cty.Value) (*engine.State, *collector) {
	out := &collector{}
	return engine.NewState(ctxlog.Discard(context.Background()), input, out), out
}

// countingSequence yields items and records how often it was released.
type countingSequence struct {
	items    []cty.Value
	next     int
	released *int
}

func (s *countingSequence) Next() (cty.Value, bool) {
	if s.next >= len(s.items) {
		return cty.NilVal, false
	}
	v := s.items[s.next]
	s.next++
	return v, true
}

func (s *countingSequence) Release() { *s.released++ }

// countingSelect is a select expression over fixed items that counts
// evaluations and releases of the sequences it hands out.
type countingSelect struct {
	items     []cty.Value
	evaluated int
	released  int
}

func numbers(ns ...int) *countingSelect {
	sel := &countingSelect{}
	for _, n := range ns {
		sel.items = append(sel.items, cty.NumberIntVal(int64(n)))
	}
	return sel
}

func (s *countingSelect) EvaluateScalar(*engine.State) (cty.Value, error) {
	return cty.TupleVal(s.items), nil
}

func (s *countingSelect) EvaluateSequence(*engine.State) (engine.Sequence, error) {
	s.evaluated++
	return &countingSequence{items: s.items, released: &s.released}, nil
}

// instructionFunc adapts a function to engine.Instruction.
type instructionFunc func(st *engine.State) error

func (f instructionFunc) Execute(st *engine.State) error { return f(st) }
