package engine_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/engine"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func param(local string) *engine.Param {
	return &engine.Param{Name: name(local), Ref: local}
}

func next(locals ...string) *engine.NextIteration {
	ni := &engine.NextIteration{}
	for _, l := range locals {
		ni.WithParams = append(ni.WithParams, &engine.WithParam{Name: name(l)})
	}
	return ni
}

func body() engine.Instruction {
	return &engine.Value{Select: engine.Const(cty.EmptyTupleVal)}
}

func TestValidate_Ordering(t *testing.T) {
	testCases := []struct {
		name     string
		children []engine.Instruction
		rule     string
		code     engine.ErrorCode
	}{
		{
			name:     "param after body",
			children: []engine.Instruction{body(), param("p"), next("p")},
			rule:     engine.RuleParamFirst,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "param after on_completion",
			children: []engine.Instruction{&engine.OnCompletion{}, param("p"), next("p")},
			rule:     engine.RuleParamFirst,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "on_completion after body",
			children: []engine.Instruction{param("p"), body(), &engine.OnCompletion{}, next("p")},
			rule:     engine.RuleOnCompletionAfterParams,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "two on_completion blocks",
			children: []engine.Instruction{&engine.OnCompletion{}, &engine.OnCompletion{}},
			rule:     engine.RuleOnCompletionOnce,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "on_completion after next_iteration",
			children: []engine.Instruction{param("p"), next("p"), &engine.OnCompletion{}},
			rule:     engine.RuleOnCompletionBeforeNext,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "on_completion after bare next_iteration",
			children: []engine.Instruction{next(), &engine.OnCompletion{}},
			rule:     engine.RuleOnCompletionBeforeNext,
			code:     engine.CodeSequenceConstructor,
		},
		{
			name:     "next_iteration not last",
			children: []engine.Instruction{param("p"), next("p"), body()},
			rule:     engine.RuleNextIterationLast,
			code:     engine.CodeNextIterationNotLast,
		},
		{
			name:     "two next_iteration blocks",
			children: []engine.Instruction{next(), next()},
			rule:     engine.RuleNextIterationLast,
			code:     engine.CodeNextIterationNotLast,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			it := &engine.Iterate{Children: tc.children}
			err := it.Validate()

			var ordering *engine.OrderingError
			require.ErrorAs(t, err, &ordering)
			require.Equal(t, tc.rule, ordering.Rule)
			require.Equal(t, tc.code, ordering.Code())
			require.ErrorIs(t, err, engine.ErrStructure)
		})
	}
}

func TestValidate_Names(t *testing.T) {
	t.Run("duplicate param", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("p"), param("p"), next("p", "p")}}).Validate()
		var dup *engine.DuplicateNameError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, engine.ParamName, dup.Kind)
		require.Equal(t, name("p"), dup.Name)
		require.Equal(t, engine.CodeParamNames, dup.Code())
	})

	t.Run("duplicate with_param", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("p"), param("q"), next("p", "p")}}).Validate()
		var dup *engine.DuplicateNameError
		require.ErrorAs(t, err, &dup)
		require.Equal(t, engine.WithParamName, dup.Kind)
		require.Equal(t, engine.CodeDuplicateWithParam, dup.Code())
	})

	t.Run("arity", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("p"), param("q"), next("p")}}).Validate()
		var arity *engine.ArityMismatchError
		require.ErrorAs(t, err, &arity)
		require.Equal(t, 2, arity.Params)
		require.Equal(t, 1, arity.WithParams)
		require.Equal(t, engine.CodeParamNames, arity.Code())
	})

	t.Run("params without next_iteration", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("p"), body()}}).Validate()
		var arity *engine.ArityMismatchError
		require.ErrorAs(t, err, &arity)
		require.Zero(t, arity.WithParams)
	})

	t.Run("name mismatch reports first position", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("x"), next("y")}}).Validate()
		var mismatch *engine.NameMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, 0, mismatch.Position)
		require.Equal(t, name("x"), mismatch.Param)
		require.Equal(t, name("y"), mismatch.WithParam)
		require.Contains(t, err.Error(), "position 1")
	})

	t.Run("names must be in the same order", func(t *testing.T) {
		err := (&engine.Iterate{Children: []engine.Instruction{param("a"), param("b"), next("b", "a")}}).Validate()
		var mismatch *engine.NameMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, 0, mismatch.Position)
	})

	t.Run("qualified names compare by namespace", func(t *testing.T) {
		p := &engine.Param{Name: model.QName{Space: "urn:a", Local: "n"}, Ref: "a.n"}
		ni := &engine.NextIteration{WithParams: []*engine.WithParam{
			{Name: model.QName{Space: "urn:b", Local: "n"}},
		}}
		err := (&engine.Iterate{Children: []engine.Instruction{p, ni}}).Validate()
		var mismatch *engine.NameMismatchError
		require.ErrorAs(t, err, &mismatch)
	})
}

func TestValidate_AcceptsWellFormed(t *testing.T) {
	testCases := []struct {
		name     string
		children []engine.Instruction
	}{
		{name: "empty", children: nil},
		{name: "body only", children: []engine.Instruction{body(), body()}},
		{name: "full", children: []engine.Instruction{param("a"), param("b"), &engine.OnCompletion{}, body(), next("a", "b")}},
		{name: "next_iteration only", children: []engine.Instruction{next()}},
		{name: "on_completion only", children: []engine.Instruction{&engine.OnCompletion{}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, (&engine.Iterate{Children: tc.children}).Validate())
		})
	}
}

func TestValidate_IsCached(t *testing.T) {
	it := &engine.Iterate{Children: []engine.Instruction{body(), param("p")}}
	first := it.Validate()
	require.Error(t, first)

	// Changing the children afterwards does not change the verdict.
	it.Children = nil
	require.Same(t, first, it.Validate())
}

func TestStructureError_Diagnostic(t *testing.T) {
	subject := hcl.Range{Filename: "main.hcl", Start: hcl.Pos{Line: 4, Column: 5}, End: hcl.Pos{Line: 4, Column: 10}}
	it := &engine.Iterate{Children: []engine.Instruction{
		param("x"),
		&engine.NextIteration{WithParams: []*engine.WithParam{{Name: name("y"), Range: subject}}},
	}}

	var se engine.StructureError
	require.ErrorAs(t, it.Validate(), &se)
	d := se.Diagnostic()
	require.Equal(t, hcl.DiagError, d.Severity)
	require.Contains(t, d.Detail, "XTSE3130")
	require.NotNil(t, d.Subject)
	require.Equal(t, subject, *d.Subject)
}
