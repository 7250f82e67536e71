// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Expression is a compiled expression that can be evaluated against the
// current point of execution.
type Expression interface {
	EvaluateScalar(st *State) (cty.Value, error)
	EvaluateSequence(st *State) (Sequence, error)
}

// HCLExpression evaluates an HCL native-syntax expression.
type HCLExpression struct {
	expr hcl.Expression
}

// NewHCLExpression wraps expr.
func NewHCLExpression(expr hcl.Expression) *HCLExpression {
	return &HCLExpression{expr: expr}
}

// Range returns the source range of the expression.
func (e *HCLExpression) Range() hcl.Range {
	return e.expr.Range()
}

func (e *HCLExpression) EvaluateScalar(st *State) (cty.Value, error) {
	v, diags := e.expr.Value(st.EvalContext())
	if diags.HasErrors() {
		return cty.NilVal, &EvaluationError{Diags: diags}
	}
	return v, nil
}

func (e *HCLExpression) EvaluateSequence(st *State) (Sequence, error) {
	v, err := e.EvaluateScalar(st)
	if err != nil {
		return nil, err
	}
	return SequenceOf(v)
}

// constant is an expression with a fixed value.
type constant struct {
	v cty.Value
}

// Const returns an expression that always evaluates to v.
func Const(v cty.Value) Expression {
	return constant{v: v}
}

func (c constant) EvaluateScalar(*State) (cty.Value, error) { return c.v, nil }

func (c constant) EvaluateSequence(*State) (Sequence, error) { return SequenceOf(c.v) }

type childrenOf struct{}

// ChildrenOf selects the direct content of the context item: the elements of
// a collection, tuple or object. Any other item has no children.
var ChildrenOf Expression = childrenOf{}

func (childrenOf) EvaluateScalar(st *State) (cty.Value, error) {
	return st.Focus().Item, nil
}

func (childrenOf) EvaluateSequence(st *State) (Sequence, error) {
	item := st.Focus().Item
	if item == cty.NilVal || !item.IsKnown() || item.IsNull() || !item.CanIterateElements() {
		return Items(), nil
	}
	return SequenceOf(item)
}
