// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package grammar

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Classify returns the grammar kind of the outermost node of expr.
// Parentheses and template wrappers are transparent.
func Classify(expr hclsyntax.Expression) Kind {
	switch e := expr.(type) {
	case nil:
		return Empty
	case *hclsyntax.ParenthesesExpr:
		return Classify(e.Expression)
	case *hclsyntax.TemplateWrapExpr:
		return Classify(e.Wrapped)
	case *hclsyntax.LiteralValueExpr:
		return classifyLiteral(e.Val)
	case *hclsyntax.TemplateExpr:
		if e.IsStringLiteral() {
			return StringLiteral
		}
		return Expr
	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) > 1 {
			return PathExpr
		}
		return VarName
	case *hclsyntax.RelativeTraversalExpr:
		return StepExpr
	case *hclsyntax.IndexExpr:
		return Predicates
	case *hclsyntax.SplatExpr:
		return Star
	case *hclsyntax.AnonSymbolExpr:
		return Dot
	case *hclsyntax.FunctionCallExpr:
		return FunctionCall
	case *hclsyntax.ConditionalExpr:
		return IfExpr
	case *hclsyntax.ForExpr:
		return ForExpr
	case *hclsyntax.UnaryOpExpr:
		if e.Op == hclsyntax.OpNegate {
			return UnaryMinus
		}
		return UnaryExpr
	case *hclsyntax.BinaryOpExpr:
		return classifyOperation(e.Op)
	case *hclsyntax.TupleConsExpr:
		if len(e.Exprs) == 0 {
			return Empty
		}
		return Expr
	default:
		return Expr
	}
}

func classifyLiteral(v cty.Value) Kind {
	if v.IsNull() {
		return Empty
	}
	if v.Type() != cty.Number {
		return Expr
	}
	if v.AsBigFloat().IsInt() {
		return IntegerLiteral
	}
	return DecimalLiteral
}

func classifyOperation(op *hclsyntax.Operation) Kind {
	switch op {
	case hclsyntax.OpLogicalOr:
		return OrExpr
	case hclsyntax.OpLogicalAnd:
		return AndExpr
	case hclsyntax.OpAdd, hclsyntax.OpSubtract:
		return AdditiveExpr
	case hclsyntax.OpMultiply, hclsyntax.OpDivide, hclsyntax.OpModulo:
		return MultiplicativeExpr
	case hclsyntax.OpEqual, hclsyntax.OpNotEqual,
		hclsyntax.OpLessThan, hclsyntax.OpLessThanOrEqual,
		hclsyntax.OpGreaterThan, hclsyntax.OpGreaterThanOrEqual:
		return ComparisonExpr
	default:
		return Expr
	}
}

// IsLiteral reports whether k is a literal constant kind.
func IsLiteral(k Kind) bool {
	switch k {
	case StringLiteral, IntegerLiteral, DecimalLiteral, DoubleLiteral:
		return true
	}
	return false
}
