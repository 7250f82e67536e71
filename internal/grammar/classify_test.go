package grammar_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/xformgo/internal/grammar"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, src string) hclsyntax.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		expr string
		want grammar.Kind
	}{
		{`"plain"`, grammar.StringLiteral},
		{`"hi ${name}"`, grammar.Expr},
		{`42`, grammar.IntegerLiteral},
		{`4.5`, grammar.DecimalLiteral},
		{`null`, grammar.Empty},
		{`[]`, grammar.Empty},
		{`[1, 2]`, grammar.Expr},
		{`total`, grammar.VarName},
		{`item.id`, grammar.PathExpr},
		{`item.tags[0]`, grammar.PathExpr},
		{`input.orders[*].id`, grammar.Star},
		{`upper(x)`, grammar.FunctionCall},
		{`acme::shout(x)`, grammar.FunctionCall},
		{`a ? b : c`, grammar.IfExpr},
		{`[for x in xs : x]`, grammar.ForExpr},
		{`-x`, grammar.UnaryMinus},
		{`!x`, grammar.UnaryExpr},
		{`a || b`, grammar.OrExpr},
		{`a && b`, grammar.AndExpr},
		{`a + b`, grammar.AdditiveExpr},
		{`a % b`, grammar.MultiplicativeExpr},
		{`a >= b`, grammar.ComparisonExpr},
		{`(a + b)`, grammar.AdditiveExpr},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			require.Equal(t, tc.want, grammar.Classify(parseExpr(t, tc.expr)))
		})
	}
}

func TestKind_NamesAreStable(t *testing.T) {
	require.Equal(t, 99, grammar.Count())
	require.Equal(t, "XPath2", grammar.XPath2.String())
	require.Equal(t, "void", grammar.Void.String())
	require.Equal(t, "OccurrenceOneOrMore", grammar.OccurrenceOneOrMore.String())
	require.Equal(t, grammar.Kind(67), grammar.FunctionCall)

	k, ok := grammar.Lookup("ComparisonExpr")
	require.True(t, ok)
	require.Equal(t, grammar.ComparisonExpr, k)

	_, ok = grammar.Lookup("NoSuchKind")
	require.False(t, ok)
	require.False(t, grammar.Kind(-1).Valid())
	require.Equal(t, "Kind(?)", grammar.Kind(500).String())
}

func TestIsLiteral(t *testing.T) {
	require.True(t, grammar.IsLiteral(grammar.StringLiteral))
	require.True(t, grammar.IsLiteral(grammar.IntegerLiteral))
	require.False(t, grammar.IsLiteral(grammar.PathExpr))
}
