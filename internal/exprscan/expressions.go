package exprscan

import (
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/xformgo/internal/grammar"
	"github.com/specialistvlad/xformgo/internal/hclutil"
)

type extraction struct {
	references []hcl.Traversal
	functions  []string
	kinds      []grammar.Kind
}

// extract analyses exprs in one pass. Traversals come from Variables(), which
// already hides names bound by for-expressions; functions and node kinds come
// from walking the syntax tree.
func extract(exprs ...hcl.Expression) extraction {
	refs := map[string]hcl.Traversal{}
	funcs := map[string]struct{}{}
	kinds := map[grammar.Kind]struct{}{}

	for _, expr := range exprs {
		for _, tr := range expr.Variables() {
			refs[hclutil.TraversalKey(tr)] = tr
		}
		if syn, ok := expr.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syn, func(n hclsyntax.Node) hcl.Diagnostics {
				visit(n, funcs, kinds)
				return nil
			})
		}
	}

	res := extraction{
		functions: slices.Sorted(maps.Keys(funcs)),
		kinds:     slices.Sorted(maps.Keys(kinds)),
	}
	for _, key := range slices.Sorted(maps.Keys(refs)) {
		res.references = append(res.references, refs[key])
	}
	return res
}

func visit(n hclsyntax.Node, funcs map[string]struct{}, kinds map[grammar.Kind]struct{}) {
	switch e := n.(type) {
	case *hclsyntax.ParenthesesExpr:
		// grouping only; the wrapped node is visited on its own
	case *hclsyntax.FunctionCallExpr:
		funcs[e.Name] = struct{}{}
		kinds[grammar.Classify(e)] = struct{}{}
	case hclsyntax.Expression:
		kinds[grammar.Classify(e)] = struct{}{}
	}
}
