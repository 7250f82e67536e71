package integration_tests

import (
	"testing"

	"github.com/specialistvlad/xformgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

const threeItems = `{"items": ["a", "b", "c"]}`

func TestIterate_CountsAndCompletes(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"input.json": threeItems,
		"program/main.hcl": `
template "main" {
  iterate {
    select = input.items
    param "p" { select = 1 }
    on_completion { select = "p=${p}" }
    value { select = p }
    next_iteration {
      with_param "p" { select = p + 1 }
    }
  }
}
`,
	}, testutil.Options{Input: "input.json"})

	testutil.AssertItems(t, result, "1", "2", "3", `"p=4"`)
}

func TestIterate_BreakSkipsCompletion(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"input.json": threeItems,
		"program/main.hcl": `
template "main" {
  iterate {
    select = input.items
    param "p" { select = 1 }
    on_completion { select = "p=${p}" }
    if {
      test = p == 2
      break {}
    }
    value { select = p }
    next_iteration {
      with_param "p" { select = p + 1 }
    }
  }
}
`,
	}, testutil.Options{Input: "input.json"})

	testutil.AssertItems(t, result, "1")
}

func TestIterate_BreakWithValue(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"orders.yaml": `
orders:
  - {id: o1, amount: 60}
  - {id: o2, amount: 50}
  - {id: o3, amount: 10}
`,
		"program/main.hcl": `
template "main" {
  iterate {
    select = input.orders
    param "total" { select = 0 }
    on_completion { select = "total=${total}" }
    variable "next" { select = total + item.amount }
    if {
      test = next > 100
      break { select = "over budget at ${item.id}" }
    }
    value { select = item.id }
    next_iteration {
      with_param "total" { select = next }
    }
  }
}
`,
	}, testutil.Options{Input: "orders.yaml"})

	testutil.AssertItems(t, result, `"o1"`, `"over budget at o2"`)
}

func TestIterate_StructureErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		body        string
		errContains []string
	}{
		{
			name: "name mismatch",
			body: `
    param "x" { select = 0 }
    value { select = item }
    next_iteration {
      with_param "y" { select = 1 }
    }`,
			errContains: []string{"XTSE3130", "position 1"},
		},
		{
			name: "on_completion after body",
			body: `
    value { select = item }
    on_completion { select = "done" }`,
			errContains: []string{"XTSE0010"},
		},
		{
			name: "param after body",
			body: `
    value { select = item }
    param "p" { select = 0 }
    next_iteration {
      with_param "p" { select = 1 }
    }`,
			errContains: []string{"XTSE0010"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := testutil.RunIntegrationTest(t, map[string]string{
				"input.json":       threeItems,
				"program/main.hcl": "template \"main\" {\n  iterate {\n    select = input.items\n" + tc.body + "\n  }\n}\n",
			}, testutil.Options{Input: "input.json"})

			require.Error(t, result.Err)
			for _, s := range tc.errContains {
				require.ErrorContains(t, result.Err, s)
			}
			require.Empty(t, result.Output, "no item may be processed")
		})
	}
}

func TestIterate_RecursiveTemplates(t *testing.T) {
	t.Parallel()

	// Each level counts its own items; the inner invocation breaks early
	// without affecting the outer one.
	result := testutil.RunIntegrationTest(t, map[string]string{
		"tree.json": `{"name": "root", "children": [
			{"name": "a", "children": [{"name": "a1", "children": []}, {"name": "a2", "children": []}]},
			{"name": "b", "children": []}
		]}`,
		"program/main.hcl": `
template "main" {
  call_template "walk" {
    with_param "node" { select = input }
  }
}

template "walk" {
  param "node" {}
  iterate {
    select = node.children
    param "n" { select = 0 }
    on_completion { select = "${node.name}:${n}" }
    if {
      test = item.name == "a2"
      break { select = "stop at a2" }
    }
    call_template "walk" {
      with_param "node" { select = item }
    }
    next_iteration {
      with_param "n" { select = n + 1 }
    }
  }
}
`,
	}, testutil.Options{Input: "tree.json"})

	testutil.AssertItems(t, result,
		`"a1:0"`, `"stop at a2"`,
		`"b:0"`,
		`"root:2"`,
	)
}

func TestIterate_EmptySequenceRunsCompletion(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"program/main.hcl": `
template "main" {
  iterate {
    select = []
    param "n" { select = 0 }
    on_completion { select = "n=${n}" }
    next_iteration {
      with_param "n" { select = n + 1 }
    }
  }
}
`,
	}, testutil.Options{})

	testutil.AssertItems(t, result, `"n=0"`)
}
