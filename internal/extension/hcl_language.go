// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package extension

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/userfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty/function"
)

// loadHCL compiles `function` blocks. Functions of one script may call each
// other as well as everything in base.
func loadHCL(script Script, base map[string]function.Function) (map[string]function.Function, error) {
	src := []byte(script.Source)
	filename := "<inline:" + script.Namespace + ">"
	if script.Src != "" {
		data, err := os.ReadFile(script.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		src, filename = data, script.Src
	}

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	var fns map[string]function.Function
	evalCtx := func() *hcl.EvalContext {
		all := make(map[string]function.Function, len(base)+len(fns))
		for name, fn := range base {
			all[name] = fn
		}
		for name, fn := range fns {
			all[name] = fn
		}
		return &hcl.EvalContext{Functions: all}
	}

	decoded, remain, diags := userfunc.DecodeUserFunctions(file.Body, "function", evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	// Anything besides function blocks is a mistake in the script.
	if _, diags := remain.Content(&hcl.BodySchema{}); diags.HasErrors() {
		return nil, diags
	}

	fns = decoded
	return fns, nil
}
