// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// standardFunctions are available to every expression.
var standardFunctions = map[string]function.Function{
	"abs":             stdlib.AbsoluteFunc,
	"ceil":            stdlib.CeilFunc,
	"chomp":           stdlib.ChompFunc,
	"chunklist":       stdlib.ChunklistFunc,
	"coalesce":        stdlib.CoalesceFunc,
	"coalescelist":    stdlib.CoalesceListFunc,
	"compact":         stdlib.CompactFunc,
	"concat":          stdlib.ConcatFunc,
	"contains":        stdlib.ContainsFunc,
	"csvdecode":       stdlib.CSVDecodeFunc,
	"distinct":        stdlib.DistinctFunc,
	"element":         stdlib.ElementFunc,
	"flatten":         stdlib.FlattenFunc,
	"floor":           stdlib.FloorFunc,
	"format":          stdlib.FormatFunc,
	"formatdate":      stdlib.FormatDateFunc,
	"formatlist":      stdlib.FormatListFunc,
	"indent":          stdlib.IndentFunc,
	"join":            stdlib.JoinFunc,
	"jsondecode":      stdlib.JSONDecodeFunc,
	"jsonencode":      stdlib.JSONEncodeFunc,
	"keys":            stdlib.KeysFunc,
	"length":          stdlib.LengthFunc,
	"log":             stdlib.LogFunc,
	"lookup":          stdlib.LookupFunc,
	"lower":           stdlib.LowerFunc,
	"max":             stdlib.MaxFunc,
	"merge":           stdlib.MergeFunc,
	"min":             stdlib.MinFunc,
	"parseint":        stdlib.ParseIntFunc,
	"pow":             stdlib.PowFunc,
	"range":           stdlib.RangeFunc,
	"regex":           stdlib.RegexFunc,
	"regexall":        stdlib.RegexAllFunc,
	"regex_replace":   stdlib.RegexReplaceFunc,
	"replace":         stdlib.ReplaceFunc,
	"reverse":         stdlib.ReverseListFunc,
	"setintersection": stdlib.SetIntersectionFunc,
	"setproduct":      stdlib.SetProductFunc,
	"setsubtract":     stdlib.SetSubtractFunc,
	"setunion":        stdlib.SetUnionFunc,
	"signum":          stdlib.SignumFunc,
	"slice":           stdlib.SliceFunc,
	"sort":            stdlib.SortFunc,
	"split":           stdlib.SplitFunc,
	"strlen":          stdlib.StrlenFunc,
	"strrev":          stdlib.ReverseFunc,
	"substr":          stdlib.SubstrFunc,
	"timeadd":         stdlib.TimeAddFunc,
	"title":           stdlib.TitleFunc,
	"trim":            stdlib.TrimFunc,
	"trimprefix":      stdlib.TrimPrefixFunc,
	"trimspace":       stdlib.TrimSpaceFunc,
	"trimsuffix":      stdlib.TrimSuffixFunc,
	"upper":           stdlib.UpperFunc,
	"values":          stdlib.ValuesFunc,
	"zipmap":          stdlib.ZipmapFunc,
}

// StandardFunctionNames lists the names of the always-available functions.
func StandardFunctionNames() []string {
	names := make([]string, 0, len(standardFunctions)+len(contextFunctionNames))
	for name := range standardFunctions {
		names = append(names, name)
	}
	return append(names, contextFunctionNames...)
}

// StandardFunctions returns a copy of the stateless function table. Extension
// scripts are compiled against it.
func StandardFunctions() map[string]function.Function {
	fns := make(map[string]function.Function, len(standardFunctions))
	for name, fn := range standardFunctions {
		fns[name] = fn
	}
	return fns
}

var contextFunctionNames = []string{"current_grouping_key", "current_group", "function_available"}

// builtinFunctions returns the standard functions plus those that read the
// run state.
func (s *State) builtinFunctions() map[string]function.Function {
	fns := StandardFunctions()

	fns["current_grouping_key"] = function.New(&function.Spec{
		Description: "Returns the grouping key of the innermost active for_each_group.",
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			return s.GroupingKey()
		},
	})

	fns["current_group"] = function.New(&function.Spec{
		Description: "Returns the members of the group being processed by the innermost active for_each_group.",
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			members, err := s.CurrentGroup()
			if err != nil {
				return cty.NilVal, err
			}
			if len(members) == 0 {
				return cty.EmptyTupleVal, nil
			}
			return cty.TupleVal(members), nil
		},
	})

	fns["function_available"] = function.New(&function.Spec{
		Description: "Reports whether a function with the given name can be called.",
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.BoolVal(s.HasFunction(args[0].AsString())), nil
		},
	})

	return fns
}
