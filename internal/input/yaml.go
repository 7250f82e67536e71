// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package input

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte, filename string) (cty.Value, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse YAML input %s: %w", filename, err)
	}
	v, err := fromYAML(doc, "")
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to decode YAML input %s: %w", filename, err)
	}
	return v, nil
}

// fromYAML converts what yaml.v3 produces for an untyped document. Mappings
// become objects, sequences tuples, timestamps RFC 3339 strings.
func fromYAML(v any, path string) (cty.Value, error) {
	switch v := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(v), nil
	case string:
		return cty.StringVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case *big.Int:
		return cty.NumberVal(new(big.Float).SetInt(v)), nil
	case time.Time:
		return cty.StringVal(v.Format(time.RFC3339Nano)), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, e := range v {
			ev, err := fromYAML(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for k, e := range v {
			ev, err := fromYAML(e, path+"."+k)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	case map[any]any:
		// Non-string keys are rendered so that the mapping can still be an
		// object; their order is fixed for stable error messages.
		keys := make([]string, 0, len(v))
		byKey := make(map[string]any, len(v))
		for k, e := range v {
			s := fmt.Sprint(k)
			keys = append(keys, s)
			byKey[s] = e
		}
		sort.Strings(keys)
		attrs := make(map[string]cty.Value, len(keys))
		for _, k := range keys {
			ev, err := fromYAML(byKey[k], path+"."+k)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported YAML value of type %T at %q", v, path)
}
