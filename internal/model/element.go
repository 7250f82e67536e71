// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements a table-driven parser for instruction blocks.
//
// Why a single generic Element?
//
// Instructions nest freely: an `if` may hold a `for_each` that holds an
// `iterate` that holds a `break`. Every instruction kind is described by one
// entry in `elementSpecs` (its label, attributes and allowed nested kinds) and
// one recursive function walks any of them. Adding an instruction means adding
// a table entry; the walker does not change.
//
// Children are kept in source order because `hcl.Body.Content` returns blocks
// in the order they were written, and the order of the children of `iterate`
// is significant.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/exprscan"
	"github.com/specialistvlad/xformgo/internal/hclutil"
)

// Kind names an element by its block type.
type Kind string

const (
	KindTemplate      Kind = "template"
	KindIterate       Kind = "iterate"
	KindParam         Kind = "param"
	KindOnCompletion  Kind = "on_completion"
	KindNextIteration Kind = "next_iteration"
	KindWithParam     Kind = "with_param"
	KindBreak         Kind = "break"
	KindValue         Kind = "value"
	KindVariable      Kind = "variable"
	KindIf            Kind = "if"
	KindChoose        Kind = "choose"
	KindWhen          Kind = "when"
	KindOtherwise     Kind = "otherwise"
	KindForEach       Kind = "for_each"
	KindForEachGroup  Kind = "for_each_group"
	KindCallTemplate  Kind = "call_template"
	KindMessage       Kind = "message"
)

// instructionKinds may appear wherever a list of instructions is expected.
var instructionKinds = []Kind{
	KindValue, KindVariable, KindIf, KindChoose, KindForEach, KindForEachGroup,
	KindCallTemplate, KindMessage, KindIterate, KindBreak,
}

type elementSpec struct {
	// Label is the name of the single block label, or empty for none.
	Label      string
	Attributes []hcl.AttributeSchema
	Children   []Kind
	// Unique lists child kinds that may appear at most once.
	Unique []Kind
}

func withInstructions(kinds ...Kind) []Kind {
	return append(kinds, instructionKinds...)
}

var (
	selectAttr         = hcl.AttributeSchema{Name: "select"}
	requiredSelectAttr = hcl.AttributeSchema{Name: "select", Required: true}
	asAttr             = hcl.AttributeSchema{Name: "as"}
	testAttr           = hcl.AttributeSchema{Name: "test", Required: true}
)

// elementSpecs is the table that drives element parsing.
var elementSpecs = map[Kind]elementSpec{
	KindTemplate:      {Label: "name", Children: withInstructions(KindParam)},
	KindIterate:       {Attributes: []hcl.AttributeSchema{selectAttr}, Children: withInstructions(KindParam, KindOnCompletion, KindNextIteration)},
	KindParam:         {Label: "name", Attributes: []hcl.AttributeSchema{selectAttr, asAttr}},
	KindOnCompletion:  {Attributes: []hcl.AttributeSchema{selectAttr}, Children: withInstructions()},
	KindNextIteration: {Children: []Kind{KindWithParam}},
	KindWithParam:     {Label: "name", Attributes: []hcl.AttributeSchema{selectAttr}},
	KindBreak:         {Attributes: []hcl.AttributeSchema{selectAttr}, Children: withInstructions()},
	KindValue:         {Attributes: []hcl.AttributeSchema{requiredSelectAttr}},
	KindVariable:      {Label: "name", Attributes: []hcl.AttributeSchema{selectAttr, asAttr}},
	KindIf:            {Attributes: []hcl.AttributeSchema{testAttr}, Children: withInstructions()},
	KindChoose:        {Children: []Kind{KindWhen, KindOtherwise}, Unique: []Kind{KindOtherwise}},
	KindWhen:          {Attributes: []hcl.AttributeSchema{testAttr}, Children: withInstructions()},
	KindOtherwise:     {Children: withInstructions()},
	KindForEach:       {Attributes: []hcl.AttributeSchema{requiredSelectAttr}, Children: withInstructions()},
	KindForEachGroup: {
		Attributes: []hcl.AttributeSchema{requiredSelectAttr, {Name: "group_by", Required: true}},
		Children:   withInstructions(),
	},
	KindCallTemplate: {Label: "name", Children: []Kind{KindWithParam}},
	KindMessage: {
		Attributes: []hcl.AttributeSchema{selectAttr, {Name: "terminate"}},
		Children:   withInstructions(),
	},
}

func (s elementSpec) schema() *hcl.BodySchema {
	schema := &hcl.BodySchema{Attributes: s.Attributes}
	for _, child := range s.Children {
		header := hcl.BlockHeaderSchema{Type: string(child)}
		if label := elementSpecs[child].Label; label != "" {
			header.LabelNames = []string{label}
		}
		schema.Blocks = append(schema.Blocks, header)
	}
	return schema
}

// Element is one parsed instruction block.
type Element struct {
	Kind          Kind
	Label         string
	Attributes    map[string]hcl.Expression
	Children      []*Element
	DefRange      hcl.Range
	FSInformation *FSInfo

	// Expressions holds the element's own value expressions, not those of
	// its children. Type constraints (`as`) are not included.
	Expressions *exprscan.Container
}

// Attr returns the expression of the named attribute, or nil when absent.
func (e *Element) Attr(name string) hcl.Expression {
	return e.Attributes[name]
}

// ChildrenOf returns the direct children of the given kind, in order.
func (e *Element) ChildrenOf(kind Kind) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// parseElement parses the body of a block of the given kind, recursing into
// nested blocks.
func parseElement(kind Kind, label string, body hcl.Body, defRange hcl.Range, filePath string) (*Element, hcl.Diagnostics) {
	spec, ok := elementSpecs[kind]
	if !ok {
		panic(fmt.Sprintf("model: no element spec for kind %q", kind))
	}

	el := &Element{
		Kind:          kind,
		Label:         label,
		Attributes:    make(map[string]hcl.Expression),
		DefRange:      defRange,
		FSInformation: NewFSInfo(filePath),
		Expressions:   exprscan.NewContainer(),
	}

	content, diags := body.Content(spec.schema())
	if diags.HasErrors() {
		return nil, diags
	}
	for _, k := range spec.Unique {
		_, uniqueDiags := hclutil.FindUniqueBlock(content.Blocks, string(k))
		diags = append(diags, uniqueDiags...)
	}

	for name, attr := range content.Attributes {
		el.Attributes[name] = attr.Expr
		if name != "as" {
			el.Expressions.Add(attr.Expr)
		}
	}

	for _, block := range content.Blocks {
		childLabel := ""
		if len(block.Labels) > 0 {
			childLabel = block.Labels[0]
		}
		child, childDiags := parseElement(Kind(block.Type), childLabel, block.Body, block.DefRange, filePath)
		diags = append(diags, childDiags...)
		if child != nil {
			el.Children = append(el.Children, child)
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return el, diags
}
