// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/model"
)

type childClass int

const (
	classOther childClass = iota
	classParam
	classOnCompletion
	classNextIteration
)

func classifyChild(in Instruction) childClass {
	switch in.(type) {
	case *Param:
		return classParam
	case *OnCompletion:
		return classOnCompletion
	case *NextIteration:
		return classNextIteration
	default:
		return classOther
	}
}

// iterateIndex is the validated view of an iterate's children.
type iterateIndex struct {
	params       []*Param
	onCompletion *OnCompletion
	next         *NextIteration
	body         []Instruction
}

// Validate checks the children of the iterate against the structural rules.
// The outcome is computed once and cached; later calls return the same
// result.
func (it *Iterate) Validate() error {
	it.once.Do(func() {
		it.index, it.err = validateChildren(it.Children, it.Range)
	})
	return it.err
}

func validateChildren(children []Instruction, subject hcl.Range) (*iterateIndex, error) {
	classes := make([]childClass, len(children))
	firstOther, firstBody := -1, -1
	firstOnCompletion, nextIteration := -1, -1
	for i, child := range children {
		classes[i] = classifyChild(child)
		if classes[i] != classParam && firstOther < 0 {
			firstOther = i
		}
		if classes[i] == classOther && firstBody < 0 {
			firstBody = i
		}
	}

	for i, class := range classes {
		if class == classParam && firstOther >= 0 && i > firstOther {
			return nil, &OrderingError{Rule: RuleParamFirst, Subject: rangeOf(children[i], subject)}
		}
	}

	for i, class := range classes {
		if class != classOnCompletion {
			continue
		}
		if firstOnCompletion < 0 {
			// A next_iteration before it is reported by the next rule.
			if firstBody >= 0 && i > firstBody {
				return nil, &OrderingError{Rule: RuleOnCompletionAfterParams, Subject: rangeOf(children[i], subject)}
			}
			firstOnCompletion = i
			continue
		}
		return nil, &OrderingError{Rule: RuleOnCompletionOnce, Subject: rangeOf(children[i], subject)}
	}

	for i, class := range classes {
		if class == classNextIteration && nextIteration < 0 {
			nextIteration = i
		}
	}
	if firstOnCompletion >= 0 && nextIteration >= 0 && firstOnCompletion > nextIteration {
		return nil, &OrderingError{Rule: RuleOnCompletionBeforeNext, Subject: rangeOf(children[firstOnCompletion], subject)}
	}

	for i, class := range classes {
		if class == classNextIteration && i != len(children)-1 {
			return nil, &OrderingError{Rule: RuleNextIterationLast, Subject: rangeOf(children[i], subject)}
		}
	}

	idx := &iterateIndex{}
	for _, child := range children {
		switch c := child.(type) {
		case *Param:
			idx.params = append(idx.params, c)
		case *OnCompletion:
			idx.onCompletion = c
		case *NextIteration:
			idx.next = c
		default:
			idx.body = append(idx.body, c)
		}
	}

	seen := make(map[model.QName]struct{}, len(idx.params))
	for _, p := range idx.params {
		if _, dup := seen[p.Name]; dup {
			return nil, &DuplicateNameError{Kind: ParamName, Name: p.Name, Subject: rangeOf(p, subject)}
		}
		seen[p.Name] = struct{}{}
	}

	var withParams []*WithParam
	if idx.next != nil {
		withParams = idx.next.WithParams
	}
	seen = make(map[model.QName]struct{}, len(withParams))
	for _, wp := range withParams {
		if _, dup := seen[wp.Name]; dup {
			return nil, &DuplicateNameError{Kind: WithParamName, Name: wp.Name, Subject: wp.Range}
		}
		seen[wp.Name] = struct{}{}
	}

	if len(idx.params) != len(withParams) {
		return nil, &ArityMismatchError{Params: len(idx.params), WithParams: len(withParams), Subject: subject}
	}

	for i, p := range idx.params {
		if p.Name != withParams[i].Name {
			return nil, &NameMismatchError{
				Position:  i,
				Param:     p.Name,
				WithParam: withParams[i].Name,
				Subject:   withParams[i].Range,
			}
		}
	}

	return idx, nil
}

// Located is implemented by instructions that know where they were declared.
type Located interface {
	SourceRange() hcl.Range
}

func rangeOf(in Instruction, fallback hcl.Range) hcl.Range {
	if l, ok := in.(Located); ok {
		if r := l.SourceRange(); r.Filename != "" {
			return r
		}
	}
	return fallback
}
