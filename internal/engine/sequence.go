// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Sequence is a lazily produced, ordered run of items. Release must be called
// once the consumer is done with it, whether or not it was drained.
type Sequence interface {
	Next() (cty.Value, bool)
	Release()
}

// Sized is implemented by sequences that know their length up front.
type Sized interface {
	Len() int
}

// valueSequence walks the elements of a cty collection, tuple or object.
type valueSequence struct {
	it   cty.ElementIterator
	size int
}

// SequenceOf turns a value into a sequence: collections, tuples and objects
// yield their elements, null yields nothing and any other value is a
// single-item sequence.
func SequenceOf(v cty.Value) (Sequence, error) {
	if !v.IsKnown() {
		return nil, &EvaluationError{Diags: hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown sequence",
			Detail:   "The selected value is not known, so it cannot be iterated.",
		}}}
	}
	if v.IsNull() {
		return Items(), nil
	}
	if !v.CanIterateElements() {
		return Items(v), nil
	}
	return &valueSequence{it: v.ElementIterator(), size: lengthOf(v)}, nil
}

func lengthOf(v cty.Value) int {
	ty := v.Type()
	if ty.IsObjectType() {
		return len(ty.AttributeTypes())
	}
	return v.LengthInt()
}

func (s *valueSequence) Next() (cty.Value, bool) {
	if s.it == nil || !s.it.Next() {
		return cty.NilVal, false
	}
	_, v := s.it.Element()
	return v, true
}

func (s *valueSequence) Len() int { return s.size }

func (s *valueSequence) Release() { s.it = nil }

// sliceSequence serves items from memory.
type sliceSequence struct {
	items []cty.Value
	next  int
}

// Items returns a sequence over the given values.
func Items(vs ...cty.Value) Sequence {
	return &sliceSequence{items: vs}
}

func (s *sliceSequence) Next() (cty.Value, bool) {
	if s.next >= len(s.items) {
		return cty.NilVal, false
	}
	v := s.items[s.next]
	s.next++
	return v, true
}

func (s *sliceSequence) Len() int { return len(s.items) }

func (s *sliceSequence) Release() { s.next = len(s.items) }

// Collect drains seq into a slice and releases it.
func Collect(seq Sequence) []cty.Value {
	defer seq.Release()
	var out []cty.Value
	for {
		v, ok := seq.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
