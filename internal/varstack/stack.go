// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package varstack

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Frame is one scope of bindings. Slots are assigned in declaration order and
// stay valid for the lifetime of the frame.
type Frame struct {
	names    []string
	values   []cty.Value
	isolated bool
}

// Declare adds a binding to the frame and returns its slot.
func (f *Frame) Declare(name string, v cty.Value) int {
	f.names = append(f.names, name)
	f.values = append(f.values, v)
	return len(f.values) - 1
}

// Get returns the value stored in slot.
func (f *Frame) Get(slot int) cty.Value {
	f.checkSlot(slot)
	return f.values[slot]
}

// Set overwrites the value stored in slot.
func (f *Frame) Set(slot int, v cty.Value) {
	f.checkSlot(slot)
	f.values[slot] = v
}

// Name returns the name bound at slot.
func (f *Frame) Name(slot int) string {
	f.checkSlot(slot)
	return f.names[slot]
}

// Len reports how many bindings the frame holds.
func (f *Frame) Len() int {
	return len(f.values)
}

// Isolated reports whether lookups stop at this frame.
func (f *Frame) Isolated() bool {
	return f.isolated
}

func (f *Frame) lookup(name string) (cty.Value, bool) {
	// Later declarations shadow earlier ones in the same frame.
	for i := len(f.names) - 1; i >= 0; i-- {
		if f.names[i] == name {
			return f.values[i], true
		}
	}
	return cty.NilVal, false
}

func (f *Frame) checkSlot(slot int) {
	if slot < 0 || slot >= len(f.values) {
		panic(fmt.Sprintf("varstack: slot %d out of range (frame has %d bindings)", slot, len(f.values)))
	}
}

// Stack is the per-run variable store. It is not safe for concurrent use;
// every run owns its own Stack.
type Stack struct {
	frames []*Frame
}

// New returns an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Push opens a frame that can see the bindings of the frames below it.
func (s *Stack) Push() *Frame {
	f := &Frame{}
	s.frames = append(s.frames, f)
	return f
}

// PushIsolated opens a frame that hides every frame below it from lookups.
func (s *Stack) PushIsolated() *Frame {
	f := s.Push()
	f.isolated = true
	return f
}

// Pop discards the innermost frame and returns it. Popping an empty stack is a
// programming error and panics.
func (s *Stack) Pop() *Frame {
	if len(s.frames) == 0 {
		panic("varstack: pop on empty stack")
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Top returns the innermost frame, or nil when the stack is empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of open frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Lookup resolves name against the visible frames, innermost first.
func (s *Stack) Lookup(name string) (cty.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if v, ok := f.lookup(name); ok {
			return v, true
		}
		if f.isolated {
			break
		}
	}
	return cty.NilVal, false
}

// Visible flattens every binding reachable from the innermost frame into a
// map. Inner bindings win over outer ones.
func (s *Stack) Visible() map[string]cty.Value {
	start := 0
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].isolated {
			start = i
			break
		}
	}

	vars := make(map[string]cty.Value)
	for _, f := range s.frames[start:] {
		for i, name := range f.names {
			vars[name] = f.values[i]
		}
	}
	return vars
}
