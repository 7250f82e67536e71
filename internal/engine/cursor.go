// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import "github.com/zclconf/go-cty/cty"

// Cursor adapts a Sequence to the loop: it remembers the current item and its
// 1-based position and guarantees the sequence is released exactly once.
type Cursor struct {
	seq      Sequence
	current  cty.Value
	position int
	released bool
}

// NewCursor wraps seq. The cursor starts before the first item.
func NewCursor(seq Sequence) *Cursor {
	return &Cursor{seq: seq}
}

// Advance moves to the next item. It returns false once the sequence is
// exhausted or the cursor has been released.
func (c *Cursor) Advance() (cty.Value, bool) {
	if c.released {
		return cty.NilVal, false
	}
	v, ok := c.seq.Next()
	if !ok {
		return cty.NilVal, false
	}
	c.current = v
	c.position++
	return v, true
}

// Current returns the item the cursor is on, or cty.NilVal before the first
// Advance.
func (c *Cursor) Current() cty.Value {
	return c.current
}

// Position returns the 1-based position of the current item; 0 before the
// first Advance.
func (c *Cursor) Position() int {
	return c.position
}

// Size returns the sequence length when it is known, otherwise -1.
func (c *Cursor) Size() int {
	if s, ok := c.seq.(Sized); ok {
		return s.Len()
	}
	return -1
}

// Release frees the underlying sequence. Calling it more than once is a no-op.
func (c *Cursor) Release() {
	if c.released {
		return
	}
	c.released = true
	c.seq.Release()
}
