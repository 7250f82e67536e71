// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package sink holds the destinations a run's result items are emitted to.
//
// Every sink receives items one at a time, in document order, from a single
// goroutine. Close is called once after the run, successful or not, and is
// where buffered formats write their output.
package sink

import (
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// Sink receives result items.
type Sink interface {
	Emit(v cty.Value) error
	Close() error
}

// Collector keeps every item in memory.
type Collector struct {
	values []cty.Value
}

// Emit appends v.
func (c *Collector) Emit(v cty.Value) error {
	c.values = append(c.values, v)
	return nil
}

// Close is a no-op.
func (c *Collector) Close() error { return nil }

// Values returns the items collected so far.
func (c *Collector) Values() []cty.Value { return c.values }

// Tee fans every item out to all of its sinks in order. Emission stops at the
// first failing sink.
type Tee []Sink

func (t Tee) Emit(v cty.Value) error {
	for _, s := range t {
		if err := s.Emit(v); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins the errors.
func (t Tee) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
