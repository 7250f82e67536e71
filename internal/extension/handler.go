// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package extension

import (
	"sort"

	"github.com/zclconf/go-cty/cty/function"
)

// Script describes where the implementation of a namespace comes from.
type Script struct {
	Namespace string
	Lang      string
	// Src is a script file path. When set it takes precedence over Source.
	Src    string
	Source string
}

// Handler is the compiled form of one extension namespace. It is immutable
// once built.
type Handler struct {
	script    Script
	functions map[string]function.Function
}

// Namespace returns the namespace URI the handler serves.
func (h *Handler) Namespace() string { return h.script.Namespace }

// Lang returns the script language.
func (h *Handler) Lang() string { return h.script.Lang }

// Src returns the script file path, if any.
func (h *Handler) Src() string { return h.script.Src }

// Source returns the inline script text, if any.
func (h *Handler) Source() string { return h.script.Source }

// Function returns the named function.
func (h *Handler) Function(name string) (function.Function, bool) {
	fn, ok := h.functions[name]
	return fn, ok
}

// Functions returns a copy of the handler's function table.
func (h *Handler) Functions() map[string]function.Function {
	out := make(map[string]function.Function, len(h.functions))
	for name, fn := range h.functions {
		out[name] = fn
	}
	return out
}

// FunctionNames returns the sorted names of the handler's functions.
func (h *Handler) FunctionNames() []string {
	names := make([]string, 0, len(h.functions))
	for name := range h.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
