// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package extension

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty/function"
)

// ErrUnknownLanguage is returned when a script names a language that has no
// registered loader.
var ErrUnknownLanguage = errors.New("unknown script language")

// Registry maps namespace URIs to their handlers.
type Registry struct {
	handlers sync.Map // Key: namespace URI, Value: *Handler
	langs    *Languages
	base     map[string]function.Function
}

// NewRegistry returns an empty registry. Scripts are compiled with langs and
// may call the functions in base.
func NewRegistry(langs *Languages, base map[string]function.Function) *Registry {
	return &Registry{langs: langs, base: base}
}

// Get returns the handler registered for ns.
func (r *Registry) Get(ns string) (*Handler, bool) {
	h, ok := r.handlers.Load(ns)
	if !ok {
		return nil, false
	}
	return h.(*Handler), true
}

// RegisterIfAbsent returns the handler for ns, building it from the given
// script only when none is registered yet. A failed build registers nothing.
func (r *Registry) RegisterIfAbsent(ns, lang, src, inline string) (*Handler, error) {
	if ns == "" {
		return nil, errors.New("extension namespace must not be empty")
	}
	if h, ok := r.Get(ns); ok {
		return h, nil
	}

	if lang == "" {
		lang = DefaultLang
	}
	loader, ok := r.langs.Lookup(lang)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownLanguage, lang, r.langs.Names())
	}

	script := Script{Namespace: ns, Lang: lang, Src: src, Source: inline}
	fns, err := loader(script, r.base)
	if err != nil {
		return nil, fmt.Errorf("failed to load script for namespace %q: %w", ns, err)
	}

	actual, _ := r.handlers.LoadOrStore(ns, &Handler{script: script, functions: fns})
	return actual.(*Handler), nil
}

// Namespaces returns the registered namespace URIs, sorted.
func (r *Registry) Namespaces() []string {
	var out []string
	r.handlers.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	sort.Strings(out)
	return out
}
