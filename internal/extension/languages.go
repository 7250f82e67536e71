// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package extension

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty/function"
)

// DefaultLang is used when a script does not name its language.
const DefaultLang = "hcl"

// Loader compiles a script. base holds the functions the script itself may
// call.
type Loader func(script Script, base map[string]function.Function) (map[string]function.Function, error)

// Languages is a table of script loaders keyed by language name.
type Languages struct {
	all map[string]Loader
}

// NewLanguages returns an empty table.
func NewLanguages() *Languages {
	return &Languages{all: make(map[string]Loader)}
}

// DefaultLanguages returns a table with the built-in languages registered.
func DefaultLanguages() *Languages {
	l := NewLanguages()
	l.Register(DefaultLang, loadHCL)
	return l
}

// Register adds a loader. Names are case-insensitive.
func (l *Languages) Register(name string, loader Loader) {
	key := strings.ToLower(name)
	if _, exists := l.all[key]; exists {
		panic(fmt.Sprintf("script language '%s' already registered", key))
	}
	slog.Debug("Registering script language.", "name", key)
	l.all[key] = loader
}

// Lookup returns the loader for name.
func (l *Languages) Lookup(name string) (Loader, bool) {
	loader, ok := l.all[strings.ToLower(name)]
	return loader, ok
}

// Names returns the registered language names, sorted.
func (l *Languages) Names() []string {
	names := make([]string, 0, len(l.all))
	for name := range l.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
