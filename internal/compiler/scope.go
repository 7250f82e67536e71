// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package compiler

import "strings"

// builtinVariables are always in scope and cannot be declared.
var builtinVariables = map[string]struct{}{
	"input":    {},
	"item":     {},
	"position": {},
	"last":     {},
}

// scope is the static counterpart of the variable store: it tracks which
// names are visible at each point of a template.
type scope struct {
	parent *scope
	names  map[string]struct{}
}

func newScope() *scope {
	return &scope{names: make(map[string]struct{})}
}

func (s *scope) child() *scope {
	c := newScope()
	c.parent = s
	return c
}

func (s *scope) declare(ref string) {
	s.names[ref] = struct{}{}
}

// resolves reports whether a traversal rooted at root can be satisfied:
// either root itself is declared, or root is a prefix under which some name
// is declared.
func (s *scope) resolves(root, attr string) bool {
	if _, ok := builtinVariables[root]; ok {
		return true
	}
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.names[root]; ok {
			return true
		}
		if attr != "" {
			if _, ok := sc.names[root+"."+attr]; ok {
				return true
			}
			continue
		}
		for name := range sc.names {
			if strings.HasPrefix(name, root+".") {
				return true
			}
		}
	}
	return false
}
