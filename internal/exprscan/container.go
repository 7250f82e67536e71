// Package exprscan collects HCL expressions and reports what they reference:
// variable traversals, called functions and the grammar kinds of their nodes.
package exprscan

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/xformgo/internal/grammar"
)

// Container gathers the expressions of one element. The analysis runs on
// first use and again only after Add; it is safe to read from several
// goroutines once compilation is over.
type Container struct {
	mu    sync.Mutex
	exprs []hcl.Expression
	fresh bool
	res   extraction
}

func NewContainer() *Container {
	return &Container{fresh: true}
}

// Add appends expressions, skipping nil ones.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range exprs {
		if e != nil {
			c.exprs = append(c.exprs, e)
			c.fresh = false
		}
	}
}

func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.exprs)
}

func (c *Container) result() extraction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fresh {
		c.res = extract(c.exprs...)
		c.fresh = true
	}
	return c.res
}

// References returns the distinct variable traversals, sorted by their
// source form.
func (c *Container) References() []hcl.Traversal { return c.result().references }

// CalledFunctions returns the distinct names of called functions, sorted.
// Namespaced calls keep their prefix (`acme::shout`).
func (c *Container) CalledFunctions() []string { return c.result().functions }

// Kinds returns the distinct grammar kinds of every node, in ascending order.
func (c *Container) Kinds() []grammar.Kind { return c.result().kinds }

// RootNames returns the distinct root variable names referenced.
func (c *Container) RootNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, ref := range c.References() {
		if root := ref.RootName(); !seen[root] {
			seen[root] = true
			names = append(names, root)
		}
	}
	return names
}
