// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/engine"
	"github.com/specialistvlad/xformgo/internal/extension"
	"github.com/specialistvlad/xformgo/internal/grammar"
	"github.com/specialistvlad/xformgo/internal/hclutil"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// DefaultInitialTemplate is the template a run starts at when none is named.
const DefaultInitialTemplate = "main"

// Options tune compilation.
type Options struct {
	// Initial is the lexical name of the template to start at. Defaults to
	// DefaultInitialTemplate.
	Initial string
}

// lexical is what an instruction knows about its static surroundings.
type lexical struct {
	iterate      *engine.Iterate
	inCompletion bool
}

type pendingCall struct {
	call *engine.CallTemplate
	el   *model.Element
}

type compiler struct {
	namespaces map[string]string
	extensions map[string]struct{}
	functions  map[string]struct{}
	templates  map[model.QName]*engine.Template
	calls      []pendingCall
	diags      hcl.Diagnostics
}

// Compile checks prog and builds its executable form. A nil program is
// returned whenever the diagnostics contain an error.
func Compile(ctx context.Context, prog *model.Program, opts Options) (*engine.Program, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	c := &compiler{
		namespaces: make(map[string]string),
		extensions: make(map[string]struct{}),
		functions:  make(map[string]struct{}),
		templates:  make(map[model.QName]*engine.Template),
	}
	for _, name := range engine.StandardFunctionNames() {
		c.functions[name] = struct{}{}
	}

	c.declareNamespaces(prog.Namespaces)
	out := &engine.Program{Templates: c.templates}
	out.Extensions = c.declareExtensions(prog.Extensions)

	// Names first, so that calls may refer to templates defined later.
	type named struct {
		el  *model.Element
		tpl *engine.Template
	}
	var all []named
	for _, el := range prog.Templates {
		qn, _, ok := c.qname(el.Label, el.DefRange)
		if !ok {
			continue
		}
		if prev, dup := c.templates[qn]; dup {
			c.errorf(el.DefRange, "Duplicate template", "Template %q was already defined at %s.", el.Label, prev.Range)
			continue
		}
		tpl := &engine.Template{Name: qn, Range: el.DefRange}
		c.templates[qn] = tpl
		all = append(all, named{el: el, tpl: tpl})
	}

	for _, n := range all {
		c.template(n.el, n.tpl)
	}
	c.resolveCalls()

	initial := opts.Initial
	if initial == "" {
		initial = DefaultInitialTemplate
	}
	if qn, _, ok := c.qname(initial, hcl.Range{}); ok {
		if _, found := c.templates[qn]; !found {
			c.errorf(hcl.Range{}, "Initial template not found", "The program has no template named %q.", initial)
		}
		out.Initial = qn
	}

	if c.diags.HasErrors() {
		logger.Debug("Compilation failed.", "errors", len(c.diags.Errs()))
		return nil, c.diags
	}
	logger.Debug("Program compiled.", "templates", len(c.templates), "extensions", len(out.Extensions))
	return out, c.diags
}

func (c *compiler) errorf(subject hcl.Range, summary, format string, args ...any) {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
	}
	if subject.Filename != "" {
		d.Subject = subject.Ptr()
	}
	c.diags = append(c.diags, d)
}

func (c *compiler) warnf(subject hcl.Range, summary, format string, args ...any) {
	c.diags = append(c.diags, &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  subject.Ptr(),
	})
}

func (c *compiler) declareNamespaces(nss []*model.Namespace) {
	for _, ns := range nss {
		if !hclsyntax.ValidIdentifier(ns.Prefix) {
			c.errorf(ns.DefRange, "Invalid namespace prefix", "%q is not a valid identifier.", ns.Prefix)
			continue
		}
		if ns.URI == "" {
			c.errorf(ns.DefRange, "Empty namespace URI", "Prefix %q must be bound to a non-empty URI.", ns.Prefix)
			continue
		}
		if prev, ok := c.namespaces[ns.Prefix]; ok && prev != ns.URI {
			c.errorf(ns.DefRange, "Conflicting namespace prefix", "Prefix %q is already bound to %q.", ns.Prefix, prev)
			continue
		}
		c.namespaces[ns.Prefix] = ns.URI
	}
}

func (c *compiler) declareExtensions(exts []*model.Extension) []*engine.ExtensionDecl {
	var decls []*engine.ExtensionDecl
	for _, ext := range exts {
		uri, ok := c.namespaces[ext.Prefix]
		if !ok {
			c.errorf(ext.DefRange, "Undeclared namespace prefix", "Extension prefix %q is not bound by any namespace block.", ext.Prefix)
			continue
		}
		if _, dup := c.extensions[ext.Prefix]; dup {
			c.errorf(ext.DefRange, "Duplicate extension", "An extension for prefix %q was already declared.", ext.Prefix)
			continue
		}
		c.extensions[ext.Prefix] = struct{}{}

		lang := strings.ToLower(ext.Script.Lang)
		if lang == "" {
			lang = extension.DefaultLang
		}
		src := ext.Script.Src
		if src != "" && !filepath.IsAbs(src) && ext.FSInformation != nil {
			src = filepath.Join(ext.FSInformation.Dir(), src)
		}
		decls = append(decls, &engine.ExtensionDecl{
			Prefix:    ext.Prefix,
			Namespace: uri,
			Lang:      lang,
			Src:       src,
			Source:    ext.Script.Source,
			Range:     ext.DefRange,
		})
	}
	return decls
}

// qname resolves a lexical name. ref is the name the value is exposed under
// in expressions: the local part, or prefix.local.
func (c *compiler) qname(name string, subject hcl.Range) (qn model.QName, ref string, ok bool) {
	prefix, local, err := model.SplitQName(name)
	if err != nil {
		c.errorf(subject, "Invalid name", "%s.", err)
		return model.QName{}, "", false
	}
	if prefix == "" {
		return model.LocalName(local), local, true
	}
	uri, found := c.namespaces[prefix]
	if !found {
		c.errorf(subject, "Undeclared namespace prefix", "Prefix %q in name %q is not bound by any namespace block.", prefix, name)
		return model.QName{}, "", false
	}
	return model.QName{Space: uri, Local: local}, prefix + "." + local, true
}

// binding resolves the name of a param or variable, rejecting the names
// reserved for the focus.
func (c *compiler) binding(el *model.Element) (model.QName, string, bool) {
	qn, ref, ok := c.qname(el.Label, el.DefRange)
	if !ok {
		return qn, ref, false
	}
	if _, reserved := builtinVariables[ref]; reserved {
		c.errorf(el.DefRange, "Reserved name", "%q cannot be declared: the name is reserved.", ref)
		return qn, ref, false
	}
	return qn, ref, true
}

func (c *compiler) typeOf(el *model.Element) cty.Type {
	expr := el.Attr("as")
	if expr == nil {
		return cty.NilType
	}
	ty, diags := hclutil.TypeConstraint(expr)
	c.diags = append(c.diags, diags...)
	if diags.HasErrors() {
		return cty.NilType
	}
	return ty
}

// check verifies the references and function calls of the element's own
// expressions against sc.
func (c *compiler) check(el *model.Element, sc *scope) {
	for _, ref := range el.Expressions.References() {
		root := ref.RootName()
		attr := ""
		if len(ref) > 1 {
			if a, ok := ref[1].(hcl.TraverseAttr); ok {
				attr = a.Name
			}
		}
		if !sc.resolves(root, attr) {
			c.errorf(ref.SourceRange(), "Reference to undeclared variable", "There is no variable named %q in scope here.", hclutil.TraversalKey(ref))
		}
	}

	for _, name := range el.Expressions.CalledFunctions() {
		if prefix, _, found := strings.Cut(name, "::"); found {
			if _, ok := c.extensions[prefix]; !ok {
				c.errorf(el.DefRange, "Call to unknown function", "No extension is declared for prefix %q (in %s).", prefix, name)
			}
			continue
		}
		if _, ok := c.functions[name]; !ok {
			c.errorf(el.DefRange, "Call to unknown function", "There is no function named %q.", name)
		}
	}
}

func (c *compiler) expr(el *model.Element, attr string) engine.Expression {
	e := el.Attr(attr)
	if e == nil {
		return nil
	}
	return engine.NewHCLExpression(e)
}

// loopSelect compiles the select of a looping instruction and warns when it
// is a lone literal, which always yields exactly one item.
func (c *compiler) loopSelect(el *model.Element) engine.Expression {
	e := el.Attr("select")
	if e == nil {
		return nil
	}
	if syn, ok := e.(hclsyntax.Expression); ok && grammar.IsLiteral(grammar.Classify(syn)) {
		c.warnf(e.Range(), "Loop over a single value", "The select of this %s is a %s, so the body runs exactly once.", el.Kind, grammar.Classify(syn))
	}
	return engine.NewHCLExpression(e)
}

func (c *compiler) template(el *model.Element, tpl *engine.Template) {
	sc := newScope()
	seen := make(map[model.QName]struct{})
	bodyStarted := false
	var body []*model.Element
	for _, child := range el.Children {
		if child.Kind != model.KindParam {
			bodyStarted = true
			body = append(body, child)
			continue
		}
		if bodyStarted {
			c.errorf(child.DefRange, "Misplaced template parameter", "Parameters of template %q must come before its instructions (%s).", el.Label, engine.CodeSequenceConstructor)
		}
		p := c.param(child, sc)
		if p == nil {
			continue
		}
		if _, dup := seen[p.Name]; dup {
			c.errorf(child.DefRange, "Duplicate parameter", "Template %q declares parameter %q more than once (%s).", el.Label, child.Label, engine.CodeParamNames)
			continue
		}
		seen[p.Name] = struct{}{}
		tpl.Params = append(tpl.Params, p)
	}
	tpl.Body = c.instructions(body, sc, lexical{})
}

func (c *compiler) param(el *model.Element, sc *scope) *engine.Param {
	c.check(el, sc)
	qn, ref, ok := c.binding(el)
	if !ok {
		return nil
	}
	sc.declare(ref)
	return &engine.Param{
		Name:   qn,
		Ref:    ref,
		Select: c.expr(el, "select"),
		Type:   c.typeOf(el),
		Range:  el.DefRange,
	}
}

// instructions compiles a list of sibling instructions. Variables declared by
// earlier siblings are visible to later ones.
func (c *compiler) instructions(els []*model.Element, sc *scope, lex lexical) []engine.Instruction {
	var out []engine.Instruction
	for _, el := range els {
		if in := c.instruction(el, sc, lex); in != nil {
			out = append(out, in)
		}
	}
	return out
}

func (c *compiler) instruction(el *model.Element, sc *scope, lex lexical) engine.Instruction {
	c.check(el, sc)

	switch el.Kind {
	case model.KindValue:
		return &engine.Value{Select: c.expr(el, "select"), Range: el.DefRange}

	case model.KindVariable:
		qn, ref, ok := c.binding(el)
		if !ok {
			return nil
		}
		v := &engine.Variable{Name: qn, Ref: ref, Select: c.expr(el, "select"), Type: c.typeOf(el), Range: el.DefRange}
		sc.declare(ref)
		return v

	case model.KindIf:
		return &engine.If{
			Test:  c.expr(el, "test"),
			Body:  c.instructions(el.Children, sc.child(), lex),
			Range: el.DefRange,
		}

	case model.KindChoose:
		return c.choose(el, sc, lex)

	case model.KindForEach:
		return &engine.ForEach{
			Select: c.loopSelect(el),
			Body:   c.instructions(el.Children, sc.child(), lex),
			Range:  el.DefRange,
		}

	case model.KindForEachGroup:
		return &engine.ForEachGroup{
			Select:  c.loopSelect(el),
			GroupBy: c.expr(el, "group_by"),
			Body:    c.instructions(el.Children, sc.child(), lex),
			Range:   el.DefRange,
		}

	case model.KindCallTemplate:
		return c.callTemplate(el, sc)

	case model.KindMessage:
		return &engine.Message{
			Select:    c.expr(el, "select"),
			Terminate: c.expr(el, "terminate"),
			Body:      c.instructions(el.Children, sc.child(), lex),
			Range:     el.DefRange,
		}

	case model.KindIterate:
		return c.iterate(el, sc)

	case model.KindBreak:
		if lex.iterate == nil {
			c.errorf(el.DefRange, "Misplaced break", "A break must appear inside the body of an iterate (XTSE3140).")
			return nil
		}
		if lex.inCompletion {
			c.errorf(el.DefRange, "Misplaced break", "A break cannot appear inside on_completion (XTSE3140).")
			return nil
		}
		return &engine.Break{
			Select: c.expr(el, "select"),
			Body:   c.instructions(el.Children, sc.child(), lex),
			Owner:  lex.iterate,
			Range:  el.DefRange,
		}
	}

	c.errorf(el.DefRange, "Unexpected block", "A %s block is not allowed here.", el.Kind)
	return nil
}

func (c *compiler) choose(el *model.Element, sc *scope, lex lexical) engine.Instruction {
	ch := &engine.Choose{Range: el.DefRange}
	otherwise := false
	for _, child := range el.Children {
		if otherwise {
			c.errorf(child.DefRange, "Misplaced otherwise", "otherwise must be the last branch of choose.")
			break
		}
		switch child.Kind {
		case model.KindWhen:
			c.check(child, sc)
			ch.Whens = append(ch.Whens, &engine.When{
				Test:  c.expr(child, "test"),
				Body:  c.instructions(child.Children, sc.child(), lex),
				Range: child.DefRange,
			})
		case model.KindOtherwise:
			otherwise = true
			ch.Otherwise = c.instructions(child.Children, sc.child(), lex)
		}
	}
	if len(ch.Whens) == 0 {
		c.errorf(el.DefRange, "Empty choose", "choose must have at least one when branch.")
		return nil
	}
	return ch
}

func (c *compiler) withParams(els []*model.Element, sc *scope, owner string) []*engine.WithParam {
	var out []*engine.WithParam
	seen := make(map[model.QName]struct{})
	for _, el := range els {
		c.check(el, sc)
		qn, _, ok := c.qname(el.Label, el.DefRange)
		if !ok {
			continue
		}
		if _, dup := seen[qn]; dup && owner == string(model.KindCallTemplate) {
			// Duplicates under next_iteration are reported by the
			// structural check of the iterate.
			c.errorf(el.DefRange, "Duplicate parameter", "with_param %q is supplied more than once (%s).", el.Label, engine.CodeDuplicateWithParam)
			continue
		}
		seen[qn] = struct{}{}
		out = append(out, &engine.WithParam{Name: qn, Select: c.expr(el, "select"), Range: el.DefRange})
	}
	return out
}

func (c *compiler) callTemplate(el *model.Element, sc *scope) engine.Instruction {
	qn, _, ok := c.qname(el.Label, el.DefRange)
	if !ok {
		return nil
	}
	call := &engine.CallTemplate{
		Name:       qn,
		WithParams: c.withParams(el.ChildrenOf(model.KindWithParam), sc, string(model.KindCallTemplate)),
		Range:      el.DefRange,
	}
	c.calls = append(c.calls, pendingCall{call: call, el: el})
	return call
}

// resolveCalls links every call_template to its target once all templates
// have been compiled.
func (c *compiler) resolveCalls() {
	for _, pc := range c.calls {
		tpl, ok := c.templates[pc.call.Name]
		if !ok {
			c.errorf(pc.el.DefRange, "Unknown template", "There is no template named %q.", pc.el.Label)
			continue
		}
		declared := make(map[model.QName]struct{}, len(tpl.Params))
		for _, p := range tpl.Params {
			declared[p.Name] = struct{}{}
		}
		for _, wp := range pc.call.WithParams {
			if _, ok := declared[wp.Name]; !ok {
				c.errorf(wp.Range, "Unknown parameter", "Template %q has no parameter named %q.", pc.el.Label, wp.Name)
			}
		}
		pc.call.Template = tpl
	}
}

// iterate compiles an iterate. Its children are compiled in source order
// whatever that order is; the structural check then reports misplacements.
func (c *compiler) iterate(el *model.Element, sc *scope) engine.Instruction {
	it := &engine.Iterate{Range: el.DefRange}
	if el.Attr("select") != nil {
		it.Select = c.loopSelect(el)
	} else {
		it.Select = engine.ChildrenOf
	}

	paramScope := sc.child()
	bodyScope := paramScope.child()
	bodyLex := lexical{iterate: it}

	for _, child := range el.Children {
		switch child.Kind {
		case model.KindParam:
			if p := c.param(child, paramScope); p != nil {
				it.Children = append(it.Children, p)
			}
		case model.KindOnCompletion:
			c.check(child, paramScope)
			it.Children = append(it.Children, &engine.OnCompletion{
				Select: c.expr(child, "select"),
				Body:   c.instructions(child.Children, paramScope.child(), lexical{iterate: it, inCompletion: true}),
				Range:  child.DefRange,
			})
		case model.KindNextIteration:
			it.Children = append(it.Children, &engine.NextIteration{
				WithParams: c.withParams(child.ChildrenOf(model.KindWithParam), bodyScope, string(model.KindNextIteration)),
				Range:      child.DefRange,
			})
		default:
			if in := c.instruction(child, bodyScope, bodyLex); in != nil {
				it.Children = append(it.Children, in)
			}
		}
	}

	if err := it.Validate(); err != nil {
		if se, ok := err.(engine.StructureError); ok {
			c.diags = append(c.diags, se.Diagnostic())
		} else {
			c.errorf(el.DefRange, "Invalid iterate", "%s.", err)
		}
		return nil
	}
	return it
}

// FunctionNames lists the functions a program may call without declaring an
// extension, sorted.
func FunctionNames() []string {
	names := engine.StandardFunctionNames()
	sort.Strings(names)
	return names
}
