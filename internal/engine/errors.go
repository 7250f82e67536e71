// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// ErrStructure is matched (errors.Is) by every structural error of an iterate
// construct.
var ErrStructure = errors.New("invalid iterate structure")

// ErrorCode is the stable identifier reported with a structural error.
type ErrorCode string

const (
	CodeSequenceConstructor    ErrorCode = "XTSE0010"
	CodeNextIterationNotLast   ErrorCode = "XTSE3120"
	CodeParamNames             ErrorCode = "XTSE0580"
	CodeDuplicateWithParam     ErrorCode = "XTSE0670"
	CodeParamWithParamMismatch ErrorCode = "XTSE3130"
)

// Ordering rules, in the order they are checked.
const (
	RuleParamFirst              = "param-must-precede-body"
	RuleOnCompletionAfterParams = "oncompletion-must-follow-params-only"
	RuleOnCompletionOnce        = "oncompletion-at-most-once"
	RuleOnCompletionBeforeNext  = "oncompletion-before-nextiteration"
	RuleNextIterationLast       = "nextiteration-must-be-last"
)

// StructureError is implemented by all structural validation errors.
type StructureError interface {
	error
	Code() ErrorCode
	Diagnostic() *hcl.Diagnostic
}

// OrderingError reports a child of an iterate that appears out of place.
type OrderingError struct {
	Rule    string
	Subject hcl.Range
}

var orderingDetails = map[string]string{
	RuleParamFirst:              "A param block must occur before any other block within iterate.",
	RuleOnCompletionAfterParams: "An on_completion block must be the first block after the param blocks of iterate.",
	RuleOnCompletionOnce:        "An iterate can have at most one on_completion block.",
	RuleOnCompletionBeforeNext:  "An on_completion block must occur before next_iteration.",
	RuleNextIterationLast:       "A next_iteration block, when present, must be the last block within iterate.",
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code(), orderingDetails[e.Rule])
}

// Code returns XTSE3120 for a misplaced next_iteration and XTSE0010 otherwise.
func (e *OrderingError) Code() ErrorCode {
	if e.Rule == RuleNextIterationLast {
		return CodeNextIterationNotLast
	}
	return CodeSequenceConstructor
}

func (e *OrderingError) Unwrap() error { return ErrStructure }

func (e *OrderingError) Diagnostic() *hcl.Diagnostic {
	return structureDiagnostic("Invalid iterate structure", e, e.Subject)
}

// NameKind tells which list a duplicated name was found in.
type NameKind int

const (
	ParamName NameKind = iota
	WithParamName
)

func (k NameKind) String() string {
	if k == WithParamName {
		return "with_param"
	}
	return "param"
}

// DuplicateNameError reports a name declared twice among the params, or among
// the with_params of next_iteration.
type DuplicateNameError struct {
	Kind    NameKind
	Name    model.QName
	Subject hcl.Range
}

func (e *DuplicateNameError) Error() string {
	if e.Kind == WithParamName {
		return fmt.Sprintf("%s: duplicate with_param name %q", e.Code(), e.Name)
	}
	return fmt.Sprintf("%s: the name of the param %q is not unique", e.Code(), e.Name)
}

func (e *DuplicateNameError) Code() ErrorCode {
	if e.Kind == WithParamName {
		return CodeDuplicateWithParam
	}
	return CodeParamNames
}

func (e *DuplicateNameError) Unwrap() error { return ErrStructure }

func (e *DuplicateNameError) Diagnostic() *hcl.Diagnostic {
	return structureDiagnostic("Duplicate "+e.Kind.String()+" name", e, e.Subject)
}

// ArityMismatchError reports that the number of params differs from the
// number of with_params.
type ArityMismatchError struct {
	Params     int
	WithParams int
	Subject    hcl.Range
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s: the number of param blocks (%d) is not equal to the number of next_iteration with_param blocks (%d)",
		e.Code(), e.Params, e.WithParams)
}

func (e *ArityMismatchError) Code() ErrorCode { return CodeParamNames }

func (e *ArityMismatchError) Unwrap() error { return ErrStructure }

func (e *ArityMismatchError) Diagnostic() *hcl.Diagnostic {
	return structureDiagnostic("Mismatched iterate parameters", e, e.Subject)
}

// NameMismatchError reports that the param and with_param at Position
// (zero-based) have different names.
type NameMismatchError struct {
	Position  int
	Param     model.QName
	WithParam model.QName
	Subject   hcl.Range
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("%s: param and with_param names at position %d are not the same (%q, %q)",
		e.Code(), e.Position+1, e.Param, e.WithParam)
}

func (e *NameMismatchError) Code() ErrorCode { return CodeParamWithParamMismatch }

func (e *NameMismatchError) Unwrap() error { return ErrStructure }

func (e *NameMismatchError) Diagnostic() *hcl.Diagnostic {
	return structureDiagnostic("Mismatched iterate parameters", e, e.Subject)
}

func structureDiagnostic(summary string, err StructureError, subject hcl.Range) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
	}
	if subject.Filename != "" {
		d.Subject = subject.Ptr()
	}
	return d
}

// EvaluationError wraps the diagnostics of a failed expression evaluation.
type EvaluationError struct {
	Diags hcl.Diagnostics
}

func (e *EvaluationError) Error() string { return e.Diags.Error() }

// Unwrap exposes the diagnostics and, for failed function calls, the error
// the function itself returned, so that errors.As finds a
// *NoActiveContextError raised by current_grouping_key().
func (e *EvaluationError) Unwrap() []error {
	errs := []error{e.Diags}
	for _, d := range e.Diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](d)
		if !ok {
			continue
		}
		if err := extra.FunctionCallError(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// NoActiveContextError is returned by a contextual lookup that found no
// carrier on the active instruction chain.
type NoActiveContextError struct {
	Function string
}

func (e *NoActiveContextError) Error() string {
	return fmt.Sprintf("%s() called with no active grouping instruction", e.Function)
}

// TypeError reports a value that cannot be converted to a declared type.
type TypeError struct {
	Name    string
	Want    cty.Type
	Err     error
	Subject hcl.Range
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("value of %q cannot be converted to %s: %v", e.Name, e.Want.FriendlyName(), e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }

// TerminateError is returned by a message instruction that asks to stop the
// transformation.
type TerminateError struct {
	Message string
}

func (e *TerminateError) Error() string {
	if e.Message == "" {
		return "transformation terminated by message"
	}
	return "transformation terminated: " + e.Message
}

// BreakSignal unwinds execution up to the iterate that owns it. It only
// escapes a run when something is badly wrong.
type BreakSignal struct {
	owner *iterationFrame
}

func (b *BreakSignal) Error() string {
	return "break signal escaped its iterate"
}
