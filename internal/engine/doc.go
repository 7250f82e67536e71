// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package engine executes compiled transformation programs.
//
// A compiled program is a tree of Instruction values. Executing it needs a
// State: the per-run bundle of the variable store, the context item stack,
// the chain of active instructions and the result Output. Programs are shared
// and read-only once compiled; every run builds its own State, so any number
// of runs may execute the same program concurrently.
//
// The centrepiece is Iterate, a loop over a sequence with parameters threaded
// from one pass to the next, early exit through Break and a completion hook
// that runs only when the sequence is exhausted. Before an Iterate executes,
// its children are checked against a fixed set of structural rules; a
// violation is reported as one of the typed errors in errors.go, all of which
// match ErrStructure with errors.Is.
//
// Control flow that must unwind several Go call frames, such as a break from
// inside a nested conditional, travels as an ordinary error value
// (*BreakSignal) and is consumed by the Iterate that owns it.
package engine
