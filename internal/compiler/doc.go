// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package compiler turns a parsed model.Program into an executable
// engine.Program.
//
// Compilation is where a program is checked as a whole, before any input is
// read:
//
//   - prefixed names are resolved against the declared namespaces, so that
//     names written with different prefixes for one URI compare equal;
//   - every variable an expression refers to must be in scope at that point,
//     and every function it calls must exist;
//   - a `break` must sit inside an `iterate` body (not in its on_completion);
//   - every `iterate` is validated structurally up front, so a misordered or
//     mismatched construct is reported at load time instead of half way
//     through a run;
//   - `call_template` targets and their parameter names must exist.
//
// All problems are collected as hcl.Diagnostics so the user sees every one of
// them, with source ranges, in one go.
package compiler
