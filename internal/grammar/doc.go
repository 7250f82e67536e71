// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package grammar holds the closed enumeration of expression node kinds and
// maps parsed HCL expression nodes onto it.
//
// Why a separate enumeration?
//
// The expression language is HCL, but diagnostics and analysis talk about
// expressions in terms of the path-expression grammar that programs are
// modelled on (a for-expression, a comparison, a variable reference). Keeping
// the kinds as a plain data table, with a single classification function,
// means analysis code switches on a small integer instead of on the concrete
// HCL syntax node types.
package grammar
