// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the format-agnostic representation of a
// transformation program, parsed from HCL files.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Program: The root container for everything loaded from one or more .hcl
//     files: templates, namespace bindings and extension declarations.
//
//   - Element: One instruction block (`iterate`, `param`, `value`, ...) with its
//     attributes kept as raw HCL expressions and its nested blocks kept in
//     source order. Order matters: the children of an `iterate` are checked
//     against ordering rules before the program may run.
//
//   - QName: A namespace-qualified name. Two names are the same when their
//     namespace URI and local part match, whatever prefix was used to write
//     them.
//
//   - FSInfo: Metadata that links every element back to its source file.
//
// Why keep raw expressions?
//
// Expressions can only be evaluated once the program runs, against the
// current item and the variables in scope. The model records the user's
// intent; the compiler turns it into executable instructions.
package model
