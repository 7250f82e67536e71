// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package varstack implements the scoped variable store used while a program
// runs.
//
// Why a stack of frames instead of a single map?
//
// A loop parameter must carry a different value on every pass of the loop,
// and a nested loop or a recursive template call must be able to bind the very
// same name without disturbing the outer binding. Each binding construct pushes
// its own Frame; values inside a frame are addressed by a stable slot index
// handed out at declaration time, so rebinding a parameter is an indexed write
// that never touches sibling or parent frames.
//
// Name lookup walks the frames from the innermost outwards and stops at the
// first isolated frame, which is how a called template is kept from seeing the
// local variables of its caller.
package varstack
