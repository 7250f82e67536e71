// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// Why store the file path?
//
// The file path connects a parsed element back to its physical source on
// disk. Diagnostics report the file an error is in, and extension scripts
// referenced with a relative `src` are resolved against the directory of the
// file that declares them.
package model

import "path/filepath"

type FSInfo struct {
	FilePath string
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// Dir returns the directory containing the file.
func (i *FSInfo) Dir() string {
	if i == nil || i.FilePath == "" {
		return "."
	}
	return filepath.Dir(i.FilePath)
}
