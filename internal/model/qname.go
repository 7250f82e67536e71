// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines QName, the qualified names used for templates,
// parameters and variables.
//
// Why a struct and not a string?
//
// A name written as `acme:total` denotes the pair (namespace URI bound to
// `acme`, `total`). Two different prefixes bound to the same URI name the same
// thing, so names are compared by value after the prefix has been resolved.
// QName is a comparable struct and can be used directly as a map key.
package model

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// QName is a namespace URI plus a local name.
type QName struct {
	Space string
	Local string
}

// LocalName returns a QName with no namespace.
func LocalName(local string) QName {
	return QName{Local: local}
}

// String renders the name in Clark notation, `{uri}local`, or just the local
// part when there is no namespace.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// SplitQName splits a lexical name into its prefix and local part. Both must
// be valid identifiers.
func SplitQName(s string) (prefix, local string, err error) {
	prefix, local, found := strings.Cut(s, ":")
	if !found {
		prefix, local = "", s
	}
	if found && !hclsyntax.ValidIdentifier(prefix) {
		return "", "", fmt.Errorf("invalid prefix %q in name %q", prefix, s)
	}
	if !hclsyntax.ValidIdentifier(local) {
		return "", "", fmt.Errorf("invalid name %q: must be a valid identifier", s)
	}
	return prefix, local, nil
}
