// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package extension keeps track of the extension namespaces a program
// declares and the functions their scripts provide.
//
// # Registry
//
// A Registry maps a namespace URI to the Handler built for it. Handlers are
// created lazily by RegisterIfAbsent: the first registration of a namespace
// compiles its script and stores the result, every later registration of the
// same namespace returns the stored handler untouched. A Registry belongs to
// one transformation run; it is never shared between runs.
//
// # Languages
//
// Scripts are compiled by a Loader looked up by language name in a
// Languages table. The built-in language "hcl" reads `function` blocks in the
// format of the HCL userfunc extension:
//
//	function "shout" {
//	  params = [s]
//	  result = format("%s!", upper(s))
//	}
//
// Registering the same language twice is a programming error and panics.
package extension
