// Package hclutil holds small helpers shared by the packages that read HCL
// programs: block lookup, canonical traversal keys and type constraints.
package hclutil
