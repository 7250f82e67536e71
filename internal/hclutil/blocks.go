package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock returns the first block of type typ, or nil when there is
// none. Every further block of that type adds an error diagnostic pointing at
// it.
func FindUniqueBlock(blocks hcl.Blocks, typ string) (*hcl.Block, hcl.Diagnostics) {
	var first *hcl.Block
	var diags hcl.Diagnostics
	for _, b := range blocks {
		switch {
		case b.Type != typ:
		case first == nil:
			first = b
		default:
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %q block", typ),
				Detail:   fmt.Sprintf("Only one %q block is allowed here; the first one is at %s.", typ, first.DefRange),
				Subject:  b.DefRange.Ptr(),
			})
		}
	}
	return first, diags
}
