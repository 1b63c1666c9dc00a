// Package hclutil holds small helpers shared by the HCL-facing packages.
package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// FindUniqueBlock searches a slice of blocks for all blocks of a given name.
// It returns a diagnostic error if more than one block of that name is found.
// If no block is found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type == name {
			if found != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"" + name + "\" block",
					Detail:   "Only one \"" + name + "\" block is allowed.",
					Subject:  &block.DefRange,
				})
			}
			found = block
		}
	}

	return found, diags
}

// StaticStringList evaluates an attribute that must be a literal list of
// strings, such as `dimensions = ["visit", "ccd"]`. A nil attribute yields nil.
func StaticStringList(attr *hcl.Attribute) ([]string, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil || listVal.IsNull() || !listVal.IsWhollyKnown() {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid string list",
			Detail:   fmt.Sprintf("The %q attribute must be a list of strings.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}

	out := make([]string, 0, listVal.LengthInt())
	for it := listVal.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, v.AsString())
	}
	return out, nil
}

// StaticString evaluates an attribute that must be a literal string.
func StaticString(attr *hcl.Attribute) (string, hcl.Diagnostics) {
	if attr == nil {
		return "", nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}

	strVal, err := convert.Convert(val, cty.String)
	if err != nil || strVal.IsNull() || !strVal.IsKnown() {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid string",
			Detail:   fmt.Sprintf("The %q attribute must be a string.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return strVal.AsString(), nil
}

// StaticBool evaluates an attribute that must be a literal bool.
func StaticBool(attr *hcl.Attribute) (bool, hcl.Diagnostics) {
	if attr == nil {
		return false, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return false, diags
	}

	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Bool) {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid bool",
			Detail:   fmt.Sprintf("The %q attribute must be true or false.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return val.True(), nil
}
