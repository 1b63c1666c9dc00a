// SPDX-License-Identifier: MIT
//
// This file defines the Axis structure: one named dimension of the dataset.
//
// Axis values are kept as cty values, not strings, so that templates see
// numbers as numbers (`ccd < 50`, `format("%03d", ccd)`) while ids use their
// canonical string form.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
)

// Axis is the format-agnostic representation of an `axis` block.
type Axis struct {
	Name          string
	FSInformation *FSInfo

	// Values holds the literal values, in declaration order.
	Values []cty.Value
	// Range is an optional inclusive integer range appended after Values.
	Range *AxisRange
	// Exclude lists values removed from the resolved axis.
	Exclude []cty.Value
}

// AxisRange is an inclusive integer range with a positive step.
type AxisRange struct {
	From int  `hcl:"from"`
	To   int  `hcl:"to"`
	Step *int `hcl:"step,optional"`
}

// Stride returns the step of the range, defaulting to one.
func (r *AxisRange) Stride() int {
	if r.Step == nil {
		return 1
	}
	return *r.Step
}

var axisBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "values"},
		{Name: "exclude"},
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "range"},
	},
}

// NewAxisFromHCL creates a new Axis from the body of an `axis` block.
func NewAxisFromHCL(name string, body hcl.Body, filePath string) (*Axis, hcl.Diagnostics) {
	axis := &Axis{
		Name:          name,
		FSInformation: NewFSInfo(filePath),
	}

	content, diags := body.Content(axisBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	var valDiags hcl.Diagnostics
	axis.Values, valDiags = literalValues(content.Attributes["values"])
	diags = append(diags, valDiags...)
	axis.Exclude, valDiags = literalValues(content.Attributes["exclude"])
	diags = append(diags, valDiags...)

	rangeBlock, rangeDiags := hclutil.FindUniqueBlock(content.Blocks, "range")
	diags = append(diags, rangeDiags...)
	if rangeBlock != nil && !rangeDiags.HasErrors() {
		var r AxisRange
		decodeDiags := gohcl.DecodeBody(rangeBlock.Body, nil, &r)
		diags = append(diags, decodeDiags...)
		if !decodeDiags.HasErrors() {
			if r.Stride() <= 0 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid range step",
					Detail:   fmt.Sprintf("The step of axis %q must be a positive number.", name),
					Subject:  rangeBlock.DefRange.Ptr(),
				})
			}
			axis.Range = &r
		}
	}

	if axis.Range == nil && content.Attributes["values"] == nil && !diags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Axis has no values",
			Detail:   fmt.Sprintf("Axis %q must declare \"values\", a \"range\" block, or both.", name),
			Subject:  body.MissingItemRange().Ptr(),
		})
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return axis, diags
}

// literalValues evaluates a literal list of strings and numbers.
func literalValues(attr *hcl.Attribute) ([]cty.Value, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	invalid := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid axis values",
		Detail:   fmt.Sprintf("The %q attribute must be a list of strings and numbers.", attr.Name),
		Subject:  attr.Expr.Range().Ptr(),
	}

	ty := val.Type()
	if val.IsNull() || !val.IsWhollyKnown() || !(ty.IsListType() || ty.IsTupleType() || ty.IsSetType()) {
		return nil, hcl.Diagnostics{invalid}
	}

	out := make([]cty.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() || !(elem.Type() == cty.String || elem.Type() == cty.Number) {
			return nil, hcl.Diagnostics{invalid}
		}
		out = append(out, elem)
	}
	return out, nil
}
