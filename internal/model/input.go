// SPDX-License-Identifier: MIT
//
// This file defines raw inputs: data roles that enter the workflow from outside
// and are never produced by a stage.
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
)

// DefaultReplicaSite is the site assumed for raw input URLs that name none.
const DefaultReplicaSite = "local"

// Input is the format-agnostic representation of an `input` block.
type Input struct {
	Role          string
	FSInformation *FSInfo

	// Dimensions are the axes that key a unit of this role.
	Dimensions []string
	// URL is an optional template rendering the replica location of a unit.
	URL hcl.Expression
	// Site is where the replica lives.
	Site string

	Expressions *expr.Container
}

var inputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "dimensions"},
		{Name: "url"},
		{Name: "site"},
		{Name: "description"},
	},
}

// NewInputFromHCL creates a new Input from the body of an `input` block.
func NewInputFromHCL(role string, body hcl.Body, filePath string) (*Input, hcl.Diagnostics) {
	in := &Input{
		Role:          role,
		FSInformation: NewFSInfo(filePath),
		Site:          DefaultReplicaSite,
		Expressions:   expr.NewContainer(),
	}

	content, diags := body.Content(inputBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	dims, dimDiags := hclutil.StaticStringList(content.Attributes["dimensions"])
	diags = append(diags, dimDiags...)
	in.Dimensions = dims

	if attr, ok := content.Attributes["url"]; ok {
		in.URL = attr.Expr
		in.Expressions.Add(attr.Expr)
	}

	if attr, ok := content.Attributes["site"]; ok {
		site, siteDiags := hclutil.StaticString(attr)
		diags = append(diags, siteDiags...)
		in.Site = site
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return in, diags
}
