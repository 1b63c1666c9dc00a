// SPDX-License-Identifier: MIT
//
// This file implements a table-driven parser for the body of a `stage` block.
//
// Why use a table-driven design?
//
// Each attribute has its own small rule: some are literal name lists, some are
// keywords, some are kept as deferred expressions. Keeping one entry per
// attribute makes it easy to see how each piece is handled, and adding an
// attribute only means adding a row here and a field on Stage.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
)

// attributeParser parses one attribute of a stage body and stores it on the Stage.
type attributeParser struct {
	Name  string
	Parse func(stage *Stage, attr *hcl.Attribute) hcl.Diagnostics
}

// attributeParsers is the table that drives the simple attribute parsing logic.
var attributeParsers = []attributeParser{
	{"description", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		var diags hcl.Diagnostics
		s.Description, diags = hclutil.StaticString(a)
		return diags
	}},
	{"fanout", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		raw, diags := hclutil.StaticString(a)
		if diags.HasErrors() {
			return diags
		}
		fanOut, err := ParseFanOut(raw)
		if err != nil {
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid fanout",
				Detail:   err.Error(),
				Subject:  a.Expr.Range().Ptr(),
			}}
		}
		s.FanOut = fanOut
		return nil
	}},
	{"dimensions", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		var diags hcl.Diagnostics
		s.Dimensions, diags = parseNameList(a)
		return diags
	}},
	{"inputs", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		var diags hcl.Diagnostics
		s.Inputs, diags = parseNameList(a)
		return diags
	}},
	{"outputs", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		var diags hcl.Diagnostics
		s.Outputs, diags = parseNameList(a)
		return diags
	}},
	{"where", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		s.Where = a.Expr
		s.Expressions.Add(a.Expr)
		return nil
	}},
	{"arguments", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		s.Arguments = a.Expr
		s.Expressions.Add(a.Expr)
		return nil
	}},
	{"capture_output", func(s *Stage, a *hcl.Attribute) hcl.Diagnostics {
		var diags hcl.Diagnostics
		s.CaptureOutput, diags = hclutil.StaticBool(a)
		return diags
	}},
}

// stageBodySchema defines the expected structure of a `stage` block's body.
var stageBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"}, {Name: "fanout"}, {Name: "dimensions"},
		{Name: "group_by"}, {Name: "where"}, {Name: "inputs"},
		{Name: "outputs"}, {Name: "arguments"}, {Name: "capture_output"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "profile", LabelNames: []string{"namespace"}},
		{Type: "override"},
	},
}

// parseNameList decodes a literal list of identifiers and rejects duplicates
// and names that could not appear in a node id.
func parseNameList(attr *hcl.Attribute) ([]string, hcl.Diagnostics) {
	names, diags := hclutil.StaticStringList(attr)
	if diags.HasErrors() {
		return nil, diags
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		detail := ""
		if !nodeid.ValidName(name) {
			detail = fmt.Sprintf("%q is not a valid name in %q: names start with a letter and contain only letters, digits, '_' and '-'.", name, attr.Name)
		} else if _, dup := seen[name]; dup {
			detail = fmt.Sprintf("%q is listed more than once in %q.", name, attr.Name)
		}
		if detail != "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid name list",
				Detail:   detail,
				Subject:  attr.Expr.Range().Ptr(),
			})
		}
		seen[name] = struct{}{}
	}
	return names, diags
}
