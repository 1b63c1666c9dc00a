// SPDX-License-Identifier: MIT
//
// This file defines the Stage structure, one step of the pipeline template.
//
// Why store raw hcl.Expression fields?
//
// The selection (`where`), the `arguments` template and override conditions
// depend on the dataset key of each task, which is only known after
// enumeration. The model captures them as expressions; the enumerator and the
// graph builder evaluate them once per unit or per task.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/lsst-dm/Daxgen/internal/expr"
)

// Stage is the format-agnostic representation of a `stage` block.
type Stage struct {
	Name          string
	FSInformation *FSInfo
	DefRange      hcl.Range

	Description string

	// Dataset shape
	FanOut     FanOut
	Dimensions []string
	GroupBy    []string
	Where      hcl.Expression

	// Data flow
	Inputs  []string
	Outputs []string

	// Invocation
	Arguments     hcl.Expression
	CaptureOutput bool
	Profile       Profile
	Overrides     []*Override

	// Expression container
	Expressions *expr.Container
}

// Override adjusts the profile of the tasks whose key satisfies When.
type Override struct {
	When    hcl.Expression
	Profile Profile
}

// NewStage creates a new, empty Stage struct.
func NewStage(name string) *Stage {
	return &Stage{
		Name:        name,
		FanOut:      FanOutPerUnit,
		Profile:     Profile{},
		Expressions: expr.NewContainer(),
	}
}

// Produces reports whether the stage lists role among its outputs.
func (s *Stage) Produces(role string) bool {
	for _, out := range s.Outputs {
		if out == role {
			return true
		}
	}
	return false
}

// NewStageFromHCL creates a new Stage from the body of a `stage` block.
func NewStageFromHCL(name string, body hcl.Body, filePath string) (*Stage, hcl.Diagnostics) {
	stage := NewStage(name)
	stage.FSInformation = NewFSInfo(filePath)
	stage.DefRange = body.MissingItemRange()

	var allDiags hcl.Diagnostics

	content, contentDiags := body.Content(stageBodySchema)
	allDiags = append(allDiags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, allDiags
	}

	// --- Parse all simple attributes ---
	for _, parser := range attributeParsers {
		if attr, exists := content.Attributes[parser.Name]; exists {
			allDiags = append(allDiags, parser.Parse(stage, attr)...)
		}
	}

	// --- Normalize the fan-out shape ---
	var groupBy []string
	groupAttr, hasGroupBy := content.Attributes["group_by"]
	if hasGroupBy {
		var groupDiags hcl.Diagnostics
		groupBy, groupDiags = parseNameList(groupAttr)
		allDiags = append(allDiags, groupDiags...)
	}
	if !allDiags.HasErrors() {
		subject := stage.DefRange
		if hasGroupBy {
			subject = groupAttr.Range
		}
		allDiags = append(allDiags, normalizeGrouping(stage, groupBy, hasGroupBy, &subject)...)
	}

	// --- Handle nested blocks ---
	profile, profileDiags := parseProfileBlocks(content.Blocks)
	allDiags = append(allDiags, profileDiags...)
	stage.Profile = profile

	for _, block := range content.Blocks.OfType("override") {
		override, overrideDiags := parseOverride(block)
		allDiags = append(allDiags, overrideDiags...)
		if override != nil {
			stage.Overrides = append(stage.Overrides, override)
			stage.Expressions.Add(override.When)
		}
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}
	return stage, allDiags
}

var overrideBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "when", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "profile", LabelNames: []string{"namespace"}},
	},
}

// parseOverride decodes an `override { when = ... profile "ns" { ... } }` block.
func parseOverride(block *hcl.Block) (*Override, hcl.Diagnostics) {
	content, diags := block.Body.Content(overrideBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	profile, profileDiags := parseProfileBlocks(content.Blocks)
	diags = append(diags, profileDiags...)
	if len(profile) == 0 && !profileDiags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Empty override",
			Detail:   "This override block sets no profile values.",
			Subject:  block.DefRange.Ptr(),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	return &Override{When: content.Attributes["when"].Expr, Profile: profile}, diags
}

// String is used in log messages.
func (s *Stage) String() string {
	return fmt.Sprintf("%s(%s by %v)", s.Name, s.FanOut, s.GroupBy)
}
