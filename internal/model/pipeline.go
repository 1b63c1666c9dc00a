// SPDX-License-Identifier: MIT
//
// This file defines the Pipeline structure, which is the root container for all
// definitions loaded from a user's .hcl files.
//
// Why have a Pipeline?
//
// A user may split a pipeline across many files, for instance one file with the
// dataset axes and one per group of stages. Loading consolidates them into a
// single ordered view: files are read in lexical path order and definitions keep
// their order of appearance, so the stage order (which drives ordering
// validation and node creation) never depends on the file system.
package model

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/fsutil"
)

// Pipeline represents the user's pipeline declaration.
type Pipeline struct {
	Name        string
	Description string

	Axes   []*Axis
	Inputs []*Input
	Stages []*Stage
}

// NewPipeline creates and returns an initialized Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Axes:   []*Axis{},
		Inputs: []*Input{},
		Stages: []*Stage{},
	}
}

// Axis looks up an axis by name.
func (p *Pipeline) Axis(name string) (*Axis, bool) {
	for _, a := range p.Axes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Input looks up a raw input declaration by role.
func (p *Pipeline) Input(role string) (*Input, bool) {
	for _, in := range p.Inputs {
		if in.Role == role {
			return in, true
		}
	}
	return nil, false
}

// Stage looks up a stage by name.
func (p *Pipeline) Stage(name string) (*Stage, bool) {
	for _, s := range p.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// hclPipelineFile represents the top-level structure of a pipeline file for decoding.
type hclPipelineFile struct {
	Workflows []*hclWorkflow `hcl:"workflow,block"`
	Axes      []*hclLabeled  `hcl:"axis,block"`
	Inputs    []*hclLabeled  `hcl:"input,block"`
	Stages    []*hclLabeled  `hcl:"stage,block"`
}

type hclWorkflow struct {
	Name        string  `hcl:"name,label"`
	Description *string `hcl:"description,optional"`
}

// hclLabeled is any single-label block whose body is parsed by hand.
type hclLabeled struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// parseFile decodes one HCL file and appends its definitions to the pipeline.
func (p *Pipeline) parseFile(hclFile *hcl.File, filePath string) error {
	var parsedFile hclPipelineFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsedFile); diags.HasErrors() {
		return &errs.MalformedInputError{Reason: "failed to decode " + filePath, Err: diags}
	}

	for _, wf := range parsedFile.Workflows {
		if p.Name != "" {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("duplicate workflow block %q in %s", wf.Name, filePath)}
		}
		p.Name = wf.Name
		if wf.Description != nil {
			p.Description = *wf.Description
		}
	}

	for _, block := range parsedFile.Axes {
		axis, diags := NewAxisFromHCL(block.Name, block.Body, filePath)
		if diags.HasErrors() {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("axis %q in %s", block.Name, filePath), Err: diags}
		}
		p.Axes = append(p.Axes, axis)
	}

	for _, block := range parsedFile.Inputs {
		input, diags := NewInputFromHCL(block.Name, block.Body, filePath)
		if diags.HasErrors() {
			return &errs.MalformedInputError{Role: block.Name, Reason: "invalid input in " + filePath, Err: diags}
		}
		p.Inputs = append(p.Inputs, input)
	}

	for _, block := range parsedFile.Stages {
		stage, diags := NewStageFromHCL(block.Name, block.Body, filePath)
		if diags.HasErrors() {
			return &errs.MalformedInputError{Stage: block.Name, Reason: "invalid stage in " + filePath, Err: diags}
		}
		p.Stages = append(p.Stages, stage)
	}

	return nil
}

// ParsePipeline parses a single in-memory pipeline source and validates it.
func ParsePipeline(src []byte, filename string) (*Pipeline, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &errs.MalformedInputError{Reason: "failed to parse " + filename, Err: diags}
	}

	p := NewPipeline()
	if err := p.parseFile(hclFile, filename); err != nil {
		return nil, err
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPipeline finds and parses all HCL files in a given path into a validated Pipeline.
func LoadPipeline(ctx context.Context, path string) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading pipeline from path", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find pipeline files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, &errs.MalformedInputError{Reason: "no .hcl pipeline files found in " + path}
	}

	parser := hclparse.NewParser()
	p := NewPipeline()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, &errs.MalformedInputError{Reason: "failed to parse " + file, Err: diags}
		}
		if err := p.parseFile(hclFile, file); err != nil {
			return nil, err
		}
		logger.Debug("Parsed pipeline file", "file", file)
	}

	if err := Validate(p); err != nil {
		return nil, err
	}

	logger.Debug("Pipeline loaded",
		"axes", len(p.Axes), "inputs", len(p.Inputs), "stages", len(p.Stages))
	return p, nil
}
