// SPDX-License-Identifier: MIT
//
// This file holds the static validation of a whole pipeline: everything that can
// be checked before any axis value is enumerated.
//
// Checks run in declaration order and the first failure is returned, so the
// same broken pipeline always reports the same error.
package model

import (
	"fmt"
	"slices"

	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
)

// TaskVariable is the object exposed to argument templates with the `id` and
// `stage` of the task being rendered.
const TaskVariable = "task"

// Validate checks names, dimensions, role resolution, stage ordering and
// template scopes.
func Validate(p *Pipeline) error {
	if len(p.Stages) == 0 {
		return &errs.MalformedInputError{Reason: "pipeline declares no stages"}
	}

	if err := validateAxes(p); err != nil {
		return err
	}
	if err := validateInputs(p); err != nil {
		return err
	}
	if err := validateStages(p); err != nil {
		return err
	}
	return validateRoles(p)
}

func validateAxes(p *Pipeline) error {
	seen := make(map[string]*Axis, len(p.Axes))
	for _, axis := range p.Axes {
		if !nodeid.ValidName(axis.Name) {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("%s: invalid axis name", axis.FSInformation.Describe("axis", axis.Name))}
		}
		if axis.Name == TaskVariable {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("axis name %q is reserved", TaskVariable)}
		}
		if prev, dup := seen[axis.Name]; dup {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("%s is declared again after %s",
				axis.FSInformation.Describe("axis", axis.Name), prev.FSInformation.Describe("axis", prev.Name))}
		}
		seen[axis.Name] = axis
	}
	return nil
}

func validateInputs(p *Pipeline) error {
	seen := make(map[string]struct{}, len(p.Inputs))
	for _, in := range p.Inputs {
		if !nodeid.ValidName(in.Role) {
			return &errs.MalformedInputError{Role: in.Role, Reason: "invalid role name"}
		}
		if _, dup := seen[in.Role]; dup {
			return &errs.MalformedInputError{Role: in.Role, Reason: "raw input is declared more than once"}
		}
		seen[in.Role] = struct{}{}

		if err := checkDimensions(p, in.Dimensions); err != nil {
			return &errs.MalformedInputError{Role: in.Role, Reason: "invalid dimensions", Err: err}
		}
		if diags := in.Expressions.CheckScope(in.Dimensions); diags.HasErrors() {
			return &errs.MalformedInputError{Role: in.Role, Reason: "invalid url template", Err: diags}
		}
	}
	return nil
}

func validateStages(p *Pipeline) error {
	seen := make(map[string]*Stage, len(p.Stages))
	for _, stage := range p.Stages {
		if !nodeid.ValidName(stage.Name) {
			return errs.Malformedf(stage.Name, "invalid stage name")
		}
		if prev, dup := seen[stage.Name]; dup {
			return errs.Malformedf(stage.Name, "%s is declared again after %s",
				stage.FSInformation.Describe("stage", stage.Name), prev.FSInformation.Describe("stage", prev.Name))
		}
		seen[stage.Name] = stage

		if err := checkDimensions(p, stage.Dimensions); err != nil {
			return &errs.MalformedInputError{Stage: stage.Name, Reason: "invalid dimensions", Err: err}
		}
		for _, role := range stage.Inputs {
			if stage.Produces(role) {
				return &errs.CycleDetectedError{
					Stages: []string{stage.Name},
					Reason: fmt.Sprintf("stage consumes its own output %q", role),
				}
			}
		}

		if diags := expr.NewContainer(stage.Where).CheckScope(stage.Dimensions); diags.HasErrors() {
			return &errs.MalformedInputError{Stage: stage.Name, Reason: "invalid where expression", Err: diags}
		}
		taskScope := append(slices.Clone(stage.GroupBy), TaskVariable)
		if diags := expr.NewContainer(stage.Arguments).CheckScope(taskScope); diags.HasErrors() {
			return &errs.MalformedInputError{Stage: stage.Name, Reason: "invalid arguments template", Err: diags}
		}
		for _, override := range stage.Overrides {
			if diags := expr.NewContainer(override.When).CheckScope(stage.GroupBy); diags.HasErrors() {
				return &errs.MalformedInputError{Stage: stage.Name, Reason: "invalid override condition", Err: diags}
			}
		}
	}
	return nil
}

// validateRoles resolves every input role of every stage against the raw
// inputs and the outputs of the stages declared before it.
func validateRoles(p *Pipeline) error {
	producers := make(map[string][]int)
	for i, stage := range p.Stages {
		for _, role := range stage.Outputs {
			if _, raw := p.Input(role); raw {
				return &errs.MalformedInputError{Stage: stage.Name, Role: role,
					Reason: "role is declared as a raw input and cannot be produced"}
			}
			producers[role] = append(producers[role], i)
		}
	}

	for i, stage := range p.Stages {
		for _, role := range stage.Inputs {
			indexes := producers[role]
			if len(indexes) > 0 && indexes[0] < i {
				continue
			}
			if len(indexes) > 0 {
				later := p.Stages[indexes[0]]
				return &errs.CycleDetectedError{
					Stages: []string{stage.Name, later.Name},
					Reason: fmt.Sprintf("role %q is consumed by %q before %q produces it", role, stage.Name, later.Name),
				}
			}

			raw, ok := p.Input(role)
			if !ok {
				return &errs.MalformedInputError{Stage: stage.Name, Role: role,
					Reason: "role is neither produced by an earlier stage nor declared as a raw input"}
			}
			for _, dim := range raw.Dimensions {
				if !slices.Contains(stage.Dimensions, dim) {
					return &errs.MalformedInputError{Stage: stage.Name, Role: role,
						Reason: fmt.Sprintf("raw input is keyed by %q, which is not a dimension of the stage", dim)}
				}
			}
		}
	}
	return nil
}

func checkDimensions(p *Pipeline, dims []string) error {
	for _, dim := range dims {
		if _, ok := p.Axis(dim); !ok {
			return fmt.Errorf("unknown axis %q", dim)
		}
	}
	return nil
}
