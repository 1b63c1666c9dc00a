package builder

import (
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// render computes the resource profile and the argument list of a node.
// Profile layers, weakest first: stage, catalog binding, matching overrides.
func (s *state) render(stage *model.Stage, n *graph.TaskNode) error {
	vars := s.plan.Vars(n.Key())

	layers := []model.Profile{n.Binding.Profile}
	for _, o := range stage.Overrides {
		ok, err := expr.EvalBool(o.When, vars)
		if err != nil {
			return &errs.MalformedInputError{Stage: stage.Name,
				Reason: "cannot evaluate override condition for " + n.ID.String(), Err: err}
		}
		if ok {
			layers = append(layers, o.Profile)
		}
	}
	n.Profile = stage.Profile.Merge(layers...)

	vars[model.TaskVariable] = cty.ObjectVal(map[string]cty.Value{
		"id":    cty.StringVal(n.ID.String()),
		"stage": cty.StringVal(stage.Name),
	})
	args, err := expr.EvalStrings(stage.Arguments, vars)
	if err != nil {
		return &errs.MalformedInputError{Stage: stage.Name,
			Reason: "cannot render arguments for " + n.ID.String(), Err: err}
	}
	n.Arguments = args
	return nil
}
