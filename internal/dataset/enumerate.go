// Package dataset enumerates the data units each stage reads and groups them
// into the keys of the tasks that will process them.
//
// Enumeration is pure: the same pipeline always yields the same plan, with
// groups and members in natural key order.
package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Plan is the enumeration of a whole pipeline.
type Plan struct {
	Axes   map[string]*Axis
	Stages []*StagePlan
}

// StagePlan lists the task groups of one stage.
type StagePlan struct {
	Stage  *model.Stage
	Groups []Group
}

// Group is one future task: its key (the projection on the stage's group_by
// axes) and the units it covers.
type Group struct {
	Key     nodeid.Key
	Members []nodeid.Key
}

// Stage returns the plan of the named stage.
func (p *Plan) Stage(name string) (*StagePlan, bool) {
	for _, sp := range p.Stages {
		if sp.Stage.Name == name {
			return sp, true
		}
	}
	return nil, false
}

// Vars returns the typed axis values of key, ready to be used as template variables.
func (p *Plan) Vars(key nodeid.Key) map[string]cty.Value {
	vars := make(map[string]cty.Value, len(key))
	for _, d := range key {
		if axis, ok := p.Axes[d.Axis]; ok {
			if v, ok := axis.Value(d.Value); ok {
				vars[d.Axis] = v
				continue
			}
		}
		vars[d.Axis] = cty.StringVal(d.Value)
	}
	return vars
}

// Enumerate resolves every axis and computes the groups of every stage.
func Enumerate(ctx context.Context, p *model.Pipeline) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	plan := &Plan{Axes: make(map[string]*Axis, len(p.Axes))}
	for _, decl := range p.Axes {
		axis, err := ResolveAxis(decl)
		if err != nil {
			return nil, err
		}
		plan.Axes[axis.Name] = axis
		logger.Debug("Axis resolved", "axis", axis.Name, "values", axis.Len())
	}

	for _, stage := range p.Stages {
		sp, err := plan.enumerateStage(stage)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
		logger.Debug("Stage enumerated", "stage", stage.Name, "fanout", stage.FanOut, "groups", len(sp.Groups))
	}

	return plan, nil
}

func (p *Plan) enumerateStage(stage *model.Stage) (*StagePlan, error) {
	units, err := p.selectUnits(stage)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, &errs.EmptyInputError{Stage: stage.Name}
	}

	index := make(map[string]int)
	var groups []Group
	for _, unit := range units {
		key := unit.Project(stage.GroupBy)
		id := key.String()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Members = append(groups[i].Members, unit)
	}

	for _, g := range groups {
		sort.Slice(g.Members, func(i, j int) bool { return g.Members[i].Compare(g.Members[j]) < 0 })
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key.Compare(groups[j].Key) < 0 })

	return &StagePlan{Stage: stage, Groups: groups}, nil
}

// selectUnits builds the cross product of the stage dimensions and keeps the
// units accepted by the stage's where expression. A stage without dimensions
// reads the single empty unit.
func (p *Plan) selectUnits(stage *model.Stage) ([]nodeid.Key, error) {
	axes := make([]*Axis, len(stage.Dimensions))
	for i, dim := range stage.Dimensions {
		axis, ok := p.Axes[dim]
		if !ok {
			return nil, errs.Malformedf(stage.Name, "unknown axis %q", dim)
		}
		axes[i] = axis
	}

	var units []nodeid.Key
	current := make(map[string]string, len(axes))
	var walk func(depth int) error
	walk = func(depth int) error {
		if depth == len(axes) {
			key := nodeid.NewKey(current)
			keep, err := expr.EvalBool(stage.Where, p.Vars(key))
			if err != nil {
				return &errs.MalformedInputError{Stage: stage.Name,
					Reason: fmt.Sprintf("cannot evaluate where for %s", key), Err: err}
			}
			if keep {
				units = append(units, key)
			}
			return nil
		}
		axis := axes[depth]
		for _, s := range axis.Strings {
			current[axis.Name] = s
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		delete(current, axis.Name)
		return nil
	}

	if err := walk(0); err != nil {
		return nil, err
	}
	return units, nil
}
