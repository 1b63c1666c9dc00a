package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
)

// roleIndex answers "which produced units of a role agree with this key"
// without scanning every unit for every member.
type roleIndex struct {
	units  []graph.DataUnit
	shapes []*unitShape
}

// unitShape groups the units keyed by the same set of axes.
type unitShape struct {
	axes      []string
	positions map[string][]int
}

func newRoleIndex(units []graph.DataUnit) *roleIndex {
	ri := &roleIndex{units: units}
	byAxes := make(map[string]*unitShape)
	for i, u := range units {
		axes := u.Key.Axes()
		sig := fmt.Sprint(axes)
		shape, ok := byAxes[sig]
		if !ok {
			shape = &unitShape{axes: axes, positions: make(map[string][]int)}
			byAxes[sig] = shape
			ri.shapes = append(ri.shapes, shape)
		}
		k := u.Key.String()
		shape.positions[k] = append(shape.positions[k], i)
	}
	return ri
}

// match returns the units whose keys agree with member on every shared axis,
// in creation order.
func (ri *roleIndex) match(member nodeid.Key) []graph.DataUnit {
	var positions []int
	for _, shape := range ri.shapes {
		if covers(member, shape.axes) {
			positions = append(positions, shape.positions[member.Project(shape.axes).String()]...)
			continue
		}
		for _, list := range shape.positions {
			for _, i := range list {
				if ri.units[i].Key.Agrees(member) {
					positions = append(positions, i)
				}
			}
		}
	}
	sort.Ints(positions)

	out := make([]graph.DataUnit, len(positions))
	for i, p := range positions {
		out[i] = ri.units[p]
	}
	return out
}

func covers(key nodeid.Key, axes []string) bool {
	for _, axis := range axes {
		if _, ok := key.Get(axis); !ok {
			return false
		}
	}
	return true
}

// consumedUnits resolves the input roles of a stage for one group. For every
// role and member it takes the already produced units that agree with the
// member; when there are none the unit is external.
func (s *state) consumedUnits(ctx context.Context, stage *model.Stage, members []nodeid.Key) ([]graph.DataUnit, error) {
	logger := ctxlog.FromContext(ctx)

	var out []graph.DataUnit
	seen := make(map[string]struct{})
	add := func(u graph.DataUnit) {
		id := u.ID()
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, u)
	}

	for _, role := range stage.Inputs {
		index := s.index(role)
		for _, member := range members {
			matched := index.match(member)
			for _, u := range matched {
				add(u)
			}
			if len(matched) > 0 {
				continue
			}

			u, err := s.externalUnit(stage, role, member)
			if err != nil {
				return nil, err
			}
			if _, raw := s.pipeline.Input(role); !raw {
				logger.Debug("No upstream unit, reading as external input.", "stage", stage.Name, "unit", u.ID())
			}
			add(u)
		}
	}
	return out, nil
}

// index returns the role index for the units produced so far. A stage never
// consumes its own outputs, so the index stays valid while one stage's nodes
// are created.
func (s *state) index(role string) *roleIndex {
	produced := s.graph.Produced(role)
	if ri, ok := s.indexes[role]; ok && len(ri.units) == len(produced) {
		return ri
	}
	ri := newRoleIndex(produced)
	s.indexes[role] = ri
	return ri
}

// externalUnit builds the unit of role read by member when nothing produced
// it. Raw inputs carry the rendered replica URL and site.
func (s *state) externalUnit(stage *model.Stage, role string, member nodeid.Key) (graph.DataUnit, error) {
	if in, ok := s.pipeline.Input(role); ok {
		key := member.Project(in.Dimensions)
		u := graph.DataUnit{Role: role, Key: key, External: true, Site: in.Site}
		if in.URL != nil {
			url, err := expr.EvalString(in.URL, s.plan.Vars(key))
			if err != nil {
				return graph.DataUnit{}, &errs.MalformedInputError{Stage: stage.Name, Role: role,
					Reason: fmt.Sprintf("cannot render the url of %s", u.ID()), Err: err}
			}
			u.URL = url
		}
		return u, nil
	}

	return graph.DataUnit{Role: role, Key: member.Project(s.roleDimensions(role)), External: true}, nil
}

// roleDimensions returns the key axes of a produced role: the group_by of
// its first producer.
func (s *state) roleDimensions(role string) []string {
	for _, stage := range s.pipeline.Stages {
		if stage.Produces(role) {
			return stage.GroupBy
		}
	}
	return nil
}
