package builder

import (
	"context"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
)

// createNodes adds one TaskNode per group of the stage's plan.
func (s *state) createNodes(ctx context.Context, stage *model.Stage) error {
	logger := ctxlog.FromContext(ctx).With("stage", stage.Name)

	sp, ok := s.plan.Stage(stage.Name)
	if !ok {
		return errs.Malformedf(stage.Name, "stage has not been enumerated")
	}
	logger.Debug("Creating task nodes.", "fanout", stage.FanOut, "instance_count", len(sp.Groups))

	for _, group := range sp.Groups {
		id := nodeid.NewAddress(stage.Name, group.Key)
		n := &graph.TaskNode{
			ID:            id,
			Stage:         stage.Name,
			Members:       group.Members,
			CaptureOutput: stage.CaptureOutput,
		}

		consumes, err := s.consumedUnits(ctx, stage, group.Members)
		if err != nil {
			return err
		}
		n.Consumes = consumes

		for _, role := range stage.Outputs {
			n.Produces = append(n.Produces, graph.DataUnit{Role: role, Key: group.Key})
		}

		if err := s.bind(stage, n); err != nil {
			return err
		}
		if err := s.render(stage, n); err != nil {
			return err
		}

		if err := s.graph.AddNode(n); err != nil {
			return err
		}
		logger.Debug("Task node created.", "id", id.String(), "consumes", len(n.Consumes), "produces", len(n.Produces))
	}
	return nil
}
