package builder

import (
	"context"
	"fmt"

	"github.com/lsst-dm/Daxgen/internal/catalog"
	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/dataset"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
)

// Build constructs a sealed workflow graph from a validated pipeline and its
// enumeration. The resolver supplies the executable of every stage on
// cfg.Site.
func Build(ctx context.Context, p *model.Pipeline, plan *dataset.Plan, resolver catalog.Resolver, cfg Config) (*graph.WorkflowGraph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if cfg.Site == "" {
		cfg.Site = DefaultSite
	}
	if cfg.Name == "" {
		cfg.Name = p.Name
	}

	// First pass: static structure of the template.
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	logger.Debug("Build: Structural validation passed.", "stages", len(p.Stages))

	s := &state{
		pipeline: p,
		plan:     plan,
		resolver: resolver,
		cfg:      cfg,
		graph:    graph.New(cfg.Name),
		bindings: make(map[string]catalog.Binding),
		indexes:  make(map[string]*roleIndex),
	}

	if cfg.Wrapper != "" {
		b, err := resolver.Resolve(cfg.Wrapper, cfg.Site)
		if err != nil {
			return nil, err
		}
		s.wrapper = &b
		logger.Debug("Build: Wrapper resolved.", "wrapper", b.Transformation, "pfn", b.PFN)
	}

	// Second pass: create nodes in declared stage order.
	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.createNodes(ctx, stage); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(s.graph.Nodes()))

	// Final validation: derive edges and detect cycles.
	if err := s.graph.Seal(); err != nil {
		return nil, fmt.Errorf("error validating workflow graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.", "edge_count", len(s.graph.Edges()))

	logger.Info("Build: Graph construction successful.", "workflow", cfg.Name, "site", cfg.Site,
		"nodes", len(s.graph.Nodes()), "edges", len(s.graph.Edges()))
	return s.graph, nil
}
