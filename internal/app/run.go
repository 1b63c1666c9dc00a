package app

import (
	"context"
	"fmt"

	"github.com/lsst-dm/Daxgen/internal/builder"
	"github.com/lsst-dm/Daxgen/internal/catalog"
	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/dataset"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/planner"
	"github.com/lsst-dm/Daxgen/internal/serialize"
	"github.com/lsst-dm/Daxgen/internal/tracing"
	"github.com/viant/afs/url"
	"go.opentelemetry.io/otel/attribute"
)

type catalogs struct {
	table *catalog.Table
	sites *catalog.SiteCatalog
}

// Run generates the workflow. Nothing is written unless every phase before
// the write succeeds.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	a.logger.Debug("App.Run method started.")

	if cfg.TraceFile != "" {
		shutdown, err := tracing.Init("daxgen", Version, cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil {
				a.logger.Warn("Flushing traces failed.", "error", serr)
			}
		}()
	}

	ctx, span := tracing.StartSpan(ctx, "generate",
		attribute.String("pipeline", cfg.PipelinePath),
		attribute.String("site", cfg.Site),
	)
	defer func() { tracing.EndSpan(span, err) }()

	p, err := phase(ctx, "load", func(ctx context.Context) (*model.Pipeline, error) {
		return model.LoadPipeline(ctx, cfg.PipelinePath)
	})
	if err != nil {
		return err
	}
	a.logger.Info("Pipeline loaded.", "workflow", p.Name, "stages", len(p.Stages))

	cats, err := phase(ctx, "catalogs", a.loadCatalogs)
	if err != nil {
		return err
	}

	plan, err := phase(ctx, "enumerate", func(ctx context.Context) (*dataset.Plan, error) {
		return dataset.Enumerate(ctx, p)
	})
	if err != nil {
		return err
	}

	g, err := phase(ctx, "build", func(ctx context.Context) (*graph.WorkflowGraph, error) {
		return builder.Build(ctx, p, plan, cats.table, builder.Config{
			Name:    cfg.Name,
			Site:    cfg.Site,
			Wrapper: cfg.Wrapper,
		})
	})
	if err != nil {
		return err
	}

	store := serialize.NewFileStore(a.fs, cfg.OutputDir)
	out, err := phase(ctx, "render", func(ctx context.Context) (*serialize.Artifacts, error) {
		return serialize.Render(ctx, g, serialize.Options{
			Format:           cfg.Format,
			DescriptorFormat: cfg.DescriptorFormat,
			DescriptorURL:    store.URL(serialize.DescriptorDir),
			DescriptorSite:   planner.DefaultOutputSite,
			NodeLink:         cfg.NodeLink,
		})
	})
	if err != nil {
		return err
	}

	if _, err := phase(ctx, "write", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, out.Write(ctx, store)
	}); err != nil {
		return err
	}
	a.artifacts = out
	a.logger.Info("Workflow generated.", "workflow", g.Name(), "workflow_id", out.WorkflowID,
		"jobs", len(g.Nodes()), "output", store.Base())

	if cfg.PlannerPath != "" {
		if _, err := phase(ctx, "plan", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, planner.Run(ctx, planner.Config{
				Path:       cfg.PlannerPath,
				Workflow:   url.Path(store.URL(cfg.Format.WorkflowFile())),
				SubmitDir:  cfg.SubmitDir,
				Site:       cfg.Site,
				OutputSite: cfg.OutputSite,
			})
		}); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) loadCatalogs(ctx context.Context) (catalogs, error) {
	cfg := a.config
	table, sites, err := catalog.Load(ctx, a.fs, catalog.Locations{
		TransformationCatalog: cfg.TransformationCatalog,
		SiteCatalog:           cfg.SiteCatalog,
	})
	if err != nil {
		return catalogs{}, err
	}
	if sites != nil {
		if _, ok := sites.Site(cfg.Site); !ok {
			return catalogs{}, &errs.MalformedInputError{
				Reason: fmt.Sprintf("site %q is not listed in the site catalog %s (known: %v)", cfg.Site, cfg.SiteCatalog, sites.Names()),
			}
		}
	}
	return catalogs{table: table, sites: sites}, nil
}

// phase runs fn inside its own span.
func phase[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracing.StartSpan(ctx, name)
	v, err := fn(ctx)
	tracing.EndSpan(span, err)
	return v, err
}
