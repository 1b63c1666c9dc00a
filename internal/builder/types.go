package builder

import (
	"github.com/lsst-dm/Daxgen/internal/catalog"
	"github.com/lsst-dm/Daxgen/internal/dataset"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
)

// DefaultSite is the execution site used when none is configured.
const DefaultSite = "local"

// Config selects the target of a build.
type Config struct {
	// Name of the workflow. Defaults to the pipeline's workflow name.
	Name string
	// Site is the execution site every stage is bound to.
	Site string
	// Wrapper, when set, is the transformation every job invokes with its
	// descriptor instead of the stage executable.
	Wrapper string
}

// state is the mutable context of one build.
type state struct {
	pipeline *model.Pipeline
	plan     *dataset.Plan
	resolver catalog.Resolver
	cfg      Config

	graph    *graph.WorkflowGraph
	bindings map[string]catalog.Binding
	wrapper  *catalog.Binding
	indexes  map[string]*roleIndex
}
