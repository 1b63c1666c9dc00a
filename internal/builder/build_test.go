package builder

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/catalog"
	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/dataset"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coaddPipeline = `
workflow "coadd" {
  description = "HSC coadd"
}

axis "visit" { values = [903334, 903336] }
axis "ccd" {
  range {
    from = 0
    to   = 1
  }
}
axis "tract" { values = [0] }
axis "patch" { values = ["1,1"] }

input "raw" {
  dimensions = ["visit", "ccd"]
  url        = "file:///datasets/raw/${visit}/${ccd}.fits"
}

stage "processCcd" {
  dimensions = ["visit", "ccd"]
  inputs     = ["raw"]
  outputs    = ["calexp"]
  arguments  = ["/repo", "--id", "visit=${visit}", "ccd=${ccd}", task.id]
  profile "pegasus" {
    memory = 2048
  }
  override {
    when = visit == 903334
    profile "pegasus" {
      memory = 4096
    }
  }
}

stage "makeSkyMap" {
  fanout  = "singleton"
  outputs = ["skyMap"]
}

stage "makeCoaddTempExp" {
  fanout     = "per_group"
  dimensions = ["tract", "patch", "visit"]
  group_by   = ["tract", "patch"]
  inputs     = ["calexp", "skyMap"]
  outputs    = ["coaddTempExp"]
  arguments  = ["--id", "tract=${tract}", "patch=${patch}"]
}
`

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func catalogFor(site string, stages ...string) *catalog.Table {
	table := catalog.NewTable()
	for _, stage := range stages {
		table.Add(catalog.Binding{
			Transformation: stage,
			Site:           site,
			PFN:            "/software/bin/" + stage + ".py",
			Type:           "installed",
			Arch:           "x86_64",
			OS:             "linux",
			Profile:        model.Profile{"pegasus.cores": "1"},
		})
	}
	return table
}

func mustPlan(t *testing.T, src string) (*model.Pipeline, *dataset.Plan) {
	t.Helper()
	p, err := model.ParsePipeline([]byte(src), "main.hcl")
	require.NoError(t, err)
	plan, err := dataset.Enumerate(testContext(), p)
	require.NoError(t, err)
	return p, plan
}

func nodeIDs(nodes []*graph.TaskNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID.String()
	}
	return out
}

func unitIDs(units []graph.DataUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID()
	}
	return out
}

func TestBuild_CoaddScenario(t *testing.T) {
	// --- Arrange ---
	p, plan := mustPlan(t, coaddPipeline)
	resolver := catalogFor("lsstvc", "processCcd", "makeSkyMap", "makeCoaddTempExp")

	// --- Act ---
	g, err := Build(testContext(), p, plan, resolver, Config{Site: "lsstvc"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "coadd", g.Name())
	assert.Equal(t, []string{
		"processCcd[ccd=0,visit=903334]",
		"processCcd[ccd=0,visit=903336]",
		"processCcd[ccd=1,visit=903334]",
		"processCcd[ccd=1,visit=903336]",
		"makeSkyMap",
		"makeCoaddTempExp[patch=1,1,tract=0]",
	}, nodeIDs(g.Nodes()))

	edges := g.Edges()
	require.Len(t, edges, 5)
	for _, e := range edges {
		assert.Equal(t, "makeCoaddTempExp[patch=1,1,tract=0]", e.Child)
	}
	assert.Equal(t, "makeSkyMap", edges[4].Parent)

	coadd, ok := g.Node("makeCoaddTempExp[patch=1,1,tract=0]")
	require.True(t, ok)
	assert.Equal(t, []string{
		"calexp[ccd=0,visit=903334]", "calexp[ccd=1,visit=903334]",
		"calexp[ccd=0,visit=903336]", "calexp[ccd=1,visit=903336]",
		"skyMap",
	}, unitIDs(coadd.Consumes))
	assert.Equal(t, []string{"coaddTempExp[patch=1,1,tract=0]"}, unitIDs(coadd.Produces))
	assert.Equal(t, []string{"--id", "tract=0", "patch=1,1"}, coadd.Arguments)
	assert.Equal(t, "/software/bin/makeCoaddTempExp.py", coadd.Binding.PFN)
}

func TestBuild_RawInputsAreExternal(t *testing.T) {
	p, plan := mustPlan(t, coaddPipeline)

	g, err := Build(testContext(), p, plan, catalogFor("local", "processCcd", "makeSkyMap", "makeCoaddTempExp"), Config{})

	require.NoError(t, err)
	n, ok := g.Node("processCcd[ccd=1,visit=903336]")
	require.True(t, ok)
	require.Len(t, n.Consumes, 1)
	raw := n.Consumes[0]
	assert.True(t, raw.External)
	assert.Equal(t, "raw[ccd=1,visit=903336]", raw.ID())
	assert.Equal(t, "file:///datasets/raw/903336/1.fits", raw.URL)
	assert.Equal(t, "local", raw.Site)

	parents, err := g.DependenciesOf(n.ID.String())
	require.NoError(t, err)
	assert.Empty(t, parents, "raw inputs introduce no edge")
	_, produced := g.ProducerOf(raw.ID())
	assert.False(t, produced)
}

func TestBuild_ProfilesAndArguments(t *testing.T) {
	p, plan := mustPlan(t, coaddPipeline)

	g, err := Build(testContext(), p, plan, catalogFor("local", "processCcd", "makeSkyMap", "makeCoaddTempExp"), Config{})
	require.NoError(t, err)

	testCases := []struct {
		id       string
		profile  model.Profile
		argument []string
	}{
		{
			id:       "processCcd[ccd=0,visit=903334]",
			profile:  model.Profile{"pegasus.cores": "1", "pegasus.memory": "4096"},
			argument: []string{"/repo", "--id", "visit=903334", "ccd=0", "processCcd[ccd=0,visit=903334]"},
		},
		{
			id:       "processCcd[ccd=0,visit=903336]",
			profile:  model.Profile{"pegasus.cores": "1", "pegasus.memory": "2048"},
			argument: []string{"/repo", "--id", "visit=903336", "ccd=0", "processCcd[ccd=0,visit=903336]"},
		},
		{
			id:      "makeSkyMap",
			profile: model.Profile{"pegasus.cores": "1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			n, ok := g.Node(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.profile, n.Profile)
			assert.Equal(t, tc.argument, n.Arguments)
		})
	}
}

func TestBuild_StageProfileYieldsToCatalog(t *testing.T) {
	p, plan := mustPlan(t, `
axis "visit" { values = [1] }
stage "a" {
  dimensions = ["visit"]
  profile "pegasus" {
    cores  = 8
    memory = 1024
  }
}
`)

	g, err := Build(testContext(), p, plan, catalogFor("local", "a"), Config{})

	require.NoError(t, err)
	n, _ := g.Node("a[visit=1]")
	assert.Equal(t, model.Profile{"pegasus.cores": "1", "pegasus.memory": "1024"}, n.Profile)
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		resolver *catalog.Table
		wrapper  string
		mutate   func(p *model.Pipeline)
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing binding for makeSkyMap",
			src:      coaddPipeline,
			resolver: catalogFor("lsstvc", "processCcd", "makeCoaddTempExp"),
			check: func(t *testing.T, err error) {
				var target *errs.UnresolvedBindingError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "makeSkyMap", target.Stage)
				assert.Equal(t, "lsstvc", target.Site)
			},
		},
		{
			name: "two stages produce calexp for the same key",
			src: coaddPipeline + `
stage "reprocessCcd" {
  dimensions = ["visit", "ccd"]
  inputs     = ["raw"]
  outputs    = ["calexp"]
}
`,
			resolver: catalogFor("lsstvc", "processCcd", "makeSkyMap", "makeCoaddTempExp", "reprocessCcd"),
			check: func(t *testing.T, err error) {
				var target *errs.SingleWriterViolationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "processCcd", target.FirstStage)
				assert.Equal(t, "reprocessCcd", target.SecondStage)
				assert.Equal(t, "calexp[ccd=0,visit=903334]", target.Unit)
			},
		},
		{
			name:     "role with no producer and no raw declaration",
			src:      coaddPipeline,
			resolver: catalogFor("lsstvc", "processCcd", "makeSkyMap", "makeCoaddTempExp"),
			mutate: func(p *model.Pipeline) {
				stage, _ := p.Stage("makeCoaddTempExp")
				stage.Inputs = append(stage.Inputs, "background")
			},
			check: func(t *testing.T, err error) {
				var target *errs.MalformedInputError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "makeCoaddTempExp", target.Stage)
				assert.Equal(t, "background", target.Role)
			},
		},
		{
			name:     "unit read as external before it is produced",
			resolver: catalogFor("lsstvc", "a", "b", "c"),
			src: `
axis "visit" { values = [1, 2] }
stage "a" {
  dimensions = ["visit"]
  where      = visit == 1
  outputs    = ["x"]
}
stage "b" {
  dimensions = ["visit"]
  inputs     = ["x"]
}
stage "c" {
  dimensions = ["visit"]
  where      = visit == 2
  outputs    = ["x"]
}
`,
			check: func(t *testing.T, err error) {
				var target *errs.CycleDetectedError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, []string{"b", "c"}, target.Stages)
			},
		},
		{
			name:     "missing wrapper binding",
			src:      coaddPipeline,
			resolver: catalogFor("lsstvc", "processCcd", "makeSkyMap", "makeCoaddTempExp"),
			wrapper:  "execute",
			check: func(t *testing.T, err error) {
				var target *errs.UnresolvedBindingError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "execute", target.Stage)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			p, plan := mustPlan(t, tc.src)
			if tc.mutate != nil {
				tc.mutate(p)
			}

			// --- Act ---
			g, err := Build(testContext(), p, plan, tc.resolver, Config{Site: "lsstvc", Wrapper: tc.wrapper})

			// --- Assert ---
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, errs.ErrGraphConstruction)
			tc.check(t, err)
		})
	}
}

func TestBuild_Wrapper(t *testing.T) {
	p, plan := mustPlan(t, coaddPipeline)
	resolver := catalogFor("local", "processCcd", "makeSkyMap", "makeCoaddTempExp", "execute")

	g, err := Build(testContext(), p, plan, resolver, Config{Wrapper: "execute"})

	require.NoError(t, err)
	for _, n := range g.Nodes() {
		require.NotNil(t, n.Wrapper)
		assert.Equal(t, "execute", n.Transformation())
		assert.Equal(t, n.Stage, n.Binding.Transformation)
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	p, plan := mustPlan(t, coaddPipeline)
	resolver := catalogFor("local", "processCcd", "makeSkyMap", "makeCoaddTempExp")

	first, err := Build(testContext(), p, plan, resolver, Config{})
	require.NoError(t, err)
	second, err := Build(testContext(), p, plan, resolver, Config{})
	require.NoError(t, err)

	assert.Equal(t, summarize(first), summarize(second))
}
