package catalog

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

const sitesYAML = `
pegasus: "5.0"
sites:
  - name: local
    arch: x86_64
    os.type: linux
    directories:
      - type: sharedScratch
        path: /scratch
        fileServers:
          - operation: all
            url: file:///scratch
  - name: lsstvc
    arch: aarch64
    os.type: linux
`

const transformationsYAML = `
pegasus: "5.0"
transformations:
  - name: processCcd
    profiles:
      pegasus:
        cores: 1
    sites:
      - name: local
        pfn: /opt/lsst/bin/processCcd.py
      - name: lsstvc
        pfn: /software/lsst/bin/processCcd.py
        type: stageable
        profiles:
          pegasus:
            cores: 4
          condor:
            request_memory: 2048
  - name: makeCoadd
    sites:
      - name: local
        pfn: /opt/lsst/bin/makeCoadd.py
        arch: x86_64
        os.type: macos
`

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func upload(t *testing.T, fs afs.Service, location, content string) {
	t.Helper()
	err := fs.Upload(context.Background(), location, file.DefaultFileOsMode, bytes.NewReader([]byte(content)))
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	// --- Arrange ---
	fs := afs.New()
	base := "mem://localhost/catalog-load"
	upload(t, fs, base+"/sites.yml", sitesYAML)
	upload(t, fs, base+"/tc.yml", transformationsYAML)

	// --- Act ---
	table, sites, err := Load(testContext(), fs, Locations{
		TransformationCatalog: base + "/tc.yml",
		SiteCatalog:           base + "/sites.yml",
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "lsstvc"}, sites.Names())
	assert.Equal(t, 3, table.Len())

	testCases := []struct {
		name           string
		transformation string
		site           string
		expected       Binding
	}{
		{
			name:           "defaults from site catalog",
			transformation: "processCcd",
			site:           "local",
			expected: Binding{
				Transformation: "processCcd", Site: "local", PFN: "/opt/lsst/bin/processCcd.py",
				Type: "installed", Arch: "x86_64", OS: "linux",
				Profile: model.Profile{"pegasus.cores": "1"},
			},
		},
		{
			name:           "site profile overrides transformation profile",
			transformation: "processCcd",
			site:           "lsstvc",
			expected: Binding{
				Transformation: "processCcd", Site: "lsstvc", PFN: "/software/lsst/bin/processCcd.py",
				Type: "stageable", Arch: "aarch64", OS: "linux",
				Profile: model.Profile{"pegasus.cores": "4", "condor.request_memory": "2048"},
			},
		},
		{
			name:           "explicit arch and os win",
			transformation: "makeCoadd",
			site:           "local",
			expected: Binding{
				Transformation: "makeCoadd", Site: "local", PFN: "/opt/lsst/bin/makeCoadd.py",
				Type: "installed", Arch: "x86_64", OS: "macos",
				Profile: model.Profile{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := table.Resolve(tc.transformation, tc.site)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestLoad_WithoutSiteCatalog(t *testing.T) {
	fs := afs.New()
	location := "mem://localhost/catalog-nosite/tc.yml"
	upload(t, fs, location, transformationsYAML)

	table, sites, err := Load(testContext(), fs, Locations{TransformationCatalog: location})

	require.NoError(t, err)
	assert.Nil(t, sites)
	b, err := table.Resolve("processCcd", "local")
	require.NoError(t, err)
	assert.Empty(t, b.Arch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(testContext(), afs.New(), Locations{TransformationCatalog: "mem://localhost/catalog-missing/tc.yml"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading catalog")
}

func TestTable_ResolveUnknown(t *testing.T) {
	table := NewTable()
	table.Add(Binding{Transformation: "processCcd", Site: "local", PFN: "/bin/true"})

	_, err := table.Resolve("processCcd", "condorpool")

	var target *errs.UnresolvedBindingError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "processCcd", target.Stage)
	assert.Equal(t, "condorpool", target.Site)
	assert.ErrorIs(t, err, errs.ErrGraphConstruction)
}

func TestTable_ResolveReturnsCopy(t *testing.T) {
	table := NewTable()
	table.Add(Binding{Transformation: "a", Site: "local", Profile: model.Profile{"pegasus.cores": "1"}})

	b, err := table.Resolve("a", "local")
	require.NoError(t, err)
	b.Profile["pegasus.cores"] = "8"

	again, _ := table.Resolve("a", "local")
	assert.Equal(t, "1", again.Profile["pegasus.cores"])
}

func TestParseTransformationCatalog_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "missing name",
			src:     "transformations:\n  - sites: []\n",
			message: "has no name",
		},
		{
			name:    "missing pfn",
			src:     "transformations:\n  - name: a\n    sites:\n      - name: local\n",
			message: "has no pfn",
		},
		{
			name: "duplicate site",
			src: `transformations:
  - name: a
    sites:
      - name: local
        pfn: /a
  - name: a
    sites:
      - name: local
        pfn: /b
`,
			message: "listed twice",
		},
		{
			name:    "not yaml",
			src:     "transformations: [",
			message: "decoding transformation catalog",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTransformationCatalog([]byte(tc.src))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestBindings_NonScalarProfile(t *testing.T) {
	tc, err := ParseTransformationCatalog([]byte(`transformations:
  - name: a
    profiles:
      env:
        PATH: [a, b]
    sites:
      - name: local
        pfn: /a
`))
	require.NoError(t, err)

	_, err = tc.Bindings(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "env.PATH must be a scalar")
}

func TestParseSiteCatalog_Duplicate(t *testing.T) {
	_, err := ParseSiteCatalog([]byte("sites:\n  - name: local\n  - name: local\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), `site "local" is listed twice`)
}
