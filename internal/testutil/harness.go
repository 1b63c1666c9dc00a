package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/app"
	"github.com/stretchr/testify/require"
)

// Fixture locations inside the harness directory.
const (
	PipelineDir               = "pipeline"
	TransformationCatalogFile = "catalogs/tc.yml"
	SiteCatalogFile           = "catalogs/sites.yml"
	OutputDir                 = "out"
)

// HarnessResult holds the outcomes of a generator run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// Root is the harness directory; OutputDir is where artifacts went.
	Root      string
	OutputDir string
}

// RunGenerator runs the whole generator over fixture files using a default
// background context.
func RunGenerator(t *testing.T, files map[string]string, configure func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunGeneratorWithContext(context.Background(), t, files, configure)
}

// RunGeneratorWithContext materialises files (relative path → content) in a
// temporary directory and runs the generator on them. The pipeline is read
// from PipelineDir and the catalogs from their default locations; configure
// may adjust the configuration before it is validated.
func RunGeneratorWithContext(ctx context.Context, t *testing.T, files map[string]string, configure func(*app.Config)) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	raw := app.Config{
		PipelinePath:          filepath.Join(root, PipelineDir),
		TransformationCatalog: filepath.Join(root, TransformationCatalogFile),
		OutputDir:             filepath.Join(root, OutputDir),
		LogFormat:             "text",
	}
	if _, ok := files[SiteCatalogFile]; ok {
		raw.SiteCatalog = filepath.Join(root, SiteCatalogFile)
	}
	if configure != nil {
		configure(&raw)
	}

	result := &HarnessResult{Root: root, OutputDir: raw.OutputDir}
	cfg, err := app.NewConfig(raw)
	if err != nil {
		result.Err = err
		return result
	}

	testApp, logs := app.SetupAppTest(t, cfg)
	result.App = testApp
	result.Err = testApp.Run(ctx)
	result.LogOutput = logs.String()
	return result
}

// ReadOutput returns the content of an artifact written by the run.
func ReadOutput(t *testing.T, result *HarnessResult, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(result.OutputDir, filepath.FromSlash(path)))
	require.NoError(t, err, "artifact %s", path)
	return data
}
