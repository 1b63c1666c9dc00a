package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/cli"
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineHCL = `
workflow "hello" {}

axis "visit" { values = [1, 2] }

stage "greet" {
  dimensions = ["visit"]
  outputs    = ["greeting"]
  arguments  = ["--visit", "${visit}"]
}
`

const catalogYAML = `
pegasus: "5.0"
transformations:
  - name: greet
    sites:
      - name: local
        pfn: /bin/echo
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_GeneratesArtifacts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipeline := writeFixture(t, "main.hcl", pipelineHCL)
	tc := writeFixture(t, "tc.yml", catalogYAML)
	outDir := t.TempDir()
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-tc", tc, "-output-dir", outDir, pipeline})

	// --- Assert ---
	require.NoError(t, err, out.String())
	assert.FileExists(t, filepath.Join(outDir, "workflow.dax"))
	assert.FileExists(t, filepath.Join(outDir, "descriptors", "greet[visit=1].json"))
	assert.FileExists(t, filepath.Join(outDir, "descriptors", "greet[visit=2].json"))
	assert.Contains(t, out.String(), "Workflow generated.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BuildFailureIsNotUsage(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pipeline := writeFixture(t, "main.hcl", pipelineHCL)
	tc := writeFixture(t, "tc.yml", "pegasus: \"5.0\"\ntransformations: []\n")
	outDir := t.TempDir()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{"-tc", tc, "-output-dir", outDir, pipeline})

	// --- Assert ---
	var unresolved *errs.UnresolvedBindingError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.Equal(t, "greet", unresolved.Stage)
	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr))
	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
