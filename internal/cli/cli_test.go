package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/app"
	"github.com/lsst-dm/Daxgen/internal/serialize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, exit, err := Parse([]string{"-tc", "tc.yml", "pipeline/"}, out)

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, &app.Config{
		PipelinePath:          "pipeline/",
		TransformationCatalog: "tc.yml",
		Site:                  "local",
		OutputDir:             ".",
		OutputSite:            "local",
		Format:                serialize.FormatDAX,
		DescriptorFormat:      serialize.DescriptorJSON,
		LogFormat:             "text",
		LogLevel:              "info",
	}, cfg)
}

func TestParse_AllFlags(t *testing.T) {
	// --- Arrange ---
	args := []string{
		"-tc", "tc.yml", "-sites", "sites.yml", "-site", "lsstvc",
		"-output-dir", "/out", "-submit-dir", "/submit", "-output-site", "archive", "-name", "nightly",
		"-format", "YAML", "-descriptor-format", "hcl", "-wrapper", "execute",
		"-graph", "-plan", "/usr/bin/pegasus-plan", "-trace-file", "trace.json",
		"-log-format", "json", "-log-level", "debug",
		"main.hcl",
	}

	// --- Act ---
	cfg, _, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "sites.yml", cfg.SiteCatalog)
	assert.Equal(t, "lsstvc", cfg.Site)
	assert.Equal(t, "/submit", cfg.SubmitDir)
	assert.Equal(t, "archive", cfg.OutputSite)
	assert.Equal(t, "nightly", cfg.Name)
	assert.Equal(t, serialize.FormatYAML, cfg.Format)
	assert.Equal(t, serialize.DescriptorHCL, cfg.DescriptorFormat)
	assert.Equal(t, "execute", cfg.Wrapper)
	assert.True(t, cfg.NodeLink)
	assert.Equal(t, "/usr/bin/pegasus-plan", cfg.PlannerPath)
	assert.Equal(t, "trace.json", cfg.TraceFile)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "missing pipeline", args: []string{"-tc", "tc.yml"}, message: "missing PIPELINE_PATH"},
		{name: "too many paths", args: []string{"-tc", "tc.yml", "a", "b"}, message: "expected one PIPELINE_PATH"},
		{name: "missing catalog", args: []string{"main.hcl"}, message: "missing -tc"},
		{name: "bad format", args: []string{"-tc", "t", "-format", "cwl", "p"}, message: "invalid format"},
		{name: "bad descriptor format", args: []string{"-tc", "t", "-descriptor-format", "xml", "p"}, message: "invalid descriptor-format"},
		{name: "bad log format", args: []string{"-tc", "t", "-log-format", "yaml", "p"}, message: "invalid log-format"},
		{name: "bad log level", args: []string{"-tc", "t", "-log-level", "trace", "p"}, message: "invalid log-level"},
		{name: "unknown flag", args: []string{"-nope"}, message: "flag provided but not defined"},
		{name: "planner with remote output", args: []string{"-tc", "t", "-plan", "plan", "-output-dir", "mem://localhost/out", "p"}, message: "local output directory"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})

			// --- Assert ---
			assert.Nil(t, cfg)
			assert.False(t, exit)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.message)
		})
	}
}

func TestParse_Help(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, exit, err := Parse([]string{"-h"}, out)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}
