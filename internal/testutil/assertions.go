package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertGraphError checks that the run failed with a graph construction error
// matching target.
func AssertGraphError(t *testing.T, result *HarnessResult, target any) {
	t.Helper()
	require.Error(t, result.Err)
	require.True(t, errors.Is(result.Err, errs.ErrGraphConstruction), "expected a graph construction error, got %v", result.Err)
	require.True(t, errors.As(result.Err, target), "expected %T, got %v", target, result.Err)
}

// AssertNoArtifacts checks that a failed run left the output location empty.
func AssertNoArtifacts(t *testing.T, result *HarnessResult) {
	t.Helper()
	var found []string
	_ = filepath.WalkDir(result.OutputDir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			found = append(found, path)
		}
		return nil
	})
	assert.Empty(t, found, "no artifact may be written when generation fails")
}
