package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// StatusList returns the models listed in the status file of a run, with
// the input directory prefix removed. A missing file yields no models.
func StatusList(t *testing.T, result *HarnessResult, status string) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(result.OutputDir, status+".lst"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var models []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		rel, err := filepath.Rel(result.InputDir, line)
		require.NoError(t, err)
		models = append(models, filepath.ToSlash(rel))
	}
	return models
}

// AssertModelStatus checks that model is listed under status.
func AssertModelStatus(t *testing.T, result *HarnessResult, status, model string) {
	t.Helper()
	require.Contains(t, StatusList(t, result, status), model,
		"expected model %q in %s.lst", model, status)
}

// SubgraphFiles lists the serialized subgraphs written by extractor,
// excluding metadata files.
func SubgraphFiles(t *testing.T, result *HarnessResult, extractor string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(result.OutputDir, extractor, "*.yaml"))
	require.NoError(t, err)
	var out []string
	for _, m := range matches {
		if !strings.HasSuffix(m, ".meta.yaml") {
			out = append(out, m)
		}
	}
	return out
}
