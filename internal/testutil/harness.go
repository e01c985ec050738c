// Package testutil holds the shared harness for end-to-end tests of the
// dumper.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/subgraphdumper/internal/app"
	"github.com/specialistvlad/subgraphdumper/internal/hclgraph"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	InputDir  string
	OutputDir string
}

// RunIntegrationTest runs a full dump over files with a background context.
// Keys of files are paths relative to the input directory.
func RunIntegrationTest(t *testing.T, files map[string]string, opts ...func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts...)
}

// RunIntegrationTestWithContext is RunIntegrationTest with a caller
// provided context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts ...func(*app.Config)) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	inDir := filepath.Join(root, "models")
	outDir := filepath.Join(root, "output")
	require.NoError(t, os.Mkdir(inDir, 0755))

	for name, content := range files {
		path := filepath.Join(inDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	raw := app.Config{
		InputDirs:   []string{inDir},
		OutputDir:   outDir,
		ExtractBody: true,
		LogFormat:   "text",
	}
	for _, opt := range opts {
		opt(&raw)
	}
	cfg, err := app.NewConfig(raw)
	require.NoError(t, err)

	logBuffer := &app.SafeBuffer{}
	cfg.LogLevel = "debug"

	var testApp *app.App
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("application panicked | %v", r)
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, hclgraph.NewLoader())
		runErr = testApp.Run(ctx)
	}()

	if os.Getenv("SGD_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		InputDir:  inDir,
		OutputDir: outDir,
	}
}
