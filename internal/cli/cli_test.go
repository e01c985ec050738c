package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	// --- Act ---
	cfg, shouldExit, err := Parse([]string{
		"-i", "models/a, models/b",
		"-output", "dump",
		"-extractors", "fused_chain",
		"-extract-body=false",
		"-const-threshold", "64",
		"-log-level", "DEBUG",
		"models/c",
	}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, []string{"models/a", "models/b", "models/c"}, cfg.InputDirs)
	assert.Equal(t, "dump", cfg.OutputDir)
	assert.Equal(t, []string{"fused_chain"}, cfg.Extractors)
	assert.False(t, cfg.ExtractBody)
	assert.EqualValues(t, 64, cfg.ConstThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_NoInputPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"-nope"}, want: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "in"}, want: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "in"}, want: "invalid log-level"},
		{name: "bad extractor", args: []string{"-extractors", "magic", "in"}, want: "unknown extractor"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
