package integrationtests

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/specialistvlad/subgraphdumper/internal/app"
	"github.com/specialistvlad/subgraphdumper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func onlyExtractors(names ...string) func(*app.Config) {
	return func(cfg *app.Config) { cfg.Extractors = names }
}

func TestDump_IdenticalStructureIsStoredOnce(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"a.hcl":     testutil.ChainModel("first", "Relu", "Tanh", "Sigmoid"),
		"sub/b.hcl": testutil.ChainModel("second", "Relu", "Tanh", "Sigmoid"),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, onlyExtractors("fused_chain"))

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"a.hcl", "sub/b.hcl"}, testutil.StatusList(t, result, "successful_models"))

	written := testutil.SubgraphFiles(t, result, "fused_chain")
	require.Len(t, written, 1)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var doc struct {
		Occurrences int      `yaml:"occurrences"`
		Models      []string `yaml:"models"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Occurrences)
	assert.Len(t, doc.Models, 2)
}

func TestDump_DifferentStructuresAreKeptApart(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a.hcl": testutil.ChainModel("a", "Relu", "Tanh"),
		"b.hcl": testutil.ChainModel("b", "Tanh", "Relu"),
	}

	result := testutil.RunIntegrationTest(t, files, onlyExtractors("fused_chain"))

	require.NoError(t, result.Err)
	assert.Len(t, testutil.SubgraphFiles(t, result, "fused_chain"), 2)
}

func TestDump_UnreadableModelIsReported(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"good.hcl":   testutil.ChainModel("g", "Relu", "Tanh"),
		"broken.hcl": `node "x" {`,
	}

	result := testutil.RunIntegrationTest(t, files)

	require.NoError(t, result.Err)
	testutil.AssertModelStatus(t, result, "successful_models", "good.hcl")
	testutil.AssertModelStatus(t, result, "not_read_models", "broken.hcl")
	assert.Empty(t, testutil.StatusList(t, result, "not_fully_cached_models"))
}

func TestDump_StatefulNodeLeavesModelNotFullyCached(t *testing.T) {
	t.Parallel()

	stateful := `
node "x" {
  kind    = "parameter"
  outputs = [{ type = "f32", shape = [4] }]
}

node "state" {
  op       = "ReadValue"
  version  = "opset6"
  stateful = true
  inputs   = ["x"]
  outputs  = [{ type = "f32", shape = [4] }]
}

node "relu" {
  op      = "Relu"
  inputs  = ["state"]
  outputs = [{ type = "f32", shape = [4] }]
}

node "out" {
  kind   = "result"
  inputs = ["relu"]
}
`
	files := map[string]string{
		"stateful.hcl": stateful,
		"plain.hcl":    testutil.ChainModel("p", "Relu", "Tanh"),
	}

	result := testutil.RunIntegrationTest(t, files, onlyExtractors("fused_chain"))

	require.NoError(t, result.Err)
	testutil.AssertModelStatus(t, result, "not_fully_cached_models", "stateful.hcl")
	testutil.AssertModelStatus(t, result, "successful_models", "plain.hcl")
	assert.Len(t, testutil.SubgraphFiles(t, result, "fused_chain"), 1)
}

const loopModel = `
node "x" {
  kind    = "parameter"
  outputs = [{ type = "f32", shape = [4] }]
}

node "loop" {
  op      = "Loop"
  version = "opset5"
  inputs  = ["x"]
  outputs = [{ type = "f32", shape = [4] }]

  body "body" {
    node "p" {
      kind    = "parameter"
      outputs = [{ type = "f32", shape = [4] }]
    }
    node "neg" {
      op      = "Negative"
      inputs  = ["p"]
      outputs = [{ type = "f32", shape = [4] }]
    }
    node "abs" {
      op      = "Abs"
      inputs  = ["neg"]
      outputs = [{ type = "f32", shape = [4] }]
    }
    node "r" {
      kind   = "result"
      inputs = ["abs"]
    }
  }
}

node "out" {
  kind   = "result"
  inputs = ["loop"]
}
`

func TestDump_ExtractBody(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		extractBody bool
		wantFiles   int
	}{
		{name: "descends into bodies", extractBody: true, wantFiles: 1},
		{name: "top level only", extractBody: false, wantFiles: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, map[string]string{"loop.hcl": loopModel},
				onlyExtractors("fused_chain"),
				func(cfg *app.Config) { cfg.ExtractBody = tc.extractBody },
			)

			require.NoError(t, result.Err)
			testutil.AssertModelStatus(t, result, "successful_models", "loop.hcl")
			assert.Len(t, testutil.SubgraphFiles(t, result, "fused_chain"), tc.wantFiles)
		})
	}
}

func TestDump_RepeatPatternKeepsRecurringPairs(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"r.hcl": testutil.ChainModel("r", "Relu", "Tanh", "Relu", "Tanh"),
	}

	result := testutil.RunIntegrationTest(t, files, onlyExtractors("repeat_pattern"))

	require.NoError(t, result.Err)
	assert.Len(t, testutil.SubgraphFiles(t, result, "repeat_pattern"), 1)
}

func TestDump_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := testutil.RunIntegrationTestWithContext(ctx, t, map[string]string{
		"a.hcl": testutil.ChainModel("a", "Relu", "Tanh"),
	})

	assert.True(t, errors.Is(result.Err, context.Canceled))
}
