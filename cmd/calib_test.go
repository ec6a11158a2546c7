package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardflow/shardflow/engine/params"
)

func TestLoadCalib_BuiltinTable(t *testing.T) {
	calib, err := loadCalib("", "h100")
	require.NoError(t, err)
	assert.Greater(t, calib.TFlopsEff, 0.0)

	_, err = loadCalib("", "tpu-v9")
	assert.Error(t, err)
}

func TestLoadCalib_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calib.yaml")
	content := []byte(`
h100:
  tflops_eff: 500.0
  bw_eff_tbs: 2.0
  overhead_micros: 3.0
  mfu_forward: 0.5
  mfu_backward: 0.4
  all_reduce_micros: 10.0
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	calib, err := loadCalib(path, "h100")
	require.NoError(t, err)
	assert.Equal(t, 500.0, calib.TFlopsEff)
	assert.Equal(t, 10.0, calib.AllReduceMicros)

	_, err = loadCalib(path, "a100-80")
	assert.Error(t, err, "device missing from the file must fail")
}

func TestBuildReferenceGraph_CoversCatalogAndResolvesShapes(t *testing.T) {
	graph, err := buildReferenceGraph(8)
	require.NoError(t, err)

	require.Len(t, graph.Operators, 7)
	last := graph.Operators[len(graph.Operators)-1]
	assert.Equal(t, "probs", last.Name())
	assert.Equal(t, params.Shape{8, 128}, last.Output().Shape)
}
