package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowShopILS/internal/config"
)

func TestParsePairs(t *testing.T) {
	cases, err := parsePairs(" 20x5, 50x10 ,", 7)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "20x5", cases[0].Name)
	assert.Equal(t, 20, cases[0].Jobs)
	assert.Equal(t, 5, cases[0].Machines)
	assert.Equal(t, int64(7+20*100+5), cases[0].InstanceSeed)
	assert.Equal(t, int64(7+10_000+50*100+10), cases[1].InstanceSeed)
}

func TestParsePairs_Errors(t *testing.T) {
	for _, in := range []string{"20", "20x5x1", "ax5", "20xb", "0x5", "5x0"} {
		t.Run(in, func(t *testing.T) {
			_, err := parsePairs(in, 0)
			assert.Error(t, err)
		})
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"NEH", "ILS"}, splitCSV(" NEH,, ILS ,"))
	assert.Nil(t, splitCSV(""))
}

func TestBuildCases_Inputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ta001.txt")
	require.NoError(t, os.WriteFile(path, []byte("# h\n2 2\n# t\n1 2 0 0\n3 4 0 0\n"), 0o644))

	cfg := config.Default().Bench
	cfg.Inputs = []string{path}
	cases, err := buildCases(cfg)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "ta001.txt", cases[0].Name)
	assert.Equal(t, 2, cases[0].Jobs)
	assert.NotNil(t, cases[0].Instance)

	cfg.Inputs = []string{filepath.Join(t.TempDir(), "missing.txt")}
	_, err = buildCases(cfg)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)
	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestRunBench_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "res", "out.csv")
	cfgPath := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
bench:
  pairs: "6x3"
  runs: 2
  parallel: 2
ils:
  iterations: 10
sa:
  iterations: 300
ts:
  iterations: 30
log:
  level: error
`), 0o644))

	rootCmd.SetArgs([]string{"--config", cfgPath, "--out", out})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session,case,algo")
	assert.Contains(t, string(data), ",6x3,NEH,")
	assert.Contains(t, string(data), ",6x3,ILS,")
	assert.Contains(t, string(data), ",6x3,SA,")
	assert.Contains(t, string(data), ",6x3,TS,")
}
