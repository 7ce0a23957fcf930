package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/config"
	"github.com/katalvlaran/lvpar/experiment"
	"github.com/katalvlaran/lvpar/results"
)

const (
	testPoints = "0,0\n0,1\n1,0\n10,10\n10,11\n11,10\n"

	testConstraints = `1,1,0,-1,0,0
1,1,0,0,0,0
0,0,1,0,0,0
-1,0,0,1,1,0
0,0,0,1,1,0
0,0,0,0,0,1
`
)

// writeInstance writes the six-point instance and a config using it.
func writeInstance(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.dat"), []byte(testPoints), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.const"), []byte(testConstraints), 0o600))

	cfgPath = filepath.Join(dir, "par.yaml")
	cfg := "instances: []\n" +
		"files:\n" +
		"  - name: two\n" +
		"    points: " + filepath.Join(dir, "two.dat") + "\n" +
		"    constraints: " + filepath.Join(dir, "two.const") + "\n" +
		"    k: 2\n" +
		"log: {level: error}\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	return dir, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestInstancesCmd(t *testing.T) {
	out, err := execute(t, "instances")
	require.NoError(t, err)
	assert.Contains(t, out, "zoo10")
	assert.Contains(t, out, "bupa_set_const_20.const")
	assert.Equal(t, 7, strings.Count(out, "\n"), "header and six instances")
}

func TestRunCmd_WritesTables(t *testing.T) {
	dir, cfgPath := writeInstance(t)
	outDir := filepath.Join(dir, "out")
	prom := filepath.Join(dir, "par.prom")

	out, err := execute(t, "run",
		"--config", cfgPath,
		"--algorithm", "greedy", "--algorithm", "local-search",
		"--seed", "1", "--seed", "2",
		"--out", outDir,
		"--codec", "zstd",
		"--parallelism", "2",
		"--metrics-textfile", prom,
	)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, " OK "))
	assert.Contains(t, out, "done: 4 runs")

	for _, algo := range []string{"greedy", "local-search"} {
		data, err := os.ReadFile(filepath.Join(outDir, results.TableName(algo, "two", results.CodecZstd)))
		require.NoError(t, err)
		plain, err := results.CodecZstd.Decode(data)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(plain), "seed,fitness,infeasibility,general_deviation,time_ms\n"))
		assert.Equal(t, 3, strings.Count(string(plain), "\n"))
	}

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `par_runs_total{algorithm="greedy",instance="two"} 2`)
}

func TestRunCmd_FlagsOverrideConfig(t *testing.T) {
	_, cfgPath := writeInstance(t)
	cmd := newRunCmd()
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", cfgPath,
		"--seed", "9",
		"--store", "memory",
		"--log-format", "json",
	}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9}, cfg.Seeds)
	assert.Equal(t, "memory", cfg.Output.Store)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "error", cfg.Log.Level, "unset flags keep file values")
	require.Len(t, cfg.Files, 1)
}

func TestRunCmd_InvalidFlags(t *testing.T) {
	_, cfgPath := writeInstance(t)

	_, err := execute(t, "run", "--config", cfgPath, "--algorithm", "annealing")
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = execute(t, "run", "--config", cfgPath, "--instance", "iris10")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestPrintOutcome_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := newPalette(false)
	rep := runMemoryBatch(t)
	for _, o := range rep.Outcomes {
		printOutcome(&buf, p, o)
	}
	printSummary(&buf, p, rep)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "no escape codes without a terminal")
	assert.Contains(t, out, "seed=1")
	assert.Contains(t, out, "mean fit")
}

func runMemoryBatch(t *testing.T) *experiment.Report {
	t.Helper()
	_, cfgPath := writeInstance(t)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Seeds = []uint64{1}
	cfg.Algorithms = []string{"local-search"}
	plan, err := cfg.Plan()
	require.NoError(t, err)

	rep, err := experiment.NewRunner().Run(context.Background(), plan)
	require.NoError(t, err)

	return rep
}

func TestRunCmd_SingleInstanceFlags(t *testing.T) {
	dir, _ := writeInstance(t)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "run",
		"--points", filepath.Join(dir, "two.dat"),
		"--constraints", filepath.Join(dir, "two.const"),
		"--k", "2",
		"--algorithm", "local-search",
		"--seed", "3",
		"--out", outDir,
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, " OK "))
	assert.Contains(t, out, "two ")

	_, err = os.Stat(filepath.Join(outDir, results.TableName("local-search", "two", results.CodecNone)))
	require.NoError(t, err)

	// --k is required with --points.
	_, err = execute(t, "run", "--points", filepath.Join(dir, "two.dat"), "--constraints", filepath.Join(dir, "two.const"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
