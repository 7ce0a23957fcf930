package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/config"
	"github.com/katalvlaran/lvpar/dataset"
	"github.com/katalvlaran/lvpar/par"
	"github.com/katalvlaran/lvpar/results"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Instances, len(dataset.Catalog))
	assert.Equal(t, dataset.DefaultSeeds, cfg.Seeds)

	plan, err := cfg.Plan()
	require.NoError(t, err)
	assert.Equal(t, len(dataset.Catalog)*3*5, plan.Size())
	assert.Equal(t, []par.Algorithm{par.AlgoGreedy, par.AlgoLocalSearch, par.AlgoGenetic}, plan.Algorithms)
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Full(t *testing.T) {
	cfg, err := config.Parse([]byte(`
instances_dir: data
instances: [zoo10, glass20]
files:
  - name: mine
    points: pts.dat.zst
    constraints: cons.const
    k: 3
algorithms: [copkm, ga]
seeds: [9, 8]
parallelism: 4
engine:
  population_size: 20
  generations: 10
output:
  store: minio
  codec: zstd
  prefix: runs
  initial_interval: 50ms
  minio:
    endpoint: localhost:9000
    access_key: key
    secret_key: secret
    bucket: par
metrics:
  textfile: /tmp/par.prom
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zoo10", "glass20"}, cfg.Instances)
	assert.Equal(t, []uint64{9, 8}, cfg.Seeds)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 50*time.Millisecond, cfg.Output.InitialInterval)
	assert.EqualValues(t, results.DefaultMaxRetries, cfg.Output.MaxRetries)
	require.NotNil(t, cfg.Output.MinIO)
	assert.Equal(t, "par", cfg.Output.MinIO.Bucket)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, results.CodecZstd, codec)

	opts := cfg.Options()
	assert.Equal(t, 20, opts.PopulationSize)
	assert.Equal(t, 10, opts.Generations)

	plan, err := cfg.Plan()
	require.NoError(t, err)
	require.Len(t, plan.Instances, 3)
	assert.Equal(t, "glass20", plan.Instances[1].Name)
	assert.Equal(t, dataset.FileLoader{
		PointsPath:      filepath.Join("data", "glass_set.dat"),
		ConstraintsPath: filepath.Join("data", "glass_set_const_20.const"),
		K:               7,
	}, plan.Instances[1].Loader)
	assert.Equal(t, dataset.FileLoader{PointsPath: "pts.dat.zst", ConstraintsPath: "cons.const", K: 3}, plan.Instances[2].Loader)
	assert.Equal(t, []par.Algorithm{par.AlgoGreedy, par.AlgoGenetic}, plan.Algorithms)
	assert.Equal(t, 2*2*3, plan.Size())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "instances: [zoo10"},
		{"unknown key", "colour: blue"},
		{"unknown instance", "instances: [iris10]"},
		{"duplicate instance", "instances: [zoo10, zoo10]"},
		{"no instances", "instances: []"},
		{"file clashes with catalogue", "instances: [zoo10]\nfiles: [{name: zoo10, points: a, constraints: b, k: 2}]"},
		{"file without k", "instances: []\nfiles: [{name: x, points: a, constraints: b}]"},
		{"unknown algorithm", "algorithms: [annealing]"},
		{"no algorithms", "algorithms: []"},
		{"no seeds", "seeds: []"},
		{"duplicate seeds", "seeds: [1, 1]"},
		{"zero parallelism", "parallelism: 0"},
		{"population of one", "engine: {population_size: 1}"},
		{"negative generations", "engine: {generations: -1}"},
		{"bad store", "output: {store: ftp}"},
		{"local without dir", "output: {store: local, dir: ''}"},
		{"minio without section", "output: {store: minio}"},
		{"minio without bucket", "output: {store: minio, minio: {endpoint: e, access_key: a, secret_key: s}}"},
		{"s3 without section", "output: {store: s3}"},
		{"bad codec", "output: {codec: gzip}"},
		{"bad log level", "log: {level: trace}"},
		{"bad log format", "log: {format: xml}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "par.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seeds: [1]\noutput: {store: s3, s3: {bucket: b}}\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, cfg.Seeds)
	assert.Equal(t, "b", cfg.Output.S3.Bucket)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_FilesReplaceCatalogue(t *testing.T) {
	files := "files: [{name: mine, points: a.dat, constraints: a.const, k: 2}]\n"

	cfg, err := config.Parse([]byte(files))
	require.NoError(t, err)
	assert.Empty(t, cfg.Instances)
	plan, err := cfg.Plan()
	require.NoError(t, err)
	require.Len(t, plan.Instances, 1)
	assert.Equal(t, "mine", plan.Instances[0].Name)

	// Listing instances explicitly keeps them next to the files.
	cfg, err = config.Parse([]byte("instances: [zoo10]\n" + files))
	require.NoError(t, err)
	assert.Equal(t, []string{"zoo10"}, cfg.Instances)
	require.Len(t, cfg.Files, 1)
}
