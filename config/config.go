// Package config loads batch experiment settings from YAML.
//
// A file is decoded on top of Default(), so every key is optional, and then
// checked with struct tags plus the cross-field rules in Validate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvpar/dataset"
	"github.com/katalvlaran/lvpar/experiment"
	"github.com/katalvlaran/lvpar/par"
	"github.com/katalvlaran/lvpar/results"
)

// ErrInvalidConfig is returned for any configuration that fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var validate = validator.New()

// Experiment is the top-level configuration of a batch.
type Experiment struct {
	// InstancesDir holds the catalogue data files.
	InstancesDir string `yaml:"instances_dir"`

	// Instances are catalogue names such as "zoo10".
	Instances []string `yaml:"instances" validate:"unique,dive,required"`

	// Files are instances outside the catalogue.
	Files []FileInstance `yaml:"files" validate:"dive"`

	Algorithms  []string `yaml:"algorithms" validate:"required,min=1,unique,dive,required"`
	Seeds       []uint64 `yaml:"seeds" validate:"required,min=1,unique"`
	Parallelism int      `yaml:"parallelism" validate:"gte=1,lte=1024"`

	Engine  EngineConfig  `yaml:"engine"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// FileInstance names a points file and a constraints file.
type FileInstance struct {
	Name        string `yaml:"name" validate:"required"`
	Points      string `yaml:"points" validate:"required"`
	Constraints string `yaml:"constraints" validate:"required"`
	K           int    `yaml:"k" validate:"gte=1"`
}

// EngineConfig mirrors the limits of par.Options. Zero means default.
type EngineConfig struct {
	GreedyMaxRetries    int `yaml:"greedy_max_retries" validate:"gte=0"`
	GreedyMaxPasses     int `yaml:"greedy_max_passes" validate:"gte=0"`
	LocalSearchMaxIters int `yaml:"local_search_max_iters" validate:"gte=0"`
	PopulationSize      int `yaml:"population_size" validate:"eq=0|gte=2"`
	Generations         int `yaml:"generations" validate:"gte=0"`
}

// OutputConfig selects where result tables go.
type OutputConfig struct {
	Store           string        `yaml:"store" validate:"oneof=local memory minio s3"`
	Dir             string        `yaml:"dir" validate:"required_if=Store local"`
	Prefix          string        `yaml:"prefix"`
	Codec           string        `yaml:"codec" validate:"oneof=none zstd lz4"`
	MaxRetries      uint64        `yaml:"max_retries"`
	InitialInterval time.Duration `yaml:"initial_interval" validate:"gte=0"`

	MinIO *MinIOConfig `yaml:"minio" validate:"required_if=Store minio"`
	S3    *S3Config    `yaml:"s3" validate:"required_if=Store s3"`
}

// MinIOConfig holds the MinIO endpoint and static credentials.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" validate:"required"`
	AccessKey string `yaml:"access_key" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required"`
	Bucket    string `yaml:"bucket" validate:"required"`
	Secure    bool   `yaml:"secure"`
}

// S3Config names the bucket; credentials come from the default AWS chain.
type S3Config struct {
	Bucket string `yaml:"bucket" validate:"required"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration of the original batch: every catalogue
// instance, all three algorithms, seeds 4, 7, 2, 1, 3, results as CSV files
// under ./results.
func Default() *Experiment {
	names := make([]string, len(dataset.Catalog))
	for i, in := range dataset.Catalog {
		names[i] = in.Name
	}

	return &Experiment{
		InstancesDir: "instances",
		Instances:    names,
		Algorithms:   []string{par.AlgoGreedy.String(), par.AlgoLocalSearch.String(), par.AlgoGenetic.String()},
		Seeds:        append([]uint64(nil), dataset.DefaultSeeds...),
		Parallelism:  1,
		Output: OutputConfig{
			Store:           "local",
			Dir:             "results",
			Codec:           "none",
			MaxRetries:      results.DefaultMaxRetries,
			InitialInterval: results.DefaultInitialInterval,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
// Unknown keys are rejected. A file that lists files but no instances runs
// only those files, not the default catalogue.
func Parse(data []byte) (*Experiment, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, set := keys["instances"]; !set && len(cfg.Files) > 0 {
		cfg.Instances = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct tags, then the rules tags cannot express.
func (e *Experiment) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(e.Instances)+len(e.Files) == 0 {
		return fmt.Errorf("%w: no instances", ErrInvalidConfig)
	}
	if len(e.Instances) > 0 && e.InstancesDir == "" {
		return fmt.Errorf("%w: instances_dir is required for catalogue instances", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(e.Instances)+len(e.Files))
	for _, name := range e.Instances {
		if _, err := dataset.Lookup(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		seen[name] = struct{}{}
	}
	for _, f := range e.Files {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: instance %q listed twice", ErrInvalidConfig, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	if _, err := e.Algos(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// Algos parses the algorithm names.
func (e *Experiment) Algos() ([]par.Algorithm, error) {
	out := make([]par.Algorithm, len(e.Algorithms))
	for i, name := range e.Algorithms {
		a, err := par.ParseAlgorithm(name)
		if err != nil {
			return nil, fmt.Errorf("algorithm %q: %w", name, err)
		}
		out[i] = a
	}

	return out, nil
}

// Options converts the engine section.
func (e *Experiment) Options() par.Options {
	return par.Options{
		GreedyMaxRetries:    e.Engine.GreedyMaxRetries,
		GreedyMaxPasses:     e.Engine.GreedyMaxPasses,
		LocalSearchMaxIters: e.Engine.LocalSearchMaxIters,
		PopulationSize:      e.Engine.PopulationSize,
		Generations:         e.Engine.Generations,
	}
}

// Codec returns the output codec.
func (e *Experiment) Codec() (results.Codec, error) {
	return results.ParseCodec(e.Output.Codec)
}

// LogLevel maps the level name to slog.
func (e *Experiment) LogLevel() slog.Level {
	switch e.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Plan resolves the instances and builds the batch plan.
func (e *Experiment) Plan() (experiment.Plan, error) {
	algos, err := e.Algos()
	if err != nil {
		return experiment.Plan{}, err
	}

	plan := experiment.Plan{
		Instances:  make([]experiment.Instance, 0, len(e.Instances)+len(e.Files)),
		Algorithms: algos,
		Seeds:      append([]uint64(nil), e.Seeds...),
		Options:    e.Options(),
	}
	for _, name := range e.Instances {
		in, err := dataset.Lookup(name)
		if err != nil {
			return experiment.Plan{}, err
		}
		plan.Instances = append(plan.Instances, experiment.Instance{
			Name:   in.Name,
			Loader: in.Loader(e.InstancesDir),
		})
	}
	for _, f := range e.Files {
		plan.Instances = append(plan.Instances, experiment.Instance{
			Name: f.Name,
			Loader: dataset.FileLoader{
				PointsPath:      f.Points,
				ConstraintsPath: f.Constraints,
				K:               f.K,
			},
		})
	}

	return plan, nil
}
