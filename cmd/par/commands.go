package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/lvpar/config"
	"github.com/katalvlaran/lvpar/dataset"
	"github.com/katalvlaran/lvpar/experiment"
	"github.com/katalvlaran/lvpar/metrics"
	"github.com/katalvlaran/lvpar/results"
	miniostore "github.com/katalvlaran/lvpar/results/minio"
	s3store "github.com/katalvlaran/lvpar/results/s3"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "par",
		Short:         "Constrained partitioning experiments (greedy, local search, genetic)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML experiment file (defaults are used when empty)")

	root.AddCommand(newRunCmd(), newInstancesCmd())

	return root
}

func newInstancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List the instance catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-8s %-4s %-30s %s\n", "name", "k", "points", "constraints")
			for _, in := range dataset.Catalog {
				fmt.Fprintf(w, "%-8s %-4d %-30s %s\n", in.Name, in.K, in.PointsFile(), in.ConstraintsFile())
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every algorithm on every instance for every seed",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	f := cmd.Flags()
	f.String("instances-dir", "", "directory holding the catalogue files")
	f.StringSlice("instance", nil, "catalogue instance (repeatable)")
	f.String("points", "", "points file of a single instance (replaces the catalogue)")
	f.String("constraints", "", "constraints file of the --points instance")
	f.Int("k", 0, "cluster count of the --points instance")
	f.String("name", "", "name of the --points instance (default: points file stem)")
	f.StringSlice("algorithm", nil, "greedy, local-search or genetic (repeatable)")
	f.UintSlice("seed", nil, "generator seed (repeatable)")
	f.Int("parallelism", 0, "concurrent runs")
	f.String("out", "", "local output directory")
	f.String("store", "", "result store: local, memory, minio or s3")
	f.String("codec", "", "table compression: none, zstd or lz4")
	f.String("metrics-textfile", "", "write Prometheus metrics to this file")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("log-format", "", "text or json")

	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	sink := results.NewTableSink(store,
		results.WithCodec(codec),
		results.WithRetry(cfg.Output.MaxRetries, cfg.Output.InitialInterval),
		results.WithRetryNotify(func(err error, next time.Duration) {
			logger.WarnContext(ctx, "result upload retry", "error", err, "next", next)
		}),
	)
	prom := metrics.NewPrometheus()

	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runner := experiment.NewRunner(
		experiment.WithLogger(logger),
		experiment.WithSink(sink),
		experiment.WithMetrics(prom),
		experiment.WithParallelism(cfg.Parallelism),
		experiment.WithOnRunDone(lockedPrinter(out, styles)),
	)

	rep, err := runner.Run(ctx, plan)
	if err != nil {
		return err
	}
	printSummary(out, styles, rep)

	if cfg.Metrics.Textfile != "" {
		if err = prom.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

// loadConfig reads --config when set, then applies the flags that were given.
func loadConfig(cmd *cobra.Command) (*config.Experiment, error) {
	cfg := config.Default()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("instances-dir") {
		cfg.InstancesDir, _ = f.GetString("instances-dir")
	}
	if f.Changed("instance") {
		cfg.Instances, _ = f.GetStringSlice("instance")
	}
	if f.Changed("points") {
		cfg.Instances = nil
		cfg.Files = []config.FileInstance{singleInstance(f)}
	}
	if f.Changed("algorithm") {
		cfg.Algorithms, _ = f.GetStringSlice("algorithm")
	}
	if f.Changed("seed") {
		seeds, _ := f.GetUintSlice("seed")
		cfg.Seeds = make([]uint64, len(seeds))
		for i, s := range seeds {
			cfg.Seeds[i] = uint64(s)
		}
	}
	if f.Changed("parallelism") {
		cfg.Parallelism, _ = f.GetInt("parallelism")
	}
	if f.Changed("out") {
		cfg.Output.Store = "local"
		cfg.Output.Dir, _ = f.GetString("out")
	}
	if f.Changed("store") {
		cfg.Output.Store, _ = f.GetString("store")
	}
	if f.Changed("codec") {
		cfg.Output.Codec, _ = f.GetString("codec")
	}
	if f.Changed("metrics-textfile") {
		cfg.Metrics.Textfile, _ = f.GetString("metrics-textfile")
	}
	if f.Changed("log-level") {
		cfg.Log.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Log.Format, _ = f.GetString("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// singleInstance reads the --points flag group.
func singleInstance(f *pflag.FlagSet) config.FileInstance {
	in := config.FileInstance{}
	in.Points, _ = f.GetString("points")
	in.Constraints, _ = f.GetString("constraints")
	in.K, _ = f.GetInt("k")
	in.Name, _ = f.GetString("name")
	if in.Name == "" {
		base := filepath.Base(in.Points)
		in.Name, _, _ = strings.Cut(base, ".")
	}

	return in
}

func newLogger(w io.Writer, cfg *config.Experiment) *experiment.Logger {
	if cfg.Log.Format == "json" {
		return experiment.NewJSONLogger(w, cfg.LogLevel())
	}

	return experiment.NewTextLogger(w, cfg.LogLevel())
}

// openStore builds the blob store named by the output section.
func openStore(ctx context.Context, cfg *config.Experiment) (results.BlobStore, error) {
	o := cfg.Output
	switch o.Store {
	case "memory":
		return results.NewMemoryStore(), nil
	case "minio":
		client, err := miniostore.Dial(o.MinIO.Endpoint, o.MinIO.AccessKey, o.MinIO.SecretKey, o.MinIO.Secure)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return miniostore.NewStore(client, o.MinIO.Bucket, o.Prefix), nil
	case "s3":
		st, err := s3store.NewDefaultStore(ctx, o.S3.Bucket, o.Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return st, nil
	default:
		return results.NewLocalStore(filepath.Join(o.Dir, o.Prefix)), nil
	}
}
