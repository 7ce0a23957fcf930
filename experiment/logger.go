package experiment

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/katalvlaran/lvpar/results"
)

// Logger wraps slog.Logger with experiment-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON lines to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithBatch adds the batch id.
func (l *Logger) WithBatch(id string) *Logger {
	return &Logger{Logger: l.Logger.With("batch", id)}
}

// WithRun adds the fields identifying one run.
func (l *Logger) WithRun(instance, algorithm string, seed uint64) *Logger {
	return &Logger{Logger: l.Logger.With(
		"instance", instance,
		"algorithm", algorithm,
		"seed", seed,
	)}
}

// LogLoad logs the outcome of loading an instance.
func (l *Logger) LogLoad(ctx context.Context, instance string, n, k, constraints int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "instance load failed",
			"instance", instance,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "instance loaded",
		"instance", instance,
		"n", n,
		"k", k,
		"constraints", constraints,
	)
}

// LogRun logs a finished run. l should carry WithRun fields.
func (l *Logger) LogRun(ctx context.Context, rec results.Record, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"elapsed", rec.Elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"run_id", rec.RunID,
		"fitness", rec.Fitness,
		"infeasibility", rec.Infeasibility,
		"deviation", rec.Deviation,
		"elapsed", rec.Elapsed,
	)
}

// LogBatch logs the end of a batch.
func (l *Logger) LogBatch(ctx context.Context, runs, failed int, elapsed time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"runs", runs,
			"failed", failed,
			"elapsed", elapsed,
		)
		return
	}
	l.InfoContext(ctx, "batch completed",
		"runs", runs,
		"elapsed", elapsed,
	)
}
