package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvpar/metrics"
	"github.com/katalvlaran/lvpar/par"
	"github.com/katalvlaran/lvpar/results"
)

const tracerName = "github.com/katalvlaran/lvpar/experiment"

// Outcome is the result of one run. Err is non-nil for a run the optimiser
// could not complete, such as a failed greedy construction.
type Outcome struct {
	Record results.Record
	Err    error
}

// Report is what Run returns for a finished batch.
type Report struct {
	BatchID   string
	Outcomes  []Outcome
	Summaries []Summary
	Elapsed   time.Duration
}

// Failed returns the number of runs with an error.
func (r *Report) Failed() int {
	var n int
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}

	return n
}

// Runner executes plans.
type Runner struct {
	logger      *Logger
	sink        results.Sink
	metrics     metrics.Collector
	tracer      trace.Tracer
	parallelism int
	onRunDone   func(Outcome)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSink sets where successful records are written. Run flushes it at the end.
func WithSink(s results.Sink) Option {
	return func(r *Runner) { r.sink = s }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// WithTracerProvider sets the span provider. The default is the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) { r.tracer = tp.Tracer(tracerName) }
}

// WithParallelism bounds the number of concurrent runs. Values below 1 mean 1.
func WithParallelism(n int) Option {
	return func(r *Runner) { r.parallelism = n }
}

// WithOnRunDone registers a callback invoked after each run. It may be called
// from several goroutines at once.
func WithOnRunDone(fn func(Outcome)) Option {
	return func(r *Runner) { r.onRunDone = fn }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:      NoopLogger(),
		metrics:     metrics.Noop{},
		tracer:      otel.Tracer(tracerName),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parallelism < 1 {
		r.parallelism = 1
	}

	return r
}

// Run loads every instance, then executes the plan with bounded parallelism.
//
// A run that fails inside the optimiser is reported in its Outcome and does
// not stop the batch. Load failures, sink failures and cancellation of ctx
// abort the batch and are returned.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Report, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	batchID := uuid.NewString()
	log := r.logger.WithBatch(batchID)

	ctx, span := r.tracer.Start(ctx, "experiment.Batch",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.Int("batch.runs", plan.Size()),
			attribute.Int("batch.parallelism", r.parallelism),
		),
	)
	defer span.End()

	problems, err := r.load(ctx, log, plan.Instances)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	jobs := plan.jobs(problems)
	outcomes := make([]Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for _, j := range jobs {
		g.Go(func() error {
			out, err := r.runOne(gctx, log, batchID, plan.Options, j)
			if err != nil {
				return err
			}
			outcomes[j.index] = out
			if r.onRunDone != nil {
				r.onRunDone(out)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if r.sink != nil {
		if err = r.sink.Flush(ctx); err != nil {
			err = fmt.Errorf("experiment: flush results: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	report := &Report{
		BatchID:   batchID,
		Outcomes:  outcomes,
		Summaries: Summarize(outcomes),
		Elapsed:   time.Since(start),
	}
	log.LogBatch(ctx, len(outcomes), report.Failed(), report.Elapsed)
	span.SetAttributes(attribute.Int("batch.failed", report.Failed()))

	return report, nil
}

// load reads every instance in plan order.
func (r *Runner) load(ctx context.Context, log *Logger, instances []Instance) ([]*par.Problem, error) {
	problems := make([]*par.Problem, len(instances))
	for i, in := range instances {
		p, err := in.Loader.Load(ctx)
		if err != nil {
			log.LogLoad(ctx, in.Name, 0, 0, 0, err)
			return nil, fmt.Errorf("experiment: load %s: %w", in.Name, err)
		}
		log.LogLoad(ctx, in.Name, p.N(), p.K(), p.NumConstraints(), nil)
		problems[i] = p
	}

	return problems, nil
}

// runOne executes a single job. The returned error is non-nil only when the
// batch must stop.
func (r *Runner) runOne(ctx context.Context, log *Logger, batchID string, base par.Options, j job) (Outcome, error) {
	algo := j.algorithm.String()
	log = log.WithRun(j.instance, algo, j.seed)

	ctx, span := r.tracer.Start(ctx, "experiment.Run",
		trace.WithAttributes(
			attribute.String("run.instance", j.instance),
			attribute.String("run.algorithm", algo),
			attribute.Int64("run.seed", int64(j.seed)),
		),
	)
	defer span.End()

	opts := base
	opts.Algo = j.algorithm
	opts.Seed = j.seed
	if log.Enabled(ctx, slog.LevelDebug) {
		opts.OnAccept = func(step int, fitness float64) {
			log.DebugContext(ctx, "move accepted", "step", step, "fitness", fitness)
		}
		opts.OnGeneration = func(gen int, best float64) {
			log.DebugContext(ctx, "generation done", "generation", gen, "best", best)
		}
	}

	start := time.Now()
	res, err := par.Solve(ctx, j.problem, opts)
	elapsed := time.Since(start)

	rec := results.Record{
		RunID:     uuid.NewString(),
		Instance:  j.instance,
		Algorithm: algo,
		Seed:      j.seed,
		Elapsed:   elapsed,
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if fatal(ctx, err) {
			return Outcome{}, err
		}
		r.metrics.RecordRun(j.instance, algo, elapsed, 0, 0, err)
		log.LogRun(ctx, rec, err)
		return Outcome{Record: rec, Err: err}, nil
	}

	rec.Fitness = res.Fitness
	rec.Infeasibility = res.Infeasibility
	rec.Deviation = res.Deviation
	span.SetAttributes(
		attribute.Float64("run.fitness", res.Fitness),
		attribute.Int("run.infeasibility", res.Infeasibility),
		attribute.Int("run.evaluations", res.Evaluations),
	)

	if r.sink != nil {
		if err = r.sink.Write(ctx, rec); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Outcome{}, fmt.Errorf("experiment: write result: %w", err)
		}
	}
	r.metrics.RecordRun(j.instance, algo, elapsed, res.Fitness, res.Infeasibility, nil)
	log.LogRun(ctx, rec, nil)

	return Outcome{Record: rec}, nil
}

// fatal reports whether err from a run must stop the whole batch: the
// context is done, or every run would fail the same way.
func fatal(ctx context.Context, err error) bool {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return true
	}

	return errors.Is(err, par.ErrInvalidOptions) || errors.Is(err, par.ErrUnsupportedAlgorithm)
}
