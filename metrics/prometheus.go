package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exports run metrics, labelled by instance and algorithm.
type Prometheus struct {
	gatherer prometheus.Gatherer

	runs          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	fitness       *prometheus.GaugeVec
	infeasibility *prometheus.GaugeVec
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus registers the metrics on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	return NewPrometheusWith(reg, reg)
}

// NewPrometheusWith registers the metrics on reg. gatherer is used by
// WriteTextfile and may be nil when the caller exports reg itself.
func NewPrometheusWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Prometheus {
	f := promauto.With(reg)
	labels := []string{"instance", "algorithm"}

	return &Prometheus{
		gatherer: gatherer,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "par_runs_total",
			Help: "Total number of optimiser runs",
		}, labels),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "par_run_failures_total",
			Help: "Total number of optimiser runs that returned an error",
		}, labels),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "par_run_duration_seconds",
			Help:    "Wall-clock duration of optimiser runs in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, labels),
		fitness: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "par_last_fitness",
			Help: "Fitness of the last successful run",
		}, labels),
		infeasibility: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "par_last_infeasibility",
			Help: "Violated constraints of the last successful run",
		}, labels),
	}
}

// RecordRun implements Collector.
func (p *Prometheus) RecordRun(instance, algorithm string, duration time.Duration, fitness float64, infeasibility int, err error) {
	p.runs.WithLabelValues(instance, algorithm).Inc()
	p.duration.WithLabelValues(instance, algorithm).Observe(duration.Seconds())
	if err != nil {
		p.failures.WithLabelValues(instance, algorithm).Inc()
		return
	}
	p.fitness.WithLabelValues(instance, algorithm).Set(fitness)
	p.infeasibility.WithLabelValues(instance, algorithm).Set(float64(infeasibility))
}

// WriteTextfile writes the gathered metrics in the text exposition format,
// for the node exporter textfile collector.
func (p *Prometheus) WriteTextfile(path string) error {
	if p.gatherer == nil {
		return nil
	}

	return prometheus.WriteToTextfile(path, p.gatherer)
}
