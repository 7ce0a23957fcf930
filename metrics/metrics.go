// Package metrics records per-run measurements of the experiment runner.
//
// Collector is the hook interface; Noop discards everything, Basic keeps
// in-memory counters and Prometheus exports to a prometheus.Registerer.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector receives one call per finished optimiser run.
// Implementations must be safe for concurrent use.
type Collector interface {
	// RecordRun is called after every run. err is nil on success, in which
	// case fitness and infeasibility describe the returned partition.
	RecordRun(instance, algorithm string, duration time.Duration, fitness float64, infeasibility int, err error)
}

// Noop is a Collector that does nothing.
type Noop struct{}

// RecordRun implements Collector.
func (Noop) RecordRun(string, string, time.Duration, float64, int, error) {}

// Basic counts runs in memory. Useful for tests and debugging.
type Basic struct {
	Runs       atomic.Int64
	Failures   atomic.Int64
	TotalNanos atomic.Int64
}

// RecordRun implements Collector.
func (b *Basic) RecordRun(_, _ string, duration time.Duration, _ float64, _ int, err error) {
	b.Runs.Add(1)
	b.TotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.Failures.Add(1)
	}
}

var (
	_ Collector = Noop{}
	_ Collector = (*Basic)(nil)
)
