// Package results collects run records into per-(algorithm, instance) CSV
// tables and uploads them to a blob store.
//
// Table layout: "<algorithm>/<instance>.csv" (plus ".zst" or ".lz4" when
// compressed) with the columns
//
//	seed,fitness,infeasibility,general_deviation,time_ms
//
// A table holds every record written to it since the sink was created and is
// rewritten as a whole on each Flush.
package results

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrUnknownCodec is returned by ParseCodec for an unsupported name.
var ErrUnknownCodec = errors.New("results: unknown codec")

// Header is the column row of every table.
var Header = []string{"seed", "fitness", "infeasibility", "general_deviation", "time_ms"}

// Record is the outcome of one (instance, algorithm, seed) run.
type Record struct {
	RunID         string
	Instance      string
	Algorithm     string
	Seed          uint64
	Fitness       float64
	Infeasibility int
	Deviation     float64
	Elapsed       time.Duration
}

// Row returns the CSV fields of r in Header order.
func (r Record) Row() []string {
	return []string{
		strconv.FormatUint(r.Seed, 10),
		strconv.FormatFloat(r.Fitness, 'f', -1, 64),
		strconv.Itoa(r.Infeasibility),
		strconv.FormatFloat(r.Deviation, 'f', -1, 64),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
	}
}

// Sink receives run records.
type Sink interface {
	Write(ctx context.Context, r Record) error
	Flush(ctx context.Context) error
}

// BlobStore stores whole named objects.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
}
