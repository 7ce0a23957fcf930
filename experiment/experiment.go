// Package experiment runs batches of independent optimiser runs over a set of
// instances, algorithms and seeds, and reports them to a results.Sink, a
// metrics.Collector and a Logger.
//
// Every run owns its generator, seeded from the run's seed alone, so a batch
// yields the same records whatever its parallelism.
package experiment

import (
	"errors"

	"github.com/katalvlaran/lvpar/dataset"
	"github.com/katalvlaran/lvpar/par"
)

var (
	// ErrEmptyPlan is returned when a plan has no instance, algorithm or seed.
	ErrEmptyPlan = errors.New("experiment: empty plan")

	// ErrDuplicateInstance is returned when two plan instances share a name.
	ErrDuplicateInstance = errors.New("experiment: duplicate instance name")
)

// Instance is a named problem source.
type Instance struct {
	Name   string
	Loader dataset.ProblemLoader
}

// Plan is the cross product of instances, algorithms and seeds to run.
// Options carries the shared limits; Algo and Seed are set per run.
type Plan struct {
	Instances  []Instance
	Algorithms []par.Algorithm
	Seeds      []uint64
	Options    par.Options
}

// Size returns the number of runs in the plan.
func (p Plan) Size() int {
	return len(p.Instances) * len(p.Algorithms) * len(p.Seeds)
}

func (p Plan) validate() error {
	if p.Size() == 0 {
		return ErrEmptyPlan
	}
	seen := make(map[string]struct{}, len(p.Instances))
	for _, in := range p.Instances {
		if _, dup := seen[in.Name]; dup {
			return ErrDuplicateInstance
		}
		seen[in.Name] = struct{}{}
	}

	return nil
}

// job is one run of the plan.
type job struct {
	index     int
	instance  string
	problem   *par.Problem
	algorithm par.Algorithm
	seed      uint64
}

// jobs expands the plan in instance, algorithm, seed order.
func (p Plan) jobs(problems []*par.Problem) []job {
	out := make([]job, 0, p.Size())
	for i, in := range p.Instances {
		for _, algo := range p.Algorithms {
			for _, seed := range p.Seeds {
				out = append(out, job{
					index:     len(out),
					instance:  in.Name,
					problem:   problems[i],
					algorithm: algo,
					seed:      seed,
				})
			}
		}
	}

	return out
}
