package experiment

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the runs of one (instance, algorithm) pair.
// Fitness statistics cover successful runs only.
type Summary struct {
	Instance  string
	Algorithm string
	Runs      int
	Failures  int

	MeanFitness       float64
	StdFitness        float64
	MinFitness        float64
	MeanInfeasibility float64
	MeanDeviation     float64
	MeanElapsed       time.Duration
}

// Summarize groups outcomes by (instance, algorithm) in order of first
// appearance. StdFitness is the sample standard deviation and is 0 for a
// single run.
func Summarize(outcomes []Outcome) []Summary {
	type key struct{ instance, algorithm string }
	type acc struct {
		fitness, infeas, dev []float64
		elapsed              time.Duration
		runs, failures       int
	}

	var order []key
	groups := make(map[key]*acc)
	for _, o := range outcomes {
		k := key{o.Record.Instance, o.Record.Algorithm}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		a.runs++
		a.elapsed += o.Record.Elapsed
		if o.Err != nil {
			a.failures++
			continue
		}
		a.fitness = append(a.fitness, o.Record.Fitness)
		a.infeas = append(a.infeas, float64(o.Record.Infeasibility))
		a.dev = append(a.dev, o.Record.Deviation)
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		a := groups[k]
		s := Summary{
			Instance:    k.instance,
			Algorithm:   k.algorithm,
			Runs:        a.runs,
			Failures:    a.failures,
			MeanElapsed: a.elapsed / time.Duration(a.runs),
		}
		if len(a.fitness) > 0 {
			s.MeanFitness = stat.Mean(a.fitness, nil)
			if len(a.fitness) > 1 {
				s.StdFitness = stat.StdDev(a.fitness, nil)
			}
			s.MinFitness = floats.Min(a.fitness)
			s.MeanInfeasibility = stat.Mean(a.infeas, nil)
			s.MeanDeviation = stat.Mean(a.dev, nil)
		}
		out = append(out, s)
	}

	return out
}
