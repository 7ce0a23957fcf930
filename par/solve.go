// Package par - unified dispatcher for the optimisers.
//
// Solve validates Options, creates the run's generator from Options.Seed and
// routes to Greedy, LocalSearch or Genetic. Callers that need to share one
// generator across calls use the optimisers directly.
package par

import "context"

// Solve runs the optimiser selected by opts.Algo on problem.
//
// Errors: ErrUnsupportedAlgorithm for an unknown Algo, plus those of the
// selected optimiser (see types.go).
func Solve(ctx context.Context, problem *Problem, opts Options) (Result, error) {
	opts, err := validateRun(problem, opts)
	if err != nil {
		return Result{}, err
	}
	r := NewRand(opts.Seed)

	switch opts.Algo {
	case AlgoGreedy:
		return Greedy(ctx, problem, r, opts)
	case AlgoLocalSearch:
		return LocalSearch(ctx, problem, r, opts)
	case AlgoGenetic:
		return Genetic(ctx, problem, r, opts)
	default:
		return Result{}, ErrUnsupportedAlgorithm
	}
}

// newResult packages a final partition with its objective breakdown.
func newResult(problem *Problem, part *Partition, evals int) Result {
	return Result{
		Partition:     part,
		Fitness:       part.Fitness(problem),
		Infeasibility: problem.TotalInfeasibility(part.assignment),
		Deviation:     problem.GeneralDeviation(part.clusters),
		Evaluations:   evals,
	}
}
