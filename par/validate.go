// Package par - option validation shared by the optimisers and Solve.
//
// Design principles:
//   - Deterministic, side-effect free.
//   - No logging, no panics on user input - only sentinel errors from types.go.
package par

// normalizeOptions rejects inconsistent limits and replaces zero values with
// their defaults. The returned copy is what the optimisers read.
//
// Contracts:
//   - every limit is ≥ 0;
//   - PopulationSize is 0 (default) or ≥ 2, so tournament and crossover have
//     at least one pair to work on.
//
// Complexity: O(1).
func normalizeOptions(opts Options) (Options, error) {
	if opts.GreedyMaxRetries < 0 || opts.GreedyMaxPasses < 0 || opts.LocalSearchMaxIters < 0 {
		return Options{}, ErrInvalidOptions
	}
	if opts.PopulationSize < 0 || opts.PopulationSize == 1 || opts.Generations < 0 {
		return Options{}, ErrInvalidOptions
	}

	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.GreedyMaxRetries == 0 {
		opts.GreedyMaxRetries = DefaultGreedyMaxRetries
	}
	if opts.PopulationSize == 0 {
		opts.PopulationSize = DefaultPopulationSize
	}
	if opts.Generations == 0 {
		opts.Generations = DefaultGenerations
	}

	return opts, nil
}

// validateRun checks the arguments every optimiser entry point shares.
func validateRun(problem *Problem, opts Options) (Options, error) {
	if problem == nil {
		return Options{}, ErrMalformedInput
	}

	return normalizeOptions(opts)
}
