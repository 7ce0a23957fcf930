package par

import (
	"errors"
	"strings"
)

// Sentinel errors. Every message is prefixed with "par: ". Callers match them
// with errors.Is; outer layers may wrap them with extra context.
var (
	// ErrMalformedInput reports ragged, empty or non-finite points and
	// constraints that reference unknown elements or carry unknown values.
	ErrMalformedInput = errors.New("par: malformed input")

	// ErrDegenerateInstance reports an instance the objective is undefined for:
	// no constraints (λ would divide by zero), k == 0 or k > n.
	ErrDegenerateInstance = errors.New("par: degenerate instance")

	// ErrConstructionFailed is returned by Greedy when every restart left at
	// least one cluster empty.
	ErrConstructionFailed = errors.New("par: greedy construction failed")

	// ErrUnsupportedAlgorithm is returned by Solve for an unknown Algorithm.
	ErrUnsupportedAlgorithm = errors.New("par: unsupported algorithm")

	// ErrInvalidOptions reports negative limits or a population too small to pair.
	ErrInvalidOptions = errors.New("par: invalid options")
)

// Invariant violations. These indicate a bug in the caller or in this
// package, never bad external input.
const (
	panicEmptyCentroid  = "par: centroid of an empty cluster"
	panicEmptyDeviation = "par: intra-cluster distance of an empty cluster"
	panicClusterRange   = "par: cluster index out of range"
	panicElementRange   = "par: element index out of range"
)

// Algorithm selects the optimiser run by Solve.
type Algorithm int

const (
	// AlgoGreedy is the COPKM constructive heuristic.
	AlgoGreedy Algorithm = iota
	// AlgoLocalSearch is first-improvement hill climbing.
	AlgoLocalSearch
	// AlgoGenetic is the generational genetic algorithm with elitism.
	AlgoGenetic
)

// String returns the canonical name used in result tables and on the command line.
func (a Algorithm) String() string {
	switch a {
	case AlgoGreedy:
		return "greedy"
	case AlgoLocalSearch:
		return "local-search"
	case AlgoGenetic:
		return "generational-genetic"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name to an Algorithm. "constructive" and "copkm" are
// accepted as aliases of greedy, "genetic" and "ga" of the genetic optimiser.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "greedy", "constructive", "copkm":
		return AlgoGreedy, nil
	case "local-search", "localsearch", "ls":
		return AlgoLocalSearch, nil
	case "generational-genetic", "genetic", "ga":
		return AlgoGenetic, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

// Defaults.
const (
	// DefaultSeed replaces a zero Options.Seed.
	DefaultSeed uint64 = 1

	// DefaultGreedyMaxRetries bounds the number of full COPKM restarts.
	DefaultGreedyMaxRetries = 32

	// DefaultPopulationSize is the population used by the original experiments.
	DefaultPopulationSize = 50

	// DefaultGenerations is the GA stopping rule.
	DefaultGenerations = 100

	// crossoverRate is the share of parent pairs recombined each generation.
	crossoverRate = 0.7

	// mutationRate times n is the number of individuals mutated per generation.
	mutationRate = 0.1

	// randomRedraws bounds full random re-assignments before falling back to Repair.
	randomRedraws = 16

	// cancelCheckEvery throttles ctx.Err() polling inside neighbourhood scans.
	cancelCheckEvery = 256
)

// Options configures Solve and the individual optimisers.
//
// Zero values of the limit fields mean "use the default" (or "unlimited" where
// documented), so Options{} behaves like DefaultOptions() except for Algo.
type Options struct {
	// Algo selects the optimiser used by Solve.
	Algo Algorithm

	// Seed feeds the PCG generator created by Solve. Zero means DefaultSeed.
	Seed uint64

	// GreedyMaxRetries caps COPKM restarts. Zero means DefaultGreedyMaxRetries.
	GreedyMaxRetries int

	// GreedyMaxPasses caps assignment passes per COPKM attempt.
	// Zero means unlimited: the attempt ends when a pass changes nothing.
	GreedyMaxPasses int

	// LocalSearchMaxIters caps accepted moves. Zero means unlimited.
	LocalSearchMaxIters int

	// PopulationSize of the genetic optimiser. Zero means DefaultPopulationSize.
	PopulationSize int

	// Generations of the genetic optimiser. Zero means DefaultGenerations.
	Generations int

	// OnAccept, if set, is called by LocalSearch after each adopted move with
	// the 1-based move count and the new fitness.
	OnAccept func(step int, fitness float64)

	// OnGeneration, if set, is called by Genetic after each generation with the
	// 0-based generation index and the best fitness of the new population.
	OnGeneration func(generation int, best float64)
}

// DefaultOptions returns the documented defaults with Algo == AlgoGreedy.
func DefaultOptions() Options {
	return Options{
		Algo:             AlgoGreedy,
		Seed:             DefaultSeed,
		GreedyMaxRetries: DefaultGreedyMaxRetries,
		PopulationSize:   DefaultPopulationSize,
		Generations:      DefaultGenerations,
	}
}

// Result is the outcome of one optimiser run.
type Result struct {
	// Partition is the final, valid partition.
	Partition *Partition

	// Fitness is Deviation + λ·Infeasibility.
	Fitness float64

	// Infeasibility is the number of violated constraints.
	Infeasibility int

	// Deviation is the general deviation of Partition.
	Deviation float64

	// Evaluations measures search effort: (element, cluster) scorings for
	// Greedy, fitness computations for LocalSearch and Genetic.
	Evaluations int
}
