// Package par provides solvers for the constrained partitioning problem (PAR):
// a k-means variant where pairs of points carry must-link / cannot-link
// constraints.
//
// The objective shared by every solver is
//
//	fitness(P) = general_deviation(P) + λ · infeasibility(P)
//
// where general_deviation is the mean over clusters of the mean distance of a
// member to its centroid, infeasibility counts violated constraints, and
// λ = (largest pairwise distance) / (number of constraints). Lower is better.
//
// Three optimisers operate on the same Partition type:
//
//   - Greedy - COPKM constructive heuristic.
//     Least-infeasible cluster first, nearest centroid on ties, centroid
//     refinement until a pass makes no change, restart if a cluster empties.
//
//   - LocalSearch - first-improvement hill climbing over single-element moves.
//     Starts from a random valid partition; the neighbourhood order is shuffled.
//
//   - Genetic - generational GA with binary tournament, uniform crossover,
//     single-gene mutation and elitism, 100 generations by default.
//
// All randomness flows from an explicit *rand.Rand (math/rand/v2, PCG) so that
// a seed reproduces a run bit for bit. A Problem is read-only after NewProblem
// and may be shared by concurrent runs; a Partition is owned by one run.
//
// Use Solve to dispatch by Options.Algo, or call Greedy, LocalSearch and
// Genetic directly with your own generator.
package par
