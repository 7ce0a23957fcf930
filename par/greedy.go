// Package par - COPKM constructive heuristic.
//
// Greedy builds a partition from scratch:
//  1. k clusters with centroids uniform in [0,1)^d, nothing assigned;
//  2. elements visited in a shuffled order;
//  3. passes until nothing moves: each element goes to the cluster with the
//     fewest new violations, ties broken by the nearest centroid and then by
//     the lowest cluster index; after a pass every non-empty cluster gets its
//     mean as centroid and every empty one a fresh random centroid;
//  4. an attempt that ends with an empty cluster is thrown away and the whole
//     construction restarts, at most Options.GreedyMaxRetries times.
//
// Complexity:
//   - One pass: O(n·(k·d + Δ)) where Δ is the mean constraint degree.
//   - One attempt: passes × pass cost; passes are unbounded unless
//     Options.GreedyMaxPasses is set.
package par

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Greedy runs the COPKM constructive heuristic with generator r.
//
// Errors:
//   - ErrMalformedInput for a nil problem, ErrInvalidOptions for bad limits.
//   - ErrConstructionFailed when every attempt left a cluster empty.
//   - ctx.Err() when ctx is cancelled between passes.
//
// Result.Evaluations counts (element, cluster) scorings.
func Greedy(ctx context.Context, problem *Problem, r *rand.Rand, opts Options) (Result, error) {
	opts, err := validateRun(problem, opts)
	if err != nil {
		return Result{}, err
	}

	var (
		part    *Partition
		scored  int
		evals   int
		attempt int
	)
	for attempt = 0; attempt < opts.GreedyMaxRetries; attempt++ {
		part, scored, err = greedyAttempt(ctx, problem, r, opts.GreedyMaxPasses)
		evals += scored
		if err != nil {
			return Result{}, err
		}
		if part.IsValid() {
			return newResult(problem, part, evals), nil
		}
	}

	return Result{}, ErrConstructionFailed
}

// greedyAttempt performs one full construction. The returned partition has
// every element assigned but may contain empty clusters.
func greedyAttempt(ctx context.Context, problem *Problem, r *rand.Rand, maxPasses int) (*Partition, int, error) {
	part := NewPartition(problem, r)
	order := permRange(problem.N(), r)

	var (
		pass    int
		evals   int
		changed bool
		best    int
	)
	for pass = 0; maxPasses == 0 || pass < maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, evals, err
		}

		changed = false
		for _, e := range order {
			best = nearestFeasibleCluster(problem, part, e)
			evals += part.K()
			if part.assignment[e] != best {
				part.assign(e, best)
				changed = true
			}
		}
		refreshCentroids(problem, part, r)

		if !changed {
			break
		}
	}

	return part, evals, nil
}

// nearestFeasibleCluster returns the cluster minimising, in order,
// InfeasibilityDelta, the distance to the centroid and the cluster index.
//
// Complexity: O(k·(d + deg(e))).
func nearestFeasibleCluster(problem *Problem, part *Partition, e int) int {
	p := problem.points[e]

	var (
		c, delta  int
		dist      float64
		best      = -1
		bestDelta int
		bestDist  float64
	)
	for c = range part.clusters {
		delta = problem.InfeasibilityDelta(e, c, part.assignment)
		if best >= 0 && delta > bestDelta {
			continue
		}
		dist = floats.Distance(p, part.clusters[c].centroid, 2)
		// Strict comparisons keep the lowest index among exact ties.
		if best < 0 || delta < bestDelta || dist < bestDist {
			best, bestDelta, bestDist = c, delta, dist
		}
	}

	return best
}

// refreshCentroids moves each non-empty cluster's centroid to its mean and
// re-randomises the centroid of every empty cluster.
func refreshCentroids(problem *Problem, part *Partition, r *rand.Rand) {
	var c int
	for c = range part.clusters {
		if part.clusters[c].IsEmpty() {
			part.randomizeCentroid(c, r)
			continue
		}
		part.RecomputeCentroid(c, problem)
	}
}
