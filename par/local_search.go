// Package par - first-improvement local search over single element moves.
//
// LocalSearch starts from NewRandomPartition and repeatedly:
//   - lists every move (e, c) with c ≠ cluster(e) whose source cluster keeps at
//     least one element,
//   - shuffles the list with the run's generator,
//   - adopts the first neighbour whose fitness is strictly lower and rescans.
//
// It stops when a full scan finds no improving neighbour, or after
// Options.LocalSearchMaxIters adopted moves when that limit is set.
//
// Complexity:
//   - One scan: O(n·k) candidates, each O(n + k·d + m) to clone and score.
//   - Adoptions are finite: fitness strictly decreases and the number of
//     assignments is finite.
package par

import (
	"context"
	"math/rand/v2"
)

// move is one candidate of the local-search neighbourhood.
type move struct {
	element int
	cluster int
}

// LocalSearch runs first-improvement hill climbing with generator r.
//
// Errors:
//   - ErrMalformedInput for a nil problem, ErrInvalidOptions for bad limits.
//   - ctx.Err() when ctx is cancelled during a scan.
//
// Result.Evaluations counts fitness computations, the start included.
func LocalSearch(ctx context.Context, problem *Problem, r *rand.Rand, opts Options) (Result, error) {
	opts, err := validateRun(problem, opts)
	if err != nil {
		return Result{}, err
	}

	cur := NewRandomPartition(problem, r)
	curFit := cur.Fitness(problem)

	var (
		evals    = 1
		accepted int
		moves    = make([]move, 0, problem.N()*(problem.K()-1))
		improved bool
		next     *Partition
		ok       bool
		f        float64
		i        int
	)
	for opts.LocalSearchMaxIters == 0 || accepted < opts.LocalSearchMaxIters {
		moves = neighbourhood(cur, moves[:0])
		shuffleInPlace(moves, r)

		improved = false
		for i = range moves {
			if i%cancelCheckEvery == 0 {
				if err = ctx.Err(); err != nil {
					return Result{}, err
				}
			}
			next, ok = cur.Neighbour(moves[i].element, moves[i].cluster, problem)
			if !ok {
				continue
			}
			f = next.Fitness(problem)
			evals++
			if f < curFit {
				cur, curFit = next, f
				accepted++
				improved = true
				if opts.OnAccept != nil {
					opts.OnAccept(accepted, curFit)
				}
				break
			}
		}
		if !improved {
			break
		}
	}

	return newResult(problem, cur, evals), nil
}

// neighbourhood appends to dst every move of part that changes an element's
// cluster without emptying its source, and returns the extended slice.
//
// Complexity: O(n·k).
func neighbourhood(part *Partition, dst []move) []move {
	var e, c, src int
	for e = range part.assignment {
		src = part.assignment[e]
		if part.clusters[src].Len() <= 1 {
			continue
		}
		for c = range part.clusters {
			if c != src {
				dst = append(dst, move{element: e, cluster: c})
			}
		}
	}

	return dst
}
