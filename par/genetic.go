// Package par - generational genetic optimiser with elitism.
//
// Each generation:
//  1. Selection: PopulationSize binary tournaments (lower fitness wins, a tie
//     keeps the first pick).
//  2. Crossover: the first ⌊0.7·PopulationSize/2⌋ parent pairs each produce two
//     children by uniform crossover; the other pairs are copied unchanged.
//  3. Mutation: round(0.1·n) individuals of the new population, drawn with
//     replacement, each get one random element moved to a different cluster.
//  4. Elitism: if the best individual of the previous population is absent
//     from the new one, it replaces the new population's worst.
//
// Children that lose a cluster are repaired, and every individual carries
// fresh centroids, so equal assignments always have equal fitness.
//
// Complexity: O(G·P·(n + k·d + m)) for G generations and population P.
package par

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
)

// Genetic runs the generational genetic optimiser with generator r.
//
// Errors:
//   - ErrMalformedInput for a nil problem, ErrInvalidOptions for bad limits.
//   - ctx.Err() when ctx is cancelled between generations.
//
// Result.Evaluations counts fitness computations.
func Genetic(ctx context.Context, problem *Problem, r *rand.Rand, opts Options) (Result, error) {
	opts, err := validateRun(problem, opts)
	if err != nil {
		return Result{}, err
	}

	g := &genetic{problem: problem, r: r}
	pop := RandomPopulation(problem, opts.PopulationSize, r)

	var (
		gen   int
		elite *Partition
		next  []*Partition
	)
	for gen = 0; gen < opts.Generations; gen++ {
		if err = ctx.Err(); err != nil {
			return Result{}, err
		}

		elite = pop[g.best(pop)]
		next = g.recombine(g.tournament(pop))
		g.mutate(next)

		if !slices.ContainsFunc(next, elite.Equal) {
			next[g.worst(next)] = elite.Clone()
		}
		pop = next

		if opts.OnGeneration != nil {
			opts.OnGeneration(gen, g.fitness(pop[g.best(pop)]))
		}
	}

	slices.SortStableFunc(pop, func(a, b *Partition) int {
		fa, fb := g.fitness(a), g.fitness(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	})

	return newResult(problem, pop[0], g.evals), nil
}

// genetic holds the per-run state shared by the operators.
type genetic struct {
	problem *Problem
	r       *rand.Rand
	evals   int
}

// fitness returns p's fitness, counting computations that miss the cache.
func (g *genetic) fitness(p *Partition) float64 {
	if !p.cached {
		g.evals++
	}

	return p.Fitness(g.problem)
}

// best returns the index of the fittest individual; the first wins ties.
func (g *genetic) best(pop []*Partition) int {
	var i, bi int
	for i = 1; i < len(pop); i++ {
		if g.fitness(pop[i]) < g.fitness(pop[bi]) {
			bi = i
		}
	}

	return bi
}

// worst returns the index of the least fit individual; the first wins ties.
func (g *genetic) worst(pop []*Partition) int {
	var i, wi int
	for i = 1; i < len(pop); i++ {
		if g.fitness(pop[i]) > g.fitness(pop[wi]) {
			wi = i
		}
	}

	return wi
}

// tournament runs len(pop) binary tournaments. The returned slice aliases
// members of pop; operators must clone before mutating.
func (g *genetic) tournament(pop []*Partition) []*Partition {
	parents := make([]*Partition, len(pop))
	var i, a, b int
	for i = range parents {
		a, b = g.r.IntN(len(pop)), g.r.IntN(len(pop))
		if g.fitness(pop[b]) < g.fitness(pop[a]) {
			a = b
		}
		parents[i] = pop[a]
	}

	return parents
}

// recombine builds the next population from consecutive parent pairs.
// An odd trailing parent is copied.
func (g *genetic) recombine(parents []*Partition) []*Partition {
	size := len(parents)
	quota := int(crossoverRate * float64(size/2))
	next := make([]*Partition, 0, size)

	var i int
	for i = 0; i+1 < size; i += 2 {
		if i/2 < quota {
			next = append(next,
				g.crossover(parents[i], parents[i+1]),
				g.crossover(parents[i+1], parents[i]))
			continue
		}
		next = append(next, parents[i].Clone(), parents[i+1].Clone())
	}
	if size%2 == 1 {
		next = append(next, parents[size-1].Clone())
	}

	return next
}

// crossover returns a clone of base with a random half of its genes taken
// from donor, repaired and with fresh centroids.
func (g *genetic) crossover(base, donor *Partition) *Partition {
	child := base.Clone()
	genes := permRange(child.Len(), g.r)
	for _, e := range genes[:len(genes)/2] {
		if donor.assignment[e] != child.assignment[e] {
			child.assign(e, donor.assignment[e])
		}
	}
	g.settle(child)

	return child
}

// mutate moves one random element of round(0.1·n) randomly chosen
// individuals to a different random cluster. It is a no-op for k == 1.
func (g *genetic) mutate(pop []*Partition) {
	k := g.problem.K()
	if k < 2 {
		return
	}
	count := int(math.Round(mutationRate * float64(g.problem.N())))

	var (
		i, e, c int
		ind     *Partition
	)
	for i = 0; i < count; i++ {
		ind = pop[g.r.IntN(len(pop))]
		e = g.r.IntN(ind.Len())
		// Draw from the k-1 other clusters.
		c = g.r.IntN(k - 1)
		if c >= ind.assignment[e] {
			c++
		}
		ind.assign(e, c)
		g.settle(ind)
	}
}

// settle restores validity and recomputes all centroids.
func (g *genetic) settle(p *Partition) {
	if !p.IsValid() {
		p.Repair(g.r)
	}
	p.RecomputeCentroids(g.problem)
}
