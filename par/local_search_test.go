package par_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/par"
)

func TestLocalSearch_StrictlyDecreasing(t *testing.T) {
	p := grid(t, 6, 4)
	var seed uint64
	for seed = 1; seed <= 3; seed++ {
		var trace []float64
		opts := par.DefaultOptions()
		opts.OnAccept = func(step int, fitness float64) {
			require.Equal(t, len(trace)+1, step)
			trace = append(trace, fitness)
		}

		res, err := par.LocalSearch(context.Background(), p, par.NewRand(seed), opts)
		require.NoError(t, err)
		requireValidResult(t, p, res)

		require.NotEmpty(t, trace)
		for i := 1; i < len(trace); i++ {
			require.Less(t, trace[i], trace[i-1], "step %d", i+1)
		}
		assert.Equal(t, trace[len(trace)-1], res.Fitness)
		assert.Greater(t, res.Evaluations, len(trace))
	}
}

func TestLocalSearch_EndsInLocalOptimum(t *testing.T) {
	p := grid(t, 5, 3)
	res, err := par.LocalSearch(context.Background(), p, par.NewRand(9), par.DefaultOptions())
	require.NoError(t, err)

	part := res.Partition
	var e, c int
	for e = 0; e < part.Len(); e++ {
		for c = 0; c < part.K(); c++ {
			if c == part.ClusterOf(e) {
				continue
			}
			next, ok := part.Neighbour(e, c, p)
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, next.Fitness(p), res.Fitness, "move %d→%d improves", e, c)
		}
	}
}

func TestLocalSearch_MaxIters(t *testing.T) {
	p := grid(t, 6, 4)
	var accepted int
	opts := par.DefaultOptions()
	opts.LocalSearchMaxIters = 2
	opts.OnAccept = func(int, float64) { accepted++ }

	res, err := par.LocalSearch(context.Background(), p, par.NewRand(1), opts)
	require.NoError(t, err)
	requireValidResult(t, p, res)
	assert.LessOrEqual(t, accepted, 2)
}

func TestLocalSearch_SingleCluster(t *testing.T) {
	p, err := par.NewProblem(twoGroupsPoints(), twoGroupsConstraints(), 1)
	require.NoError(t, err)

	res, err := par.LocalSearch(context.Background(), p, par.NewRand(1), par.DefaultOptions())
	require.NoError(t, err)
	requireValidResult(t, p, res)
	// Only CL(0,3) can be violated with one cluster.
	assert.Equal(t, 1, res.Infeasibility)
	assert.Equal(t, 1, res.Evaluations)
}
