package experiment_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/experiment"
	"github.com/katalvlaran/lvpar/results"
)

func TestSummarize(t *testing.T) {
	rec := func(inst, algo string, fit float64, infeas int, dev float64, ms int) results.Record {
		return results.Record{
			Instance:      inst,
			Algorithm:     algo,
			Fitness:       fit,
			Infeasibility: infeas,
			Deviation:     dev,
			Elapsed:       time.Duration(ms) * time.Millisecond,
		}
	}
	outcomes := []experiment.Outcome{
		{Record: rec("zoo10", "greedy", 2, 1, 1, 10)},
		{Record: rec("zoo10", "local-search", 5, 0, 5, 30)},
		{Record: rec("zoo10", "greedy", 4, 3, 1, 20)},
		{Record: rec("zoo10", "greedy", 0, 0, 0, 30), Err: errors.New("failed")},
	}

	got := experiment.Summarize(outcomes)
	require.Len(t, got, 2)

	g := got[0]
	assert.Equal(t, "zoo10", g.Instance)
	assert.Equal(t, "greedy", g.Algorithm)
	assert.Equal(t, 3, g.Runs)
	assert.Equal(t, 1, g.Failures)
	assert.InDelta(t, 3, g.MeanFitness, 1e-12)
	assert.InDelta(t, math.Sqrt2, g.StdFitness, 1e-12)
	assert.InDelta(t, 2, g.MinFitness, 1e-12)
	assert.InDelta(t, 2, g.MeanInfeasibility, 1e-12)
	assert.InDelta(t, 1, g.MeanDeviation, 1e-12)
	assert.Equal(t, 20*time.Millisecond, g.MeanElapsed)

	ls := got[1]
	assert.Equal(t, "local-search", ls.Algorithm)
	assert.Equal(t, 1, ls.Runs)
	assert.Zero(t, ls.StdFitness)
	assert.InDelta(t, 5, ls.MinFitness, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, experiment.Summarize(nil))
}
