// Package par_test provides helpers shared across *_test.go files in this
// package: fixtures, a determinism repeater and structural checks.
package par_test

import (
	"cmp"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/par"
)

const (
	// epsTiny is the tolerance for quantities that must match exactly up to rounding.
	epsTiny = 1e-12

	// twoGroupsDeviation is the general deviation of the optimal two-group
	// partition: each unit right triangle has mean centroid distance (√2+2√5)/9.
	twoGroupsDeviation = 0.6540388355
)

// twoGroupsPoints is the six-point fixture: two unit right triangles far apart.
func twoGroupsPoints() []par.Point {
	return []par.Point{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}
}

// twoGroupsConstraints links one pair inside each group and separates the
// groups with one cannot-link.
func twoGroupsConstraints() []par.Constraint {
	return []par.Constraint{
		{I: 0, J: 1, Kind: par.MustLink},
		{I: 3, J: 4, Kind: par.MustLink},
		{I: 0, J: 3, Kind: par.CannotLink},
	}
}

// twoGroups builds the six-point instance with k=2.
func twoGroups(t *testing.T) *par.Problem {
	t.Helper()
	p, err := par.NewProblem(twoGroupsPoints(), twoGroupsConstraints(), 2)
	require.NoError(t, err)

	return p
}

// grid builds an n×n lattice with unit spacing, chained must-links along
// each row and cannot-links between the first column's neighbours.
func grid(t *testing.T, n, k int) *par.Problem {
	t.Helper()
	pts := make([]par.Point, 0, n*n)
	cons := make([]par.Constraint, 0, 2*n*n)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			pts = append(pts, par.Point{float64(i), float64(j)})
			if j > 0 {
				cons = append(cons, par.Constraint{I: i*n + j - 1, J: i*n + j, Kind: par.MustLink})
			}
		}
		if i > 0 {
			cons = append(cons, par.Constraint{I: (i - 1) * n, J: i * n, Kind: par.CannotLink})
		}
	}
	p, err := par.NewProblem(pts, cons, k)
	require.NoError(t, err)

	return p
}

// Repeat runs fn n times. Useful for determinism checks.
func Repeat(t *testing.T, n int, fn func(t *testing.T)) {
	t.Helper()
	var i int
	for i = 0; i < n; i++ {
		fn(t)
	}
}

// requireConsistent asserts that assignment and cluster membership agree and
// that every cluster's member count matches the assignment.
func requireConsistent(t *testing.T, p *par.Partition) {
	t.Helper()
	sizes := make([]int, p.K())
	var e, c int
	for e = 0; e < p.Len(); e++ {
		owner := p.ClusterOf(e)
		for c = 0; c < p.K(); c++ {
			require.Equal(t, owner == c, p.Cluster(c).Contains(e), "element %d cluster %d", e, c)
		}
		if owner >= 0 {
			sizes[owner]++
		}
	}
	for c = 0; c < p.K(); c++ {
		require.Equal(t, sizes[c], p.Cluster(c).Len(), "cluster %d size", c)
	}
}

// requireValidResult asserts the structural guarantees of an optimiser result.
func requireValidResult(t *testing.T, problem *par.Problem, res par.Result) {
	t.Helper()
	require.NotNil(t, res.Partition)
	require.True(t, res.Partition.IsValid(), "empty cluster in %v", res.Partition)
	require.True(t, res.Partition.IsComplete())
	requireConsistent(t, res.Partition)
	require.InDelta(t, problem.Fitness(res.Partition), res.Fitness, epsTiny)
	require.Equal(t, problem.TotalInfeasibility(res.Partition.Assignment()), res.Infeasibility)
	require.InDelta(t, res.Deviation+problem.Lambda()*float64(res.Infeasibility), res.Fitness, epsTiny)
}

// groups returns the member lists of p ordered by their smallest element, so
// partitions that differ only by cluster labels compare equal.
func groups(p *par.Partition) [][]int {
	out := make([][]int, 0, p.K())
	for _, c := range p.Clusters() {
		out = append(out, c.Members())
	}
	slices.SortFunc(out, func(a, b []int) int { return cmp.Compare(first(a), first(b)) })

	return out
}

func first(a []int) int {
	if len(a) == 0 {
		return math.MaxInt
	}

	return a[0]
}
