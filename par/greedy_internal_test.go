package par

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNearestFeasibleCluster_Ranking places element 0 at the origin against
// hand-set centroids. Element 1 cannot-links with 0, element 2 must-links.
func TestNearestFeasibleCluster_Ranking(t *testing.T) {
	problem, err := NewProblem(
		[]Point{{0, 0}, {5, 0}, {0, 5}},
		[]Constraint{
			{I: 0, J: 1, Kind: CannotLink},
			{I: 0, J: 2, Kind: MustLink},
		},
		3,
	)
	require.NoError(t, err)

	tests := []struct {
		name      string
		centroids [3]Point
		owners    map[int]int // element → cluster; others stay unassigned
		want      int
	}{
		{
			name:      "fewer violations beat a nearer centroid",
			centroids: [3]Point{{0, 0}, {3, 0}, {4, 0}},
			owners:    map[int]int{1: 0},
			want:      1,
		},
		{
			name:      "must-link pulls towards the far cluster",
			centroids: [3]Point{{0, 0}, {0, 0}, {9, 9}},
			owners:    map[int]int{2: 2},
			want:      2,
		},
		{
			name:      "equal violations pick the nearer centroid",
			centroids: [3]Point{{2, 0}, {1, 0}, {0, 0}},
			owners:    map[int]int{1: 2},
			want:      1,
		},
		{
			name:      "exact tie picks the lowest index",
			centroids: [3]Point{{1, 0}, {0, 1}, {-1, 0}},
			want:      0,
		},
		{
			name:      "exact tie among feasible clusters skips the violating one",
			centroids: [3]Point{{0, 0}, {0, -1}, {1, 0}},
			owners:    map[int]int{1: 0},
			want:      1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := NewPartition(problem, NewRand(1))
			for c := range part.clusters {
				part.clusters[c].centroid = tt.centroids[c]
			}
			for e, owner := range tt.owners {
				part.Insert(e, owner)
			}

			assert.Equal(t, tt.want, nearestFeasibleCluster(problem, part, 0))
		})
	}
}
