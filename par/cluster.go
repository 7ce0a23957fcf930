package par

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Cluster is a centroid plus a set of member element indices. Clusters are
// owned by a Partition and mutated only through it.
//
// The centroid equals the mean of the members only right after a recompute;
// Partition.Insert leaves it stale on purpose.
type Cluster struct {
	centroid Point
	members  *roaring.Bitmap
}

// newCluster returns an empty cluster with a zero centroid.
func newCluster(dim int) *Cluster {
	return &Cluster{
		centroid: make(Point, dim),
		members:  roaring.New(),
	}
}

// newRandomCluster returns an empty cluster whose centroid is uniform in [0,1)^dim.
func newRandomCluster(dim int, r *rand.Rand) *Cluster {
	return &Cluster{
		centroid: randomPoint(dim, r),
		members:  roaring.New(),
	}
}

// clone returns a deep copy.
func (c *Cluster) clone() *Cluster {
	return &Cluster{
		centroid: slices.Clone(c.centroid),
		members:  c.members.Clone(),
	}
}

// Centroid returns the current centroid. The returned slice must not be modified.
func (c *Cluster) Centroid() Point { return c.centroid }

// Len returns the number of members.
func (c *Cluster) Len() int { return int(c.members.GetCardinality()) }

// IsEmpty reports whether the cluster has no members.
func (c *Cluster) IsEmpty() bool { return c.members.IsEmpty() }

// Contains reports whether element e is a member.
func (c *Cluster) Contains(e int) bool { return c.members.Contains(uint32(e)) }

// Members returns the member indices in ascending order.
func (c *Cluster) Members() []int {
	out := make([]int, 0, c.Len())
	it := c.members.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}

	return out
}

// String implements fmt.Stringer.
func (c *Cluster) String() string {
	return fmt.Sprintf("Cluster(centroid: %v, elements: %v)", c.centroid, c.Members())
}
