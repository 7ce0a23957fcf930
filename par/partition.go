// Package par - Partition: the solution representation shared by all optimisers.
//
// A Partition keeps two synchronised views:
//   - assignment[e] = c (or -1 while e is unassigned), the canonical owner lookup;
//   - clusters[c].members, the per-cluster member sets.
//
// Every mutating method clears the memoised fitness. Centroids are recomputed
// only on request (Neighbour, RecomputeCentroids), so Insert stays O(1).
package par

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Partition assigns each of n elements to one of k clusters.
// The zero value is not usable; create partitions with NewPartition,
// NewRandomPartition or RandomPopulation.
type Partition struct {
	assignment []int
	clusters   []*Cluster

	fitness float64
	cached  bool
}

// NewPartition returns a partition with k empty clusters whose centroids are
// uniform in [0,1)^d, and no element assigned.
//
// Complexity: O(k·d).
func NewPartition(problem *Problem, r *rand.Rand) *Partition {
	p := &Partition{
		assignment: make([]int, problem.N()),
		clusters:   make([]*Cluster, problem.K()),
	}
	var i int
	for i = range p.assignment {
		p.assignment[i] = -1
	}
	for i = range p.clusters {
		p.clusters[i] = newRandomCluster(problem.Dim(), r)
	}

	return p
}

// NewRandomPartition assigns every element to a uniformly random cluster,
// redrawing the whole assignment while some cluster is empty. After a bounded
// number of redraws the remaining empty clusters are filled by Repair, so the
// result is always valid. Centroids are fresh on return.
//
// Complexity: O(n + k·d) per draw.
func NewRandomPartition(problem *Problem, r *rand.Rand) *Partition {
	n, k := problem.N(), problem.K()

	var p *Partition
	var draw, e int
	for draw = 0; draw < randomRedraws; draw++ {
		p = &Partition{
			assignment: make([]int, n),
			clusters:   make([]*Cluster, k),
		}
		for e = range p.clusters {
			p.clusters[e] = newCluster(problem.Dim())
		}
		for e = 0; e < n; e++ {
			p.assign(e, r.IntN(k))
		}
		if p.IsValid() {
			break
		}
	}
	if !p.IsValid() {
		p.Repair(r)
	}
	p.RecomputeCentroids(problem)

	return p
}

// RandomPopulation returns size independent NewRandomPartition draws.
func RandomPopulation(problem *Problem, size int, r *rand.Rand) []*Partition {
	pop := make([]*Partition, size)
	var i int
	for i = range pop {
		pop[i] = NewRandomPartition(problem, r)
	}

	return pop
}

// Clone returns a deep copy, including the memoised fitness.
func (p *Partition) Clone() *Partition {
	q := &Partition{
		assignment: slices.Clone(p.assignment),
		clusters:   make([]*Cluster, len(p.clusters)),
		fitness:    p.fitness,
		cached:     p.cached,
	}
	var i int
	for i = range p.clusters {
		q.clusters[i] = p.clusters[i].clone()
	}

	return q
}

// Len returns the number of elements n.
func (p *Partition) Len() int { return len(p.assignment) }

// K returns the number of clusters.
func (p *Partition) K() int { return len(p.clusters) }

// ClusterOf returns the cluster owning e, or -1 if e is unassigned.
func (p *Partition) ClusterOf(e int) int {
	if e < 0 || e >= len(p.assignment) {
		panic(panicElementRange)
	}

	return p.assignment[e]
}

// Assignment returns a copy of the element→cluster mapping (-1 = unassigned).
func (p *Partition) Assignment() []int { return slices.Clone(p.assignment) }

// Cluster returns cluster c. The result must be treated as read-only.
func (p *Partition) Cluster(c int) *Cluster {
	if c < 0 || c >= len(p.clusters) {
		panic(panicClusterRange)
	}

	return p.clusters[c]
}

// Clusters returns the k clusters in index order. The clusters must be
// treated as read-only.
func (p *Partition) Clusters() []*Cluster { return slices.Clone(p.clusters) }

// IsComplete reports whether every element is assigned.
func (p *Partition) IsComplete() bool {
	return !slices.Contains(p.assignment, -1)
}

// IsValid reports whether no cluster is empty.
func (p *Partition) IsValid() bool {
	for _, c := range p.clusters {
		if c.IsEmpty() {
			return false
		}
	}

	return true
}

// Insert moves element e into cluster c (assigning it if it was unassigned).
// Centroids are left untouched.
//
// Complexity: O(1) amortised.
func (p *Partition) Insert(e, c int) {
	if e < 0 || e >= len(p.assignment) {
		panic(panicElementRange)
	}
	if c < 0 || c >= len(p.clusters) {
		panic(panicClusterRange)
	}
	p.assign(e, c)
}

// assign is Insert without bounds checks.
func (p *Partition) assign(e, c int) {
	if prev := p.assignment[e]; prev >= 0 {
		p.clusters[prev].members.Remove(uint32(e))
	}
	p.clusters[c].members.Add(uint32(e))
	p.assignment[e] = c
	p.cached = false
}

// Neighbour returns a copy of p with e moved to cluster c and the centroids of
// both the source and the destination cluster recomputed. It returns false,
// and no partition, when the move would leave the source cluster empty.
//
// Complexity: O(n + k·d + (|src|+|dst|)·d).
func (p *Partition) Neighbour(e, c int, problem *Problem) (*Partition, bool) {
	src := p.ClusterOf(e)
	if src >= 0 && src != c && p.clusters[src].Len() <= 1 {
		return nil, false
	}

	q := p.Clone()
	q.Insert(e, c)
	q.RecomputeCentroid(c, problem)
	if src >= 0 && src != c {
		q.RecomputeCentroid(src, problem)
	}

	return q, true
}

// Repair fills each empty cluster with a random element taken from a cluster
// holding more than one element. Candidates are scanned modulo n from a random
// start, so no cluster is ever emptied. Unassigned elements are taken first
// come, first served. Centroids are not recomputed.
//
// It panics if an empty cluster cannot be filled, which requires n < k.
func (p *Partition) Repair(r *rand.Rand) {
	n := len(p.assignment)
	var (
		c, e, scanned int
		owner         int
	)
	for c = range p.clusters {
		if !p.clusters[c].IsEmpty() {
			continue
		}
		e = r.IntN(n)
		for scanned = 0; scanned < n; scanned++ {
			owner = p.assignment[e]
			if owner < 0 || p.clusters[owner].Len() > 1 {
				break
			}
			e = (e + 1) % n
		}
		if scanned == n {
			panic(panicClusterRange)
		}
		p.assign(e, c)
	}
}

// RecomputeCentroid sets the centroid of cluster c to the mean of its members.
// It panics if the cluster is empty.
func (p *Partition) RecomputeCentroid(c int, problem *Problem) {
	cl := p.Cluster(c)
	cl.centroid = problem.CentroidOf(cl)
	p.cached = false
}

// RecomputeCentroids recomputes every centroid. It panics on an empty cluster.
func (p *Partition) RecomputeCentroids(problem *Problem) {
	var c int
	for c = range p.clusters {
		p.RecomputeCentroid(c, problem)
	}
}

// randomizeCentroid gives cluster c a fresh centroid uniform in [0,1)^d.
func (p *Partition) randomizeCentroid(c int, r *rand.Rand) {
	p.clusters[c].centroid = randomPoint(len(p.clusters[c].centroid), r)
	p.cached = false
}

// Fitness returns problem.Fitness(p), memoised until the next mutation.
func (p *Partition) Fitness(problem *Problem) float64 {
	if !p.cached {
		p.fitness = problem.Fitness(p)
		p.cached = true
	}

	return p.fitness
}

// Equal reports whether p and q assign every element identically. Cluster
// order within the slice and centroids are not compared.
func (p *Partition) Equal(q *Partition) bool {
	return slices.Equal(p.assignment, q.assignment)
}

// String implements fmt.Stringer.
func (p *Partition) String() string {
	var b strings.Builder
	b.WriteString("Partition{")
	var i int
	for i = range p.clusters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%v", i, p.clusters[i].Members())
	}
	b.WriteString("}")

	return b.String()
}
