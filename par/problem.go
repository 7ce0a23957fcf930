package par

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is a fixed-length coordinate vector. All points of a Problem share
// the same dimension.
type Point []float64

// Kind is the value of a pairwise constraint.
type Kind int8

const (
	// MustLink requires both elements in the same cluster.
	MustLink Kind = 1
	// CannotLink requires the elements in different clusters.
	CannotLink Kind = -1
)

// String returns "ML" or "CL".
func (k Kind) String() string {
	switch k {
	case MustLink:
		return "ML"
	case CannotLink:
		return "CL"
	default:
		return "none"
	}
}

// Constraint relates two distinct elements. The pair is unordered; NewProblem
// stores it with I < J.
type Constraint struct {
	I, J int
	Kind Kind
}

// link is one constraint seen from one of its endpoints.
type link struct {
	other int
	kind  Kind
}

// Problem is an immutable PAR instance: points, constraints, k and λ.
// It is safe for concurrent use by independent optimiser runs.
type Problem struct {
	points  []Point
	dim     int
	k       int
	lambda  float64
	maxDist float64

	// pairs holds each declared constraint once, I < J, sorted by (I, J).
	pairs []Constraint
	// links[e] lists the constraints touching e, so per-element queries
	// never scan the whole constraint set.
	links [][]link
}

// NewProblem validates the instance and computes λ.
//
// Contracts:
//   - points is non-empty, every point has the same dimension d ≥ 1 and only
//     finite coordinates (ErrMalformedInput).
//   - every constraint references two distinct elements in range and has Kind
//     MustLink or CannotLink; a pair declared twice must agree (ErrMalformedInput).
//   - 1 ≤ k ≤ len(points) and at least one constraint (ErrDegenerateInstance).
//
// Points are copied; the caller may reuse its slices.
//
// Complexity: O(n²·d + m log m) for n points and m constraints (the n² term
// finds the largest pairwise distance).
func NewProblem(points []Point, constraints []Constraint, k int) (*Problem, error) {
	n := len(points)
	if n == 0 {
		return nil, ErrMalformedInput
	}
	dim := len(points[0])
	if dim == 0 {
		return nil, ErrMalformedInput
	}

	pts := make([]Point, n)
	var i int
	for i = range points {
		if len(points[i]) != dim {
			return nil, ErrMalformedInput
		}
		for _, x := range points[i] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, ErrMalformedInput
			}
		}
		pts[i] = slices.Clone(points[i])
	}

	if k < 1 || k > n {
		return nil, ErrDegenerateInstance
	}

	// Canonicalise, deduplicate and reject conflicting declarations.
	seen := make(map[[2]int]Kind, len(constraints))
	pairs := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.I < 0 || c.I >= n || c.J < 0 || c.J >= n || c.I == c.J {
			return nil, ErrMalformedInput
		}
		if c.Kind != MustLink && c.Kind != CannotLink {
			return nil, ErrMalformedInput
		}
		if c.I > c.J {
			c.I, c.J = c.J, c.I
		}
		key := [2]int{c.I, c.J}
		if prev, ok := seen[key]; ok {
			if prev != c.Kind {
				return nil, ErrMalformedInput
			}
			continue
		}
		seen[key] = c.Kind
		pairs = append(pairs, c)
	}
	if len(pairs) == 0 {
		return nil, ErrDegenerateInstance
	}
	slices.SortFunc(pairs, func(a, b Constraint) int {
		if a.I != b.I {
			return a.I - b.I
		}
		return a.J - b.J
	})

	links := make([][]link, n)
	for _, c := range pairs {
		links[c.I] = append(links[c.I], link{other: c.J, kind: c.Kind})
		links[c.J] = append(links[c.J], link{other: c.I, kind: c.Kind})
	}

	var (
		j       int
		maxDist float64
		d       float64
	)
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			d = floats.Distance(pts[i], pts[j], 2)
			if d > maxDist {
				maxDist = d
			}
		}
	}

	return &Problem{
		points:  pts,
		dim:     dim,
		k:       k,
		lambda:  maxDist / float64(len(pairs)),
		maxDist: maxDist,
		pairs:   pairs,
		links:   links,
	}, nil
}

// N returns the number of elements.
func (p *Problem) N() int { return len(p.points) }

// K returns the target number of clusters.
func (p *Problem) K() int { return p.k }

// Dim returns the dimension of every point.
func (p *Problem) Dim() int { return p.dim }

// Lambda returns the penalty weight λ = MaxDistance / NumConstraints.
func (p *Problem) Lambda() float64 { return p.lambda }

// MaxDistance returns the largest pairwise distance between points.
func (p *Problem) MaxDistance() float64 { return p.maxDist }

// NumConstraints returns the number of declared (deduplicated) constraints.
func (p *Problem) NumConstraints() int { return len(p.pairs) }

// Point returns element i. The returned slice must not be modified.
func (p *Problem) Point(i int) Point {
	if i < 0 || i >= len(p.points) {
		panic(panicElementRange)
	}

	return p.points[i]
}

// Constraints returns a copy of the declared constraints, I < J, ordered by (I, J).
func (p *Problem) Constraints() []Constraint {
	return slices.Clone(p.pairs)
}

// ConstraintBetween reports the constraint declared between i and j, if any.
//
// Complexity: O(deg(i)).
func (p *Problem) ConstraintBetween(i, j int) (Kind, bool) {
	if i < 0 || i >= len(p.links) {
		return 0, false
	}
	for _, l := range p.links[i] {
		if l.other == j {
			return l.kind, true
		}
	}

	return 0, false
}

// Distance returns the Euclidean distance between elements i and j.
func (p *Problem) Distance(i, j int) float64 {
	return floats.Distance(p.Point(i), p.Point(j), 2)
}

// InfeasibilityDelta returns the number of constraint violations incurred by
// placing element in cluster, given assignment (assignment[e] < 0 marks an
// unassigned element, which never contributes).
//
//   - CannotLink(element, o) counts when o is already in cluster.
//   - MustLink(element, o) counts when o is assigned to another cluster.
//
// Complexity: O(deg(element)).
func (p *Problem) InfeasibilityDelta(element, cluster int, assignment []int) int {
	var (
		inf int
		oc  int
	)
	for _, l := range p.links[element] {
		oc = assignment[l.other]
		if oc < 0 {
			continue
		}
		switch l.kind {
		case CannotLink:
			if oc == cluster {
				inf++
			}
		case MustLink:
			if oc != cluster {
				inf++
			}
		}
	}

	return inf
}

// TotalInfeasibility counts the violated constraints of assignment. Each
// unordered pair is visited exactly once; pairs with an unassigned endpoint
// are not counted.
//
// Complexity: O(m).
func (p *Problem) TotalInfeasibility(assignment []int) int {
	var (
		inf    int
		ci, cj int
	)
	for _, c := range p.pairs {
		ci, cj = assignment[c.I], assignment[c.J]
		if ci < 0 || cj < 0 {
			continue
		}
		if (c.Kind == MustLink && ci != cj) || (c.Kind == CannotLink && ci == cj) {
			inf++
		}
	}

	return inf
}

// CentroidOf returns the componentwise mean of the members of c.
// It panics on an empty cluster.
//
// Complexity: O(|c|·d).
func (p *Problem) CentroidOf(c *Cluster) Point {
	size := c.Len()
	if size == 0 {
		panic(panicEmptyCentroid)
	}
	sum := make(Point, p.dim)
	it := c.members.Iterator()
	for it.HasNext() {
		floats.Add(sum, p.points[it.Next()])
	}
	floats.Scale(1/float64(size), sum)

	return sum
}

// MeanIntraClusterDistance returns the mean distance from the members of c to
// its stored centroid. A singleton yields 0. It panics on an empty cluster.
//
// Complexity: O(|c|·d).
func (p *Problem) MeanIntraClusterDistance(c *Cluster) float64 {
	size := c.Len()
	switch size {
	case 0:
		panic(panicEmptyDeviation)
	case 1:
		return 0
	}
	var total float64
	it := c.members.Iterator()
	for it.HasNext() {
		total += floats.Distance(p.points[it.Next()], c.centroid, 2)
	}

	return total / float64(size)
}

// GeneralDeviation returns the mean of MeanIntraClusterDistance over clusters.
func (p *Problem) GeneralDeviation(clusters []*Cluster) float64 {
	per := make([]float64, len(clusters))
	var i int
	for i = range clusters {
		per[i] = p.MeanIntraClusterDistance(clusters[i])
	}

	return stat.Mean(per, nil)
}

// Fitness returns GeneralDeviation + λ·TotalInfeasibility for part,
// computed from scratch. Lower is better.
func (p *Problem) Fitness(part *Partition) float64 {
	return p.GeneralDeviation(part.clusters) + p.lambda*float64(p.TotalInfeasibility(part.assignment))
}
