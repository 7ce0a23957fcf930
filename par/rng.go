// Package par - RNG utilities shared by every optimiser.
//
// This file centralizes deterministic random generation.
//
// Goals:
//   - Determinism: same seed ⇒ identical partitions across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Explicit state: generators are always passed in, never global.
//
// Concurrency:
//   - *rand.Rand is NOT goroutine-safe. Give every concurrent run its own
//     generator from NewRand with that run's seed.
package par

import "math/rand/v2"

// NewRand returns a deterministic PCG-backed generator.
// Policy: seed==0 ⇒ use DefaultSeed; otherwise use the provided seed verbatim.
// The second PCG word is derived from the seed so nearby seeds do not share
// an increment.
//
// Complexity: O(1).
func NewRand(seed uint64) *rand.Rand {
	s := seed
	if s == 0 {
		s = DefaultSeed
	}

	return rand.New(rand.NewPCG(s, deriveSeed(s, 0)))
}

// deriveSeed mixes a parent seed and a stream identifier into a new seed
// with a SplitMix64 finalizer (Vigna 2014 constants).
//
// Complexity: O(1).
func deriveSeed(parent uint64, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// shuffleInPlace performs an in-place Fisher–Yates shuffle of a using r.
//
// Complexity: O(n) time, O(1) extra space.
func shuffleInPlace[T any](a []T, r *rand.Rand) {
	var i, j int
	for i = len(a) - 1; i > 0; i-- {
		j = r.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// permRange returns a permutation of 0..n-1 generated deterministically from r.
//
// Complexity: O(n) time, O(n) space.
func permRange(n int, r *rand.Rand) []int {
	p := make([]int, n)
	var i int
	for i = 0; i < n; i++ {
		p[i] = i
	}
	shuffleInPlace(p, r)

	return p
}

// randomPoint returns a point with dim coordinates drawn uniformly from [0,1).
func randomPoint(dim int, r *rand.Rand) Point {
	p := make(Point, dim)
	var i int
	for i = range p {
		p[i] = r.Float64()
	}

	return p
}
