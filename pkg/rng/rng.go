// Package rng provides the single deterministic random source shared by every
// generation stage. Replaying a run means replaying the exact ordered sequence
// of draws, so callers create one RNG and thread it through.
package rng

import (
	"math"
	"math/rand/v2"

	gmath "github.com/Faultbox/skyisles/pkg/math"
)

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r    *rand.Rand
	seed int64
}

// New creates a deterministic RNG using the provided seed.
func New(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0)), seed: seed}
}

// Seed returns the seed the generator was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Float returns a value in [0, 1).
func (r *RNG) Float() float32 {
	return r.r.Float32()
}

// Range returns a value in [min, max). Equal bounds return min.
func (r *RNG) Range(min, max float32) float32 {
	if min == max {
		return min
	}
	return min + (max-min)*r.r.Float32()
}

// IntRange returns an integer in [min, max). Returns min when the range is empty.
func (r *RNG) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.r.IntN(max-min)
}

// IntN returns an integer in [0, n). Returns 0 for n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float32) bool {
	return r.Float() < p
}

// InsideUnitCircle returns a uniformly distributed point in the unit disk.
func (r *RNG) InsideUnitCircle() gmath.Vec2 {
	angle := r.r.Float64() * 2 * math.Pi
	radius := math.Sqrt(r.r.Float64())
	return gmath.Vec2{
		X: float32(math.Cos(angle) * radius),
		Y: float32(math.Sin(angle) * radius),
	}
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
