package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return NewStreamRNG(uint64(seed), 0)
}

// NewStreamRNG creates a deterministic RNG for one of several independent
// streams derived from the same seed.
func NewStreamRNG(seed, stream uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(seed, stream))}
}

// Create returns a uniform value in [0, n). It returns 0 when n <= 0.
func (r *RNG) Create(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// OneIn reports true with probability 1/n. n <= 1 is always true.
func (r *RNG) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return r.r.IntN(n) == 0
}

// Between returns a uniform value in [lo, hi].
func (r *RNG) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo+1)
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Uint64 returns 64 random bits.
func (r *RNG) Uint64() uint64 { return r.r.Uint64() }

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
