package core

import (
	"math/rand"
)

// Sampler provides the random values used to populate demo scenes.
// Can be swapped out for deterministic testing.
type Sampler interface {
	Float64() float64
}

// NewRandom creates a seeded generator; scenes built from the same seed are identical
func NewRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// RandomNumber returns a uniform value in [-max, max)
func RandomNumber(random Sampler, max float64) float64 {
	return (random.Float64()*2 - 1) * max
}

// RandomPositiveNumber returns a uniform value in [0, max)
func RandomPositiveNumber(random Sampler, max float64) float64 {
	return random.Float64() * max
}

// RandomVec3 returns a vector with each component uniform in [-1, 1)
func RandomVec3(random Sampler) Vec3 {
	return NewVec3(RandomNumber(random, 1), RandomNumber(random, 1), RandomNumber(random, 1))
}

// RandomPoint returns a point with components uniform in [-x, x), [-y, y), [-z, z)
func RandomPoint(random Sampler, x, y, z float64) Vec3 {
	return NewVec3(RandomNumber(random, x), RandomNumber(random, y), RandomNumber(random, z))
}
