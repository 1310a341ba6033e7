// Package randutil derives reproducible random streams from a run seed.
//
// A *rand.Rand is not safe for concurrent use, so every unit of parallel work
// (one output curve, one dense point) gets its own stream derived from the
// run seed and the unit's ordinal. Results are then independent of worker
// count and scheduling order.
package randutil

import "math/rand/v2"

// DefaultSeed is the run seed used when none is configured.
const DefaultSeed uint64 = 1337

// New returns the root stream for seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, DeriveSeed(seed, 0)))
}

// Stream returns the stream for unit number stream under seed. Streams for
// different unit numbers are decorrelated by a SplitMix64 finalizer.
func Stream(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(DeriveSeed(seed, stream+1), DeriveSeed(^seed, stream+1)))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new seed.
func DeriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Between returns a uniform value in [lo, hi).
func Between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// Symmetric returns a uniform value in [-1, 1).
func Symmetric(rng *rand.Rand) float64 {
	return 2*rng.Float64() - 1
}
