// Package util provides lightweight, single-threaded random fixture
// helpers for gicops's own package-level tests, distinct from testutil's
// thread-safe, cross-package fixture generators.
package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// GenerateRandomMasses generates num precursor masses uniformly drawn from
// [minMass, maxMass), unsorted, as if sampled directly off a spectrometer
// before any windowing or indexing is applied.
func (r *RNG) GenerateRandomMasses(num int, minMass, maxMass float64) []float64 {
	masses := make([]float64, num)
	span := maxMass - minMass
	for i := range masses {
		masses[i] = minMass + r.rand.Float64()*span
	}
	return masses
}

// GenerateRandomCPSMs generates num candidate-PSM counts uniformly drawn
// from [0, maxCPSM], used to exercise the min_cpsm / NotEnoughData
// boundary without hand-picking edge values.
func (r *RNG) GenerateRandomCPSMs(num, maxCPSM int) []int {
	out := make([]int, num)
	for i := range out {
		out[i] = r.rand.Intn(maxCPSM + 1)
	}
	return out
}
