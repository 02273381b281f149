package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomMasses_WithinRange(t *testing.T) {
	rng := NewRNG(4711)

	masses := rng.GenerateRandomMasses(100, 500, 5000)

	assert.Len(t, masses, 100)
	for _, m := range masses {
		assert.GreaterOrEqual(t, m, 500.0)
		assert.Less(t, m, 5000.0)
	}
}

func TestGenerateRandomCPSMs_WithinBound(t *testing.T) {
	rng := NewRNG(4711)

	cpsms := rng.GenerateRandomCPSMs(100, 10)

	assert.Len(t, cpsms, 100)
	for _, c := range cpsms {
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 10)
	}
}
