package testutil

import (
	"testing"

	"github.com/mhaseeb123/gicops/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_SeedIsDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	assert.Equal(t, a.Float64(), b.Float64())
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
}

func TestRandomPeptides_MassSortedAscending(t *testing.T) {
	r := NewRNG(1)
	peptides := r.RandomPeptides(200, 500, 5000)
	require.Len(t, peptides, 200)
	for i := 1; i < len(peptides); i++ {
		assert.LessOrEqual(t, peptides[i-1].Mass, peptides[i].Mass)
	}
}

func TestRandomChunkForLength_SatisfiesIndexInvariants(t *testing.T) {
	r := NewRNG(2)
	peptides := r.RandomPeptides(50, 500, 5000)
	chunk := r.RandomChunkForLength(8, 2, 50, 2000)

	idx := &index.Idx{Peptides: peptides, Chunks: []index.Chunk{chunk}, Scale: 100, MaxMass: 5000}
	assert.NoError(t, idx.Validate())
}

func TestBruteForcePrecursorWindow_MatchesOptimizedSearch(t *testing.T) {
	r := NewRNG(3)
	peptides := r.RandomPeptides(3000, 500, 5000)
	idx := &index.Idx{Peptides: peptides, Scale: 100, MaxMass: 5000}

	for trial := 0; trial < 20; trial++ {
		pmass := 500 + r.Float64()*4500
		dM := 0.5 + r.Float64()*5

		wantMin, wantMax := BruteForcePrecursorWindow(peptides, pmass, dM)
		gotMin, gotMax := index.PrecursorWindow(idx, pmass, dM)

		if wantMin > wantMax {
			assert.Greater(t, gotMin, gotMax, "trial %d: expected no-match window", trial)
			continue
		}
		assert.Equal(t, wantMin, gotMin, "trial %d minID", trial)
		assert.Equal(t, wantMax, gotMax, "trial %d maxID", trial)
	}
}

func TestRandomSpectrumBatch_ShapeMatchesRequest(t *testing.T) {
	r := NewRNG(4)
	batch := r.RandomSpectrumBatch(0, 10, 5, 2000, 500, 5000, 3)
	assert.Equal(t, 10, batch.NumSpectra())
	for q := 0; q < batch.NumSpectra(); q++ {
		moz, intensity := batch.Peaks(q)
		assert.Len(t, moz, 5)
		assert.Len(t, intensity, 5)
		assert.GreaterOrEqual(t, batch.Charge[q], int32(1))
		assert.LessOrEqual(t, batch.Charge[q], int32(3))
	}
}

func TestRandomSurvival_SumsToRequestedCPSMs(t *testing.T) {
	r := NewRNG(5)
	survival := r.RandomSurvival(1002, 500, 400)
	var sum float64
	for _, v := range survival {
		sum += v
	}
	assert.InDelta(t, 500, sum, 1e-9)
}
