package wire

import (
	"bytes"
	"testing"

	"github.com/mhaseeb123/gicops/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTrip_Exact covers §8 invariant 5's N <= 65500 case: encode then
// decode must reproduce the tail exactly.
func TestRoundTrip_Exact(t *testing.T) {
	survival := make([]float64, 200)
	total := 0
	for i := 40; i <= 60; i++ {
		survival[i] = float64((i%7)+1)
		total += int(survival[i])
	}
	require.Less(t, total, saturationThreshold)

	pr, tail := Encode(core.SpectrumID(7), survival, 40, 60, 42.0)
	assert.Equal(t, int32(total), pr.N)

	dest := make([]float64, 200)
	n, err := Decode(pr, tail, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(total), n)

	for i := 40; i <= 60; i++ {
		assert.InDelta(t, survival[i], dest[i], 1e-9, "bin %d", i)
	}
}

// TestRoundTrip_Saturated covers §8 invariant 5's N > 65500 case: per-bin
// reconstruction error must be at most ceil(N/65500).
func TestRoundTrip_Saturated(t *testing.T) {
	survival := make([]float64, 200)
	const perBin = 4000.0
	stt, end := 10, 30
	for i := stt; i <= end; i++ {
		survival[i] = perBin
	}
	total := int64(perBin) * int64(end-stt+1)
	require.Greater(t, total, int64(saturationThreshold))

	pr, tail := Encode(core.SpectrumID(1), survival, stt, end, 10.0)
	assert.Equal(t, int32(total), pr.N)

	dest := make([]float64, 200)
	n, err := Decode(pr, tail, dest)
	require.NoError(t, err)
	assert.Equal(t, total, n)

	maxErr := (total + saturationThreshold - 1) / saturationThreshold
	for i := stt; i <= end; i++ {
		diff := dest[i] - survival[i]
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, float64(maxErr), "bin %d", i)
	}
}

func TestDecode_OutOfBoundsReported(t *testing.T) {
	pr := PR{Min: 0, Max2: 300, N: 1}
	var tail Tail
	_, err := Decode(pr, tail, make([]float64, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

// TestDistributiveAccumulation covers §8 invariant 6: order of decode
// calls does not affect the accumulated result.
func TestDistributiveAccumulation(t *testing.T) {
	survivalA := make([]float64, 150)
	survivalB := make([]float64, 150)
	for i := 20; i <= 40; i++ {
		survivalA[i] = 5
	}
	for i := 30; i <= 50; i++ {
		survivalB[i] = 3
	}

	prA, tailA := Encode(core.SpectrumID(1), survivalA, 20, 40, 1)
	prB, tailB := Encode(core.SpectrumID(1), survivalB, 30, 50, 1)

	destAB := make([]float64, 150)
	Decode(prA, tailA, destAB)
	Decode(prB, tailB, destAB)

	destBA := make([]float64, 150)
	Decode(prB, tailB, destBA)
	Decode(prA, tailA, destBA)

	for i := range destAB {
		assert.InDelta(t, destAB[i], destBA[i], 1e-9, "bin %d", i)
	}
}

func TestWireRoundTripSerialization(t *testing.T) {
	pr := PR{Min: 3, Max2: 20, Max: 12.5, N: 99, QID: 42}
	var tail Tail
	for i := range tail {
		tail[i] = uint16(i)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, pr, tail))

	gotPR, gotTail, err := ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, pr, gotPR)
	assert.Equal(t, tail, gotTail)
}
