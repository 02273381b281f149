// Package testutil generates synthetic fixtures for tests and benchmarks
// across gicops: mass-sorted peptide tables, spectrum batches, and score
// histograms.
package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/index"
	"github.com/mhaseeb123/gicops/spectrum"
)

// RNG wraps math/rand.Rand with a mutex for a thread-safe RNG so fixtures
// can be built concurrently from a worker pool's test.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Intn returns a non-negative pseudo-random number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// RandomPeptides generates n peptides with masses uniformly drawn from
// [minMass, maxMass), sorted ascending as the §3 peptide table invariant
// requires. SeqID is assigned densely; ModSites is an empty bitmap.
func (r *RNG) RandomPeptides(n int, minMass, maxMass float64) []index.Peptide {
	r.mu.Lock()
	span := maxMass - minMass
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = minMass + r.rand.Float64()*span
	}
	r.mu.Unlock()

	sort.Float64s(masses)

	out := make([]index.Peptide, n)
	for i, m := range masses {
		out[i] = index.Peptide{
			Mass:     float32(m),
			SeqID:    uint32(i),
			ModSites: index.NewModBitmap(),
		}
	}
	return out
}

// RandomChunkForLength builds a chunk indexing peptides [0, numPeptides)
// of the given pepLen, each contributing exactly one b-ion and one y-ion
// at a uniformly random integer m/z bin in [0, maxBin). This is the
// minimal fixture that satisfies the §3 bA/iA invariants: bA monotone
// non-decreasing, every decoded peptideId < numPeptides.
func (r *RNG) RandomChunkForLength(pepLen, maxCharge, numPeptides int, maxBin int32) index.Chunk {
	specLen := uint32((pepLen - 1) * maxCharge * index.IonSeries)
	half := specLen / 2

	type ion struct {
		bin uint32
		raw uint32
	}
	ions := make([]ion, 0, numPeptides*2)

	r.mu.Lock()
	for pid := 0; pid < numPeptides; pid++ {
		bBin := uint32(r.rand.Int31n(maxBin))
		yBin := uint32(r.rand.Int31n(maxBin))
		bOffset := uint32(r.rand.Int31n(int32(half)))
		yOffset := half + uint32(r.rand.Int31n(int32(half)))
		ions = append(ions,
			ion{bin: bBin, raw: uint32(pid)*specLen + bOffset},
			ion{bin: yBin, raw: uint32(pid)*specLen + yOffset},
		)
	}
	r.mu.Unlock()

	sort.Slice(ions, func(i, j int) bool { return ions[i].bin < ions[j].bin })

	ba := make([]uint32, maxBin+1)
	ia := make([]uint32, len(ions))
	binCursor := uint32(0)
	for i, ion := range ions {
		for binCursor <= ion.bin {
			ba[binCursor] = uint32(i)
			binCursor++
		}
		ia[i] = ion.raw
	}
	for binCursor <= uint32(maxBin) {
		ba[binCursor] = uint32(len(ions))
		binCursor++
	}

	return index.Chunk{
		PepLen:      pepLen,
		MaxCharge:   maxCharge,
		NumPeptides: uint32(numPeptides),
		BA:          ba,
		IA:          ia,
	}
}

// BruteForcePrecursorWindow is the unoptimized O(n) reference
// implementation of C2, used by tests to check index.PrecursorWindow's
// binary-search result against ground truth.
func BruteForcePrecursorWindow(peptides []index.Peptide, pmass, dM float64) (minID, maxID core.PeptideID) {
	n := len(peptides)
	if n == 0 {
		return 0, 0
	}

	lo, hi := pmass-dM, pmass+dM

	found := false
	for i, p := range peptides {
		m := float64(p.Mass)
		if dM >= 0 && (m < lo || m > hi) {
			continue
		}
		if !found {
			minID = core.PeptideID(i)
			found = true
		}
		maxID = core.PeptideID(i)
	}
	if !found {
		return core.PeptideID(n), core.PeptideID(n - 1)
	}
	return minID, maxID
}

// RandomSpectrumBatch builds a batch of numSpectra synthetic spectra, each
// with peaksPerSpectrum random peaks drawn from bin range [0, maxBin).
// Precursor masses are drawn from [minMass, maxMass) and charges from
// [1, maxCharge].
func (r *RNG) RandomSpectrumBatch(fileIdx core.FileIndex, numSpectra, peaksPerSpectrum int, maxBin int32, minMass, maxMass float64, maxCharge int32) spectrum.Batch {
	b := spectrum.NewBuilder(fileIdx, numSpectra, numSpectra*peaksPerSpectrum)

	r.mu.Lock()
	defer r.mu.Unlock()

	for q := 0; q < numSpectra; q++ {
		moz := make([]int32, peaksPerSpectrum)
		intensity := make([]int32, peaksPerSpectrum)
		for i := range moz {
			moz[i] = r.rand.Int31n(maxBin)
			intensity[i] = 1 + r.rand.Int31n(1000)
		}
		sort.Slice(moz, func(i, j int) bool { return moz[i] < moz[j] })

		pmass := minMass + r.rand.Float64()*(maxMass-minMass)
		charge := 1 + r.rand.Int31n(maxCharge)
		rt := r.rand.Float32() * 120.0

		b.AddSpectrum(core.SpectrumID(q), pmass, charge, rt, moz, intensity)
	}

	return b.Build()
}

// RandomSurvival generates a synthetic per-spectrum score histogram: cpsms
// candidate scores drawn from a normal distribution (standard deviation 6
// bins) centred two bins below centerBin, clamped into [0, maxBin), for
// inputs larger than a hand-written fixture.
func (r *RNG) RandomSurvival(maxBin, cpsms int, centerBin float64) []float64 {
	survival := make([]float64, maxBin)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < cpsms; i++ {
		z := r.rand.NormFloat64()*6 - 2 // normal spread, shifted two bins left
		bin := int(centerBin + z)
		if bin < 0 {
			bin = 0
		}
		if bin >= maxBin {
			bin = maxBin - 1
		}
		survival[bin]++
	}
	return survival
}
