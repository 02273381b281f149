package scoring

import "math"

// MaxHyperscore bounds the histogram domain (§3: H = 2 + MAX_HYPERSCORE*10).
const MaxHyperscore = 100

// HistogramBins is H from §3.
const HistogramBins = 2 + MaxHyperscore*10

// Histogram is the per-spectrum, per-thread score histogram of §3: a dense
// survival[] array indexed by round(score*10), plus the cpsms accumulator.
type Histogram struct {
	Survival [HistogramBins]float64
	CPSMs    int
}

// Reset zeros the histogram for reuse on the next spectrum.
func (h *Histogram) Reset() {
	for i := range h.Survival {
		h.Survival[i] = 0
	}
	h.CPSMs = 0
}

// Bin returns the histogram bin index for a hyperscore, clamped to the
// valid range.
func Bin(score float64) int {
	b := int(math.Round(score * 10))
	if b < 0 {
		return 0
	}
	if b >= HistogramBins {
		return HistogramBins - 1
	}
	return b
}

// Add records one PSM's hyperscore into the histogram (§4.3: after the
// top-K insertion check).
func (h *Histogram) Add(score float64) {
	h.Survival[Bin(score)]++
	h.CPSMs++
}

// Sum returns the sum of all bins, which §8 invariant 4 requires to equal
// CPSMs.
func (h *Histogram) Sum() float64 {
	var s float64
	for _, v := range h.Survival {
		s += v
	}
	return s
}

// Bounds returns the leftmost and rightmost nonzero bins, the §4.5
// "stt/end" window C6 encodes — the same scan survival.Fit performs
// internally, exported here so the manager can compute it once, before
// the histogram is handed off for encoding and exchange.
func (h *Histogram) Bounds() (stt, end int, ok bool) {
	stt, end = -1, -1
	for i, v := range h.Survival {
		if v != 0 {
			if stt < 0 {
				stt = i
			}
			end = i
		}
	}
	if stt < 0 {
		return 0, 0, false
	}
	return stt, end, true
}
