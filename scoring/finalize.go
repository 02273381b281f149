package scoring

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/mhaseeb123/gicops/core"
)

// FinalizeChunk walks [minID, maxID] after Lookup has finished one
// (spectrum, chunk) pair, converts qualifying scorecard rows into
// hyperscores, offers them to topk, records the score into hist, and then
// clears the scorecard range (§4.3, §8 invariant 1).
//
// qctx carries the spectrum attributes an accepted HCell needs to report
// without a second lookup.
type QueryContext struct {
	FileIdx       core.FileIndex
	PrecursorMass float64
	Charge        int32
	RT            float32
}

// FinalizeChunk returns the number of candidates that produced a positive
// hyperscore (i.e. were offered to topk/hist).
//
// touched, when non-nil, is the bitset Lookup marked for this (spectrum,
// chunk) pair: FinalizeChunk then scans and clears only those ids instead
// of the full [minID, maxID] window, and clears touched itself so the next
// chunk starts from an empty set. touched is nil only in tests exercising
// the dense scan directly; every production caller supplies one from the
// same Scratch Lookup wrote into.
func FinalizeChunk(sc *Scorecard, topk *TopK, hist *Histogram, minID, maxID core.PeptideID, minShp int, qctx QueryContext, touched *bitset.BitSet) int {
	if minID > maxID {
		return 0
	}

	offer := func(id core.PeptideID) bool {
		cell := sc.Get(id)
		shared := int(cell.Bc) + int(cell.Yc)
		if shared < minShp {
			return false
		}

		hyper := Hyperscore(cell.Bc, cell.Yc, cell.Ibc, cell.Iyc)
		if hyper <= 0 {
			return false
		}

		topk.Offer(HCell{
			Score:         float32(hyper),
			PeptideID:     id,
			SharedIons:    int32(shared),
			TotalIons:     int32(cell.Bc) + int32(cell.Yc),
			FileIdx:       qctx.FileIdx,
			PrecursorMass: qctx.PrecursorMass,
			Charge:        qctx.Charge,
			RT:            qctx.RT,
		})
		hist.Add(hyper)
		return true
	}

	if touched == nil {
		accepted := 0
		for id := minID; id <= maxID; id++ {
			if offer(id) {
				accepted++
			}
		}
		sc.Clear(minID, maxID)
		return accepted
	}

	accepted := 0
	for i, ok := touched.NextSet(0); ok; i, ok = touched.NextSet(i + 1) {
		if offer(core.PeptideID(i)) {
			accepted++
		}
	}
	sc.ClearTouched(touched)
	touched.ClearAll()
	return accepted
}
