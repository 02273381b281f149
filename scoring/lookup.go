package scoring

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/index"
)

// WindowOptions carries the configuration knobs C3/C4 need per query:
// fragment tolerance, candidacy and mass bounds.
type WindowOptions struct {
	DF       int32 // fragment-mass tolerance in bins (symmetric), §4.2
	MinShp   int   // minimum shared-peak count for candidacy, §4.3 min_shp
	MaxMass  int32 // maxMass*scale, the upper bound of the fragment bin range
}

// Lookup traverses chunk's bucket/ion arrays for every peak of one
// spectrum and accumulates matches into sc within [minID, maxID] (C3,
// §4.2). moz and intensity are the spectrum's already-filtered, pre-scaled
// peaks. touched, if non-nil, is marked for every peptide id a match
// actually wrote to, so FinalizeChunk can later bound its scan and clear to
// ids this call touched rather than the full [minID, maxID] window. Returns
// the number of peaks that matched at least one ion, for logging/metrics.
func Lookup(sc *Scorecard, chunk *index.Chunk, minID, maxID core.PeptideID, moz, intensity []int32, opt WindowOptions, touched *bitset.BitSet) (peaksMatched, ionsVisited int) {
	if minID > maxID {
		return 0, 0
	}

	specLen := chunk.SpecLen()
	half := specLen / 2

	for k, bin := range moz {
		if bin < opt.DF || bin > opt.MaxMass-1-opt.DF {
			continue
		}

		lo := bin - opt.DF
		hi := bin + 1 + opt.DF
		if lo < 0 || int(hi) >= len(chunk.BA) {
			continue
		}

		start := chunk.BA[lo]
		end := chunk.BA[hi]
		if start >= end {
			continue
		}

		matched := false
		for j := start; j < end; j++ {
			ionsVisited++
			raw := chunk.IA[j]
			pid := core.PeptideID(raw / specLen)
			if pid < minID || pid > maxID {
				continue
			}
			offset := raw % specLen
			if offset < half {
				sc.AddB(pid, intensity[k])
			} else {
				sc.AddY(pid, intensity[k])
			}
			if touched != nil {
				touched.Set(uint(pid))
			}
			matched = true
		}
		if matched {
			peaksMatched++
		}
	}

	return peaksMatched, ionsVisited
}
