package manager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mhaseeb123/gicops/codec"
	"github.com/mhaseeb123/gicops/core"
	"github.com/pierrec/lz4/v4"
)

// Result is one accepted PSM (§6 output contract): a spectrum matched to a
// peptide candidate with an E-value at or below the configured cutoff.
type Result struct {
	FileIdx       core.FileIndex
	QID           core.SpectrumID
	PrecursorMass float64
	Charge        int32
	RT            float32
	PeptideID     core.PeptideID
	Hyperscore    float64
	SharedIons    int32
	TotalIons     int32
	CPSMs         int
	EValue        float64
}

// outputKey deterministically orders Results the way §9's
// "output.<myid>.<tid> convention" requires a final merge to: by file, then
// spectrum id, so two independent runs over the same inputs always produce
// the same ordering regardless of which worker scored which spectrum.
type outputKey struct {
	FileIdx core.FileIndex
	QID     core.SpectrumID
}

// spillSegment is one batch of Results compacted out of the live map by
// spillLocked. raw is set when lz4 couldn't shrink the encoded batch (small
// or already-dense payloads); uncompressedLen is always the length codec
// produced, needed to size the decompress destination.
type spillSegment struct {
	uncompressedLen int
	data            []byte
	raw             bool
}

// Output is this node's deterministic result sink. One Output per node
// collects every worker's accepted PSMs, keyed by (fileIdx, qID) so a
// concurrent writer from any worker goroutine never collides with another:
// Add is an upsert, Results is the final merge step.
//
// A long-running batch against a slow deterministic writer (§9's
// output.<myid>.<tid> files) can otherwise accumulate every accepted PSM
// in memory for the lifetime of the run. SpillAt bounds that: once the
// live set reaches SpillAt entries, Add compacts it into an lz4-compressed
// spillSegment and starts a fresh live map. Results and Len transparently
// merge every spilled segment back with the live set.
type Output struct {
	mu      sync.Mutex
	results map[outputKey]Result

	// SpillAt is the live-entry count at which Add compacts the result
	// set into a compressed spill segment. Zero disables spilling.
	SpillAt int
	spills  []spillSegment
}

// NewOutput returns an empty Output.
func NewOutput() *Output {
	return &Output{results: make(map[outputKey]Result)}
}

// Add records r, replacing any previous result for the same (fileIdx, qID)
// with a strictly higher-scoring one. Multiple chunks can each produce a
// candidate for the same spectrum; only the best survives. The final word
// on which result wins is always Results/Len's merge, so a worse-scoring
// Add landing in a fresh live map right after a spill is still corrected
// at read time against the spilled segment it displaced.
func (o *Output) Add(r Result) {
	key := outputKey{FileIdx: r.FileIdx, QID: r.QID}

	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.results[key]; ok && existing.Hyperscore >= r.Hyperscore {
		return
	}
	o.results[key] = r

	if o.SpillAt > 0 && len(o.results) >= o.SpillAt {
		o.spillLocked()
	}
}

// spillLocked compresses the current live result set into a new
// spillSegment and clears the live map. Best-effort: if encoding or
// compression fails, the live set is left untouched rather than losing
// results, and spilling is simply retried on the next Add that crosses
// SpillAt.
func (o *Output) spillLocked() {
	if len(o.results) == 0 {
		return
	}

	batch := make([]Result, 0, len(o.results))
	for _, r := range o.results {
		batch = append(batch, r)
	}

	raw, err := codec.Default.Marshal(batch)
	if err != nil {
		return
	}

	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		return
	}

	seg := spillSegment{uncompressedLen: len(raw)}
	if n == 0 || n >= len(raw) {
		seg.data = raw
		seg.raw = true
	} else {
		seg.data = dst[:n]
	}

	o.spills = append(o.spills, seg)
	o.results = make(map[outputKey]Result)
}

// mergedLocked decodes every spilled segment and folds it, along with the
// live set, into one deduplicated map keeping the higher-Hyperscore entry
// per key. Callers must hold o.mu.
func (o *Output) mergedLocked() (map[outputKey]Result, error) {
	merged := make(map[outputKey]Result, len(o.results))
	for k, r := range o.results {
		merged[k] = r
	}

	for _, seg := range o.spills {
		raw := seg.data
		if !seg.raw {
			dst := make([]byte, seg.uncompressedLen)
			n, err := lz4.UncompressBlock(seg.data, dst)
			if err != nil {
				return nil, fmt.Errorf("manager: decompress output spill: %w", err)
			}
			raw = dst[:n]
		}

		var batch []Result
		if err := codec.Default.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("manager: unmarshal output spill: %w", err)
		}
		for _, r := range batch {
			key := outputKey{FileIdx: r.FileIdx, QID: r.QID}
			if existing, ok := merged[key]; !ok || r.Hyperscore > existing.Hyperscore {
				merged[key] = r
			}
		}
	}

	return merged, nil
}

// Results returns every accepted PSM sorted by (fileIdx, qID), the stable
// order §9 requires before writing the per-node output.<myid> file.
func (o *Output) Results() ([]Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	merged, err := o.mergedLocked()
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileIdx != out[j].FileIdx {
			return out[i].FileIdx < out[j].FileIdx
		}
		return out[i].QID < out[j].QID
	})
	return out, nil
}

// Len returns the number of distinct spectra with an accepted result,
// across both the live set and any spilled segments.
func (o *Output) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.spills) == 0 {
		return len(o.results)
	}
	merged, err := o.mergedLocked()
	if err != nil {
		return len(o.results)
	}
	return len(merged)
}

// FileName returns the §9 deterministic output file name for this node and
// thread/shard tag.
func FileName(myID, tid int) string {
	return fmt.Sprintf("output.%d.%d", myID, tid)
}
