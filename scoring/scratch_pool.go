package scoring

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// DefaultTopMatches is the fallback top-K capacity used by the pool when
// no explicit capacity is supplied (mirrors DefaultQueueCapacity in the
// teacher's search-context pool).
const DefaultTopMatches = 10

// Scratch bundles one worker's owned Scorecard, TopK heap, Histogram and a
// bitset of peptide ids actually touched during the current (spectrum,
// chunk) pair (§5 "each worker owns disjoint Scorecard, Top-K heap, and
// histogram buffers").
//
// Touched lets FinalizeChunk (or a caller wanting a tighter bound than
// [minID,maxID]) restrict the scorecard clear to ids that were actually
// written.
type Scratch struct {
	Scorecard *Scorecard
	TopK      *TopK
	Histogram *Histogram
	Touched   *bitset.BitSet
}

// Pool is a sync.Pool of Scratch buffers, each sized for the numPeptides
// and topMatches given to NewPool; there is no shared default pool.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool that hands out Scratch buffers sized for
// numPeptides candidate ids and topMatches top-K capacity.
func NewPool(numPeptides, topMatches int) *Pool {
	if topMatches <= 0 {
		topMatches = DefaultTopMatches
	}
	p := &Pool{}
	p.pool.New = func() any {
		return &Scratch{
			Scorecard: NewScorecard(numPeptides),
			TopK:      NewTopK(topMatches),
			Histogram: &Histogram{},
			Touched:   bitset.New(uint(numPeptides)),
		}
	}
	return p
}

// Get retrieves a Scratch from the pool, reset for a fresh spectrum.
func (p *Pool) Get() *Scratch {
	s := p.pool.Get().(*Scratch)
	s.TopK.Reset()
	s.Histogram.Reset()
	s.Touched.ClearAll()
	return s
}

// Put returns a Scratch to the pool for reuse by another worker.
func (p *Pool) Put(s *Scratch) {
	p.pool.Put(s)
}
