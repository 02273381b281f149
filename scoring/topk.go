package scoring

import (
	"container/heap"

	"github.com/mhaseeb123/gicops/core"
)

// HCell is one row of the top-K heap: a scored candidate PSM plus the
// spectrum context needed to emit an output record without a second
// lookup.
type HCell struct {
	Score         float32
	PeptideID     core.PeptideID
	SharedIons    int32
	TotalIons     int32
	FileIdx       core.FileIndex
	PrecursorMass float64
	Charge        int32
	RT            float32

	// seq is the monotonically increasing insertion order, used to break
	// ties deterministically instead of relying on heap traversal order,
	// which is insertion-order-dependent but not stable under
	// container/heap's siftdown.
	seq uint64
}

// topkHeap is the container/heap.Interface backing TopK: a min-heap on
// score (ties broken toward evicting the most recent insertion first), so
// the root is always the current cutoff a new candidate must beat.
type topkHeap []HCell

func (h topkHeap) Len() int { return len(h) }

func (h topkHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	// Among equal scores, treat later insertions as "smaller" so they
	// sift toward the root and get evicted first, preserving the
	// earliest insertion on a tie at the final Sorted() step rather than
	// at eviction time.
	return h[i].seq > h[j].seq
}

func (h topkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *topkHeap) Push(x any) { *h = append(*h, x.(HCell)) }

func (h *topkHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK is a bounded min-heap of HCell, capacity `topmatches`. Insertion is
// unconditional until the heap is full; afterwards a new cell replaces the
// current minimum iff its score is strictly greater.
//
// A TopK is owned exclusively by one scoring worker for one spectrum at a
// time; it requires no synchronization.
type TopK struct {
	capacity int
	h        topkHeap
	nextSeq  uint64
}

// NewTopK allocates a TopK with the given capacity.
func NewTopK(capacity int) *TopK {
	return &TopK{
		capacity: capacity,
		h:        make(topkHeap, 0, capacity),
	}
}

// Len returns the number of cells currently held.
func (t *TopK) Len() int { return t.h.Len() }

// Reset empties the heap for reuse on the next spectrum, preserving the
// backing array.
func (t *TopK) Reset() {
	t.h = t.h[:0]
	t.nextSeq = 0
}

// Offer inserts cell into the heap, following the capacity/replacement
// rule above. Returns true if the cell was kept (inserted or replaced the
// minimum).
func (t *TopK) Offer(cell HCell) bool {
	cell.seq = t.nextSeq
	t.nextSeq++

	if t.h.Len() < t.capacity {
		heap.Push(&t.h, cell)
		return true
	}

	if t.h.Len() == 0 {
		return false
	}

	if cell.Score <= t.h[0].Score {
		return false
	}

	t.h[0] = cell
	heap.Fix(&t.h, 0)
	return true
}

// Sorted returns the heap's contents ordered by descending score, ties
// broken by ascending insertion order. The TopK is left unmodified.
func (t *TopK) Sorted() []HCell {
	out := make([]HCell, len(t.h))
	copy(out, t.h)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// less reports whether a should sort before b in Sorted's descending-score
// order: higher score first, and for equal scores, earlier insertion
// (smaller seq) first.
func less(a, b HCell) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.seq < b.seq
}
