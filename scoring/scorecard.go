// Package scoring implements the fragment-index lookup and hyperscore
// pipeline (C1, C3, C4): per-thread scratch scorecards, sparse bucket/ion
// traversal, the discriminating score, and the bounded top-K heap.
package scoring

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/mhaseeb123/gicops/core"
)

// Cell is one scratch row of the Scorecard (§3): matched b-/y-ion counts
// and their summed intensities for one candidate peptide.
//
// Bc/Yc saturate at int16 max instead of wrapping on overflow (§4.2
// ambiguity, resolved as saturating semantics); Ibc/Iyc are widened to
// uint32 since intensities accumulate across many peaks.
type Cell struct {
	Bc  int16
	Yc  int16
	Ibc uint32
	Iyc uint32
}

const int16Max = int16(1<<15 - 1)

// addB increments the b-ion count and intensity for this cell, saturating
// the count at int16 max.
func (c *Cell) addB(intensity int32) {
	if c.Bc < int16Max {
		c.Bc++
	}
	c.Ibc += uint32(intensity)
}

// addY increments the y-ion count and intensity for this cell, saturating
// the count at int16 max.
func (c *Cell) addY(intensity int32) {
	if c.Yc < int16Max {
		c.Yc++
	}
	c.Iyc += uint32(intensity)
}

// clear zeros the cell in place.
func (c *Cell) clear() { *c = Cell{} }

// Scorecard is the per-thread dense scratch buffer of §3: one Cell per
// peptide id in the index, zero-initialized, cleared after every
// (spectrum, chunk) pair it was touched by.
//
// A Scorecard is owned exclusively by one scoring worker for the lifetime
// of a search (§5 "Parallelism grain"); it requires no synchronization.
type Scorecard struct {
	byc []Cell
}

// NewScorecard allocates a Scorecard sized for numPeptides candidate ids.
func NewScorecard(numPeptides int) *Scorecard {
	return &Scorecard{byc: make([]Cell, numPeptides)}
}

// Len returns the number of peptide ids this Scorecard can address.
func (s *Scorecard) Len() int { return len(s.byc) }

// Cell returns a pointer to the scratch row for id, for in-place mutation
// by AddB/AddY.
func (s *Scorecard) Cell(id core.PeptideID) *Cell { return &s.byc[id] }

// Get returns a copy of the scratch row for id.
func (s *Scorecard) Get(id core.PeptideID) Cell { return s.byc[id] }

// AddB records a matched b-ion for peptide id with the given (pre-scaled)
// peak intensity.
func (s *Scorecard) AddB(id core.PeptideID, intensity int32) { s.byc[id].addB(intensity) }

// AddY records a matched y-ion for peptide id with the given (pre-scaled)
// peak intensity.
func (s *Scorecard) AddY(id core.PeptideID, intensity int32) { s.byc[id].addY(intensity) }

// Clear zeros every cell in [minID, maxID] (§8 invariant 1: scorecard
// clean-slate). Cost is linear in the window width, as specified by §4.3
// ("constant-per-cell time").
func (s *Scorecard) Clear(minID, maxID core.PeptideID) {
	if minID > maxID {
		return
	}
	lo, hi := int(minID), int(maxID)+1
	if hi > len(s.byc) {
		hi = len(s.byc)
	}
	for i := lo; i < hi; i++ {
		s.byc[i].clear()
	}
}

// ClearTouched zeros only the cells marked in touched, a tighter bound
// than Clear's full [minID, maxID] scan when a sparse fragment-index
// lookup only wrote to a handful of ids inside a wide precursor window.
func (s *Scorecard) ClearTouched(touched *bitset.BitSet) {
	for id, ok := touched.NextSet(0); ok; id, ok = touched.NextSet(id + 1) {
		if int(id) >= len(s.byc) {
			break
		}
		s.byc[id].clear()
	}
}

// IsClean reports whether every cell in [minID, maxID] is zero; used by
// tests asserting §8 invariant 1.
func (s *Scorecard) IsClean(minID, maxID core.PeptideID) bool {
	if minID > maxID {
		return true
	}
	for i := int(minID); i <= int(maxID) && i < len(s.byc); i++ {
		if s.byc[i] != (Cell{}) {
			return false
		}
	}
	return true
}
