package index

import "github.com/mhaseeb123/gicops/core"

// linearScanThreshold is the peptide-table size at or below which
// PrecursorWindow uses a linear scan instead of binary search (§4.1).
const linearScanThreshold = 500

// PrecursorWindow returns the inclusive range of peptide ids whose mass
// lies in [pmass-dM, pmass+dM] (C2, §4.1).
//
// If dM < 0, the window is unbounded and [0, len(peptides)-1] is returned.
// If no peptide mass lies in the window, the degenerate range
// (len(peptides), len(peptides)-1) is returned; callers (C3) must treat
// minID > maxID as "no candidates". An empty peptide table returns (0, 0).
func PrecursorWindow(idx *Idx, pmass float64, dM float64) (minID, maxID core.PeptideID) {
	n := len(idx.Peptides)
	if n == 0 {
		return 0, 0
	}
	last := core.PeptideID(n - 1)

	if dM < 0 {
		return 0, last
	}

	lo := pmass - dM
	hi := pmass + dM

	if lo > float64(idx.Peptides[n-1].Mass) {
		return noMatch(n)
	}

	if n <= linearScanThreshold {
		return linearWindow(idx.Peptides, lo, hi)
	}

	lowIdx := lowerBound(idx.Peptides, lo)
	highIdx := upperBound(idx.Peptides, hi)

	if highIdx < 0 || lowIdx >= n || lowIdx > highIdx {
		return noMatch(n)
	}

	minID = core.PeptideID(lowIdx)
	maxID = core.PeptideID(highIdx)

	// Widen to include all peptides of equal mass at each boundary (§4.1
	// tie handling): walk backward from minID to the first peptide of
	// equal mass, and forward from maxID to the last.
	for minID > 0 && idx.Peptides[minID-1].Mass == idx.Peptides[minID].Mass {
		minID--
	}
	for maxID < last && idx.Peptides[maxID+1].Mass == idx.Peptides[maxID].Mass {
		maxID++
	}

	return minID, maxID
}

// lowerBound returns the index of the first peptide with mass >= target, or
// len(peptides) if none.
func lowerBound(peptides []Peptide, target float64) int {
	lo, hi := 0, len(peptides)
	for lo < hi {
		mid := (lo + hi) / 2
		if float64(peptides[mid].Mass) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the index of the last peptide with mass <= target, or
// -1 if none.
func upperBound(peptides []Peptide, target float64) int {
	lo, hi := 0, len(peptides)
	for lo < hi {
		mid := (lo + hi) / 2
		if float64(peptides[mid].Mass) <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

func linearWindow(peptides []Peptide, lo, hi float64) (minID, maxID core.PeptideID) {
	n := len(peptides)
	found := false
	for i := 0; i < n; i++ {
		m := float64(peptides[i].Mass)
		if m >= lo && m <= hi {
			if !found {
				minID = core.PeptideID(i)
				found = true
			}
			maxID = core.PeptideID(i)
		}
	}
	if !found {
		return noMatch(n)
	}
	return minID, maxID
}

// noMatch returns the degenerate range callers must treat as "no
// candidates": minID strictly greater than maxID, regardless of n.
func noMatch(n int) (minID, maxID core.PeptideID) {
	return core.PeptideID(n), core.PeptideID(n - 1)
}
