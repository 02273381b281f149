// Package index holds the fragment-ion index data model (§3 "Peptide Index
// Idx") and the precursor-window binary search (C2). The index is built
// once by an out-of-scope upstream stage (peptide enumeration, variable
// modification enumeration) and is read-only and shared for the lifetime of
// a search run.
package index

import (
	"fmt"

	"github.com/mhaseeb123/gicops/core"
)

// IonSeries counts the fragment ion series the index was built with (b and
// y ions).
const IonSeries = 2

// Peptide is one row of the mass-sorted peptide table `peptides[0..T-1]`.
type Peptide struct {
	// Mass is the neutral monoisotopic mass, f32 as in the reference wire
	// format.
	Mass float32

	// SeqID identifies the peptide sequence in the (out-of-scope) sequence
	// store.
	SeqID uint32

	// ModSites records candidate post-translational-modification sites as
	// a bitmask over residue offsets (mods.cpp's output contract,
	// generalized to an unbounded site count).
	ModSites *ModBitmap
}

// Chunk is a per-peptide-length shard of the fragment index: two parallel
// arrays `bA` (bucket array) and `iA` (ion array).
//
// bA[m] and bA[m+1] delimit the slice of iA holding all peptide ions whose
// integer m/z bin is m. Each entry iA[j] encodes an ion as
// rawID = peptideID*specLen + offset, where offset < specLen/2 denotes a
// b-ion and offset >= specLen/2 denotes a y-ion.
type Chunk struct {
	// PepLen is the peptide length this chunk indexes.
	PepLen int

	// MaxCharge is the maximum fragment charge state considered when the
	// chunk was built.
	MaxCharge int

	// NumPeptides is the number of distinct peptide ids addressable by
	// this chunk's iA entries; every decoded peptideID must be strictly
	// less than this (§3 invariant).
	NumPeptides uint32

	// BA is the bucket array. Monotone non-decreasing (§3 invariant).
	BA []uint32

	// IA is the ion array.
	IA []uint32
}

// SpecLen returns (pepLen-1) * maxCharge * IonSeries, the encoding modulus
// used to decode rawID into (peptideID, offset).
func (c *Chunk) SpecLen() uint32 {
	return uint32((c.PepLen - 1) * c.MaxCharge * IonSeries)
}

// DecodeRaw splits a raw iA entry into its peptide id and b/y classification.
// isB is true when the fragment is a b-ion.
func (c *Chunk) DecodeRaw(raw uint32) (peptideID core.PeptideID, isB bool) {
	specLen := c.SpecLen()
	offset := raw % specLen
	return core.PeptideID(raw / specLen), offset < specLen/2
}

// Idx is the complete, read-only fragment-ion index for one search run.
type Idx struct {
	// Peptides is the contiguous, mass-sorted peptide table.
	Peptides []Peptide

	// Chunks holds one shard per distinct peptide length present in the
	// index.
	Chunks []Chunk

	// Scale is the integer scaling factor the index's bucket bins were
	// built with; query m/z values must already be scaled to match.
	Scale int

	// MaxMass is the global maximum precursor mass bound used to build the
	// index's bucket arrays; it bounds the fragment bin range.
	MaxMass float64
}

// Validate checks the §3 data-model invariants: bA monotone non-decreasing,
// every decoded peptideID within bounds, and peptide masses non-decreasing.
// Intended for tests and index-build verification, not the scoring hot
// path.
func (idx *Idx) Validate() error {
	for i := 1; i < len(idx.Peptides); i++ {
		if idx.Peptides[i].Mass < idx.Peptides[i-1].Mass {
			return fmt.Errorf("index: peptides not mass-sorted at %d: %f < %f", i, idx.Peptides[i].Mass, idx.Peptides[i-1].Mass)
		}
	}

	for ci := range idx.Chunks {
		c := &idx.Chunks[ci]
		for i := 1; i < len(c.BA); i++ {
			if c.BA[i] < c.BA[i-1] {
				return fmt.Errorf("index: chunk %d bA not monotone at %d", ci, i)
			}
		}
		for j, raw := range c.IA {
			pid, _ := c.DecodeRaw(raw)
			if uint32(pid) >= c.NumPeptides {
				return fmt.Errorf("index: chunk %d iA[%d] decodes peptide id %d >= numPeptides %d", ci, j, pid, c.NumPeptides)
			}
		}
	}
	return nil
}

// ChunkForLength returns the chunk indexing peptides of the given length,
// and whether one exists.
func (idx *Idx) ChunkForLength(pepLen int) (*Chunk, bool) {
	for i := range idx.Chunks {
		if idx.Chunks[i].PepLen == pepLen {
			return &idx.Chunks[i], true
		}
	}
	return nil, false
}
