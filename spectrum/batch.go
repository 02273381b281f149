// Package spectrum holds the query-batch layout (§3 "Query batch Qs"): a
// ragged collection of experimental MS/MS spectra sharing backing peak
// arrays across rows instead of allocating one slice per row.
package spectrum

import "github.com/mhaseeb123/gicops/core"

// QChunkDefault is the default number of spectra gathered into one Batch by
// the search manager (C8) before dispatch to the scoring pool.
const QChunkDefault = 1024

// Batch is a columnar, ragged collection of up to QCHUNK spectra (§3).
// Peak data for every spectrum in the batch lives in the two shared slices
// Moz and Intensity; Idx delimits each spectrum's contiguous peak range.
type Batch struct {
	// FileIdx identifies the input file this batch was extracted from.
	FileIdx core.FileIndex

	// Idx has len(spectra)+1 entries; spectrum q's peaks are
	// [Idx[q], Idx[q+1]) into Moz/Intensity.
	Idx []int32

	// Moz holds scaled integer m/z values for every peak in the batch,
	// already scaled to the index's integer bin resolution.
	Moz []int32

	// Intensity holds scaled integer intensity values, parallel to Moz.
	Intensity []int32

	// PrecursorMass, Charge and RetentionTime are per-spectrum attributes,
	// one entry per spectrum (len == len(Idx)-1).
	PrecursorMass []float64
	Charge        []int32
	RetentionTime []float32

	// QID carries the spectrum id (for output keying and the C7 owner
	// policy) that this batch's spectra were assigned by the reader.
	QID []core.SpectrumID
}

// NumSpectra returns the number of spectra in the batch.
func (b *Batch) NumSpectra() int {
	if len(b.Idx) == 0 {
		return 0
	}
	return len(b.Idx) - 1
}

// Peaks returns the (moz, intensity) slices for spectrum q, q being a
// 0-based row index into the batch (not a SpectrumID).
func (b *Batch) Peaks(q int) (moz, intensity []int32) {
	lo, hi := b.Idx[q], b.Idx[q+1]
	return b.Moz[lo:hi], b.Intensity[lo:hi]
}

// Builder accumulates spectra into a Batch's shared backing arrays,
// avoiding one allocation per spectrum.
type Builder struct {
	batch Batch
}

// NewBuilder returns a Builder for a batch drawn from the given file, with
// backing arrays pre-sized for peakHint total peaks across spectraHint
// spectra.
func NewBuilder(fileIdx core.FileIndex, spectraHint, peakHint int) *Builder {
	b := &Builder{}
	b.batch.FileIdx = fileIdx
	b.batch.Idx = make([]int32, 1, spectraHint+1)
	b.batch.Moz = make([]int32, 0, peakHint)
	b.batch.Intensity = make([]int32, 0, peakHint)
	b.batch.PrecursorMass = make([]float64, 0, spectraHint)
	b.batch.Charge = make([]int32, 0, spectraHint)
	b.batch.RetentionTime = make([]float32, 0, spectraHint)
	b.batch.QID = make([]core.SpectrumID, 0, spectraHint)
	return b
}

// AddSpectrum appends one spectrum's peaks. moz and intensity must be
// parallel slices of equal length, caller-filtered and pre-scaled (§3:
// peaks below dF or above maxMass*scale-1-dF are excluded at query time,
// upstream of this package).
func (bd *Builder) AddSpectrum(qid core.SpectrumID, precursorMass float64, charge int32, rt float32, moz, intensity []int32) {
	bd.batch.Moz = append(bd.batch.Moz, moz...)
	bd.batch.Intensity = append(bd.batch.Intensity, intensity...)
	bd.batch.Idx = append(bd.batch.Idx, int32(len(bd.batch.Moz)))
	bd.batch.PrecursorMass = append(bd.batch.PrecursorMass, precursorMass)
	bd.batch.Charge = append(bd.batch.Charge, charge)
	bd.batch.RetentionTime = append(bd.batch.RetentionTime, rt)
	bd.batch.QID = append(bd.batch.QID, qid)
}

// Len returns the number of spectra accumulated so far.
func (bd *Builder) Len() int {
	return bd.batch.NumSpectra()
}

// Full reports whether the builder has reached QCHUNK spectra.
func (bd *Builder) Full(qChunk int) bool {
	return bd.Len() >= qChunk
}

// Build finalizes and returns the accumulated Batch. The Builder must not
// be reused afterwards.
func (bd *Builder) Build() Batch {
	return bd.batch
}

// FilterPeaks applies the §3 peak-exclusion rule in place, returning
// sub-slices of moz/intensity with out-of-range peaks removed. dF is the
// fragment tolerance in bins and maxBin is maxMass*scale.
func FilterPeaks(moz, intensity []int32, dF, maxBin int32) (fmoz, fintensity []int32) {
	lowCut := dF
	highCut := maxBin - 1 - dF
	fmoz = moz[:0]
	fintensity = intensity[:0]
	for i, m := range moz {
		if m < lowCut || m > highCut {
			continue
		}
		fmoz = append(fmoz, m)
		fintensity = append(fintensity, intensity[i])
	}
	return fmoz, fintensity
}
