// Package testutil provides synthetic fixtures for gicops tests and
// benchmarks: mass-sorted peptide tables, single-length index chunks,
// spectrum batches, and score histograms.
//
// # Fixture generation
//
//	r := testutil.NewRNG(seed)
//	peptides := r.RandomPeptides(10000, 500, 5000)
//	chunk := r.RandomChunkForLength(8, 3, len(peptides), 20000)
//	batch := r.RandomSpectrumBatch(fileIdx, 1024, 40, 20000, 500, 5000, 3)
//
// # Ground truth
//
//	minID, maxID := testutil.BruteForcePrecursorWindow(peptides, pmass, dM)
package testutil
