// Package core defines the dense identifier types shared by every gicops
// component. Keeping them in one leaf package avoids import cycles between
// index, scoring, survival and wire.
package core

// PeptideID is a dense, 0-based offset into a mass-sorted peptide table
// (Idx.Peptides). It is the unit the fragment-index lookup, the scorecard and
// the top-K heap all key on.
type PeptideID uint32

// SpectrumID identifies one experimental spectrum within a query batch. It
// is also the key used by the distributed owner policies (§4.6).
type SpectrumID int32

// NodeID identifies a participant in the distributed topology (the `myid`
// configuration option).
type NodeID int32

// FileIndex identifies the input spectra file a PSM originated from, used
// together with SpectrumID to key the deterministic output merge (§9).
type FileIndex int32
