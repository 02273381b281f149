package index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// ModBitmap records the set of residue offsets within one peptide that
// are candidate post-translational-modification sites. Grounded on
// metadata.LocalBitmap: the same roaring.Bitmap-wrapping pattern, keyed
// here by residue offset within a peptide instead of by shard-local
// vector id.
//
// A plain fixed-width bitmask would need a compile-time bound on peptide
// length; RoaringBitmap removes that bound at negligible cost for the
// small, sparse sets a single peptide's mod sites actually form.
type ModBitmap struct {
	rb *roaring.Bitmap
}

// NewModBitmap returns an empty ModBitmap.
func NewModBitmap() *ModBitmap {
	return &ModBitmap{rb: roaring.New()}
}

// AddSite marks offset as a candidate modification site.
func (m *ModBitmap) AddSite(offset uint32) {
	m.rb.Add(offset)
}

// RemoveSite unmarks offset.
func (m *ModBitmap) RemoveSite(offset uint32) {
	m.rb.Remove(offset)
}

// HasSite reports whether offset is a candidate modification site.
func (m *ModBitmap) HasSite(offset uint32) bool {
	return m.rb.Contains(offset)
}

// IsEmpty reports whether no sites are marked.
func (m *ModBitmap) IsEmpty() bool {
	return m.rb == nil || m.rb.IsEmpty()
}

// Cardinality returns the number of marked sites.
func (m *ModBitmap) Cardinality() uint64 {
	if m.rb == nil {
		return 0
	}
	return m.rb.GetCardinality()
}

// Sites iterates the marked offsets in ascending order.
func (m *ModBitmap) Sites() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if m.rb == nil {
			return
		}
		it := m.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (m *ModBitmap) Clone() *ModBitmap {
	if m.rb == nil {
		return NewModBitmap()
	}
	return &ModBitmap{rb: m.rb.Clone()}
}

// SizeInBytes returns the in-memory footprint of the underlying bitmap.
func (m *ModBitmap) SizeInBytes() uint64 {
	if m.rb == nil {
		return 0
	}
	return m.rb.GetSizeInBytes()
}

// ToBytes serializes the bitmap for on-disk storage (index/mmap_loader.go).
func (m *ModBitmap) ToBytes() ([]byte, error) {
	if m.rb == nil || m.rb.IsEmpty() {
		return nil, nil
	}
	return m.rb.ToBytes()
}

// modBitmapFromBytes deserializes a ModBitmap previously written by
// ToBytes. An empty buf yields an empty bitmap.
func modBitmapFromBytes(buf []byte) (*ModBitmap, error) {
	bm := NewModBitmap()
	if len(buf) == 0 {
		return bm, nil
	}
	if _, err := bm.rb.FromBuffer(buf); err != nil {
		return nil, err
	}
	return bm, nil
}
