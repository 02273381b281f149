package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/mhaseeb123/gicops/internal/mmap"
)

// formatMagic and formatVersion identify an on-disk index file, the way
// vectorstore/columnar's MmapStore guards against opening a foreign or
// stale-format file.
const (
	formatMagic   uint32 = 0x47494350 // "GICP"
	formatVersion uint32 = 1
)

// fileHeader is the fixed-size prefix of an on-disk index file. All
// fields are little-endian, matching §6's wire-protocol convention.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	Scale       int64
	MaxMass     float64
	NumPeptides uint64
	NumChunks   uint64
}

const fileHeaderSize = 40

// MmapIdx is a read-only Idx backed by a memory-mapped file: every chunk's
// bucket/ion arrays alias the mapped pages via unsafe.Slice rather than
// being copied in (see castUint32Slice for when it copies instead), the
// same zero-copy cast vectorstore/columnar.OpenMmap uses for its float32
// vector data. The peptide table is decoded into ordinary Go values.
type MmapIdx struct {
	Idx
	file *mmap.Mapping
}

// Close unmaps the underlying file. The Idx embedded in MmapIdx must not
// be used after Close.
func (m *MmapIdx) Close() error {
	return m.file.Close()
}

// OpenMmap memory-maps the index file at path and returns a zero-copy Idx
// over it.
//
// File layout: fileHeader, then for each peptide: {f32 mass, u32 seqID,
// u32 modSitesLen, modSitesLen bytes of a serialized roaring.Bitmap},
// then for each chunk: {i32 pepLen, i32 maxCharge, u32 numPeptides, u64
// baLen, baLen*u32 of BA, u64 iaLen, iaLen*u32 of IA}. The peptide
// section uses a variable-length bitmap per row so it is read (not
// zero-copy cast) into Go-native structs; only each chunk's BA/IA — the
// hot-path arrays C3's lookup walks — are cast directly over the mapped
// bytes.
func OpenMmap(path string) (*MmapIdx, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open mmap: %w", err)
	}

	idx, err := decodeMmap(f.Bytes())
	if err != nil {
		f.Close()
		return nil, err
	}

	return &MmapIdx{Idx: idx, file: f}, nil
}

func decodeMmap(data []byte) (Idx, error) {
	if len(data) < fileHeaderSize {
		return Idx{}, fmt.Errorf("index: file too small for header")
	}
	h := fileHeader{
		Magic:       binary.LittleEndian.Uint32(data[0:4]),
		Version:     binary.LittleEndian.Uint32(data[4:8]),
		Scale:       int64(binary.LittleEndian.Uint64(data[8:16])),
		MaxMass:     float64FromBits(binary.LittleEndian.Uint64(data[16:24])),
		NumPeptides: binary.LittleEndian.Uint64(data[24:32]),
		NumChunks:   binary.LittleEndian.Uint64(data[32:40]),
	}
	if h.Magic != formatMagic {
		return Idx{}, fmt.Errorf("index: bad magic %x", h.Magic)
	}
	if h.Version != formatVersion {
		return Idx{}, fmt.Errorf("index: unsupported version %d", h.Version)
	}

	off := fileHeaderSize
	peptides := make([]Peptide, h.NumPeptides)
	for i := range peptides {
		if off+12 > len(data) {
			return Idx{}, fmt.Errorf("index: truncated peptide row %d", i)
		}
		mass := float32FromBits(binary.LittleEndian.Uint32(data[off:]))
		seqID := binary.LittleEndian.Uint32(data[off+4:])
		modLen := int(binary.LittleEndian.Uint32(data[off+8:]))
		off += 12
		if off+modLen > len(data) {
			return Idx{}, fmt.Errorf("index: truncated modSites for peptide %d", i)
		}
		bm, err := modBitmapFromBytes(data[off : off+modLen])
		if err != nil {
			return Idx{}, fmt.Errorf("index: decode modSites for peptide %d: %w", i, err)
		}
		off += modLen
		peptides[i] = Peptide{Mass: mass, SeqID: seqID, ModSites: bm}
	}

	chunks := make([]Chunk, h.NumChunks)
	for i := range chunks {
		if off+20 > len(data) {
			return Idx{}, fmt.Errorf("index: truncated chunk header %d", i)
		}
		pepLen := int(int32(binary.LittleEndian.Uint32(data[off:])))
		maxCharge := int(int32(binary.LittleEndian.Uint32(data[off+4:])))
		numPeptides := binary.LittleEndian.Uint32(data[off+8:])
		baLen := binary.LittleEndian.Uint64(data[off+12:])
		off += 20

		ba, n, err := castUint32Slice(data, off, baLen)
		if err != nil {
			return Idx{}, fmt.Errorf("index: chunk %d BA: %w", i, err)
		}
		off += n

		if off+8 > len(data) {
			return Idx{}, fmt.Errorf("index: truncated chunk %d iA length", i)
		}
		iaLen := binary.LittleEndian.Uint64(data[off:])
		off += 8

		ia, n, err := castUint32Slice(data, off, iaLen)
		if err != nil {
			return Idx{}, fmt.Errorf("index: chunk %d IA: %w", i, err)
		}
		off += n

		chunks[i] = Chunk{
			PepLen:      pepLen,
			MaxCharge:   maxCharge,
			NumPeptides: numPeptides,
			BA:          ba,
			IA:          ia,
		}
	}

	return Idx{
		Peptides: peptides,
		Chunks:   chunks,
		Scale:    int(h.Scale),
		MaxMass:  h.MaxMass,
	}, nil
}

// castUint32Slice returns a zero-copy []uint32 view of count little-endian
// u32 words starting at data[off], and the number of bytes consumed.
//
// unsafe.Slice aliasing mapped memory is only safe on little-endian
// architectures without a byte-swap; on a big-endian host this falls
// back to an explicit element-by-element copy, matching columnar's
// alignment-fallback branch.
func castUint32Slice(data []byte, off int, count uint64) ([]uint32, int, error) {
	n := int(count) * 4
	if off+n > len(data) {
		return nil, 0, fmt.Errorf("array of %d u32s exceeds file bounds at offset %d", count, off)
	}
	if count == 0 {
		return nil, n, nil
	}
	if off%4 != 0 || !isLittleEndianHost() {
		out := make([]uint32, count)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[off+i*4:])
		}
		return out, n, nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[off])), count), n, nil
}

func float32FromBits(b uint32) float32 { return *(*float32)(unsafe.Pointer(&b)) }
func float64FromBits(b uint64) float64 { return *(*float64)(unsafe.Pointer(&b)) }

// isLittleEndianHost reports whether the running architecture stores
// multi-byte words little-endian, the precondition for the zero-copy
// unsafe.Slice cast above.
func isLittleEndianHost() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}

// EncodeTo writes idx to w in the format OpenMmap reads, for index-build
// tooling and tests. It is not on the scoring hot path.
func EncodeTo(w io.Writer, idx *Idx) error {
	h := fileHeader{
		Magic:       formatMagic,
		Version:     formatVersion,
		Scale:       int64(idx.Scale),
		MaxMass:     idx.MaxMass,
		NumPeptides: uint64(len(idx.Peptides)),
		NumChunks:   uint64(len(idx.Chunks)),
	}
	var hdr [fileHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], h.Magic)
	binary.LittleEndian.PutUint32(hdr[4:], h.Version)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(h.Scale))
	binary.LittleEndian.PutUint64(hdr[16:], float64Bits(h.MaxMass))
	binary.LittleEndian.PutUint64(hdr[24:], h.NumPeptides)
	binary.LittleEndian.PutUint64(hdr[32:], h.NumChunks)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	for _, p := range idx.Peptides {
		var row [12]byte
		binary.LittleEndian.PutUint32(row[0:], float32Bits(p.Mass))
		binary.LittleEndian.PutUint32(row[4:], p.SeqID)
		var modBytes []byte
		if p.ModSites != nil && !p.ModSites.IsEmpty() {
			buf, err := p.ModSites.ToBytes()
			if err != nil {
				return fmt.Errorf("index: encode modSites: %w", err)
			}
			modBytes = buf
		}
		binary.LittleEndian.PutUint32(row[8:], uint32(len(modBytes)))
		if _, err := w.Write(row[:]); err != nil {
			return err
		}
		if len(modBytes) > 0 {
			if _, err := w.Write(modBytes); err != nil {
				return err
			}
		}
	}

	for _, c := range idx.Chunks {
		var hdr [20]byte
		binary.LittleEndian.PutUint32(hdr[0:], uint32(int32(c.PepLen)))
		binary.LittleEndian.PutUint32(hdr[4:], uint32(int32(c.MaxCharge)))
		binary.LittleEndian.PutUint32(hdr[8:], c.NumPeptides)
		binary.LittleEndian.PutUint64(hdr[12:], uint64(len(c.BA)))
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if err := writeUint32Slice(w, c.BA); err != nil {
			return err
		}
		var iaLen [8]byte
		binary.LittleEndian.PutUint64(iaLen[:], uint64(len(c.IA)))
		if _, err := w.Write(iaLen[:]); err != nil {
			return err
		}
		if err := writeUint32Slice(w, c.IA); err != nil {
			return err
		}
	}
	return nil
}

func writeUint32Slice(w io.Writer, s []uint32) error {
	buf := make([]byte, len(s)*4)
	for i, v := range s {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	_, err := w.Write(buf)
	return err
}

func float32Bits(f float32) uint32 { return *(*uint32)(unsafe.Pointer(&f)) }
func float64Bits(f float64) uint64 { return *(*uint64)(unsafe.Pointer(&f)) }
