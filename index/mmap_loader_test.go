package index

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleIdx() *Idx {
	mods := NewModBitmap()
	mods.AddSite(1)
	mods.AddSite(3)
	return &Idx{
		Peptides: []Peptide{
			{Mass: 1000.5, SeqID: 0, ModSites: NewModBitmap()},
			{Mass: 1001.25, SeqID: 1, ModSites: mods},
			{Mass: 1002.0, SeqID: 2, ModSites: NewModBitmap()},
		},
		Chunks: []Chunk{
			{
				PepLen:      8,
				MaxCharge:   2,
				NumPeptides: 3,
				BA:          []uint32{0, 2, 2, 4},
				IA:          []uint32{1, 2, 3, 4},
			},
		},
		Scale:   1000,
		MaxMass: 5000.0,
	}
}

func TestEncodeThenOpenMmap_RoundTrips(t *testing.T) {
	idx := buildSampleIdx()

	var buf bytes.Buffer
	require.NoError(t, EncodeTo(&buf, idx))

	dir := t.TempDir()
	path := filepath.Join(dir, "idx.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, err := OpenMmap(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, idx.Scale, m.Scale)
	assert.Equal(t, idx.MaxMass, m.MaxMass)
	require.Len(t, m.Peptides, 3)
	assert.Equal(t, idx.Peptides[1].Mass, m.Peptides[1].Mass)
	assert.True(t, m.Peptides[1].ModSites.HasSite(1))
	assert.True(t, m.Peptides[1].ModSites.HasSite(3))

	require.Len(t, m.Chunks, 1)
	assert.Equal(t, idx.Chunks[0].BA, m.Chunks[0].BA)
	assert.Equal(t, idx.Chunks[0].IA, m.Chunks[0].IA)
	require.NoError(t, m.Validate())
}

func TestOpenMmap_RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, fileHeaderSize), 0o644))

	_, err := OpenMmap(path)
	assert.Error(t, err)
}
