package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModBitmap_AddHasRemove(t *testing.T) {
	m := NewModBitmap()
	assert.True(t, m.IsEmpty())

	m.AddSite(2)
	m.AddSite(5)
	assert.False(t, m.IsEmpty())
	assert.True(t, m.HasSite(2))
	assert.True(t, m.HasSite(5))
	assert.False(t, m.HasSite(3))
	assert.Equal(t, uint64(2), m.Cardinality())

	m.RemoveSite(2)
	assert.False(t, m.HasSite(2))
}

func TestModBitmap_SitesIteratesAscending(t *testing.T) {
	m := NewModBitmap()
	for _, s := range []uint32{9, 1, 4} {
		m.AddSite(s)
	}
	var got []uint32
	for s := range m.Sites() {
		got = append(got, s)
	}
	assert.Equal(t, []uint32{1, 4, 9}, got)
}

func TestModBitmap_CloneIsIndependent(t *testing.T) {
	m := NewModBitmap()
	m.AddSite(7)
	c := m.Clone()
	c.AddSite(8)
	assert.False(t, m.HasSite(8))
	assert.True(t, c.HasSite(8))
}

func TestModBitmap_ToBytesRoundTrip(t *testing.T) {
	m := NewModBitmap()
	m.AddSite(3)
	m.AddSite(100)
	buf, err := m.ToBytes()
	assert.NoError(t, err)

	m2, err := modBitmapFromBytes(buf)
	assert.NoError(t, err)
	assert.True(t, m2.HasSite(3))
	assert.True(t, m2.HasSite(100))
}
