package bufpool

import (
	"context"
	"testing"
	"time"

	"github.com/mhaseeb123/gicops/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_CurrentTXFlipsBetweenZeroAndOne(t *testing.T) {
	p := New(4)
	first := p.CurrentTX()
	assert.True(t, first.Append(Entry{QID: core.SpectrumID(1)}))

	filled := p.FlipTX()
	assert.Same(t, first, filled)

	second := p.CurrentTX()
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.Len())

	back := p.FlipTX()
	assert.Same(t, second, back)
	assert.Same(t, first, p.CurrentTX())
}

func TestBuffer_AppendRejectsBeyondCapacity(t *testing.T) {
	p := New(2)
	buf := p.CurrentTX()
	assert.True(t, buf.Append(Entry{QID: 1}))
	assert.True(t, buf.Append(Entry{QID: 2}))
	assert.False(t, buf.Append(Entry{QID: 3}))
	assert.True(t, buf.Full())
}

func TestBuffer_WaitFullBlocksUntilMarked(t *testing.T) {
	p := New(4)
	buf := p.CurrentTX()
	buf.Append(Entry{QID: 9})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	err := buf.WaitFull(ctx)
	assert.Error(t, err, "WaitFull should still be blocked: MarkFull not called yet")

	p.FlipTX() // marks buf full and swaps CurrentTX to the other buffer

	require.NoError(t, buf.WaitFull(context.Background()))
	entries := buf.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, core.SpectrumID(9), entries[0].QID)
}

func TestPool_FullTXCycleReusesBuffers(t *testing.T) {
	p := New(1)
	for i := 0; i < 3; i++ {
		buf := p.CurrentTX()
		require.True(t, buf.Append(Entry{QID: core.SpectrumID(i)}))
		filled := p.FlipTX()
		require.NoError(t, filled.WaitFull(context.Background()))
		entries := filled.Drain()
		require.Len(t, entries, 1)
		assert.Equal(t, core.SpectrumID(i), entries[0].QID)
	}
}

func TestRXBuffer_IsIndependentOfTX(t *testing.T) {
	p := New(2)
	rx := p.RX()
	assert.True(t, rx.Append(Entry{QID: 5}))
	assert.NotSame(t, rx, p.CurrentTX())
}
