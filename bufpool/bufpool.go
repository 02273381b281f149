// Package bufpool implements the C10 buffer pool: two ping-pong transmit
// buffers and one receive buffer, each guarded by a single-writer
// semaphore, letting the communication thread overlap a transfer with the
// scoring pool filling the other TX buffer (§4.9).
//
// Uses golang.org/x/sync/semaphore.Weighted as a weight-1 semaphore: a
// binary full/empty rendezvous rather than a mutex, so the producer
// (scoring pool) and consumer (communication thread) never block on each
// other's critical section, only on buffer state.
package bufpool

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/wire"
)

// Entry is one spectrum's encoded partial result, queued for transfer.
type Entry struct {
	QID  core.SpectrumID
	PR   wire.PR
	Tail wire.Tail
}

// Buffer is a fixed-capacity slice of Entry guarded by a binary "full"
// semaphore: MarkFull/WaitFull form a rendezvous between the thread that
// fills the buffer and the thread that drains it, so the two never touch
// items concurrently.
type Buffer struct {
	mu       sync.Mutex
	items    []Entry
	capacity int
	fullSem  *semaphore.Weighted
}

func newBuffer(capacity int) *Buffer {
	b := &Buffer{capacity: capacity, fullSem: semaphore.NewWeighted(1)}
	// Held immediately so the first WaitFull blocks until a writer calls
	// MarkFull; this is the buffer's "currently empty" state.
	b.fullSem.Acquire(context.Background(), 1)
	return b
}

// Append adds e to the buffer. Returns false if the buffer is already at
// capacity; the caller (scoring thread) must flush/flip before retrying.
func (b *Buffer) Append(e Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.capacity {
		return false
	}
	b.items = append(b.items, e)
	return true
}

// Len returns the number of entries currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Full reports whether the buffer has reached capacity.
func (b *Buffer) Full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items) >= b.capacity
}

// MarkFull signals a waiting drainer that the buffer is ready to be
// transferred.
func (b *Buffer) MarkFull() {
	b.fullSem.Release(1)
}

// WaitFull blocks until MarkFull has been called, or ctx is cancelled.
func (b *Buffer) WaitFull(ctx context.Context) error {
	return b.fullSem.Acquire(ctx, 1)
}

// Drain empties the buffer and returns its contents. The caller must have
// already called WaitFull; Drain does not itself synchronize with
// Append.
func (b *Buffer) Drain() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Pool holds the two ping-pong TX buffers and the single RX buffer for
// one node's communication thread (§4.9).
type Pool struct {
	tx        [2]*Buffer
	rx        *Buffer
	currTxPtr atomic.Int32
}

// New returns a Pool with each buffer sized to hold qchunk entries —
// matching the §4.7 QCHUNK batch size, since one batch's worth of
// partials is the natural unit to hand off to C7 at once.
func New(qchunk int) *Pool {
	return &Pool{
		tx: [2]*Buffer{newBuffer(qchunk), newBuffer(qchunk)},
		rx: newBuffer(qchunk),
	}
}

// CurrentTX returns the TX buffer scoring threads should append to right
// now.
func (p *Pool) CurrentTX() *Buffer {
	return p.tx[p.currTxPtr.Load()]
}

// FlipTX flips currTxPtr to the other TX buffer and marks the
// now-previous buffer full, returning it for the communication thread to
// drain and transfer. Scoring threads immediately see CurrentTX() return
// the other (empty) buffer and can keep filling while the transfer runs.
func (p *Pool) FlipTX() *Buffer {
	idx := p.currTxPtr.Load()
	filled := p.tx[idx]
	p.currTxPtr.Store(1 - idx)
	filled.MarkFull()
	return filled
}

// RX returns the receive buffer the communication thread deposits inbound
// partials into for the manager's final-merge stage to drain.
func (p *Pool) RX() *Buffer {
	return p.rx
}
