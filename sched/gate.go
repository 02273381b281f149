package sched

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// WorkerGate bounds how many I/O preparation threads may run concurrently,
// with the bound itself changing at runtime as the Scheduler grows or
// shrinks it. golang.org/x/sync/semaphore.Weighted has no resize
// operation, so unlike bufpool and manager's fixed concurrency caps this
// uses a condition variable over a mutable limit.
//
// Spawning a new preparation thread is itself throttled by a rate.Limiter
// so a rapid string of Grow decisions cannot burst-launch threads faster
// than the underlying I/O subsystem can absorb them.
type WorkerGate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	limit   int
	inUse   int
	spawner *rate.Limiter
}

// NewWorkerGate returns a gate starting at limit 1 whose Grow calls are
// limited to spawnsPerSec per second with a burst of one (pass 0 for no
// throttling).
func NewWorkerGate(spawnsPerSec float64) *WorkerGate {
	g := &WorkerGate{limit: 1}
	g.cond = sync.NewCond(&g.mu)
	if spawnsPerSec > 0 {
		g.spawner = rate.NewLimiter(rate.Limit(spawnsPerSec), 1)
	}
	return g
}

// Limit returns the current concurrency bound.
func (g *WorkerGate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}

// Grow raises the bound by one, throttled by the spawn rate limiter if
// configured. Called from the Scheduler's Grow decision.
func (g *WorkerGate) Grow() {
	if g.spawner != nil && !g.spawner.Allow() {
		return
	}
	g.mu.Lock()
	g.limit++
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Shrink lowers the bound by one, never below 1. A shrink while all slots
// are in use takes effect the next time a slot is released.
func (g *WorkerGate) Shrink() {
	g.mu.Lock()
	if g.limit > 1 {
		g.limit--
	}
	g.mu.Unlock()
}

// Acquire blocks until a slot under the current limit is available, or
// ctx is cancelled.
func (g *WorkerGate) Acquire(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			g.mu.Lock()
			g.cond.Broadcast()
			g.mu.Unlock()
		case <-done:
		}
	}()

	g.mu.Lock()
	defer g.mu.Unlock()
	for g.inUse >= g.limit {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.cond.Wait()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	g.inUse++
	return nil
}

// Release frees a slot acquired via Acquire.
func (g *WorkerGate) Release() {
	g.mu.Lock()
	g.inUse--
	g.mu.Unlock()
	g.cond.Broadcast()
}
