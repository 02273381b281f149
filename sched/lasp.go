// Package sched implements the C9 LASP scheduler: Holt's double
// exponential smoothing driving the number of active I/O preparation
// threads between 1 and maxIOThds.
//
// A decision takes effect through WorkerGate (gate.go), a condition
// variable over a resizable slot limit; the decision itself — forecast a
// penalty signal, compare against thresholds, act — is built fresh from
// §4.8.
package sched

import (
	"context"
	"sync"
	"time"
)

// Params are the LASP hyperparameters and thresholds (§4.8).
type Params struct {
	// Alpha and Gamma are Holt's smoothing and trend weights.
	Alpha, Gamma float64

	// MaxPenalty: forecast above this reduces active threads.
	MaxPenalty float64
	// MinRate: forecast below this is eligible to spawn a thread.
	MinRate float64
	// WaitSinceLast: minimum time between thread-count changes once the
	// spawn condition is met, so the controller doesn't thrash on noise.
	WaitSinceLast time.Duration

	// MaxIOThds bounds active threads from above; 1 bounds from below.
	MaxIOThds int
}

// DefaultParams returns the §4.8 hyperparameters (α=0.5, γ=0.8).
func DefaultParams(maxIOThds int) Params {
	if maxIOThds < 1 {
		maxIOThds = 1
	}
	return Params{
		Alpha:         0.5,
		Gamma:         0.8,
		MaxPenalty:    1.0,
		MinRate:       0.25,
		WaitSinceLast: 200 * time.Millisecond,
		MaxIOThds:     maxIOThds,
	}
}

// Decision is the scheduler's verdict after folding in one observation.
type Decision int

const (
	// Hold leaves the active thread count unchanged.
	Hold Decision = iota
	// Shrink reduces the active thread count by one, never below 1.
	Shrink
	// Grow increases the active thread count by one, never above MaxIOThds.
	Grow
)

func (d Decision) String() string {
	switch d {
	case Shrink:
		return "shrink"
	case Grow:
		return "grow"
	default:
		return "hold"
	}
}

// Scheduler holds Holt's running state (S_t, b_t) and the current active
// thread count, and turns a stream of penalty observations (queue depth,
// mean wait time, or any other congestion signal the manager samples)
// into Grow/Shrink/Hold decisions.
type Scheduler struct {
	mu sync.Mutex

	params Params

	initialized bool
	s, b        float64 // S_t, b_t
	lastChange  time.Time
	active      int
}

// New returns a Scheduler starting at one active thread.
func New(params Params) *Scheduler {
	return &Scheduler{params: params, active: 1}
}

// Active returns the current active thread count.
func (sc *Scheduler) Active() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.active
}

// Observe folds in one penalty sample y_t, updates the Holt forecast, and
// returns the resulting decision (§4.8). now is passed in rather than read
// internally so callers can drive the scheduler deterministically in
// tests.
func (sc *Scheduler) Observe(now time.Time, yt float64) Decision {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.initialized {
		sc.s = yt
		sc.b = 0
		sc.initialized = true
		sc.lastChange = now
		return Hold
	}

	prevS := sc.s
	sc.s = sc.params.Alpha*yt + (1-sc.params.Alpha)*(sc.s+sc.b)
	sc.b = sc.params.Gamma*(sc.s-prevS) + (1-sc.params.Gamma)*sc.b
	forecast := sc.s + sc.b

	switch {
	case forecast > sc.params.MaxPenalty:
		if sc.active > 1 {
			sc.active--
			sc.lastChange = now
			return Shrink
		}
	case forecast < sc.params.MinRate:
		if sc.active < sc.params.MaxIOThds && now.Sub(sc.lastChange) >= sc.params.WaitSinceLast {
			sc.active++
			sc.lastChange = now
			return Grow
		}
	}
	return Hold
}

// Forecast returns the scheduler's current forecast F_{t+1} = S_t + b_t.
func (sc *Scheduler) Forecast() float64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.s + sc.b
}

// idleSleep is the §5 "sleeps 10 ms when idle" sampling cadence.
const idleSleep = 10 * time.Millisecond

// Sampler periodically asks source for a fresh penalty observation and
// feeds it to a Scheduler until ctx is cancelled, applying grow/shrink
// decisions to a WorkerGate. This is the manager-facing loop; Scheduler
// itself holds no goroutine and is safe to drive directly from tests.
type Sampler struct {
	Scheduler *Scheduler
	Gate      *WorkerGate
	Source    func() float64
	Interval  time.Duration
}

// Run blocks, sampling Source every Interval (or the §5 10ms idle default
// when Interval is zero) until ctx is done.
func (sp *Sampler) Run(ctx context.Context) {
	interval := sp.Interval
	if interval <= 0 {
		interval = idleSleep
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			switch sp.Scheduler.Observe(now, sp.Source()) {
			case Grow:
				sp.Gate.Grow()
			case Shrink:
				sp.Gate.Shrink()
			}
		}
	}
}
