package gicops

import (
	"sync/atomic"
	"time"
)

// MetricsObserver defines an interface for observing operational metrics
// across the search pipeline. Implement this to integrate with monitoring
// systems like Prometheus.
type MetricsObserver interface {
	// OnBatchScored is called after a manager (C8) batch has been scored
	// locally. spectra is the batch size, duration the wall time taken.
	OnBatchScored(spectra int, duration time.Duration)

	// OnExchange is called after a distributed (C7) scatter/gather round.
	// sent/received are partial-result record counts; err is non-nil on
	// transfer failure.
	OnExchange(sent, received int, duration time.Duration, err error)

	// OnScheduleChange is called whenever the LASP scheduler (C9) changes
	// the number of active preparation threads.
	OnScheduleChange(activeThreads int, forecast float64)

	// OnSurvivalFit is called after a survival-model fit (C5) completes for
	// one spectrum. ok is false when NotEnoughData suppressed the E-value.
	OnSurvivalFit(cpsms int, eValue float64, ok bool, duration time.Duration)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
// Use this when metrics collection is not needed; the default.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnBatchScored(int, time.Duration)               {}
func (NoopMetricsObserver) OnExchange(int, int, time.Duration, error)     {}
func (NoopMetricsObserver) OnScheduleChange(int, float64)                 {}
func (NoopMetricsObserver) OnSurvivalFit(int, float64, bool, time.Duration) {}

// BasicMetricsObserver provides simple in-memory metrics collection, useful
// for debugging and tests without wiring an external monitoring backend.
type BasicMetricsObserver struct {
	BatchesScored     atomic.Int64
	SpectraScored     atomic.Int64
	BatchTotalNanos   atomic.Int64
	Exchanges         atomic.Int64
	ExchangeErrors    atomic.Int64
	RecordsSent       atomic.Int64
	RecordsReceived   atomic.Int64
	ScheduleChanges   atomic.Int64
	SurvivalFits      atomic.Int64
	SurvivalSkipped   atomic.Int64
	SurvivalTotalNanos atomic.Int64
}

func (b *BasicMetricsObserver) OnBatchScored(spectra int, duration time.Duration) {
	b.BatchesScored.Add(1)
	b.SpectraScored.Add(int64(spectra))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

func (b *BasicMetricsObserver) OnExchange(sent, received int, _ time.Duration, err error) {
	b.Exchanges.Add(1)
	b.RecordsSent.Add(int64(sent))
	b.RecordsReceived.Add(int64(received))
	if err != nil {
		b.ExchangeErrors.Add(1)
	}
}

func (b *BasicMetricsObserver) OnScheduleChange(int, float64) {
	b.ScheduleChanges.Add(1)
}

func (b *BasicMetricsObserver) OnSurvivalFit(_ int, _ float64, ok bool, duration time.Duration) {
	if ok {
		b.SurvivalFits.Add(1)
	} else {
		b.SurvivalSkipped.Add(1)
	}
	b.SurvivalTotalNanos.Add(duration.Nanoseconds())
}
