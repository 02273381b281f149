package gicops

import (
	"context"
	"log/slog"
	"os"

	"github.com/mhaseeb123/gicops/core"
)

// Logger wraps slog.Logger with gicops-specific domain helpers.
// This provides structured logging with consistent field names across the
// scoring, survival, and distributed-exchange pipelines.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output, for keeping
// the hot scoring path allocation-free when logging is disabled.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithNode adds the distributed node id to the logger.
func (l *Logger) WithNode(id core.NodeID) *Logger {
	return &Logger{Logger: l.Logger.With("node", int32(id))}
}

// LogWindow logs a precursor-window search (C2), at Debug since it runs
// once per spectrum.
func (l *Logger) LogWindow(ctx context.Context, q core.SpectrumID, minID, maxID core.PeptideID, degenerate bool) {
	l.DebugContext(ctx, "precursor window",
		"spectrum", int32(q),
		"min_id", uint32(minID),
		"max_id", uint32(maxID),
		"degenerate", degenerate,
	)
}

// LogLookup logs a fragment-index lookup pass over one (spectrum, chunk)
// pair (C3), at Debug.
func (l *Logger) LogLookup(ctx context.Context, q core.SpectrumID, chunk int, peaksMatched, ionsVisited int) {
	l.DebugContext(ctx, "fragment index lookup",
		"spectrum", int32(q),
		"chunk", chunk,
		"peaks_matched", peaksMatched,
		"ions_visited", ionsVisited,
	)
}

// LogBatchScored logs completion of a scored batch (C8), at Info.
func (l *Logger) LogBatchScored(ctx context.Context, fileIdx core.FileIndex, batch, spectra int, elapsedMS float64) {
	l.InfoContext(ctx, "batch scored",
		"file", int32(fileIdx),
		"batch", batch,
		"spectra", spectra,
		"elapsed_ms", elapsedMS,
	)
}

// LogSurvivalFit logs a completed survival-model fit (C5), at Debug on
// success and Warn when the spectrum could not be fit.
func (l *Logger) LogSurvivalFit(ctx context.Context, q core.SpectrumID, cpsms int, eValue float64, err error) {
	if err != nil {
		l.WarnContext(ctx, "survival fit skipped",
			"spectrum", int32(q),
			"cpsms", cpsms,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "survival fit completed",
		"spectrum", int32(q),
		"cpsms", cpsms,
		"evalue", eValue,
	)
}

// LogExchange logs one round of the distributed scatter/gather exchange
// (C7), at Info for the summary and Error for transfer failures.
func (l *Logger) LogExchange(ctx context.Context, node core.NodeID, sent, received int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "exchange failed",
			"node", int32(node),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "exchange completed",
		"node", int32(node),
		"sent", sent,
		"received", received,
	)
}

// LogScheduler logs a LASP scheduling decision (C9), at Debug.
func (l *Logger) LogScheduler(ctx context.Context, activeThreads int, forecast float64, decision string) {
	l.DebugContext(ctx, "scheduler decision",
		"active_threads", activeThreads,
		"forecast", forecast,
		"decision", decision,
	)
}
