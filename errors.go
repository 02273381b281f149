package gicops

import (
	"errors"
	"fmt"

	"github.com/mhaseeb123/gicops/distributed"
	"github.com/mhaseeb123/gicops/survival"
	"github.com/mhaseeb123/gicops/wire"
)

// Sentinel errors for the five error kinds of §7. Typed errors below wrap
// one of these via Unwrap so callers can branch with errors.Is while still
// recovering the structured fields with errors.As.
var (
	// ErrInvalidParam indicates a required input pointer/extent is missing.
	// Programming error; fatal.
	ErrInvalidParam = errors.New("gicops: invalid parameter")

	// ErrInvalidMemory indicates a scorecard/scratch pool was not allocated
	// before a scoring call. Fatal on first scoring call.
	ErrInvalidMemory = errors.New("gicops: scratch memory not allocated")

	// ErrNotEnoughData indicates a spectrum's histogram has cpsms < 1 or an
	// empty tail. The E-value is suppressed for that spectrum; scoring
	// continues for the rest of the batch.
	ErrNotEnoughData = errors.New("gicops: not enough candidate PSMs to fit a survival model")

	// ErrInvalidIndex indicates a decoded partial-result payload indexes
	// outside the configured histogram bounds. The transfer is aborted and
	// reported to the caller.
	ErrInvalidIndex = errors.New("gicops: decoded payload index out of bounds")

	// ErrTransferFailure indicates a message-passing failure during the size
	// or payload exchange phase of the distributed exchange. Fatal.
	ErrTransferFailure = errors.New("gicops: distributed transfer failed")
)

// ErrInvalidIndexBounds carries the offending bin and the configured bound
// that rejected it, wrapping ErrInvalidIndex.
type ErrInvalidIndexBounds struct {
	Bin   int
	Bound int
}

func (e *ErrInvalidIndexBounds) Error() string {
	return fmt.Sprintf("gicops: decoded bin %d exceeds histogram bound %d", e.Bin, e.Bound)
}

func (e *ErrInvalidIndexBounds) Unwrap() error { return ErrInvalidIndex }

// ErrNotEnoughCPSMs carries the observed candidate-PSM count, wrapping
// ErrNotEnoughData.
type ErrNotEnoughCPSMs struct {
	CPSMs   int
	MinCPSM int
}

func (e *ErrNotEnoughCPSMs) Error() string {
	return fmt.Sprintf("gicops: cpsms=%d below min_cpsm=%d", e.CPSMs, e.MinCPSM)
}

func (e *ErrNotEnoughCPSMs) Unwrap() error { return ErrNotEnoughData }

// ErrTransfer carries the destination node and phase of a failed exchange,
// wrapping ErrTransferFailure.
type ErrTransfer struct {
	Node  int
	Phase string // "size" or "payload"
	Cause error
}

func (e *ErrTransfer) Error() string {
	return fmt.Sprintf("gicops: %s exchange with node %d failed: %v", e.Phase, e.Node, e.Cause)
}

func (e *ErrTransfer) Unwrap() error { return ErrTransferFailure }

// TranslateError maps a leaf package's independent sentinel error onto the
// §7 root taxonomy at the package boundary. Leaf packages (survival, wire,
// distributed) cannot import this root package without creating an import
// cycle, so each defines its own sentinel; the manager package calls this
// to present a caller with one consistent error surface regardless of
// which leaf produced the failure. minCPSM is the caller's configured
// min_cpsm threshold, carried into ErrNotEnoughCPSMs so a caller inspecting
// the translated error sees the threshold that was actually in effect.
func TranslateError(err error, minCPSM int) error {
	if err == nil {
		return nil
	}

	var notEnough *survival.NotEnoughDataError
	if errors.As(err, &notEnough) {
		return &ErrNotEnoughCPSMs{CPSMs: notEnough.CPSMs, MinCPSM: minCPSM}
	}

	var oob *wire.OutOfBoundsError
	if errors.As(err, &oob) {
		return &ErrInvalidIndexBounds{Bin: oob.Bin, Bound: oob.Bound}
	}

	var xfer *distributed.TransferError
	if errors.As(err, &xfer) {
		return &ErrTransfer{Node: xfer.Node, Phase: xfer.Phase, Cause: xfer.Cause}
	}

	return err
}
