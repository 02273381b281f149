package survival

import (
	"errors"
	"fmt"
)

// ErrNotEnoughData is survival's local sentinel for §7's NotEnoughData
// kind: the histogram had too few candidate PSMs or an empty tail to fit.
// The root package's translateError-style boundary (see manager) maps
// this to the taxonomy's gicops.ErrNotEnoughData; survival itself stays
// independent of the root package to avoid an import cycle (root imports
// survival, not the reverse).
var ErrNotEnoughData = errors.New("survival: not enough candidate PSMs to fit a model")

// NotEnoughDataError carries the observed cpsms count, wrapping
// ErrNotEnoughData.
type NotEnoughDataError struct {
	CPSMs int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("survival: cpsms=%d insufficient to fit a survival model", e.CPSMs)
}

func (e *NotEnoughDataError) Unwrap() error { return ErrNotEnoughData }
