package wire

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is wire's local sentinel for §7's InvalidIndex kind: a
// decoded payload indexes outside the destination histogram's configured
// bounds.
var ErrOutOfBounds = errors.New("wire: decoded index out of bounds")

// OutOfBoundsError carries the offending bin and the configured bound,
// wrapping ErrOutOfBounds.
type OutOfBoundsError struct {
	Bin   int
	Bound int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("wire: decoded bin %d exceeds histogram bound %d", e.Bin, e.Bound)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }
