package distributed

import (
	"context"
	"errors"
	"fmt"

	"github.com/mhaseeb123/gicops/wire"
)

// Transport abstracts the message-passing primitive C7's two-phase
// exchange runs over (§4.6, §6 "wire protocol"). Real deployments
// implement this over MPI, gRPC, or any other inter-node channel; the
// exchange logic in this package only depends on the interface.
type Transport interface {
	// Nodes returns the topology size.
	Nodes() int

	// MyID returns this node's id within the topology.
	MyID() int

	// ExchangeSizes performs the §4.6 size phase: node i sends tx[j] (its
	// forward count to node j) to every other node and receives rx[j]
	// (the count node j will forward to it) back. tx[MyID()] is ignored.
	ExchangeSizes(ctx context.Context, tx []int32) (rx []int32, err error)

	// Send posts one destination-grouped payload of the §4.6 payload
	// phase, in ascending qID order (§6).
	Send(ctx context.Context, dest int, prs []wire.PR, tails []wire.Tail) error

	// Recv blocks until n records have arrived from src, in the order
	// Send posted them.
	Recv(ctx context.Context, src int, n int) (prs []wire.PR, tails []wire.Tail, err error)
}

// ErrTransferFailure is distributed's local sentinel for §7's
// TransferFailure kind: a message-passing failure during either exchange
// phase. Fatal at the caller.
var ErrTransferFailure = errors.New("distributed: transfer failed")

// TransferError carries the destination/source node and phase of a failed
// exchange.
type TransferError struct {
	Node  int
	Phase string // "size" or "payload"
	Cause error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("distributed: %s exchange with node %d failed: %v", e.Phase, e.Node, e.Cause)
}

func (e *TransferError) Unwrap() error { return ErrTransferFailure }
