package distributed

import (
	"context"
	"fmt"
	"sync"

	"github.com/mhaseeb123/gicops/wire"
)

// payload is one Send call's contents, queued for the matching Recv.
type payload struct {
	prs   []wire.PR
	tails []wire.Tail
}

// InProcTransport is an all-to-all Transport connecting a fixed set of
// nodes within a single process, for tests and single-host topologies: one
// buffered channel per (src,dest) pair instead of a real network stack.
type InProcTransport struct {
	nodes int
	myID  int

	mu      sync.Mutex
	sizes   [][]int32          // sizes[src][dest], set by ExchangeSizes
	sizesCh map[int]chan []int32

	inbox map[int]chan payload // inbox[src] for messages addressed to this node
	peers map[int]*InProcTransport
}

// NewInProcCluster builds `nodes` InProcTransport instances wired to each
// other, one per node id.
func NewInProcCluster(nodes int) []*InProcTransport {
	cluster := make([]*InProcTransport, nodes)
	for i := range cluster {
		cluster[i] = &InProcTransport{
			nodes:   nodes,
			myID:    i,
			sizesCh: make(map[int]chan []int32),
			inbox:   make(map[int]chan payload),
			peers:   make(map[int]*InProcTransport),
		}
	}
	for i := range cluster {
		for j := range cluster {
			if i == j {
				continue
			}
			cluster[i].peers[j] = cluster[j]
		}
		for j := 0; j < nodes; j++ {
			cluster[i].sizesCh[j] = make(chan []int32, 1)
			cluster[i].inbox[j] = make(chan payload, 64)
		}
	}
	return cluster
}

func (t *InProcTransport) Nodes() int { return t.nodes }
func (t *InProcTransport) MyID() int  { return t.myID }

// ExchangeSizes broadcasts tx to every peer's sizesCh[myID] and collects
// each peer's tx[myID] off its own sizesCh.
func (t *InProcTransport) ExchangeSizes(ctx context.Context, tx []int32) ([]int32, error) {
	for dest, peer := range t.peers {
		select {
		case peer.sizesCh[t.myID] <- tx:
		case <-ctx.Done():
			return nil, fmt.Errorf("inproc: exchange sizes to %d: %w", dest, ctx.Err())
		}
	}

	rx := make([]int32, t.nodes)
	for src := range t.peers {
		select {
		case peerTx := <-t.sizesCh[src]:
			rx[src] = peerTx[t.myID]
		case <-ctx.Done():
			return nil, fmt.Errorf("inproc: exchange sizes from %d: %w", src, ctx.Err())
		}
	}
	return rx, nil
}

func (t *InProcTransport) Send(ctx context.Context, dest int, prs []wire.PR, tails []wire.Tail) error {
	peer, ok := t.peers[dest]
	if !ok {
		return fmt.Errorf("inproc: unknown destination node %d", dest)
	}
	select {
	case peer.inbox[t.myID] <- payload{prs: prs, tails: tails}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *InProcTransport) Recv(ctx context.Context, src int, n int) ([]wire.PR, []wire.Tail, error) {
	select {
	case p := <-t.inbox[src]:
		if len(p.prs) != n {
			return nil, nil, fmt.Errorf("inproc: expected %d records from %d, got %d", n, src, len(p.prs))
		}
		return p.prs, p.tails, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
