package distributed

import (
	"context"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/wire"
)

// LocalPartial is one spectrum's locally scored partial result, ready for
// the C7 scatter phase.
type LocalPartial struct {
	QID  core.SpectrumID
	PR   wire.PR
	Tail wire.Tail
}

// Combined is the reassembled histogram for one spectrum this node owns,
// after all contributing nodes' partial tails have been merged (§4.6 step
// 3). It is exactly the (survival, cpsms) pair survival.Fit expects.
type Combined struct {
	QID      core.SpectrumID
	Survival []float64
	N        int64
	HyperMax float32
}

// Config configures one Exchanger.
type Config struct {
	Nodes     int
	MyID      int
	Policy    Policy
	ChunkSize int
	MaxBin    int // histogram width; must match scoring.HistogramBins
}

// Exchanger drives one round of the §4.6 distributed exchange: group by
// owner, exchange sizes, exchange payloads, and combine into per-spectrum
// histograms for the spectra this node owns.
//
// Routes by a deterministic owner-policy id function, gathers from every
// participant, and merges commutatively. A RoaringBitmap tracks the set
// of spectrum ids this node owns and has combined a result for.
type Exchanger struct {
	cfg       Config
	transport Transport

	// owned accumulates every spectrum id this node has combined a full
	// result for across all rounds, so the search manager's final output
	// merge (§9 "deterministic output.<myid>.<tid> convention") can tell
	// which qIDs are complete for this node without re-scanning results.
	owned *roaring.Bitmap
}

// NewExchanger returns an Exchanger for cfg over transport.
func NewExchanger(cfg Config, transport Transport) *Exchanger {
	return &Exchanger{cfg: cfg, transport: transport, owned: roaring.New()}
}

// OwnedIDs returns every spectrum id this node has combined a result for,
// across all Round calls so far.
func (e *Exchanger) OwnedIDs() []uint32 {
	return e.owned.ToArray()
}

// owner returns the owning node for qid under the exchanger's configured
// policy.
func (e *Exchanger) owner(qid core.SpectrumID) core.NodeID {
	return Owner(qid, e.cfg.Nodes, e.cfg.Policy, e.cfg.ChunkSize)
}

// Round performs one full exchange over local, the batch of partials this
// node scored locally, and returns the combined histograms for every
// spectrum this node owns — including spectra this node scored locally
// but does not own, which are simply forwarded and excluded from the
// result.
//
// When cfg.Nodes <= 1, C7 is bypassed entirely (§4.6 "when no distributed
// mode is configured") and every local partial is returned combined with
// itself.
func (e *Exchanger) Round(ctx context.Context, local []LocalPartial) (map[core.SpectrumID]*Combined, error) {
	if e.cfg.Nodes <= 1 {
		return e.localOnly(local), nil
	}

	byDest := make(map[int][]LocalPartial, e.cfg.Nodes)
	owned := make([]LocalPartial, 0, len(local))

	for _, p := range local {
		dest := int(e.owner(p.QID))
		if dest == e.cfg.MyID {
			owned = append(owned, p)
			continue
		}
		byDest[dest] = append(byDest[dest], p)
	}

	for dest := range byDest {
		sort.Slice(byDest[dest], func(i, j int) bool { return byDest[dest][i].QID < byDest[dest][j].QID })
	}

	tx := make([]int32, e.cfg.Nodes)
	for dest, ps := range byDest {
		tx[dest] = int32(len(ps))
	}

	rx, err := e.transport.ExchangeSizes(ctx, tx)
	if err != nil {
		return nil, &TransferError{Node: e.cfg.MyID, Phase: "size", Cause: err}
	}

	combined := make(map[core.SpectrumID]*Combined, len(owned))
	for _, p := range owned {
		combined[p.QID] = newCombined(p, e.cfg.MaxBin)
		e.owned.Add(uint32(p.QID))
	}

	for dest, ps := range byDest {
		if dest == e.cfg.MyID {
			continue
		}
		prs := make([]wire.PR, len(ps))
		tails := make([]wire.Tail, len(ps))
		for i, p := range ps {
			prs[i], tails[i] = p.PR, p.Tail
		}
		if err := e.transport.Send(ctx, dest, prs, tails); err != nil {
			return nil, &TransferError{Node: dest, Phase: "payload", Cause: err}
		}
	}

	for src := 0; src < e.cfg.Nodes; src++ {
		if src == e.cfg.MyID || rx[src] == 0 {
			continue
		}
		prs, tails, err := e.transport.Recv(ctx, src, int(rx[src]))
		if err != nil {
			return nil, &TransferError{Node: src, Phase: "payload", Cause: err}
		}
		for i, pr := range prs {
			c, ok := combined[core.SpectrumID(pr.QID)]
			if !ok {
				// A spectrum this node owns but never scored locally
				// (e.g. it fell outside this node's shard entirely);
				// start a fresh histogram for it.
				c = &Combined{QID: core.SpectrumID(pr.QID), Survival: make([]float64, e.cfg.MaxBin)}
				combined[c.QID] = c
				e.owned.Add(uint32(pr.QID))
			}
			n, err := wire.Decode(pr, tails[i], c.Survival)
			if err != nil {
				return nil, err
			}
			c.N += n
			if pr.Max > c.HyperMax {
				c.HyperMax = pr.Max
			}
		}
	}

	return combined, nil
}

func newCombined(p LocalPartial, maxBin int) *Combined {
	c := &Combined{QID: p.QID, Survival: make([]float64, maxBin), HyperMax: p.PR.Max}
	n, _ := wire.Decode(p.PR, p.Tail, c.Survival)
	c.N = n
	return c
}

func (e *Exchanger) localOnly(local []LocalPartial) map[core.SpectrumID]*Combined {
	out := make(map[core.SpectrumID]*Combined, len(local))
	for _, p := range local {
		out[p.QID] = newCombined(p, e.cfg.MaxBin)
		e.owned.Add(uint32(p.QID))
	}
	return out
}
