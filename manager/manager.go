// Package manager implements C8, the search manager: the per-batch
// orchestration of C2-C7 that drives one input file's spectra through
// precursor windowing, fragment-index lookup, hyperscore finalization, the
// distributed histogram exchange, survival-model fitting and E-value
// computation, down to a deterministic per-node result set.
//
// A read-only shared index, a fixed worker pool dispatching independent
// per-query work, and a results sink the workers write into concurrently
// but never race on.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/mhaseeb123/gicops"
	"github.com/mhaseeb123/gicops/checkpoint"
	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/distributed"
	"github.com/mhaseeb123/gicops/index"
	"github.com/mhaseeb123/gicops/scoring"
	"github.com/mhaseeb123/gicops/spectrum"
	"github.com/mhaseeb123/gicops/survival"
	"github.com/mhaseeb123/gicops/wire"
)

// Config carries the subset of the root gicops.Config the manager needs.
// Kept as its own struct, narrowed to exactly the fields ScoreBatch reads,
// rather than taking a gicops.Config directly; the manager otherwise only
// reaches into the root package for gicops.TranslateError on its error
// paths.
type Config struct {
	MinLen, MaxLen, MaxCharge int
	TopMatches                int
	Scale                     int
	DF                        int32
	DM                        float64
	MinSharedPeaks            int
	MinCPSM                   int
	ExpectMax                 float64
	MaxMass                   float64
}

// Manager drives one node's share of a search run: it owns the read-only
// index, the per-worker scratch pool, the scoring worker pool, and the
// distributed exchanger, and produces accepted PSMs into an Output.
type Manager struct {
	Idx       *index.Idx
	Cfg       Config
	Pool      *scoring.Pool
	Workers   *WorkerPool
	Exchanger *distributed.Exchanger
	Output    *Output

	// Resume, when non-nil, marks spectra already scored in a prior,
	// interrupted run; ScoreBatch skips them instead of rescoring.
	Resume *checkpoint.Set
	// Log, when non-nil, records one Completion per ScoreBatch call so a
	// later run can resume past it.
	Log *checkpoint.ResumeLog

	chunksByLen map[int][]*index.Chunk
}

// New builds a Manager over idx, dispatching scoring work across workers
// goroutines (see NewWorkerPool) and exchanging histograms through
// exchanger. ScoreBatch calls exchanger.Round for every non-empty batch,
// so a nil exchanger panics there; passing a single-node Exchanger
// (distributed.Config{Nodes: 1}) is the normal way to run C7 in bypass
// mode (§4.6).
func New(idx *index.Idx, cfg Config, workers int, exchanger *distributed.Exchanger) *Manager {
	m := &Manager{
		Idx:       idx,
		Cfg:       cfg,
		Pool:      scoring.NewPool(len(idx.Peptides), cfg.TopMatches),
		Workers:   NewWorkerPool(workers),
		Exchanger: exchanger,
		Output:    NewOutput(),
	}
	m.chunksByLen = make(map[int][]*index.Chunk)
	for i := range idx.Chunks {
		c := &idx.Chunks[i]
		if c.PepLen < cfg.MinLen || c.PepLen > cfg.MaxLen {
			continue
		}
		m.chunksByLen[c.PepLen] = append(m.chunksByLen[c.PepLen], c)
	}
	return m
}

// Close releases the manager's worker pool.
func (m *Manager) Close() {
	m.Workers.Close()
}

// localHit is one spectrum's locally best candidate plus the histogram
// bounds C6 needs to encode its tail, collected by ScoreBatch's workers and
// consumed after the exchange completes.
type localHit struct {
	best scoring.HCell
	qctx scoring.QueryContext
}

// ScoreBatch runs C2-C6 for every spectrum in batch across the manager's
// worker pool, exchanges the resulting partial histograms through C7, and
// appends every accepted PSM to m.Output.
//
// Identity propagation: the wire protocol (wire.PR/wire.Tail) carries only
// histogram statistics, never a candidate peptide id, so a node that owns
// a spectrum under the C7 owner policy but never scored it locally has no
// candidate to report even once it has a combined, statistically sound
// histogram. The owning node's own local top-1 hit is therefore treated as
// authoritative for identity; the distributed exchange's only job is to
// enlarge the background sample the tail fit draws on before that hit's
// E-value is computed.
func (m *Manager) ScoreBatch(ctx context.Context, batch spectrum.Batch) error {
	n := batch.NumSpectra()
	if n == 0 {
		return nil
	}

	var mu sync.Mutex
	local := make([]distributed.LocalPartial, 0, n)
	hits := make(map[core.SpectrumID]localHit, n)

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for q := 0; q < n; q++ {
		q := q
		if m.Resume != nil && m.Resume.Covers(batch.FileIdx, batch.QID[q]) {
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			partial, hit, ok := m.scoreOne(batch, q)
			if !ok {
				return
			}
			mu.Lock()
			local = append(local, partial)
			hits[partial.QID] = hit
			mu.Unlock()
		}
		if err := m.Workers.Submit(ctx, task); err != nil {
			errOnce.Do(func() { firstErr = err })
			wg.Done()
			continue
		}
	}
	wg.Wait()
	if firstErr != nil {
		return fmt.Errorf("manager: submitting batch: %w", gicops.TranslateError(firstErr, m.Cfg.MinCPSM))
	}

	combined, err := m.Exchanger.Round(ctx, local)
	if err != nil {
		return fmt.Errorf("manager: exchange round: %w", gicops.TranslateError(err, m.Cfg.MinCPSM))
	}

	for qid, c := range combined {
		hit, ok := hits[qid]
		if !ok {
			// This node owns qid under the C7 policy but never scored it
			// itself; without a local candidate there is nothing to report.
			continue
		}

		if int(c.N) < m.Cfg.MinCPSM {
			continue
		}

		model, err := survival.Fit(c.Survival, int(c.N))
		if err != nil {
			continue
		}

		hyperBin := float64(scoring.Bin(float64(c.HyperMax)))
		eValue := model.EValue(hyperBin, float64(c.N))
		if eValue > m.Cfg.ExpectMax {
			continue
		}

		m.Output.Add(Result{
			FileIdx:       hit.qctx.FileIdx,
			QID:           qid,
			PrecursorMass: hit.qctx.PrecursorMass,
			Charge:        hit.qctx.Charge,
			RT:            hit.qctx.RT,
			PeptideID:     hit.best.PeptideID,
			Hyperscore:    float64(hit.best.Score),
			SharedIons:    hit.best.SharedIons,
			TotalIons:     hit.best.TotalIons,
			CPSMs:         int(c.N),
			EValue:        eValue,
		})
	}

	if m.Log != nil {
		first, last := batch.QID[0], batch.QID[0]
		for _, qid := range batch.QID[1:] {
			if qid < first {
				first = qid
			}
			if qid > last {
				last = qid
			}
		}
		if err := m.Log.Append(checkpoint.Completion{FileIdx: batch.FileIdx, FirstQID: first, LastQID: last}); err != nil {
			return fmt.Errorf("manager: logging checkpoint: %w", err)
		}
	}

	return nil
}

// scoreOne runs C2-C6 for one spectrum row q of batch, returning its
// encoded partial result and local best hit. ok is false when the
// precursor window was empty or no candidate cleared min_shp.
func (m *Manager) scoreOne(batch spectrum.Batch, q int) (distributed.LocalPartial, localHit, bool) {
	pmass := batch.PrecursorMass[q]
	minID, maxID := index.PrecursorWindow(m.Idx, pmass, m.Cfg.DM)
	if minID > maxID {
		return distributed.LocalPartial{}, localHit{}, false
	}

	scratch := m.Pool.Get()
	defer m.Pool.Put(scratch)

	moz, intensity := batch.Peaks(q)
	opt := scoring.WindowOptions{
		DF:      m.Cfg.DF,
		MinShp:  m.Cfg.MinSharedPeaks,
		MaxMass: int32(m.Cfg.MaxMass * float64(m.Cfg.Scale)),
	}
	qctx := scoring.QueryContext{
		FileIdx:       batch.FileIdx,
		PrecursorMass: pmass,
		Charge:        batch.Charge[q],
		RT:            batch.RetentionTime[q],
	}

	for length := m.Cfg.MinLen; length <= m.Cfg.MaxLen; length++ {
		for _, chunk := range m.chunksByLen[length] {
			scoring.Lookup(scratch.Scorecard, chunk, minID, maxID, moz, intensity, opt, scratch.Touched)
			scoring.FinalizeChunk(scratch.Scorecard, scratch.TopK, scratch.Histogram, minID, maxID, m.Cfg.MinSharedPeaks, qctx, scratch.Touched)
		}
	}

	sorted := scratch.TopK.Sorted()
	if len(sorted) == 0 {
		return distributed.LocalPartial{}, localHit{}, false
	}

	stt, end, ok := scratch.Histogram.Bounds()
	if !ok {
		return distributed.LocalPartial{}, localHit{}, false
	}

	qid := batch.QID[q]
	pr, tail := wire.Encode(qid, scratch.Histogram.Survival[:], stt, end, sorted[0].Score)

	return distributed.LocalPartial{QID: qid, PR: pr, Tail: tail},
		localHit{best: sorted[0], qctx: qctx},
		true
}
