package distributed

import (
	"context"
	"sync"
	"testing"

	"github.com/mhaseeb123/gicops/core"
	"github.com/mhaseeb123/gicops/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkPartial(t *testing.T, qid core.SpectrumID, stt, end int, fill float64, maxBin int) LocalPartial {
	t.Helper()
	survival := make([]float64, maxBin)
	for i := stt; i <= end; i++ {
		survival[i] = fill
	}
	pr, tail := wire.Encode(qid, survival, stt, end, 17.5)
	return LocalPartial{QID: qid, PR: pr, Tail: tail}
}

// TestRound_TwoNodesCyclicOwnership exercises the full two-phase exchange
// with PolicyCyclic across two in-process nodes: each node scores a mix of
// spectra it owns and spectra owned by its peer, and after Round both
// sides end up holding exactly the histograms for the spectra they own,
// with contributions from both nodes merged (§4.6, §8 invariant 6).
func TestRound_TwoNodesCyclicOwnership(t *testing.T) {
	const maxBin = 100
	cluster := NewInProcCluster(2)

	cfg0 := Config{Nodes: 2, MyID: 0, Policy: PolicyCyclic, MaxBin: maxBin}
	cfg1 := Config{Nodes: 2, MyID: 1, Policy: PolicyCyclic, MaxBin: maxBin}
	ex0 := NewExchanger(cfg0, cluster[0])
	ex1 := NewExchanger(cfg1, cluster[1])

	// qid 0,2 owned by node0; qid 1,3 owned by node1 under cyclic policy.
	// Each node contributes a partial for every qid (simulating that both
	// nodes searched a spectrum each holds in its own chunk range).
	local0 := []LocalPartial{
		mkPartial(t, 0, 10, 20, 2, maxBin),
		mkPartial(t, 1, 10, 20, 3, maxBin),
		mkPartial(t, 2, 5, 15, 1, maxBin),
		mkPartial(t, 3, 5, 15, 4, maxBin),
	}
	local1 := []LocalPartial{
		mkPartial(t, 0, 10, 20, 6, maxBin),
		mkPartial(t, 1, 10, 20, 1, maxBin),
		mkPartial(t, 2, 5, 15, 9, maxBin),
		mkPartial(t, 3, 5, 15, 2, maxBin),
	}

	var wg sync.WaitGroup
	var combined0, combined1 map[core.SpectrumID]*Combined
	var err0, err1 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		combined0, err0 = ex0.Round(context.Background(), local0)
	}()
	go func() {
		defer wg.Done()
		combined1, err1 = ex1.Round(context.Background(), local1)
	}()
	wg.Wait()

	require.NoError(t, err0)
	require.NoError(t, err1)

	// node0 owns qid 0 and 2.
	require.Contains(t, combined0, core.SpectrumID(0))
	require.Contains(t, combined0, core.SpectrumID(2))
	assert.NotContains(t, combined0, core.SpectrumID(1))
	assert.NotContains(t, combined0, core.SpectrumID(3))

	// node1 owns qid 1 and 3.
	require.Contains(t, combined1, core.SpectrumID(1))
	require.Contains(t, combined1, core.SpectrumID(3))

	// qid 0's histogram on node0 must merge both nodes' contributions:
	// bins 10..20 at (2+6)=8 each.
	for i := 10; i <= 20; i++ {
		assert.InDelta(t, 8, combined0[0].Survival[i], 1e-9, "bin %d", i)
	}
	assert.Equal(t, int64(8*11), combined0[0].N)

	// qid 3's histogram on node1 merges 4 (from node0) + 2 (from node1)
	// over bins 5..15.
	for i := 5; i <= 15; i++ {
		assert.InDelta(t, 6, combined1[3].Survival[i], 1e-9, "bin %d", i)
	}

	assert.ElementsMatch(t, []uint32{0, 2}, ex0.OwnedIDs())
	assert.ElementsMatch(t, []uint32{1, 3}, ex1.OwnedIDs())
}

func TestRound_SingleNodeBypassesExchange(t *testing.T) {
	const maxBin = 50
	cfg := Config{Nodes: 1, MyID: 0, Policy: PolicyCyclic, MaxBin: maxBin}
	ex := NewExchanger(cfg, nil)

	local := []LocalPartial{mkPartial(t, 9, 1, 5, 3, maxBin)}
	combined, err := ex.Round(context.Background(), local)
	require.NoError(t, err)
	require.Contains(t, combined, core.SpectrumID(9))
	assert.Equal(t, int64(3*5), combined[9].N)
	assert.ElementsMatch(t, []uint32{9}, ex.OwnedIDs())
}
