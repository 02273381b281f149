// Package distributed implements the C7 distributed exchange: deterministic
// spectrum-id ownership, the size-then-payload scatter/gather protocol, and
// the DynamoDB-backed node registry for the `nodes`/`myid` topology.
package distributed

import "github.com/mhaseeb123/gicops/core"

// Policy selects the id-to-owner assignment for the distributed exchange
// (§4.6, §6 `policy`).
type Policy int

const (
	// PolicyCyclic assigns owner(qID) = qID mod nodes.
	PolicyCyclic Policy = iota
	// PolicyChunk assigns contiguous runs of spectrum ids to each node.
	PolicyChunk
	// PolicyZigzag alternates direction every `nodes` spectra, evening out
	// any systematic per-node cost skew that a plain round-robin can leave
	// when spectra near a batch boundary are more expensive to score.
	PolicyZigzag
)

// String implements fmt.Stringer for logging.
func (p Policy) String() string {
	switch p {
	case PolicyCyclic:
		return "cyclic"
	case PolicyChunk:
		return "chunk"
	case PolicyZigzag:
		return "zigzag"
	default:
		return "unknown"
	}
}

// chunkSizeDefault is the run length used by PolicyChunk when Owner's
// chunkSize argument is zero or negative.
const chunkSizeDefault = 64

// Owner returns the node id that owns spectrum qid under policy, for a
// topology of nodes participants (§4.6). chunkSize configures PolicyChunk's
// run length; it is ignored by the other policies. A zero or negative
// chunkSize falls back to chunkSizeDefault.
func Owner(qid core.SpectrumID, nodes int, policy Policy, chunkSize int) core.NodeID {
	if nodes <= 1 {
		return 0
	}
	q := int64(qid)
	if q < 0 {
		q = -q
	}
	n := int64(nodes)

	switch policy {
	case PolicyChunk:
		if chunkSize <= 0 {
			chunkSize = chunkSizeDefault
		}
		return core.NodeID((q / int64(chunkSize)) % n)
	case PolicyZigzag:
		period := 2 * n
		pos := q % period
		if pos < n {
			return core.NodeID(pos)
		}
		return core.NodeID(period - 1 - pos)
	default: // PolicyCyclic
		return core.NodeID(q % n)
	}
}
