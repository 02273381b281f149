package gicops

import "github.com/mhaseeb123/gicops/distributed"

// OwnerPolicy selects how spectrum ids are mapped to owning nodes in the
// distributed exchange (§4.6, §6 `policy`).
type OwnerPolicy = distributed.Policy

// Config holds every option recognized by §6. It is populated
// programmatically or by an external loader; parsing config files/flags is
// out of scope here (per spec.md §1).
type Config struct {
	// Threads is the scoring parallelism (C8 worker pool size).
	Threads int

	// MaxPrepThreads is the upper bound on active I/O/preparation threads
	// controlled by the LASP scheduler (C9).
	MaxPrepThreads int

	// MinLen/MaxLen/MaxCharge bound the peptide length/charge combinations
	// (and therefore which index chunks are queried).
	MinLen    int
	MaxLen    int
	MaxCharge int

	// TopMatches bounds the per-spectrum top-K heap (C4).
	TopMatches int

	// Scale is the integer scaling factor for m/z binning.
	Scale int

	// DF is the fragment-mass tolerance in bins, applied symmetrically
	// (C3).
	DF int

	// DM is the precursor-mass tolerance in Da; negative means unbounded
	// (C2).
	DM float64

	// MinSharedPeaks is the minimum shared-peak count for hyperscore
	// candidacy (C4 `min_shp`).
	MinSharedPeaks int

	// MinCPSM is the minimum candidate-PSM count required to fit a
	// survival model (C5 `min_cpsm`).
	MinCPSM int

	// ExpectMax is the reporting E-value cutoff; PSMs with a higher
	// E-value are not emitted.
	ExpectMax float64

	// MinMass/MaxMass are the global precursor mass bounds.
	MinMass float64
	MaxMass float64

	// Nodes is the distributed topology size; MyID is this node's id.
	Nodes int
	MyID  int

	// Policy selects the id-to-owner assignment for the distributed
	// exchange (C7).
	Policy OwnerPolicy

	// UseGPU selects the alternative scoring backend (out of scope; the
	// CPU backend is the only one implemented here, but the tag is
	// preserved so callers can branch per §9's polymorphism note).
	UseGPU bool
}

// DefaultConfig returns a Config with the defaults used throughout gicops's
// own tests and examples.
func DefaultConfig() Config {
	return Config{
		Threads:        1,
		MaxPrepThreads: 1,
		MinLen:         7,
		MaxLen:         40,
		MaxCharge:      3,
		TopMatches:     10,
		Scale:          100,
		DF:             1,
		DM:             0.01,
		MinSharedPeaks: 2,
		MinCPSM:        1,
		ExpectMax:      0.01,
		MinMass:        500,
		MaxMass:        5000,
		Nodes:          1,
		MyID:           0,
		Policy:         distributed.PolicyCyclic,
	}
}
