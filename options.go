package gicops

import "github.com/mhaseeb123/gicops/distributed"

// Option configures a Config via NewConfig.
//
// Today options primarily exist to avoid exploding the constructor's
// parameter list; Config remains a plain exported struct for callers who
// prefer to build it directly.
type Option func(*Config)

// WithThreads sets the scoring parallelism (C8).
func WithThreads(n int) Option {
	return func(c *Config) { c.Threads = n }
}

// WithMaxPrepThreads sets the LASP scheduler's (C9) upper bound on active
// preparation threads.
func WithMaxPrepThreads(n int) Option {
	return func(c *Config) { c.MaxPrepThreads = n }
}

// WithLengthBounds sets the peptide length bounds used to select index
// chunks.
func WithLengthBounds(minLen, maxLen int) Option {
	return func(c *Config) {
		c.MinLen = minLen
		c.MaxLen = maxLen
	}
}

// WithMaxCharge sets the maximum precursor/fragment charge state queried.
func WithMaxCharge(maxz int) Option {
	return func(c *Config) { c.MaxCharge = maxz }
}

// WithTopMatches sets the per-spectrum top-K heap capacity (C4).
func WithTopMatches(k int) Option {
	return func(c *Config) { c.TopMatches = k }
}

// WithScale sets the integer scaling factor for m/z binning.
func WithScale(scale int) Option {
	return func(c *Config) { c.Scale = scale }
}

// WithFragmentTolerance sets the fragment-mass tolerance in bins (C3 `dF`).
func WithFragmentTolerance(dF int) Option {
	return func(c *Config) { c.DF = dF }
}

// WithPrecursorTolerance sets the precursor-mass tolerance in Da (C2 `dM`).
// A negative value means unbounded.
func WithPrecursorTolerance(dM float64) Option {
	return func(c *Config) { c.DM = dM }
}

// WithMinSharedPeaks sets the minimum shared-peak count for hyperscore
// candidacy (C4 `min_shp`).
func WithMinSharedPeaks(n int) Option {
	return func(c *Config) { c.MinSharedPeaks = n }
}

// WithMinCPSM sets the minimum candidate-PSM count required to fit a
// survival model (C5 `min_cpsm`).
func WithMinCPSM(n int) Option {
	return func(c *Config) { c.MinCPSM = n }
}

// WithExpectMax sets the reporting E-value cutoff.
func WithExpectMax(e float64) Option {
	return func(c *Config) { c.ExpectMax = e }
}

// WithMassBounds sets the global precursor mass bounds.
func WithMassBounds(minMass, maxMass float64) Option {
	return func(c *Config) {
		c.MinMass = minMass
		c.MaxMass = maxMass
	}
}

// WithDistributedTopology sets the distributed topology size, this node's
// id, and the owner-assignment policy (§4.6).
func WithDistributedTopology(nodes, myID int, policy distributed.Policy) Option {
	return func(c *Config) {
		c.Nodes = nodes
		c.MyID = myID
		c.Policy = policy
	}
}

// WithGPU toggles the alternative scoring backend tag (out of scope; see
// §9's polymorphism note).
func WithGPU(useGPU bool) Option {
	return func(c *Config) { c.UseGPU = useGPU }
}

// NewConfig returns DefaultConfig with the given options applied.
func NewConfig(optFns ...Option) Config {
	c := DefaultConfig()
	for _, fn := range optFns {
		if fn != nil {
			fn(&c)
		}
	}
	return c
}
