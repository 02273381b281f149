package scoring

import "math"

// Hyperscore computes §4.3's discriminating score,
//
//	hyper = log10(0.001 + fact(bc)*fact(yc)*ibc*iyc)
//
// The raw product overflows float64 almost immediately for realistic
// ion counts, so the factorial terms are combined in log space via the
// precomputed log10Factorial table (§4.3) and only the final +0.001 mixing
// step needs the linear domain, handled by a numerically safe log-sum.
func Hyperscore(bc, yc int16, ibc, iyc uint32) float64 {
	if ibc == 0 || iyc == 0 {
		// fact(bc)*fact(yc)*ibc*iyc == 0; hyper == log10(0.001).
		return -3
	}

	logTerm := Log10Factorial(bc) + Log10Factorial(yc) + math.Log10(float64(ibc)) + math.Log10(float64(iyc))

	// 0.001 is negligible once logTerm is more than a handful of orders of
	// magnitude above it; avoid overflowing math.Pow10 for large logTerm.
	if logTerm > 10 {
		return logTerm
	}
	return math.Log10(math.Pow(10, logTerm) + 0.001)
}
