package scoring

import "math"

// maxCounterValue is one past the largest Bc/Yc a Cell can hold (int16
// saturation at 1<<15 - 1), and so the size of the log10Factorial table.
const maxCounterValue = 1 << 15

// log10Factorial[n] holds log10(n!), precomputed once at package init so
// the hot scoring path never calls math.Gamma or multiplies raw
// factorials, which overflow float64 well before n reaches the counters'
// saturation point.
var log10Factorial [maxCounterValue]float64

func init() {
	log10Factorial[0] = 0
	for n := 1; n < maxCounterValue; n++ {
		log10Factorial[n] = log10Factorial[n-1] + math.Log10(float64(n))
	}
}

// Log10Factorial returns log10(n!) for n in [0, maxCounterValue).
func Log10Factorial(n int16) float64 {
	if n < 0 {
		return 0
	}
	return log10Factorial[n]
}
