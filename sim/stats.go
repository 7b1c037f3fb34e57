package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SummaryStats describes a sample distribution.
type SummaryStats struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
	P90    float64
	Max    float64
}

// Summarize computes summary statistics of a sample.
// Safe for empty samples (returns zero-value fields).
func Summarize(xs []float64) SummaryStats {
	if len(xs) == 0 {
		return SummaryStats{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	s := SummaryStats{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// wilsonInterval returns the Wilson score confidence interval for a
// binomial proportion with the given successes out of n trials.
// Preferred over the normal approximation because control probabilities
// near 0 or 1 are exactly the interesting regime.
func wilsonInterval(successes, n int, confidence float64) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)
	nf := float64(n)
	phat := float64(successes) / nf

	denom := 1 + z*z/nf
	center := (phat + z*z/(2*nf)) / denom
	half := z * math.Sqrt(phat*(1-phat)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
