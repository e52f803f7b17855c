package stats

import (
	"math"
	"sort"
)

// DefaultPercentiles are the ranks reported for every run.
var DefaultPercentiles = []float64{5, 25, 50, 75, 95}

// Quantile pairs a percentile rank (0..100) with its value.
type Quantile struct {
	Rank  float64 `json:"rank"`
	Value float64 `json:"value"`
}

// Percentile returns the p-th percentile (0..100) of already sorted data.
//
// The position (n-1)*p/100 falls between two order statistics and the
// result is linearly interpolated between them.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	h := float64(n-1) * p / 100
	lo := math.Floor(h)
	hi := math.Ceil(h)

	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Percentiles sorts a copy of data and returns the value at each rank.
func Percentiles(data []float64, ranks ...float64) []Quantile {
	sorted := sortedCopy(data)

	out := make([]Quantile, 0, len(ranks))
	for _, p := range ranks {
		out = append(out, Quantile{Rank: p, Value: Percentile(sorted, p)})
	}

	return out
}

// Values strips the ranks off a quantile list.
func Values(qs []Quantile) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = q.Value
	}

	return out
}

func sortedCopy(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return sorted
}
