package stats

import (
	"math"

	"github.com/hyp3rd/ewrap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/savid/benchstats/pkg/sentinel"
)

// CDFPoint is one step of an empirical CDF.
type CDFPoint struct {
	Value       float64 `json:"value"`
	Probability float64 `json:"probability"`
}

// ECDF sorts data ascending and pairs each value with rank/n.
func ECDF(data []float64) []CDFPoint {
	sorted := sortedCopy(data)
	n := float64(len(sorted))

	out := make([]CDFPoint, len(sorted))
	for i, v := range sorted {
		out[i] = CDFPoint{Value: v, Probability: float64(i+1) / n}
	}

	return out
}

// Bin is one equal-width histogram bin. Bins are half open except the last,
// which also holds its upper edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits [min, max] of data into bins equal-width bins. When all
// values are equal the range is widened to +/-0.5 around them.
func Histogram(data []float64, bins int) ([]Bin, error) {
	if bins < 1 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "histogram needs at least one bin, got %d", bins)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}

	sorted := sortedCopy(data)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)

	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}

	return out, nil
}
