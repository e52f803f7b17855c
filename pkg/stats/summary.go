// Package stats computes the descriptive statistics of a benchmark run:
// location and spread, percentiles, IQR fences, a linear trend over the run
// index, and the empirical distribution used by the plots.
package stats

import (
	"math"

	"github.com/hyp3rd/ewrap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/savid/benchstats/pkg/sentinel"
)

// normalScale turns a median absolute deviation into a consistent estimator
// of the standard deviation of normally distributed data (~1.4826).
var normalScale = 1 / distuv.UnitNormal.Quantile(0.75)

// Summary is the descriptive summary of one normalized sequence.
type Summary struct {
	N           int        `json:"n"`
	Min         float64    `json:"min"`
	Max         float64    `json:"max"`
	Mean        float64    `json:"mean"`
	Median      float64    `json:"median"`
	StdDev      float64    `json:"std_dev"`
	MAD         float64    `json:"mad"`
	CV          float64    `json:"cv"`
	Percentiles []Quantile `json:"percentiles"`
}

// Normalize divides every sample by divisor.
func Normalize(samples []float64, divisor float64) ([]float64, error) {
	if err := Validate(samples); err != nil {
		return nil, err
	}
	if math.IsNaN(divisor) || math.IsInf(divisor, 0) || divisor <= 0 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "divisor must be a positive finite number, got %v", divisor)
	}

	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v / divisor
	}

	return out, nil
}

// Validate rejects sequences no summary can be computed from. A single
// sample is rejected too: the sample standard deviation needs two.
func Validate(data []float64) error {
	if len(data) == 0 {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "sample sequence is empty")
	}
	if len(data) < 2 {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "at least two samples are required")
	}

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ewrap.Wrapf(sentinel.ErrInvalidInput, "sample %d is not finite: %v", i+1, v)
		}
	}

	return nil
}

// Summarize computes the Summary of data using the sample (n-1) standard
// deviation and the interpolating Percentile.
func Summarize(data []float64) (Summary, error) {
	if err := Validate(data); err != nil {
		return Summary{}, err
	}

	sorted := sortedCopy(data)

	s := Summary{
		N:      len(data),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(data, nil),
		Median: Percentile(sorted, 50),
		StdDev: stat.StdDev(data, nil),
		MAD:    MedianAbsoluteDeviation(sorted),
	}

	if s.Mean == 0 {
		return Summary{}, ewrap.Wrap(sentinel.ErrComputation, "coefficient of variation is undefined for a zero mean")
	}
	s.CV = s.StdDev / s.Mean

	s.Percentiles = Percentiles(data, DefaultPercentiles...)

	for _, v := range []float64{s.Mean, s.StdDev, s.MAD, s.CV} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Summary{}, ewrap.Wrap(sentinel.ErrComputation, "summary is not finite")
		}
	}

	return s, nil
}

// MedianAbsoluteDeviation returns the median of |x - median(x)| scaled to
// estimate a normal standard deviation.
func MedianAbsoluteDeviation(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}

	median := Percentile(sortedCopy(data), 50)

	dev := make([]float64, len(data))
	for i, v := range data {
		dev[i] = math.Abs(v - median)
	}

	return Percentile(sortedCopy(dev), 50) * normalScale
}
