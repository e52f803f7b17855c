package stats

import (
	"errors"
	"math"
	"testing"

	mstats "github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savid/benchstats/pkg/sentinel"
)

var dhrystone = []float64{999560, 1007195, 1013042, 1016369, 1001256, 973242, 962696, 994588, 983867, 984465}

const dhrystoneDivisor = 1757

func normalized(t *testing.T) []float64 {
	t.Helper()

	out, err := Normalize(dhrystone, dhrystoneDivisor)
	require.NoError(t, err)

	return out
}

func assertRel(t *testing.T, want, got float64) {
	t.Helper()
	assert.InEpsilon(t, want, got, 1e-6)
}

func TestNormalize(t *testing.T) {
	out := normalized(t)
	require.Len(t, out, len(dhrystone))

	for i := range dhrystone {
		assert.Equal(t, dhrystone[i]/dhrystoneDivisor, out[i])
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		divisor float64
	}{
		{name: "empty", samples: nil, divisor: 1},
		{name: "single sample", samples: []float64{1}, divisor: 1},
		{name: "zero divisor", samples: []float64{1, 2}, divisor: 0},
		{name: "negative divisor", samples: []float64{1, 2}, divisor: -3},
		{name: "nan divisor", samples: []float64{1, 2}, divisor: math.NaN()},
		{name: "inf sample", samples: []float64{1, math.Inf(1)}, divisor: 1},
		{name: "nan sample", samples: []float64{math.NaN(), 1}, divisor: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.samples, tt.divisor)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sentinel.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestSummarizeMatchesReferenceLibrary(t *testing.T) {
	data := normalized(t)

	s, err := Summarize(data)
	require.NoError(t, err)

	mean, err := mstats.Mean(data)
	require.NoError(t, err)
	median, err := mstats.Median(data)
	require.NoError(t, err)
	sd, err := mstats.StandardDeviationSample(data)
	require.NoError(t, err)
	mad, err := mstats.MedianAbsoluteDeviation(data)
	require.NoError(t, err)

	assert.Equal(t, len(data), s.N)
	assertRel(t, mean, s.Mean)
	assertRel(t, median, s.Median)
	assertRel(t, sd, s.StdDev)
	assertRel(t, mad*1.482602218505602, s.MAD)
	assertRel(t, sd/mean, s.CV)

	assert.InDelta(t, 565.525, s.Mean, 0.01)
	assert.InDelta(t, 547.9203187250996, s.Min, 1e-9)
	assert.InDelta(t, 578.4684120660216, s.Max, 1e-9)
}

func TestSummarizePercentiles(t *testing.T) {
	s, err := Summarize(normalized(t))
	require.NoError(t, err)

	want := []float64{550.621343198634, 560.0549231644849, 567.486624928856, 572.4019635742743, 577.6163062037564}
	require.Len(t, s.Percentiles, len(want))

	for i, q := range s.Percentiles {
		assert.Equal(t, DefaultPercentiles[i], q.Rank)
		assertRel(t, want[i], q.Value)
	}
	assert.Equal(t, s.Median, s.Percentiles[2].Value)
}

func TestSummarizeIsRepeatable(t *testing.T) {
	data := normalized(t)

	a, err := Summarize(data)
	require.NoError(t, err)
	b, err := Summarize(data)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSummarizeSingleSampleRejected(t *testing.T) {
	_, err := Summarize([]float64{42})
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}

func TestSummarizeZeroMean(t *testing.T) {
	_, err := Summarize([]float64{-1, 1})
	assert.ErrorIs(t, err, sentinel.ErrComputation)
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 40.0, Percentile(sorted, 100))
	assert.InDelta(t, 25.0, Percentile(sorted, 50), 1e-12)
	assert.InDelta(t, 17.5, Percentile(sorted, 25), 1e-12)
	assert.InDelta(t, 32.5, Percentile(sorted, 75), 1e-12)
	assert.InDelta(t, 11.5, Percentile(sorted, 5), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestPercentilesSortsInput(t *testing.T) {
	qs := Percentiles([]float64{40, 10, 30, 20}, 0, 50, 100)

	assert.Equal(t, []float64{10, 25, 40}, Values(qs))
}

func TestMedianAbsoluteDeviationScale(t *testing.T) {
	assert.InDelta(t, 1.482602218505602, normalScale, 1e-12)

	// |x - 3| = 2 1 0 1 2, median 1
	assert.InDelta(t, normalScale, MedianAbsoluteDeviation([]float64{1, 2, 3, 4, 5}), 1e-12)
}
