package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutliersNoneForDhrystone(t *testing.T) {
	data := normalized(t)

	fences := IQRFences(data)
	for _, v := range data {
		require.True(t, fences.Contains(v))
	}

	out := Outliers(data)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestOutliersKeepOrderAndValue(t *testing.T) {
	data := []float64{10, 11, 500, 12, 13, 11, 12, -400, 10}

	assert.Equal(t, []float64{500, -400}, Outliers(data))
}

func TestIQRFences(t *testing.T) {
	f := IQRFences([]float64{4, 3, 2, 1})

	assert.InDelta(t, 1.75, f.Q1, 1e-12)
	assert.InDelta(t, 3.25, f.Q3, 1e-12)
	assert.InDelta(t, 1.5, f.IQR, 1e-12)
	assert.InDelta(t, -0.5, f.Lower, 1e-12)
	assert.InDelta(t, 5.5, f.Upper, 1e-12)
	assert.True(t, f.Contains(5.5))
	assert.False(t, f.Contains(5.50001))
}

func TestBoxPlotWhiskers(t *testing.T) {
	box := BoxPlot([]float64{10, 11, 500, 12, 13, 11, 12, -400, 10})

	assert.Equal(t, 10.0, box.LowerWhisker)
	assert.Equal(t, 13.0, box.UpperWhisker)
	assert.Equal(t, 10.0, box.Q1)
	assert.Equal(t, 11.0, box.Median)
	assert.Equal(t, 12.0, box.Q3)
	assert.Equal(t, []float64{500, -400}, box.Outliers)
}

func TestBoxPlotDhrystone(t *testing.T) {
	data := normalized(t)
	box := BoxPlot(data)

	assert.InDelta(t, 547.9203187250996, box.LowerWhisker, 1e-9)
	assert.InDelta(t, 578.4684120660216, box.UpperWhisker, 1e-9)
	assert.InDelta(t, 560.0549231644849, box.Q1, 1e-9)
	assert.InDelta(t, 572.4019635742743, box.Q3, 1e-9)
	assert.Empty(t, box.Outliers)
}
