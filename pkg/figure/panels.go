package figure

import (
	"fmt"
	"math"

	"github.com/hyp3rd/ewrap"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/savid/benchstats/pkg/sentinel"
	"github.com/savid/benchstats/pkg/stats"
)

const (
	barWidth = 0.8
	capWidth = 0.3
)

// BarsWithErrors draws one bar per run from zero with a symmetric error bar
// of sd on every bar and a dashed line at mean.
func (f *Figure) BarsWithErrors(index int, runs, values []float64, sd, mean float64, unit string) error {
	return f.Subplot(index, f.barsChart(runs, values, sd, mean, unit))
}

// barsChart leaves room above the tallest error bar for the legend.
func (f *Figure) barsChart(runs, values []float64, sd, mean float64, unit string) chart.Chart {
	xMin, xMax := 1-barWidth, float64(len(runs))+barWidth
	_, top := minMax(values)
	yMax := (top + sd) * math.Max(1.08, 1/(1-f.legendHeadroom(3)))

	bars := chart.ContinuousSeries{
		Name:  unit + " per run",
		Style: chart.Style{FillColor: colorBar, StrokeColor: colorBar, StrokeWidth: 1},
	}
	for i, r := range runs {
		lo, hi := r-barWidth/2, r+barWidth/2
		bars.XValues = append(bars.XValues, lo, lo, hi, hi)
		bars.YValues = append(bars.YValues, 0, values[i], values[i], 0)
	}

	series := []chart.Series{bars}

	errStyle := f.line(colorErrorBar, 1)
	for i, r := range runs {
		lo, hi := values[i]-sd, values[i]+sd
		c := capWidth / 2
		series = append(series, chart.ContinuousSeries{
			Style:   errStyle,
			XValues: []float64{r - c, r + c, r, r, r - c, r + c},
			YValues: []float64{lo, lo, lo, hi, hi, hi},
		})
	}

	meanStyle := f.line(colorMean, 1.2)
	meanStyle.StrokeDashArray = []float64{f.points(4), f.points(2.5)}
	series = append(series, chart.ContinuousSeries{
		Name:    "Mean",
		Style:   meanStyle,
		XValues: []float64{xMin, xMax},
		YValues: []float64{mean, mean},
	})

	c := f.base("Bar Chart with Error Bars", "Run Number", unit)
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.XAxis.Ticks = runTicks(runs, xMin, xMax)
	c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: yMax}
	c.Series = series
	c.Elements = []chart.Renderable{f.legend(
		legendEntry{label: bars.Name, style: bars.Style, patch: true},
		legendEntry{label: "±1 SD", style: errStyle},
		legendEntry{label: "Mean", style: meanStyle},
	)}

	return c
}

// BoxPlot draws a horizontal box-and-whisker of box with its outliers.
func (f *Figure) BoxPlot(index int, box stats.Box, unit string) error {
	lo, hi := minMax([]float64{box.LowerWhisker, box.UpperWhisker}, box.Outliers)
	xMin, xMax := padded(lo, hi, 0.08)
	sc := scale{xMin: xMin, xMax: xMax, yMin: 0, yMax: 1}

	const (
		mid       = 0.5
		halfBox   = 0.2
		halfWhisk = 0.1
	)

	whisker := f.line(colorEdge, 1)
	series := []chart.Series{
		chart.ContinuousSeries{Style: whisker, XValues: []float64{box.LowerWhisker, box.Q1}, YValues: []float64{mid, mid}},
		chart.ContinuousSeries{Style: whisker, XValues: []float64{box.Q3, box.UpperWhisker}, YValues: []float64{mid, mid}},
		chart.ContinuousSeries{Style: whisker, XValues: []float64{box.LowerWhisker, box.LowerWhisker}, YValues: []float64{mid - halfWhisk, mid + halfWhisk}},
		chart.ContinuousSeries{Style: whisker, XValues: []float64{box.UpperWhisker, box.UpperWhisker}, YValues: []float64{mid - halfWhisk, mid + halfWhisk}},
	}

	if len(box.Outliers) > 0 {
		ys := make([]float64, len(box.Outliers))
		for i := range ys {
			ys[i] = mid
		}
		series = append(series, chart.ContinuousSeries{Style: f.dots(colorEdge), XValues: box.Outliers, YValues: ys})
	}

	drawBox := func(r chart.Renderer, cb chart.Box, _ chart.Style) {
		left, right := sc.x(cb, box.Q1), sc.x(cb, box.Q3)
		top, bottom := sc.y(cb, mid+halfBox), sc.y(cb, mid-halfBox)

		r.SetFillColor(colorBox)
		r.SetStrokeColor(colorEdge)
		r.SetStrokeWidth(f.points(1))
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, bottom)
		r.LineTo(left, bottom)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()

		median := sc.x(cb, box.Median)
		r.SetStrokeColor(colorEdge)
		r.SetStrokeWidth(f.points(1.5))
		r.MoveTo(median, top)
		r.LineTo(median, bottom)
		r.Stroke()
	}

	c := f.base("Box Plot of "+unit, unit, "")
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	c.YAxis.Ticks = []chart.Tick{{Value: 0}, {Value: 1}}
	c.Series = series
	c.Elements = []chart.Renderable{drawBox}

	return f.Subplot(index, c)
}

// Histogram draws the bins as adjacent bars.
func (f *Figure) Histogram(index int, bins []stats.Bin, unit string) error {
	if len(bins) == 0 {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "histogram has no bins")
	}

	bars := chart.ContinuousSeries{
		Style: chart.Style{FillColor: colorHistogram, StrokeColor: drawing.ColorBlack, StrokeWidth: f.points(0.8)},
	}

	maxCount := 0
	for _, b := range bins {
		bars.XValues = append(bars.XValues, b.Lower, b.Lower, b.Upper, b.Upper)
		bars.YValues = append(bars.YValues, 0, float64(b.Count), float64(b.Count), 0)
		maxCount = max(maxCount, b.Count)
	}

	xMin, xMax := padded(bins[0].Lower, bins[len(bins)-1].Upper, 0.05)
	yMax := maxCount + 1

	ticks := make([]chart.Tick, 0, yMax+1)
	for i := 0; i <= yMax; i++ {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
	}

	c := f.base("Histogram of "+unit, unit, "Frequency")
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: float64(yMax)}
	c.YAxis.Ticks = ticks
	c.Series = []chart.Series{bars}

	return f.Subplot(index, c)
}

// CDF draws the empirical distribution as connected markers over a grid.
func (f *Figure) CDF(index int, points []stats.CDFPoint, unit string) error {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Value
		ys[i] = p.Probability
	}

	lo, hi := minMax(xs)
	xMin, xMax := padded(lo, hi, 0.05)

	c := f.base("Cumulative Distribution Function (CDF)", unit, "Cumulative Probability")
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.XAxis.GridMajorStyle = f.grid()
	c.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1.05}
	c.YAxis.GridMajorStyle = f.grid()
	c.Series = []chart.Series{chart.ContinuousSeries{Style: f.markers(colorCDF), XValues: xs, YValues: ys}}

	return f.Subplot(index, c)
}

// RunSequence draws values against run index as connected markers.
func (f *Figure) RunSequence(index int, runs, values []float64, unit string) error {
	xMin, xMax := 0.5, float64(len(runs))+0.5
	lo, hi := minMax(values)
	yMin, yMax := padded(lo, hi, 0.1)

	c := f.base("Run Sequence Plot", "Run Number", unit)
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.XAxis.Ticks = runTicks(runs, xMin, xMax)
	c.XAxis.GridMajorStyle = f.grid()
	c.YAxis.Range = &chart.ContinuousRange{Min: yMin, Max: yMax}
	c.YAxis.GridMajorStyle = f.grid()
	c.Series = []chart.Series{chart.ContinuousSeries{Style: f.markers(colorSequence), XValues: runs, YValues: values}}

	return f.Subplot(index, c)
}

// TrendScatter draws values against run index with the fitted line and
// its R² in the legend.
func (f *Figure) TrendScatter(index int, runs, values []float64, trend stats.Trend, unit string) error {
	xMin, xMax := 0.5, float64(len(runs))+0.5

	fitted := make([]float64, len(runs))
	for i, r := range runs {
		fitted[i] = trend.At(r)
	}

	lo, hi := minMax(values, fitted)
	yMin, yMax := padded(lo, hi, 0.1)
	h := f.legendHeadroom(1)
	yMax += (yMax - yMin) * h / (1 - h)

	fitStyle := f.line(colorMean, 1.5)
	fitName := fmt.Sprintf("Fit line (R²=%.2f)", trend.RSquared)

	c := f.base("Scatter Plot with Trend Line", "Run Number", unit)
	c.XAxis.Range = &chart.ContinuousRange{Min: xMin, Max: xMax}
	c.XAxis.Ticks = runTicks(runs, xMin, xMax)
	c.YAxis.Range = &chart.ContinuousRange{Min: yMin, Max: yMax}
	c.Series = []chart.Series{
		chart.ContinuousSeries{Style: f.dots(colorScatter), XValues: runs, YValues: values},
		chart.ContinuousSeries{Name: fitName, Style: fitStyle, XValues: runs, YValues: fitted},
	}
	c.Elements = []chart.Renderable{f.legend(legendEntry{label: fitName, style: fitStyle})}

	return f.Subplot(index, c)
}
