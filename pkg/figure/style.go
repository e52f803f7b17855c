package figure

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorBar       = drawing.ColorFromHex("add8e6").WithAlpha(178)
	colorErrorBar  = drawing.ColorRed
	colorMean      = drawing.ColorFromHex("ffa500")
	colorBox       = drawing.ColorFromHex("90ee90")
	colorHistogram = drawing.ColorFromHex("87ceeb")
	colorCDF       = drawing.ColorFromHex("006400")
	colorSequence  = drawing.ColorFromHex("800080")
	colorScatter   = drawing.ColorFromHex("008080")
	colorEdge      = drawing.ColorFromHex("333333")
	colorGrid      = drawing.ColorFromHex("d9d9d9")
	colorLegend    = drawing.ColorFromHex("cccccc")
)

// base is the frame shared by every panel: title, axis names, padding
// large enough for the title at the figure DPI.
func (f *Figure) base(title, xName, yName string) chart.Chart {
	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 11},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    int(f.points(28)),
				Left:   int(f.points(10)),
				Right:  int(f.points(10)),
				Bottom: int(f.points(8)),
			},
		},
		XAxis: chart.XAxis{
			Name:      xName,
			NameStyle: chart.Style{FontSize: 9},
			Style:     chart.Style{FontSize: 8},
		},
		YAxis: chart.YAxis{
			Name:      yName,
			NameStyle: chart.Style{FontSize: 9},
			Style:     chart.Style{FontSize: 8},
		},
	}
}

// line is a stroked series style.
func (f *Figure) line(c drawing.Color, widthPt float64) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: f.points(widthPt)}
}

// markers is a stroked series style with dots on every point.
func (f *Figure) markers(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: f.points(1.2),
		DotColor:    c,
		DotWidth:    f.points(2.5),
	}
}

// dots is a points-only series style.
func (f *Figure) dots(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotColor:    c,
		DotWidth:    f.points(3),
	}
}

func (f *Figure) grid() chart.Style {
	return chart.Style{StrokeColor: colorGrid, StrokeWidth: f.points(0.5)}
}

// padded widens [lo, hi] by frac of its span on both sides; an empty span
// is widened by one unit.
func padded(lo, hi, frac float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
	}

	return lo - span*frac, hi + span*frac
}

// runTicks labels every run index and pins the axis ends at lo and hi.
func runTicks(runs []float64, lo, hi float64) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(runs)+2)
	ticks = append(ticks, chart.Tick{Value: lo})
	for _, r := range runs {
		ticks = append(ticks, chart.Tick{Value: r, Label: strconv.FormatFloat(r, 'f', 0, 64)})
	}
	ticks = append(ticks, chart.Tick{Value: hi})

	return ticks
}

func minMax(values ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	return lo, hi
}

// scale maps data coordinates onto a chart canvas the way go-chart's
// ContinuousRange does, for elements drawn outside of a series.
type scale struct {
	xMin, xMax float64
	yMin, yMax float64
}

func (s scale) x(cb chart.Box, v float64) int {
	r := &chart.ContinuousRange{Min: s.xMin, Max: s.xMax, Domain: cb.Width()}
	return cb.Left + r.Translate(v)
}

func (s scale) y(cb chart.Box, v float64) int {
	r := &chart.ContinuousRange{Min: s.yMin, Max: s.yMax, Domain: cb.Height()}
	return cb.Bottom - r.Translate(v)
}

const legendFontSize = 7

// legendHeadroom is the share of a panel's plot height taken by a legend of
// rows entries, margin included. Data kept below 1-legendHeadroom of the
// y range stays clear of it.
func (f *Figure) legendHeadroom(rows int) float64 {
	legend := f.points(4) + float64(rows)*f.points(legendFontSize+4) + f.points(4)
	// cell minus the frame padding and the x axis band
	plot := float64(f.cellH) - f.points(28+8) - f.points(30)
	if plot <= 0 {
		return 0.5
	}

	return math.Min(0.5, legend/plot)
}

type legendEntry struct {
	label string
	style chart.Style
	patch bool
}

// legend draws a boxed legend in the top right corner of the plot area.
func (f *Figure) legend(entries ...legendEntry) chart.Renderable {
	pad := int(f.points(4))
	swatch := int(f.points(16))

	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		r.SetFont(defaults.GetFont())
		r.SetFontSize(legendFontSize)

		var textW, textH int
		for _, e := range entries {
			tb := r.MeasureText(e.label)
			textW = max(textW, tb.Width())
			textH = max(textH, tb.Height())
		}
		rowH := textH + pad
		w := 3*pad + swatch + textW
		h := pad + rowH*len(entries)
		left := cb.Right - w - pad
		top := cb.Top + pad

		r.SetFillColor(drawing.ColorWhite.WithAlpha(230))
		r.SetStrokeColor(colorLegend)
		r.SetStrokeWidth(f.points(0.5))
		r.MoveTo(left, top)
		r.LineTo(left+w, top)
		r.LineTo(left+w, top+h)
		r.LineTo(left, top+h)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()

		for i, e := range entries {
			baseline := top + rowH*(i+1)
			mid := baseline - textH/2
			x := left + pad

			if e.patch {
				r.SetFillColor(e.style.FillColor)
				r.SetStrokeColor(e.style.FillColor)
				r.SetStrokeWidth(1)
				r.MoveTo(x, mid-textH/2)
				r.LineTo(x+swatch, mid-textH/2)
				r.LineTo(x+swatch, mid+textH/2)
				r.LineTo(x, mid+textH/2)
				r.LineTo(x, mid-textH/2)
				r.Close()
				r.FillStroke()
			} else {
				r.SetStrokeColor(e.style.StrokeColor)
				r.SetStrokeWidth(e.style.StrokeWidth)
				r.SetStrokeDashArray(e.style.StrokeDashArray)
				r.MoveTo(x, mid)
				r.LineTo(x+swatch, mid)
				r.Stroke()
				r.SetStrokeDashArray(nil)
			}

			r.SetFontColor(drawing.ColorBlack)
			r.Text(e.label, x+swatch+pad, baseline)
		}
	}
}
