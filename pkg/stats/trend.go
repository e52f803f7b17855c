package stats

import (
	"math"

	"github.com/hyp3rd/ewrap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/savid/benchstats/pkg/sentinel"
)

// tiny keeps the t statistic finite for a perfect fit.
const tiny = 1.0e-20

// Trend is an ordinary least-squares fit of y on x.
type Trend struct {
	Slope           float64 `json:"slope"`
	Intercept       float64 `json:"intercept"`
	R               float64 `json:"r"`
	RSquared        float64 `json:"r_squared"`
	PValue          float64 `json:"p_value"`
	StdErr          float64 `json:"std_err"`
	InterceptStdErr float64 `json:"intercept_std_err"`
}

// At evaluates the fitted line at x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// Runs returns the 1-based run indices 1..n.
func Runs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}

	return out
}

// FitTrend regresses y on x. The p-value is two-sided for a zero slope,
// from a Student t distribution with n-2 degrees of freedom; StdErr is the
// standard error of the slope.
func FitTrend(x, y []float64) (Trend, error) {
	if len(x) != len(y) {
		return Trend{}, ewrap.Wrapf(sentinel.ErrInvalidInput, "x and y differ in length: %d != %d", len(x), len(y))
	}
	if err := Validate(x); err != nil {
		return Trend{}, err
	}
	if err := Validate(y); err != nil {
		return Trend{}, err
	}

	n := float64(len(x))
	xmean := stat.Mean(x, nil)
	ymean := stat.Mean(y, nil)

	var ssxm, ssym, ssxym float64
	for i := range x {
		dx := x[i] - xmean
		dy := y[i] - ymean
		ssxm += dx * dx
		ssym += dy * dy
		ssxym += dx * dy
	}
	ssxm /= n
	ssym /= n
	ssxym /= n

	if ssxm == 0 {
		return Trend{}, ewrap.Wrap(sentinel.ErrComputation, "regression is undefined for a constant x")
	}

	var r float64
	if ssym != 0 {
		r = ssxym / math.Sqrt(ssxm*ssym)
		r = math.Max(-1, math.Min(1, r))
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	t := Trend{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  r * r,
	}

	if len(x) == 2 {
		// Two points always fit exactly.
		t.PValue = 0
		if y[0] == y[1] {
			t.PValue = 1
		}
	} else {
		df := n - 2
		tstat := r * math.Sqrt(df/((1-r+tiny)*(1+r+tiny)))
		t.PValue = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(tstat))
		t.StdErr = math.Sqrt(math.Max(0, 1-r*r) * ssym / ssxm / df)
		t.InterceptStdErr = t.StdErr * math.Sqrt(ssxm+xmean*xmean)
	}

	for _, v := range []float64{t.Slope, t.Intercept, t.PValue, t.StdErr} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Trend{}, ewrap.Wrap(sentinel.ErrComputation, "regression is not finite")
		}
	}

	return t, nil
}
