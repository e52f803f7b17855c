package stats

// WhiskerCoef is the IQR multiple outside of which a value is an outlier.
const WhiskerCoef = 1.5

// Fences are the Tukey fences of a sequence.
type Fences struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the closed fence interval.
func (f Fences) Contains(v float64) bool {
	return v >= f.Lower && v <= f.Upper
}

// IQRFences computes Q1, Q3 and the 1.5*IQR fences with Percentile.
func IQRFences(data []float64) Fences {
	sorted := sortedCopy(data)

	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1

	return Fences{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - WhiskerCoef*iqr,
		Upper: q3 + WhiskerCoef*iqr,
	}
}

// Outliers returns the values of data outside its IQR fences, in their
// original order. The result is never nil.
func Outliers(data []float64) []float64 {
	fences := IQRFences(data)

	out := make([]float64, 0)
	for _, v := range data {
		if !fences.Contains(v) {
			out = append(out, v)
		}
	}

	return out
}

// Box holds the components of a box-and-whisker plot.
type Box struct {
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// BoxPlot computes the box of data. Whiskers reach the most extreme data
// point still inside the fences.
func BoxPlot(data []float64) Box {
	sorted := sortedCopy(data)
	fences := IQRFences(sorted)

	b := Box{
		Q1:           fences.Q1,
		Median:       Percentile(sorted, 50),
		Q3:           fences.Q3,
		LowerWhisker: fences.Q1,
		UpperWhisker: fences.Q3,
		Outliers:     Outliers(data),
	}

	for _, v := range sorted {
		if fences.Contains(v) {
			b.LowerWhisker = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if fences.Contains(sorted[i]) {
			b.UpperWhisker = sorted[i]
			break
		}
	}

	return b
}
