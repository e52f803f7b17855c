// Package report assembles every statistic of a benchmark run and writes
// it out as the plain text summary or as JSON.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"

	"github.com/savid/benchstats/pkg/sentinel"
	"github.com/savid/benchstats/pkg/stats"
)

// Report is everything derived from one sample sequence.
type Report struct {
	Samples    []float64        `json:"samples"`
	Divisor    float64          `json:"divisor"`
	Runs       []float64        `json:"runs"`
	Normalized []float64        `json:"normalized"`
	Summary    stats.Summary    `json:"summary"`
	Fences     stats.Fences     `json:"fences"`
	Outliers   []float64        `json:"outliers"`
	Trend      stats.Trend      `json:"trend"`
	CDF        []stats.CDFPoint `json:"cdf"`
	Histogram  []stats.Bin      `json:"histogram"`
	Box        stats.Box        `json:"box"`
}

// Build normalizes samples by divisor and computes every statistic. It
// fails before anything is computed if the input is unusable.
func Build(samples []float64, divisor float64, bins int) (*Report, error) {
	normalized, err := stats.Normalize(samples, divisor)
	if err != nil {
		return nil, err
	}

	summary, err := stats.Summarize(normalized)
	if err != nil {
		return nil, err
	}

	runs := stats.Runs(len(normalized))

	trend, err := stats.FitTrend(runs, normalized)
	if err != nil {
		return nil, err
	}

	histogram, err := stats.Histogram(normalized, bins)
	if err != nil {
		return nil, err
	}

	return &Report{
		Samples:    append([]float64(nil), samples...),
		Divisor:    divisor,
		Runs:       runs,
		Normalized: normalized,
		Summary:    summary,
		Fences:     stats.IQRFences(normalized),
		Outliers:   stats.Outliers(normalized),
		Trend:      trend,
		CDF:        stats.ECDF(normalized),
		Histogram:  histogram,
		Box:        stats.BoxPlot(normalized),
	}, nil
}

// WriteText writes the seven line summary.
func (r *Report) WriteText(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Mean: %.3f", r.Summary.Mean),
		fmt.Sprintf("Median: %.3f", r.Summary.Median),
		fmt.Sprintf("Standard Deviation: %.3f", r.Summary.StdDev),
		fmt.Sprintf("Median Absolute Deviation (MAD): %.3f", r.Summary.MAD),
		fmt.Sprintf("Coefficient of Variation (CV): %.4f", r.Summary.CV),
		"Percentiles (5th, 25th, 50th, 75th, 95th): " + FormatSequence(stats.Values(r.Summary.Percentiles)),
		"Outliers: " + FormatSequence(r.Outliers),
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return ewrap.Wrap(sentinel.ErrIO, err.Error())
	}

	return nil
}

// WriteJSON writes the whole report, indented, to path.
func (r *Report) WriteJSON(path string) error {
	staged, err := r.StageJSON(path)
	if err != nil {
		return err
	}

	if err := staged.Commit(); err != nil {
		staged.Discard()
		return err
	}

	return nil
}

// Staged is an export written to a temporary file next to its
// destination. Nothing is visible at the destination until Commit.
type Staged struct {
	tmp  string
	path string
}

// StageJSON encodes the report and writes it beside path, which also
// proves path's directory is writable.
func (r *Report) StageJSON(path string) (*Staged, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, ewrap.Wrap(sentinel.ErrComputation, err.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, ewrap.Wrapf(sentinel.ErrIO, "create %s: %v", path, err)
	}

	staged := &Staged{tmp: tmp.Name(), path: path}

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		staged.Discard()
		return nil, ewrap.Wrapf(sentinel.ErrIO, "write %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		staged.Discard()
		return nil, ewrap.Wrapf(sentinel.ErrIO, "close %s: %v", path, err)
	}
	if err := os.Chmod(staged.tmp, 0o644); err != nil {
		staged.Discard()
		return nil, ewrap.Wrapf(sentinel.ErrIO, "chmod %s: %v", path, err)
	}

	return staged, nil
}

// Path is the final destination.
func (s *Staged) Path() string {
	return s.path
}

// Commit moves the staged file to its destination.
func (s *Staged) Commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		return ewrap.Wrapf(sentinel.ErrIO, "rename to %s: %v", s.path, err)
	}

	return nil
}

// Discard removes the staged file. It is a no-op after Commit.
func (s *Staged) Discard() {
	_ = os.Remove(s.tmp)
}

// FormatSequence prints values as "[a b c]" using the shortest decimal
// that round-trips each value.
func FormatSequence(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
