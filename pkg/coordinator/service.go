package coordinator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/hyp3rd/ewrap"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/savid/benchstats/pkg/config"
	"github.com/savid/benchstats/pkg/figure"
	"github.com/savid/benchstats/pkg/report"
	"github.com/savid/benchstats/pkg/sentinel"
)

// Opener shows a saved figure to the user.
type Opener func(ctx context.Context, path string) error

type Service struct {
	cfg    *config.Config
	out    io.Writer
	open   Opener
	figure figure.Options
	log    logrus.FieldLogger
}

func New(cfg *config.Config, out io.Writer) *Service {
	opts := figure.DefaultOptions()
	opts.DPI = cfg.DPI

	return &Service{
		cfg:    cfg,
		out:    out,
		open:   SystemOpener,
		figure: opts,
		log:    logrus.WithField("component", "coordinator"),
	}
}

// WithOpener replaces the viewer used when display is enabled.
func (s *Service) WithOpener(o Opener) *Service {
	s.open = o
	return s
}

// Run computes the report, stages the JSON export, renders and saves the
// figure and only then prints the text summary, so a failure leaves none
// of them behind.
func (s *Service) Run(ctx context.Context) (*report.Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	rep, err := report.Build(s.cfg.Samples, s.cfg.Divisor, s.cfg.Bins)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(summaryFields(rep, s.cfg.Unit)).Info("Statistics computed")

	var text bytes.Buffer
	if err := rep.WriteText(&text); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, ewrap.Wrap(err, "before rendering")
	}

	var export *report.Staged
	if s.cfg.JSONPath != "" {
		if export, err = rep.StageJSON(s.cfg.JSONPath); err != nil {
			return nil, err
		}
	}

	size, err := s.render(rep)
	if err != nil {
		if export != nil {
			export.Discard()
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"path": s.cfg.OutputPath,
		"size": humanize.Bytes(uint64(size)),
		"dpi":  s.cfg.DPI,
	}).Info("Figure saved")

	if export != nil {
		if err := export.Commit(); err != nil {
			export.Discard()
			if rmErr := os.Remove(s.cfg.OutputPath); rmErr != nil {
				s.log.WithError(rmErr).Warn("Could not remove figure")
			}
			return nil, err
		}
		s.log.WithField("path", export.Path()).Info("Report exported")
	}

	if _, err := io.Copy(s.out, &text); err != nil {
		return nil, ewrap.Wrapf(sentinel.ErrIO, "write report: %v", err)
	}

	if s.cfg.Display {
		if err := s.open(ctx, s.cfg.OutputPath); err != nil {
			s.log.WithError(err).Warn("Could not display figure")
		}
	}

	return rep, nil
}

// summaryFields are the log fields describing a computed report.
func summaryFields(rep *report.Report, unit string) logrus.Fields {
	qs := rep.Summary.Percentiles

	return logrus.Fields{
		"runs":       len(rep.Samples),
		"divisor":    humanize.Commaf(rep.Divisor),
		"raw_mean":   humanize.CommafWithDigits(stat.Mean(rep.Samples, nil), 1),
		"mean":       fmt.Sprintf("%.3f %s", rep.Summary.Mean, unit),
		"cv":         fmt.Sprintf("%.2f%%", rep.Summary.CV*100),
		"outliers":   len(rep.Outliers),
		"trend":      fmt.Sprintf("%+.3f %s/run", rep.Trend.Slope, unit),
		"p_value":    fmt.Sprintf("%.4f", rep.Trend.PValue),
		"r_squared":  fmt.Sprintf("%.3f", rep.Trend.RSquared),
		"std_err":    fmt.Sprintf("%.4f", rep.Trend.StdErr),
		"percentile": fmt.Sprintf("p5=%.2f p95=%.2f", qs[0].Value, qs[len(qs)-1].Value),
	}
}

// render draws the six panels into a fresh figure and saves it. Cells 7-9
// are left blank.
func (s *Service) render(rep *report.Report) (int, error) {
	fig, err := figure.New(s.figure)
	if err != nil {
		return 0, err
	}

	unit := s.cfg.Unit
	panels := []func() error{
		func() error {
			return fig.BarsWithErrors(1, rep.Runs, rep.Normalized, rep.Summary.StdDev, rep.Summary.Mean, unit)
		},
		func() error { return fig.BoxPlot(2, rep.Box, unit) },
		func() error { return fig.Histogram(3, rep.Histogram, unit) },
		func() error { return fig.CDF(4, rep.CDF, unit) },
		func() error { return fig.RunSequence(5, rep.Runs, rep.Normalized, unit) },
		func() error { return fig.TrendScatter(6, rep.Runs, rep.Normalized, rep.Trend, unit) },
	}

	for _, draw := range panels {
		if err := draw(); err != nil {
			return 0, err
		}
	}

	caption := fmt.Sprintf("%d runs, %s = samples / %s", len(rep.Samples), unit, humanize.Commaf(rep.Divisor))
	if err := fig.Caption(caption); err != nil {
		return 0, err
	}

	return fig.Save(s.cfg.OutputPath)
}

// SystemOpener hands path to the platform's default image viewer.
// The viewer outlives the process, so it is not bound to ctx once started.
func SystemOpener(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return ewrap.Wrapf(sentinel.ErrIO, "start viewer: %v", err)
	}

	return nil
}
