package coordinator

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savid/benchstats/pkg/config"
	"github.com/savid/benchstats/pkg/sentinel"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		Samples:    append([]float64(nil), config.DefaultSamples...),
		Divisor:    config.DefaultDivisor,
		OutputPath: filepath.Join(dir, "dmips_plot.png"),
		DPI:        72,
		Bins:       config.DefaultBins,
		LogLevel:   "info",
		Unit:       config.DefaultUnit,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.JSONPath = filepath.Join(filepath.Dir(cfg.OutputPath), "report.json")

	var out bytes.Buffer
	rep, err := New(cfg, &out).Run(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 565.525, rep.Summary.Mean, 0.01)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	for i, prefix := range []string{
		"Mean: ",
		"Median: ",
		"Standard Deviation: ",
		"Median Absolute Deviation (MAD): ",
		"Coefficient of Variation (CV): ",
		"Percentiles (5th, 25th, 50th, 75th, 95th): ",
		"Outliers: ",
	} {
		assert.True(t, strings.HasPrefix(lines[i], prefix), lines[i])
	}
	assert.Equal(t, "Mean: 565.525", lines[0])

	f, err := os.Open(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 14*72, img.Bounds().Dx())
	assert.Equal(t, 10*72, img.Bounds().Dy())

	assert.FileExists(t, cfg.JSONPath)
}

func TestRunIsRepeatable(t *testing.T) {
	var a, b bytes.Buffer

	cfg := testConfig(t)
	_, err := New(cfg, &a).Run(context.Background())
	require.NoError(t, err)
	_, err = New(cfg, &b).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
}

func TestRunInvalidInputProducesNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{name: "empty", mutate: func(c *config.Config) { c.Samples = nil }},
		{name: "single", mutate: func(c *config.Config) { c.Samples = []float64{1} }},
		{name: "zero divisor", mutate: func(c *config.Config) { c.Divisor = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			var out bytes.Buffer
			_, err := New(cfg, &out).Run(context.Background())
			assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
			assert.Empty(t, out.String())
			assert.NoFileExists(t, cfg.OutputPath)
		})
	}
}

func TestRunUnwritableOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputPath = filepath.Join(t.TempDir(), "missing", "plot.png")

	var out bytes.Buffer
	_, err := New(cfg, &out).Run(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrIO)
	assert.Empty(t, out.String())
}

func TestRunJSONFailureProducesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.JSONPath = filepath.Join(t.TempDir(), "missing", "report.json")

	var out bytes.Buffer
	_, err := New(cfg, &out).Run(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrIO)
	assert.Empty(t, out.String())
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestRunJSONCommitFailureRemovesFigure(t *testing.T) {
	cfg := testConfig(t)
	// a directory at the export path lets staging succeed and the rename fail
	cfg.JSONPath = filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.Mkdir(cfg.JSONPath, 0o755))

	var out bytes.Buffer
	_, err := New(cfg, &out).Run(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrIO)
	assert.Empty(t, out.String())
	assert.NoFileExists(t, cfg.OutputPath)

	entries, err := os.ReadDir(filepath.Dir(cfg.JSONPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunFigureFailureDiscardsJSON(t *testing.T) {
	cfg := testConfig(t)
	jsonDir := t.TempDir()
	cfg.JSONPath = filepath.Join(jsonDir, "report.json")
	cfg.OutputPath = filepath.Join(t.TempDir(), "missing", "plot.png")

	var out bytes.Buffer
	_, err := New(cfg, &out).Run(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrIO)
	assert.Empty(t, out.String())

	entries, err := os.ReadDir(jsonDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSummaryFields(t *testing.T) {
	cfg := testConfig(t)

	rep, err := New(cfg, &bytes.Buffer{}).Run(context.Background())
	require.NoError(t, err)

	fields := summaryFields(rep, "DMIPS")
	assert.Equal(t, "993,628", fields["raw_mean"])
	assert.Equal(t, "1,757", fields["divisor"])
	assert.Equal(t, "565.525 DMIPS", fields["mean"])
	assert.Equal(t, 10, fields["runs"])
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := New(cfg, &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestRunDisplay(t *testing.T) {
	cfg := testConfig(t)
	cfg.Display = true

	var opened string
	svc := New(cfg, &bytes.Buffer{}).WithOpener(func(_ context.Context, path string) error {
		opened = path
		return nil
	})

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.OutputPath, opened)
}

func TestRunDisplayFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Display = true

	svc := New(cfg, &bytes.Buffer{}).WithOpener(func(context.Context, string) error {
		return sentinel.ErrIO
	})

	_, err := svc.Run(context.Background())
	assert.NoError(t, err)
}
