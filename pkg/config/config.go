// Package config resolves the run configuration from defaults, an optional
// config file, BENCHSTATS_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/savid/benchstats/pkg/sentinel"
)

const (
	// DefaultDivisor is the reference iteration count one DMIPS corresponds to.
	DefaultDivisor    = 1757
	DefaultOutputPath = "dmips_plot.png"
	DefaultDPI        = 300
	DefaultBins       = 5
	DefaultLogLevel   = "info"
	DefaultUnit       = "DMIPS"

	envPrefix = "BENCHSTATS"
)

// DefaultSamples are the Dhrystone iterations per second of ten runs.
var DefaultSamples = []float64{
	999560,
	1007195,
	1013042,
	1016369,
	1001256,
	973242,
	962696,
	994588,
	983867,
	984465,
}

// Config is one resolved run configuration.
type Config struct {
	Samples    []float64
	Divisor    float64
	OutputPath string
	DPI        int
	Bins       int
	JSONPath   string
	Display    bool
	LogLevel   string
	Unit       string
}

// interactive decides the display default: the figure is shown when a
// person is watching stdout.
var interactive = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// flagKeys maps flag names onto config keys where they differ.
var flagKeys = map[string]string{
	"output": "output_path",
	"json":   "json_path",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("benchstats", pflag.ContinueOnError)

	fs.Float64Slice("samples", DefaultSamples, "Raw throughput samples, one per run")
	fs.Float64("divisor", DefaultDivisor, "Normalization divisor applied to every sample")
	fs.String("output", DefaultOutputPath, "Path of the PNG figure")
	fs.Int("dpi", DefaultDPI, "Figure resolution in dots per inch")
	fs.Int("bins", DefaultBins, "Number of histogram bins")
	fs.String("json", "", "Also write the full report as JSON to this path")
	fs.Bool("display", interactive(), "Open the figure with the system viewer once saved (default on when stdout is a terminal)")
	fs.String("log_level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String("unit", DefaultUnit, "Name of the normalized metric used in labels")
	fs.String("config", "", "Optional config file (yaml, toml or json)")

	return fs
}

// Load parses args and resolves the configuration. pflag.ErrHelp is
// returned unwrapped when help was requested.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}

		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "flags: %v", err)
	}

	v := viper.New()
	v.SetDefault("samples", DefaultSamples)
	v.SetDefault("divisor", DefaultDivisor)
	v.SetDefault("output_path", DefaultOutputPath)
	v.SetDefault("dpi", DefaultDPI)
	v.SetDefault("bins", DefaultBins)
	v.SetDefault("json_path", "")
	v.SetDefault("display", interactive())
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("unit", DefaultUnit)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		// samples are read from the flag set directly, viper would hand
		// back the flag's %f formatted text.
		if f.Name == "config" || f.Name == "samples" {
			return
		}
		key := f.Name
		if k, ok := flagKeys[key]; ok {
			key = k
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "bind flags: %v", bindErr)
	}

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, ewrap.Wrapf(sentinel.ErrIO, "read config %s: %v", file, err)
		}
		logrus.WithField("file", v.ConfigFileUsed()).Debug("Loaded config file")
	}

	samples, err := float64Slice(v.Get("samples"))
	if fs.Changed("samples") {
		samples, err = fs.GetFloat64Slice("samples")
	}
	if err != nil {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "samples: %v", err)
	}

	cfg := &Config{
		Samples:    samples,
		Divisor:    v.GetFloat64("divisor"),
		OutputPath: v.GetString("output_path"),
		DPI:        v.GetInt("dpi"),
		Bins:       v.GetInt("bins"),
		JSONPath:   v.GetString("json_path"),
		Display:    v.GetBool("display"),
		LogLevel:   v.GetString("log_level"),
		Unit:       v.GetString("unit"),
	}

	return cfg, nil
}

// Validate checks everything that can be checked before computing.
func (c *Config) Validate() error {
	if len(c.Samples) == 0 {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "samples must not be empty")
	}
	if len(c.Samples) < 2 {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "at least two samples are required")
	}
	for i, s := range c.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return ewrap.Wrapf(sentinel.ErrInvalidInput, "sample %d is not finite", i+1)
		}
	}
	if math.IsNaN(c.Divisor) || math.IsInf(c.Divisor, 0) || c.Divisor <= 0 {
		return ewrap.Wrapf(sentinel.ErrInvalidInput, "divisor must be a positive finite number, got %v", c.Divisor)
	}
	if c.DPI <= 0 {
		return ewrap.Wrapf(sentinel.ErrInvalidInput, "dpi must be positive, got %d", c.DPI)
	}
	if c.Bins < 1 {
		return ewrap.Wrapf(sentinel.ErrInvalidInput, "bins must be at least 1, got %d", c.Bins)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return ewrap.Wrap(sentinel.ErrInvalidInput, "output path must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return ewrap.Wrapf(sentinel.ErrInvalidInput, "log level: %v", err)
	}

	return nil
}

// float64Slice accepts the shapes viper hands back for a list: a typed
// slice from defaults, a generic slice from a config file, or a string
// from a flag or the environment ("1,2,3", "1 2 3" or "[1,2,3]").
func float64Slice(raw any) ([]float64, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), t...), nil
	case []any:
		out := make([]float64, 0, len(t))
		for _, e := range t {
			f, err := cast.ToFloat64E(e)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case string:
		fields := strings.FieldsFunc(strings.Trim(strings.TrimSpace(t), "[]"), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		out := make([]float64, 0, len(fields))
		for _, s := range fields {
			f, err := cast.ToFloat64E(s)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case []string:
		out := make([]float64, 0, len(t))
		for _, s := range t {
			f, err := cast.ToFloat64E(s)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample list %T", raw)
	}
}
