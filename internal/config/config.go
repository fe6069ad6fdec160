// Package config loads the run configuration from defaults, an optional
// YAML file, PWMFFT_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cwbudde/pwmfft/batch"
	"github.com/cwbudde/pwmfft/dsp/window"
	"github.com/cwbudde/pwmfft/internal/logging"
	"github.com/cwbudde/pwmfft/measure/spectral"
	"github.com/cwbudde/pwmfft/measure/thd"
	"github.com/cwbudde/pwmfft/report"
	"github.com/cwbudde/pwmfft/scope"
)

const (
	// EnvPrefix prefixes environment overrides; nested keys use '_' for
	// '.', as in PWMFFT_SPECTRUM_WINDOW.
	EnvPrefix = "PWMFFT"
	// FileName is looked up in the working directory when no file is
	// given explicitly.
	FileName = "pwmfft"
)

// Config mirrors the YAML layout.
type Config struct {
	InputDir   string          `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir  string          `mapstructure:"output_dir" yaml:"output_dir"`
	Workers    int             `mapstructure:"workers" yaml:"workers"`
	Extensions []string        `mapstructure:"extensions" yaml:"extensions"`
	Loader     LoaderConfig    `mapstructure:"loader" yaml:"loader"`
	Sampling   SamplingConfig  `mapstructure:"sampling" yaml:"sampling"`
	Spectrum   SpectrumConfig  `mapstructure:"spectrum" yaml:"spectrum"`
	Harmonics  HarmonicsConfig `mapstructure:"harmonics" yaml:"harmonics"`
	Band       BandConfig      `mapstructure:"band" yaml:"band"`
	Output     OutputConfig    `mapstructure:"output" yaml:"output"`
	Log        LogConfig       `mapstructure:"log" yaml:"log"`
}

type LoaderConfig struct {
	SkipRows    int `mapstructure:"skip_rows" yaml:"skip_rows"`
	TimeColumn  int `mapstructure:"time_column" yaml:"time_column"`
	ValueColumn int `mapstructure:"value_column" yaml:"value_column"`
}

type SamplingConfig struct {
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

type SpectrumConfig struct {
	Window  string `mapstructure:"window" yaml:"window"`
	Phase   bool   `mapstructure:"phase" yaml:"phase"`
	Backend string `mapstructure:"backend" yaml:"backend"`
}

type HarmonicsConfig struct {
	// FundamentalHz of zero selects the strongest non-DC bin.
	FundamentalHz float64 `mapstructure:"fundamental_hz" yaml:"fundamental_hz"`
	MaxOrder      int     `mapstructure:"max_order" yaml:"max_order"`
	CaptureBins   int     `mapstructure:"capture_bins" yaml:"capture_bins"`
}

type BandConfig struct {
	MinHz float64 `mapstructure:"min_hz" yaml:"min_hz"`
	MaxHz float64 `mapstructure:"max_hz" yaml:"max_hz"`
}

type OutputConfig struct {
	Format    string  `mapstructure:"format" yaml:"format"`
	Waveform  bool    `mapstructure:"waveform" yaml:"waveform"`
	Render    bool    `mapstructure:"render" yaml:"render"`
	PlotMaxHz float64 `mapstructure:"plot_max_hz" yaml:"plot_max_hz"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "csv")
	v.SetDefault("output_dir", "output")
	v.SetDefault("workers", 0)
	v.SetDefault("extensions", batch.DefaultExtensions)

	v.SetDefault("loader.skip_rows", 0)
	v.SetDefault("loader.time_column", 0)
	v.SetDefault("loader.value_column", 1)

	v.SetDefault("sampling.tolerance", scope.DefaultTolerance)

	v.SetDefault("spectrum.window", window.TypeHann.String())
	v.SetDefault("spectrum.phase", false)
	v.SetDefault("spectrum.backend", string(spectral.BackendAuto))

	v.SetDefault("harmonics.fundamental_hz", 0.0)
	v.SetDefault("harmonics.max_order", 20)
	v.SetDefault("harmonics.capture_bins", 1)

	v.SetDefault("band.min_hz", 0.0)
	v.SetDefault("band.max_hz", 0.0)

	v.SetDefault("output.format", string(report.FormatCSV))
	v.SetDefault("output.waveform", true)
	v.SetDefault("output.render", false)
	v.SetDefault("output.plot_max_hz", 0.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatConsole))
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file into v and decodes the merged result.
// An explicit path must exist; without one, pwmfft.yaml in the working
// directory is used when present.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0: %d", c.Workers)
	}
	if c.Loader.SkipRows < 0 {
		return fmt.Errorf("loader.skip_rows must be >= 0: %d", c.Loader.SkipRows)
	}
	if c.Harmonics.MaxOrder < 1 {
		return fmt.Errorf("harmonics.max_order must be >= 1: %d", c.Harmonics.MaxOrder)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}

	bc, err := c.Batch()
	if err != nil {
		return err
	}
	return bc.Validate()
}

// Batch converts c into the driver configuration.
func (c Config) Batch() (batch.Config, error) {
	win, err := window.Parse(c.Spectrum.Window)
	if err != nil {
		return batch.Config{}, err
	}
	backend, err := spectral.ParseBackend(c.Spectrum.Backend)
	if err != nil {
		return batch.Config{}, err
	}
	format, err := report.ParseFormat(c.Output.Format)
	if err != nil {
		return batch.Config{}, err
	}

	return batch.Config{
		InputDir:   c.InputDir,
		Extensions: c.Extensions,
		Workers:    c.Workers,
		Loader: scope.LoaderOptions{
			SkipRows:    c.Loader.SkipRows,
			TimeColumn:  c.Loader.TimeColumn,
			ValueColumn: c.Loader.ValueColumn,
		},
		Tolerance: c.Sampling.Tolerance,
		Window:    win,
		Phase:     c.Spectrum.Phase,
		Backend:   backend,
		Harmonics: thd.Config{
			FundamentalFreq: c.Harmonics.FundamentalHz,
			MaxOrder:        c.Harmonics.MaxOrder,
			CaptureBins:     c.Harmonics.CaptureBins,
		},
		BandMinHz: c.Band.MinHz,
		BandMaxHz: c.Band.MaxHz,
		Output: report.Options{
			Dir:       c.OutputDir,
			Format:    format,
			Waveform:  c.Output.Waveform,
			Render:    c.Output.Render,
			PlotMaxHz: c.Output.PlotMaxHz,
		},
	}, nil
}
