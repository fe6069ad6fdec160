package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/pwmfft/batch"
	"github.com/cwbudde/pwmfft/dsp/window"
	"github.com/cwbudde/pwmfft/scope"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"input", "input_dir"},
	{"output", "output_dir"},
	{"workers", "workers"},
	{"ext", "extensions"},
	{"skip-rows", "loader.skip_rows"},
	{"time-column", "loader.time_column"},
	{"value-column", "loader.value_column"},
	{"tolerance", "sampling.tolerance"},
	{"window", "spectrum.window"},
	{"phase", "spectrum.phase"},
	{"backend", "spectrum.backend"},
	{"fundamental", "harmonics.fundamental_hz"},
	{"max-order", "harmonics.max_order"},
	{"capture-bins", "harmonics.capture_bins"},
	{"band-min", "band.min_hz"},
	{"band-max", "band.max_hz"},
	{"format", "output.format"},
	{"waveform", "output.waveform"},
	{"render", "output.render"},
	{"plot-max-hz", "output.plot_max_hz"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
}

// RegisterFlags declares the run flags on fs. Their defaults only document
// the built-in values; a flag overrides file and environment settings only
// when given.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "csv", "directory with scope capture files")
	fs.StringP("output", "o", "output", "directory receiving artifacts and the run summary")
	fs.IntP("workers", "w", 0, "files analyzed concurrently (0 = logical CPUs)")
	fs.StringSlice("ext", batch.DefaultExtensions, "capture file extensions")
	fs.Int("skip-rows", 0, "leading lines always skipped before header detection")
	fs.Int("time-column", 0, "zero-based time column")
	fs.Int("value-column", 1, "zero-based sample column")
	fs.Float64("tolerance", scope.DefaultTolerance, "accepted relative deviation of a sample interval from the median")
	fs.String("window", window.TypeHann.String(), "analysis window ("+strings.Join(window.Names(), ", ")+")")
	fs.Bool("phase", false, "add per-bin phase to the spectrum table")
	fs.String("backend", "auto", "DFT backend (auto, algofft, gonum, godsp)")
	fs.Float64("fundamental", 0, "fundamental frequency in Hz (0 = strongest bin)")
	fs.Int("max-order", 20, "highest harmonic order reported")
	fs.Int("capture-bins", 1, "peak search radius around each harmonic bin (negative disables)")
	fs.Float64("band-min", 0, "lower edge of the band-limited waveform in Hz")
	fs.Float64("band-max", 0, "upper edge of the band-limited waveform in Hz (0 = off)")
	fs.String("format", "csv", "table format (csv, parquet)")
	fs.Bool("waveform", true, "write the time-domain table")
	fs.Bool("render", false, "render PNG graphs")
	fs.Float64("plot-max-hz", 0, "add a zoomed spectrum graph up to this frequency")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-format", "console", "log format (console, json)")
}

// BindFlags binds the flags declared by RegisterFlags to their keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", fk.flag)
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", fk.flag, err)
		}
	}
	return nil
}
