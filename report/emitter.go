package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrOutputWrite reports that an artifact could not be written.
var ErrOutputWrite = errors.New("output write failed")

// Format selects the encoding of the spectrum and waveform tables.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Formats lists the supported table formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatParquet}
}

// ParseFormat resolves a configuration name to a Format.
func ParseFormat(name string) (Format, error) {
	key := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range Formats() {
		if f == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (known: csv, parquet)", name)
}

func (f Format) ext() string {
	return "." + string(f)
}

// Options configures an Emitter.
type Options struct {
	// Dir receives all artifacts and is created on first use.
	Dir    string
	Format Format
	// Waveform adds the time-domain table.
	Waveform bool
	// Render adds PNG graphs.
	Render bool
	// PlotMaxHz adds a zoomed spectrum graph up to this frequency when
	// rendering. Zero disables it.
	PlotMaxHz float64
}

// DefaultOptions returns the emitter defaults: CSV tables with the
// waveform into ./output, no graphs.
func DefaultOptions() Options {
	return Options{
		Dir:      "output",
		Format:   FormatCSV,
		Waveform: true,
	}
}

// Validate checks o for unusable values.
func (o Options) Validate() error {
	if o.Dir == "" {
		return errors.New("output directory must not be empty")
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.PlotMaxHz < 0 || math.IsNaN(o.PlotMaxHz) || math.IsInf(o.PlotMaxHz, 0) {
		return fmt.Errorf("plot max frequency must be >= 0: %v", o.PlotMaxHz)
	}
	return nil
}

// Emitter writes per-file artifact sets. It is safe for concurrent use as
// long as concurrent calls use distinct stems.
type Emitter struct {
	opts Options
}

// NewEmitter validates opts and returns an Emitter.
func NewEmitter(opts Options) (*Emitter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Emitter{opts: opts}, nil
}

// Options returns the emitter configuration.
func (e *Emitter) Options() Options {
	return e.opts
}

type artifact struct {
	name  string
	write func(io.Writer) error
}

// Emit writes the artifact set of r and returns the file names written,
// in write order. The metadata document is written last and lists the
// others. Artifacts of an earlier run for the same stem are removed first,
// so the directory only holds what the current options produce. On failure
// the returned error wraps ErrOutputWrite and names the artifact, and the
// partial set is removed.
func (e *Emitter) Emit(r Result) ([]string, error) {
	if !validStem(r.Stem) {
		return nil, fmt.Errorf("%w: invalid stem %q", ErrOutputWrite, r.Stem)
	}
	if err := os.MkdirAll(e.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	if err := e.Clean(r.Stem); err != nil {
		return nil, err
	}

	plan := e.plan(r)
	names := make([]string, 0, len(plan)+1)
	for _, a := range plan {
		names = append(names, a.name)
	}

	md := r.Metadata(names)
	plan = append(plan, artifact{
		name: r.Stem + ".json",
		write: func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(md)
		},
	})

	written := make([]string, 0, len(plan))
	for _, a := range plan {
		if err := writeAtomic(filepath.Join(e.opts.Dir, a.name), a.write); err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrOutputWrite, a.name, err)
			return nil, errors.Join(err, e.Clean(r.Stem))
		}
		written = append(written, a.name)
	}

	return written, nil
}

// Clean removes every artifact any option set could have written for stem.
// Files of other stems are left alone, even when their names share the
// prefix. A missing output directory is not an error.
func (e *Emitter) Clean(stem string) error {
	if !validStem(stem) {
		return fmt.Errorf("%w: invalid stem %q", ErrOutputWrite, stem)
	}

	entries, err := os.ReadDir(e.opts.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	for _, de := range entries {
		if de.IsDir() || !ownedBy(de.Name(), stem) {
			continue
		}
		if err := os.Remove(filepath.Join(e.opts.Dir, de.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %w", ErrOutputWrite, de.Name(), err)
		}
	}
	return nil
}

func validStem(stem string) bool {
	return stem != "" && !strings.ContainsAny(stem, `/\`)
}

// artifactSuffixes are the names an artifact set can take after the stem.
var artifactSuffixes = map[string]bool{
	".json":             true,
	"_spectrum.csv":     true,
	"_spectrum.parquet": true,
	"_spectrum.png":     true,
	"_waveform.csv":     true,
	"_waveform.parquet": true,
	"_waveform.png":     true,
	"_harmonics.csv":    true,
	"_harmonics.png":    true,
	"_band.csv":         true,
}

// ownedBy reports whether name is an artifact of stem, including the zoomed
// spectrum graph "<stem>_spectrum_<max>hz.png".
func ownedBy(name, stem string) bool {
	rest, ok := strings.CutPrefix(name, stem)
	if !ok {
		return false
	}
	if artifactSuffixes[rest] {
		return true
	}
	zoom, ok := strings.CutPrefix(rest, "_spectrum_")
	if !ok {
		return false
	}
	zoom, ok = strings.CutSuffix(zoom, "hz.png")
	if !ok {
		return false
	}
	_, err := strconv.ParseFloat(zoom, 64)
	return err == nil
}

func (e *Emitter) plan(r Result) []artifact {
	ext := e.opts.Format.ext()

	plan := []artifact{{
		name:  r.Stem + "_spectrum" + ext,
		write: e.spectrumTable(r),
	}}

	if e.opts.Waveform {
		plan = append(plan, artifact{
			name:  r.Stem + "_waveform" + ext,
			write: e.sampleTable(r.Trace.Time, r.Trace.Value),
		})
	}

	plan = append(plan, artifact{
		name:  r.Stem + "_harmonics.csv",
		write: harmonicTable(r),
	})

	if r.Band != nil {
		plan = append(plan, artifact{
			name:  r.Stem + "_band.csv",
			write: csvSamples(r.Trace.Time, r.Band),
		})
	}

	if e.opts.Render {
		plan = append(plan,
			artifact{name: r.Stem + "_waveform.png", write: renderPNG(r, waveformPlot)},
			artifact{name: r.Stem + "_spectrum.png", write: renderPNG(r, spectrumPlot(0))},
		)
		if e.opts.PlotMaxHz > 0 {
			plan = append(plan, artifact{
				name:  r.Stem + "_spectrum_" + strconv.FormatFloat(e.opts.PlotMaxHz, 'f', -1, 64) + "hz.png",
				write: renderPNG(r, spectrumPlot(e.opts.PlotMaxHz)),
			})
		}
		if len(r.Harmonics.Harmonics) > 0 {
			plan = append(plan, artifact{
				name:  r.Stem + "_harmonics.png",
				write: renderPNG(r, harmonicsPlot),
			})
		}
	}

	return plan
}

func (e *Emitter) spectrumTable(r Result) func(io.Writer) error {
	s := r.Spectrum
	n := s.Len()
	withPhase := len(s.Phase) == n && s.Phase != nil

	if e.opts.Format == FormatParquet {
		return func(w io.Writer) error {
			if withPhase {
				rows := make([]SpectrumPhaseRow, n)
				for i := range rows {
					rows[i] = SpectrumPhaseRow{FrequencyHz: s.Frequency[i], MagnitudeV: s.Magnitude[i], PhaseRad: s.Phase[i]}
				}
				return writeParquet(w, rows)
			}
			rows := make([]SpectrumRow, n)
			for i := range rows {
				rows[i] = SpectrumRow{FrequencyHz: s.Frequency[i], MagnitudeV: s.Magnitude[i]}
			}
			return writeParquet(w, rows)
		}
	}

	header := []string{"frequency_hz", "magnitude_v"}
	if withPhase {
		header = append(header, "phase_rad")
	}
	return func(w io.Writer) error {
		return writeCSV(w, header, n, func(i int, rec []string) {
			rec[0] = formatFloat(s.Frequency[i])
			rec[1] = formatFloat(s.Magnitude[i])
			if withPhase {
				rec[2] = formatFloat(s.Phase[i])
			}
		})
	}
}

func (e *Emitter) sampleTable(tm, values []float64) func(io.Writer) error {
	if e.opts.Format == FormatParquet {
		return func(w io.Writer) error {
			rows := make([]SampleRow, min(len(tm), len(values)))
			for i := range rows {
				rows[i] = SampleRow{TimeS: tm[i], AmplitudeV: values[i]}
			}
			return writeParquet(w, rows)
		}
	}
	return csvSamples(tm, values)
}

func csvSamples(tm, values []float64) func(io.Writer) error {
	return func(w io.Writer) error {
		return writeCSV(w, []string{"time_s", "amplitude_v"}, min(len(tm), len(values)), func(i int, rec []string) {
			rec[0] = formatFloat(tm[i])
			rec[1] = formatFloat(values[i])
		})
	}
}

func harmonicTable(r Result) func(io.Writer) error {
	rows := r.Harmonics.Harmonics
	return func(w io.Writer) error {
		header := []string{"order", "frequency_hz", "magnitude_v", "content_pct"}
		return writeCSV(w, header, len(rows), func(i int, rec []string) {
			h := rows[i]
			rec[0] = strconv.Itoa(h.Order)
			rec[1] = formatFloat(h.Frequency)
			rec[2] = formatFloat(h.Magnitude)
			rec[3] = formatFloat(h.ContentPct)
		})
	}
}
