// Package batch drives the analysis of a directory of scope captures: each
// file is loaded, checked for uniform sampling, transformed and emitted on
// its own, and every file yields an Outcome instead of aborting the run.
package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/pwmfft/dsp/window"
	"github.com/cwbudde/pwmfft/internal/host"
	"github.com/cwbudde/pwmfft/measure/spectral"
	"github.com/cwbudde/pwmfft/measure/thd"
	"github.com/cwbudde/pwmfft/report"
	"github.com/cwbudde/pwmfft/scope"
	"github.com/cwbudde/pwmfft/stats/frequency"
	"github.com/cwbudde/pwmfft/stats/waveform"
)

// ErrInputDir reports that the input directory cannot be listed. It aborts
// the run.
var ErrInputDir = errors.New("input directory unavailable")

// dominantPeaks is the number of spectral peaks recorded per file.
const dominantPeaks = 5

// Config holds every knob of a run.
type Config struct {
	InputDir   string
	Extensions []string
	// Workers bounds concurrent files. Zero selects the logical CPU count.
	Workers int

	Loader    scope.LoaderOptions
	Tolerance float64

	Window  window.Type
	Phase   bool
	Backend spectral.Backend

	Harmonics thd.Config

	// BandMaxHz > 0 enables the band-limited waveform over
	// [BandMinHz, BandMaxHz].
	BandMinHz float64
	BandMaxHz float64

	Output report.Options
}

// DefaultConfig reads ./csv into ./output with a periodic Hann window.
func DefaultConfig() Config {
	return Config{
		InputDir:   "csv",
		Extensions: slices.Clone(DefaultExtensions),
		Loader:     scope.DefaultLoaderOptions(),
		Tolerance:  scope.DefaultTolerance,
		Window:     window.TypeHann,
		Backend:    spectral.BackendAuto,
		Output:     report.DefaultOptions(),
	}
}

// Validate checks c for unusable values.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0: %d", c.Workers)
	}
	if len(normalizeExtensions(c.Extensions)) == 0 {
		return errors.New("at least one input extension is required")
	}
	if err := c.Loader.Validate(); err != nil {
		return err
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("sampling tolerance must be > 0: %v", c.Tolerance)
	}
	if _, err := window.Parse(c.Window.String()); err != nil {
		return err
	}
	if _, err := spectral.ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.BandMinHz < 0 || c.BandMaxHz < 0 {
		return fmt.Errorf("band edges must be >= 0: [%v, %v]", c.BandMinHz, c.BandMaxHz)
	}
	if c.BandMaxHz > 0 && c.BandMinHz > c.BandMaxHz {
		return fmt.Errorf("band is inverted: min %v > max %v", c.BandMinHz, c.BandMaxHz)
	}
	if c.Harmonics.FundamentalFreq < 0 {
		return fmt.Errorf("fundamental frequency must be >= 0: %v", c.Harmonics.FundamentalFreq)
	}
	return c.Output.Validate()
}

// Emitter writes the artifacts of one analyzed file. Clean removes the
// artifacts an earlier run left for a stem whose file now fails.
type Emitter interface {
	Emit(r report.Result) ([]string, error)
	Clean(stem string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithEmitter replaces the artifact writer.
func WithEmitter(e Emitter) Option {
	return func(r *Runner) {
		r.emitter = e
	}
}

// Runner processes input directories. The pipeline stages hold no per-file
// state, so one Runner serves all workers.
type Runner struct {
	cfg         Config
	log         zerolog.Logger
	transformer *spectral.Transformer
	harmonics   *thd.Calculator
	emitter     Emitter
}

// NewRunner validates cfg and wires the pipeline.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg: cfg,
		log: zerolog.Nop(),
		transformer: spectral.NewTransformer(
			spectral.WithWindow(cfg.Window),
			spectral.WithPhase(cfg.Phase),
			spectral.WithBackend(cfg.Backend),
		),
		harmonics: thd.NewCalculator(cfg.Harmonics),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.emitter == nil {
		e, err := report.NewEmitter(cfg.Output)
		if err != nil {
			return nil, err
		}
		r.emitter = e
	}

	return r, nil
}

// Config returns the run configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run analyzes every capture in the input directory and writes the run
// summary. Per-file failures are recorded in the summary and never returned;
// the error is non-nil only when the input directory is unavailable, the
// summary cannot be written or ctx is cancelled. After cancellation no
// further files are started and the summary covers the finished ones.
func (r *Runner) Run(ctx context.Context) (report.Summary, error) {
	info, err := os.Stat(r.cfg.InputDir)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: %w", ErrInputDir, err)
	}
	if !info.IsDir() {
		return report.Summary{}, fmt.Errorf("%w: %s is not a directory", ErrInputDir, r.cfg.InputDir)
	}

	entries, err := Discover(r.cfg.InputDir, r.cfg.Extensions)
	if err != nil {
		return report.Summary{}, err
	}

	hi := host.Detect()
	workers := hi.Workers(r.cfg.Workers)
	r.log.Info().
		Str("input", r.cfg.InputDir).
		Str("output", r.cfg.Output.Dir).
		Int("workers", workers).
		Str("simd", string(hi.SIMD)).
		Str("window", r.cfg.Window.String()).
		Str("backend", string(r.cfg.Backend)).
		Msg("batch started")

	start := time.Now()
	outcomes := r.dispatch(ctx, entries, workers)
	slices.SortFunc(outcomes, func(a, b Outcome) int {
		return cmp.Compare(a.File, b.File)
	})

	files := make([]report.FileSummary, len(outcomes))
	for i, o := range outcomes {
		files[i] = o.Summary()
	}
	summary := report.NewSummary(r.cfg.InputDir, r.cfg.Output.Dir, files)

	if _, err := report.WriteSummary(r.cfg.Output.Dir, summary); err != nil {
		return summary, fmt.Errorf("write run summary: %w", err)
	}

	r.log.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

func (r *Runner) dispatch(ctx context.Context, entries iter.Seq[Entry], workers int) []Outcome {
	jobs := make(chan Entry)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				results <- r.Process(e)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for e := range entries {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- e:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Outcome
	for o := range results {
		out = append(out, o)
	}
	return out
}

// Process runs the whole pipeline for one entry. A panic inside the
// pipeline is recovered and reported as KindInternal.
func (r *Runner) Process(e Entry) (out Outcome) {
	start := time.Now()
	out = Outcome{File: e.Name, Stem: e.Stem}
	log := r.log.With().Str("file", e.Name).Logger()

	defer func() {
		if p := recover(); p != nil {
			out.fail(fmt.Errorf("panic: %v", p))
		}
		if out.Err != nil && out.Stem != "" {
			if err := r.emitter.Clean(out.Stem); err != nil {
				log.Warn().Err(err).Msg("stale artifacts not removed")
			}
		}
		out.Elapsed = time.Since(start)

		switch {
		case out.Skipped:
			log.Debug().Str("reason", out.Detail).Msg("file skipped")
		case out.Err != nil:
			ev := log.Warn().Str("kind", string(out.Kind)).Err(out.Err)
			if out.Line > 0 {
				ev = ev.Int("line", out.Line)
			}
			ev.Dur("elapsed", out.Elapsed).Msg("file failed")
		default:
			log.Info().
				Float64("peak_hz", out.PeakHz).
				Float64("thd_pct", out.THDPct).
				Int("artifacts", len(out.Artifacts)).
				Dur("elapsed", out.Elapsed).
				Msg("file analyzed")
		}
	}()

	if e.Skip != "" {
		out.Skipped = true
		out.Detail = e.Skip
		return out
	}
	if e.Err != nil {
		out.fail(e.Err)
		return out
	}

	log.Debug().Str("stem", e.Stem).Msg("file started")

	res, err := r.analyze(e)
	if err != nil {
		out.fail(err)
		return out
	}

	artifacts, err := r.emitter.Emit(res)
	if err != nil {
		out.fail(err)
		return out
	}

	if k := res.Spectrum.PeakBin(); k > 0 {
		out.PeakHz = res.Spectrum.Frequency[k]
	}
	out.FundamentalHz = res.Harmonics.FundamentalFreq
	out.THDPct = res.Harmonics.THDPct
	out.Artifacts = artifacts

	return out
}

func (o *Outcome) fail(err error) {
	o.Err = err
	o.Kind = Classify(err)
	o.Line = scope.LineOf(err)
	o.Detail = err.Error()
}

func (r *Runner) analyze(e Entry) (report.Result, error) {
	tr, err := scope.Load(e.Path, r.cfg.Loader)
	if err != nil {
		return report.Result{}, err
	}

	info, err := scope.AnalyzeSampling(tr, r.cfg.Tolerance)
	if err != nil {
		return report.Result{}, err
	}

	sp, err := r.transformer.Transform(tr, info)
	if err != nil {
		return report.Result{}, err
	}

	res := report.Result{
		Source:        tr.Source,
		Stem:          e.Stem,
		Trace:         tr,
		Sampling:      info,
		Spectrum:      sp,
		Harmonics:     r.harmonics.Calculate(sp.Frequency, sp.Magnitude),
		Waveform:      waveform.Calculate(tr.Value, info.SampleRate),
		SpectrumStats: frequency.Calculate(sp.Frequency, sp.Magnitude),
		Peaks:         frequency.Peaks(sp.Frequency, sp.Magnitude, dominantPeaks, 2*sp.BinWidth),
	}

	if r.cfg.BandMaxHz > 0 {
		band, err := spectral.BandWaveform(tr.Value, info.SampleRate, r.cfg.BandMinHz, r.cfg.BandMaxHz)
		if err != nil {
			return report.Result{}, err
		}
		res.Band = band
		res.BandMinHz = r.cfg.BandMinHz
		res.BandMaxHz = r.cfg.BandMaxHz
	}

	return res, nil
}
