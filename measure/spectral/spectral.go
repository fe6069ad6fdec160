// Package spectral turns a uniformly sampled trace into a single-sided,
// window-corrected amplitude spectrum.
package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/pwmfft/dsp/spectrum"
	"github.com/cwbudde/pwmfft/dsp/window"
	"github.com/cwbudde/pwmfft/scope"
)

// Spectrum is the frequency-domain view of one trace. Frequency,
// Magnitude and (when requested) Phase hold floor(Size/2)+1 bins.
type Spectrum struct {
	Frequency []float64
	Magnitude []float64
	Phase     []float64

	SampleRate   float64
	Size         int
	BinWidth     float64
	Window       window.Type
	CoherentGain float64
	ENBW         float64
	Backend      Backend
}

// Len returns the number of bins.
func (s Spectrum) Len() int {
	return len(s.Frequency)
}

// PeakBin returns the strongest non-DC bin, or 0 for a DC-only spectrum.
func (s Spectrum) PeakBin() int {
	if len(s.Magnitude) < 2 {
		return 0
	}
	return floats.MaxIdx(s.Magnitude[1:]) + 1
}

// Options configures a Transformer.
type Options struct {
	Window       window.Type
	IncludePhase bool
	Backend      Backend
}

// Option mutates Options.
type Option func(*Options)

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(o *Options) {
		o.Window = t
	}
}

// WithPhase adds per-bin phase in radians to the output.
func WithPhase(enabled bool) Option {
	return func(o *Options) {
		o.IncludePhase = enabled
	}
}

// WithBackend selects the DFT implementation.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		o.Backend = b
	}
}

// Transformer computes spectra. It holds no per-call state and is safe for
// concurrent use.
type Transformer struct {
	opts Options
}

// NewTransformer returns a Transformer using a periodic Hann window and the
// auto backend unless overridden.
func NewTransformer(opts ...Option) *Transformer {
	o := Options{Window: window.TypeHann, Backend: BackendAuto}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Transformer{opts: o}
}

// Options returns the effective options.
func (t *Transformer) Options() Options {
	return t.opts
}

// Transform computes the spectrum of tr sampled as described by info.
func (t *Transformer) Transform(tr scope.Trace, info scope.SamplingInfo) (Spectrum, error) {
	if err := info.Validate(tr.Len()); err != nil {
		return Spectrum{}, err
	}
	return t.TransformSamples(tr.Value, info.SampleRate)
}

// TransformSamples computes the spectrum of uniformly spaced samples.
//
// Bin k lies at k*sampleRate/N. Magnitudes are single-sided peak
// amplitudes divided by the window's coherent gain, so a sinusoid of
// amplitude A centred on a bin reads A regardless of the window.
func (t *Transformer) TransformSamples(samples []float64, sampleRate float64) (Spectrum, error) {
	n := len(samples)
	if n < 2 {
		return Spectrum{}, fmt.Errorf("%w: %d samples, need at least 2", scope.ErrDegenerateTrace, n)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("%w: sample rate must be > 0: %v", scope.ErrDegenerateTrace, sampleRate)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Spectrum{}, fmt.Errorf("%w at sample %d", scope.ErrNonFiniteValue, i)
		}
	}

	coeffs := window.Generate(t.opts.Window, n, window.WithPeriodic())
	cg, err := window.CoherentGain(coeffs)
	if err != nil {
		return Spectrum{}, fmt.Errorf("window %s at size %d: %w", t.opts.Window, n, err)
	}
	enbw, err := window.EquivalentNoiseBandwidth(coeffs)
	if err != nil {
		return Spectrum{}, fmt.Errorf("window %s at size %d: %w", t.opts.Window, n, err)
	}

	windowed, err := window.ApplyCoefficients(samples, coeffs)
	if err != nil {
		return Spectrum{}, err
	}

	bins, used, err := forward(t.opts.Backend, windowed)
	if err != nil {
		return Spectrum{}, err
	}

	mag, err := spectrum.SingleSided(bins, n, cg)
	if err != nil {
		return Spectrum{}, err
	}
	// Finite samples near the float64 limit can still overflow the sums.
	for k, m := range mag {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return Spectrum{}, fmt.Errorf("%w: bin %d overflows", scope.ErrNonFiniteValue, k)
		}
	}

	s := Spectrum{
		Frequency:    spectrum.Frequencies(n, sampleRate),
		Magnitude:    mag,
		SampleRate:   sampleRate,
		Size:         n,
		BinWidth:     sampleRate / float64(n),
		Window:       t.opts.Window,
		CoherentGain: cg,
		ENBW:         enbw,
		Backend:      used,
	}
	if t.opts.IncludePhase {
		s.Phase = spectrum.Phase(bins)
	}

	return s, nil
}
