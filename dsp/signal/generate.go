// Package signal generates deterministic test captures: sines, PWM square
// waves, seeded noise and the matching (optionally jittered) time axis.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"
)

// Generator creates deterministic signals at a fixed sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise and jitter generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a signal generator for the given sample rate in Hz.
func NewGenerator(sampleRate float64, opts ...Option) (*Generator, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("generator sample rate must be > 0: %f", sampleRate)
	}

	g := &Generator{
		sampleRate: sampleRate,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// SampleRate returns the generator sample rate in Hz.
func (g *Generator) SampleRate() float64 {
	return g.sampleRate
}

// Seed returns the current random seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// SetSeed replaces the random seed used by subsequent calls.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Time returns sample timestamps i/sampleRate. A non-zero jitter displaces
// every timestamp by a uniform random amount in [-jitter, jitter] periods.
func (g *Generator) Time(samples int, jitter float64) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("time samples must be > 0: %d", samples)
	}
	if jitter < 0 || jitter >= 0.5 {
		return nil, fmt.Errorf("time jitter must be in [0, 0.5): %f", jitter)
	}

	period := 1 / g.sampleRate
	out := make([]float64, samples)
	var rng *rand.Rand
	if jitter > 0 {
		rng = rand.New(rand.NewSource(g.seed))
	}
	for i := range out {
		out[i] = float64(i) * period
		if rng != nil {
			out[i] += (rng.Float64()*2 - 1) * jitter * period
		}
	}
	return out, nil
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// PWM generates a rectangular wave switching between low and high. The
// output is high for the first duty fraction of every period.
func (g *Generator) PWM(freqHz, duty, low, high float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("pwm samples must be > 0: %d", samples)
	}
	if !(freqHz > 0) || freqHz > g.sampleRate/2 {
		return nil, fmt.Errorf("pwm frequency must be in (0, %f]: %f", g.sampleRate/2, freqHz)
	}
	if duty < 0 || duty > 1 {
		return nil, fmt.Errorf("pwm duty must be in [0, 1]: %f", duty)
	}

	out := make([]float64, samples)
	edge := duty * g.sampleRate
	for i := range out {
		if math.Mod(float64(i)*freqHz, g.sampleRate) < edge {
			out[i] = high
		} else {
			out[i] = low
		}
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Mix adds src into dst sample by sample.
func Mix(dst, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("mix length mismatch: %d != %d", len(dst), len(src))
	}
	vecmath.AddBlockInPlace(dst, src)
	return nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)
	return out, nil
}
