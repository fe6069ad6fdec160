package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// SquareWave generates a 50% duty rectangular wave between -amplitude and
// amplitude. freqHz should divide sampleRate evenly for exact edges.
func SquareWave(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	half := sampleRate / 2
	for i := range out {
		if math.Mod(float64(i)*freqHz, sampleRate) < half {
			out[i] = amplitude
		} else {
			out[i] = -amplitude
		}
	}
	return out
}

// TimeAxis returns i/sampleRate for i in [0, length).
func TimeAxis(sampleRate float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(i) / sampleRate
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
