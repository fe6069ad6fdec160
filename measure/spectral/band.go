package spectral

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cwbudde/pwmfft/scope"
)

// BandWaveform reconstructs samples keeping only the components whose
// frequency magnitude lies within [minHz, maxHz]. The transform is
// unwindowed, so a band covering 0..fs/2 returns the input unchanged up to
// rounding.
func BandWaveform(samples []float64, sampleRate, minHz, maxHz float64) ([]float64, error) {
	n := len(samples)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d samples, need at least 2", scope.ErrDegenerateTrace, n)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be > 0: %v", scope.ErrDegenerateTrace, sampleRate)
	}
	if minHz < 0 || maxHz < minHz {
		return nil, fmt.Errorf("band must satisfy 0 <= min <= max: [%v, %v]", minHz, maxHz)
	}

	bins := fft.FFTReal(samples)
	df := sampleRate / float64(n)
	for k := range bins {
		// Bins above n/2 hold the negative frequencies (k-n)*df.
		f := float64(min(k, n-k)) * df
		if f < minHz || f > maxHz {
			bins[k] = 0
		}
	}

	rec := fft.IFFT(bins)
	out := make([]float64, n)
	for i, c := range rec {
		out[i] = real(c)
	}
	return out, nil
}
