package spectral_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/pwmfft/measure/spectral"
)

func ExampleTransformer_TransformSamples() {
	const fs = 1000.0
	x := make([]float64, 100)
	for i := range x {
		x[i] = 1.5 * math.Sin(2*math.Pi*50*float64(i)/fs)
	}

	s, err := spectral.NewTransformer().TransformSamples(x, fs)
	if err != nil {
		panic(err)
	}

	k := s.PeakBin()
	fmt.Printf("bins=%d peak=%.0f Hz amplitude=%.3f\n", s.Len(), s.Frequency[k], s.Magnitude[k])
	// Output:
	// bins=51 peak=50 Hz amplitude=1.500
}
