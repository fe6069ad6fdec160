package thd

import (
	"strconv"
	"testing"
)

func BenchmarkCalculate(b *testing.B) {
	sizes := []int{1024, 4096, 16384}
	for _, fftSize := range sizes {
		b.Run("fft_"+strconv.Itoa(fftSize), func(b *testing.B) {
			bins := fftSize/2 + 1
			freq := axis(bins, 48000/float64(fftSize))
			mag := make([]float64, bins)

			fundBin := 1000 * fftSize / 48000
			mag[fundBin] = 1.0
			for k := 2; k <= 10; k++ {
				if bin := k * fundBin; bin < bins {
					mag[bin] = 0.01 / float64(k)
				}
			}

			calc := NewCalculator(Config{})

			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				_ = calc.Calculate(freq, mag)
			}
		})
	}
}
