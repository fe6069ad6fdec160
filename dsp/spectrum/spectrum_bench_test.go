package spectrum

import (
	"math/cmplx"
	"testing"
)

var benchSizes = []struct {
	name string
	size int
}{
	{"64", 64},
	{"256", 256},
	{"1K", 1024},
	{"4K", 4096},
	{"16K", 16384},
}

func benchBins(n int) []complex128 {
	in := make([]complex128, n)
	for i := range in {
		in[i] = complex(float64(i)/10.0, float64(n-i)/10.0)
	}
	return in
}

func BenchmarkMagnitude(b *testing.B) {
	for _, testCase := range benchSizes {
		b.Run(testCase.name, func(b *testing.B) {
			inData := benchBins(testCase.size)

			b.SetBytes(int64(testCase.size * 16)) // complex128 = 16 bytes
			b.ResetTimer()

			for range b.N {
				_ = Magnitude(inData)
			}
		})
	}
}

func BenchmarkMagnitudeNaive(b *testing.B) {
	for _, testCase := range benchSizes {
		b.Run(testCase.name, func(b *testing.B) {
			inData := benchBins(testCase.size)

			b.SetBytes(int64(testCase.size * 16))
			b.ResetTimer()

			for range b.N {
				out := make([]float64, len(inData))
				for i, c := range inData {
					out[i] = cmplx.Abs(c)
				}
				_ = out
			}
		})
	}
}

func BenchmarkSingleSided(b *testing.B) {
	for _, testCase := range benchSizes {
		b.Run(testCase.name, func(b *testing.B) {
			inData := benchBins(BinCount(testCase.size))

			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				_, _ = SingleSided(inData, testCase.size, 0.5)
			}
		})
	}
}
