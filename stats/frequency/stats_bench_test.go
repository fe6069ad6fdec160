package frequency

import (
	"math"
	"strconv"
	"testing"
)

func BenchmarkCalculate(b *testing.B) {
	sizes := []int{513, 4097, 65537}
	for _, n := range sizes {
		freq := axis(n, 10)
		mag := make([]float64, n)
		for i := range mag {
			mag[i] = 1 + math.Abs(math.Sin(float64(i)))
		}
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for range b.N {
				Calculate(freq, mag)
			}
		})
	}
}
