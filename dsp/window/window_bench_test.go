package window

import "testing"

func BenchmarkGenerate(b *testing.B) {
	sizes := []int{256, 1024, 4096, 16384}
	for _, n := range sizes {
		b.Run("hann/"+itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Generate(TypeHann, n)
			}
		})
		b.Run("flattop/"+itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Generate(TypeFlatTop, n, WithPeriodic())
			}
		})
	}
}

func BenchmarkApplyCoefficients(b *testing.B) {
	sizes := []int{256, 1024, 4096, 16384}
	for _, n := range sizes {
		b.Run("hann/"+itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			buf := make([]float64, n)
			coeffs := Generate(TypeHann, n, WithPeriodic())
			for i := 0; i < b.N; i++ {
				_, _ = ApplyCoefficients(buf, coeffs)
			}
		})
	}
}

func BenchmarkAnalyze(b *testing.B) {
	w := Generate(TypeHann, 1024, WithPeriodic())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Analyze(w)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
