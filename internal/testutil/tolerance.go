package testutil

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every element pair is within eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	d, err := MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if d > eps {
		i := worstIndex(got, want)
		t.Fatalf("index %d: got %v want %v (max diff %v > %v)", i, got[i], want[i], d, eps)
	}
}

// RequireFinite fails t on the first NaN or Inf in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireOneSidedAxis fails t unless freq is the one-sided DFT axis of n
// samples at sampleRate: floor(n/2)+1 strictly increasing bins from 0 Hz,
// the last within one bin of Nyquist.
func RequireOneSidedAxis(t *testing.T, freq []float64, sampleRate float64, n int) {
	t.Helper()
	if len(freq) != n/2+1 {
		t.Fatalf("axis length %d, want %d for n=%d", len(freq), n/2+1, n)
	}
	if freq[0] != 0 {
		t.Fatalf("axis starts at %v Hz", freq[0])
	}
	for k := 1; k < len(freq); k++ {
		if !(freq[k] > freq[k-1]) {
			t.Fatalf("axis not increasing at bin %d: %v after %v", k, freq[k], freq[k-1])
		}
	}
	binHz := sampleRate / float64(n)
	if last := freq[len(freq)-1]; math.Abs(last-sampleRate/2) > binHz {
		t.Fatalf("last bin %v Hz is not within %v Hz of nyquist %v", last, binHz, sampleRate/2)
	}
}

// MaxAbsDiff returns the largest absolute element difference of a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, math.Inf(1)), nil
}

func worstIndex(a, b []float64) int {
	worst, at := -1.0, 0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > worst {
			worst, at = d, i
		}
	}
	return at
}
