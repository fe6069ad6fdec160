package spectrum

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMagnitudePhasePower(t *testing.T) {
	bins := []complex128{3 + 4i, -1 - 1i, 0}

	mag := Magnitude(bins)
	if len(mag) != len(bins) {
		t.Fatalf("Magnitude length mismatch: got=%d want=%d", len(mag), len(bins))
	}

	if math.Abs(mag[0]-5) > 1e-12 {
		t.Fatalf("Magnitude[0]=%f want=5", mag[0])
	}

	phase := Phase(bins)
	if math.Abs(phase[0]-math.Atan2(4, 3)) > 1e-12 {
		t.Fatalf("Phase[0]=%f mismatch", phase[0])
	}

	if Magnitude(nil) != nil || Phase(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestBinCountAndFrequencies(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {7, 4}, {8, 5}, {10000, 5001},
	}
	for _, c := range cases {
		if got := BinCount(c.n); got != c.want {
			t.Fatalf("BinCount(%d)=%d want=%d", c.n, got, c.want)
		}
	}

	freq := Frequencies(10000, 100000)
	if len(freq) != 5001 {
		t.Fatalf("len=%d", len(freq))
	}

	if freq[0] != 0 || math.Abs(freq[1]-10) > 1e-12 || math.Abs(freq[5000]-50000) > 1e-9 {
		t.Fatalf("unexpected axis: %v %v %v", freq[0], freq[1], freq[5000])
	}

	for k := 1; k < len(freq); k++ {
		if !(freq[k] > freq[k-1]) {
			t.Fatalf("axis not increasing at %d", k)
		}
	}
}

func TestSingleSidedRecoversToneAmplitude(t *testing.T) {
	for _, n := range []int{64, 65} {
		const (
			amp  = 2.5
			bin  = 5
			dc   = 0.75
			gain = 1.0
		)

		x := make([]float64, n)
		for i := range x {
			x[i] = dc + amp*math.Cos(2*math.Pi*bin*float64(i)/float64(n))
		}

		bins := naiveDFT(x)
		mag, err := SingleSided(bins, n, gain)
		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(mag[0]-dc) > 1e-9 {
			t.Fatalf("n=%d DC=%v want=%v", n, mag[0], dc)
		}

		if math.Abs(mag[bin]-amp) > 1e-9 {
			t.Fatalf("n=%d tone=%v want=%v", n, mag[bin], amp)
		}
	}
}

func TestSingleSidedNyquistNotDoubled(t *testing.T) {
	n := 8
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(math.Pi * float64(i))
	}

	mag, err := SingleSided(naiveDFT(x), n, 1)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(mag[n/2]-1) > 1e-12 {
		t.Fatalf("nyquist=%v want=1", mag[n/2])
	}
}

func TestSingleSidedCoherentGain(t *testing.T) {
	bins := []complex128{4, 2, 4}

	mag, err := SingleSided(bins, 4, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{2, 2, 2}
	for i := range want {
		if math.Abs(mag[i]-want[i]) > 1e-12 {
			t.Fatalf("mag[%d]=%v want=%v", i, mag[i], want[i])
		}
	}
}

func TestSingleSidedValidation(t *testing.T) {
	if _, err := SingleSided(nil, 0, 1); err == nil {
		t.Fatal("expected size error")
	}

	if _, err := SingleSided(make([]complex128, 3), 8, 1); err == nil {
		t.Fatal("expected bin count error")
	}

	if _, err := SingleSided(make([]complex128, 5), 8, 0); err == nil {
		t.Fatal("expected coherent gain error")
	}
}

func TestNearestBin(t *testing.T) {
	if got := NearestBin(1004, 10, 100); got != 99 {
		t.Fatalf("NearestBin clamp=%d want=99", got)
	}

	if got := NearestBin(46, 10, 100); got != 5 {
		t.Fatalf("NearestBin=%d want=5", got)
	}

	if got := NearestBin(-30, 10, 100); got != 0 {
		t.Fatalf("NearestBin negative=%d", got)
	}

	if got := NearestBin(50, 0, 100); got != 0 {
		t.Fatalf("NearestBin zero width=%d", got)
	}
}

func TestPeakBin(t *testing.T) {
	mag := []float64{0, 1, 5, 2, 9, 9, 0}

	if got := PeakBin(mag, 2, 1); got != 2 {
		t.Fatalf("PeakBin=%d want=2", got)
	}

	if got := PeakBin(mag, 3, 1); got != 4 {
		t.Fatalf("PeakBin=%d want=4", got)
	}

	if got := PeakBin(mag, 5, 1); got != 5 {
		t.Fatalf("PeakBin tie=%d want=5", got)
	}

	if got := PeakBin([]float64{0, 3, 1, 3}, 2, 1); got != 1 {
		t.Fatalf("PeakBin off-centre tie=%d want=1", got)
	}

	if got := PeakBin(mag, 0, 0); got != 0 {
		t.Fatalf("PeakBin radius 0=%d want=0", got)
	}

	if got := PeakBin(mag, 20, 2); got != 6 {
		t.Fatalf("PeakBin out of range=%d want=6", got)
	}
}

func naiveDFT(x []float64) []complex128 {
	n := len(x)
	out := make([]complex128, BinCount(n))
	for k := range out {
		var sum complex128
		for i, v := range x {
			sum += complex(v, 0) * cmplx.Rect(1, -2*math.Pi*float64(k*i)/float64(n))
		}
		out[k] = sum
	}
	return out
}
