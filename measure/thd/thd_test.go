package thd

import (
	"math"
	"testing"

	"github.com/cwbudde/pwmfft/dsp/window"
	"github.com/cwbudde/pwmfft/internal/testutil"
	"github.com/cwbudde/pwmfft/measure/spectral"
)

func axis(n int, df float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * df
	}
	return out
}

func TestCalculateKnownSpectrum(t *testing.T) {
	freq := axis(501, 10)
	mag := make([]float64, 501)
	mag[0] = 0.5
	mag[10] = 1.0  // fundamental at 100 Hz
	mag[20] = 0.1  // H2
	mag[30] = 0.05 // H3
	mag[45] = 0.02 // not harmonic

	res := NewCalculator(Config{FundamentalFreq: 100, MaxOrder: 5}).Calculate(freq, mag)

	if res.FundamentalFreq != 100 || res.FundamentalBin != 10 || res.FundamentalLevel != 1 {
		t.Fatalf("fundamental mismatch: %+v", res)
	}
	if len(res.Harmonics) != 6 {
		t.Fatalf("harmonic rows=%d want 6", len(res.Harmonics))
	}

	wantPct := []float64{50, 100, 10, 5, 0, 0}
	for k, h := range res.Harmonics {
		if h.Order != k {
			t.Fatalf("row %d has order %d", k, h.Order)
		}
		if math.Abs(h.ContentPct-wantPct[k]) > 1e-12 {
			t.Fatalf("order %d content %.12f want %.12f", k, h.ContentPct, wantPct[k])
		}
		if h.Frequency != float64(k)*100 {
			t.Fatalf("order %d frequency %v", k, h.Frequency)
		}
	}

	wantTHD := math.Sqrt(0.1*0.1 + 0.05*0.05)
	if math.Abs(res.THD-wantTHD) > 1e-12 {
		t.Fatalf("THD mismatch: got %.12f want %.12f", res.THD, wantTHD)
	}
	if math.Abs(res.THDPct-100*wantTHD) > 1e-10 {
		t.Fatalf("THDPct mismatch: got %.12f", res.THDPct)
	}
	if math.Abs(res.THD_dB-20*math.Log10(wantTHD)) > 1e-10 {
		t.Fatalf("THD_dB mismatch: got %.12f", res.THD_dB)
	}
	if math.Abs(res.EvenHD-0.1) > 1e-12 || math.Abs(res.OddHD-0.05) > 1e-12 {
		t.Fatalf("odd/even mismatch: odd=%v even=%v", res.OddHD, res.EvenHD)
	}
}

func TestCalculateAutodetectFundamental(t *testing.T) {
	freq := axis(1001, 1)
	mag := make([]float64, 1001)
	mag[0] = 10 // DC never wins
	mag[100] = 0.8
	mag[120] = 1.2
	mag[240] = 0.12

	res := Analyze(freq, mag, Config{})
	if res.FundamentalFreq != 120 {
		t.Fatalf("auto fundamental mismatch: got %f", res.FundamentalFreq)
	}
	if math.Abs(res.Harmonics[2].ContentPct-10) > 1e-12 {
		t.Fatalf("H2 content %v", res.Harmonics[2].ContentPct)
	}

	res = Analyze(freq, mag, Config{RangeUpperFreq: 110})
	if res.FundamentalFreq != 100 {
		t.Fatalf("bounded fundamental mismatch: got %f", res.FundamentalFreq)
	}
}

func TestCalculateCaptureBins(t *testing.T) {
	freq := axis(1001, 1)
	mag := make([]float64, 1001)
	mag[100] = 1.0
	mag[201] = 0.1 // H2 one bin off its nominal position

	res := Analyze(freq, mag, Config{FundamentalFreq: 100})
	if res.Harmonics[2].Bin != 201 || math.Abs(res.Harmonics[2].ContentPct-10) > 1e-12 {
		t.Fatalf("capture search missed H2: %+v", res.Harmonics[2])
	}

	res = Analyze(freq, mag, Config{FundamentalFreq: 100, CaptureBins: -1})
	if res.Harmonics[2].Bin != 200 || res.Harmonics[2].ContentPct != 0 {
		t.Fatalf("nearest-bin lookup expected: %+v", res.Harmonics[2])
	}
}

func TestCalculateTruncatesAtNyquist(t *testing.T) {
	freq := axis(51, 10) // up to 500 Hz
	mag := make([]float64, 51)
	mag[15] = 1 // 150 Hz

	res := Analyze(freq, mag, Config{MaxOrder: 20})
	last := res.Harmonics[len(res.Harmonics)-1]
	if last.Order != 3 || last.Frequency != 450 {
		t.Fatalf("expected orders up to 3, last=%+v", last)
	}
}

func TestCalculateDegenerate(t *testing.T) {
	if res := Analyze(nil, nil, Config{}); res.Harmonics != nil {
		t.Fatalf("expected empty result: %+v", res)
	}

	res := Analyze(axis(4, 1), make([]float64, 4), Config{})
	if res.THD != 0 || !math.IsInf(res.THD_dB, -1) {
		t.Fatalf("silent spectrum: %+v", res)
	}
}

func TestSquareWaveTHD(t *testing.T) {
	const (
		fs = 100000.0
		f0 = 1000.0
		n  = 10000
	)
	x := testutil.SquareWave(f0, fs, 1, n)

	s, err := spectral.NewTransformer(spectral.WithWindow(window.TypeRectangular)).TransformSamples(x, fs)
	if err != nil {
		t.Fatal(err)
	}

	res := Analyze(s.Frequency, s.Magnitude, Config{MaxOrder: 20})
	if math.Abs(res.FundamentalFreq-f0) > 1e-9 {
		t.Fatalf("fundamental %v", res.FundamentalFreq)
	}

	// A sampled 50% square wave with 100 samples per period has odd
	// harmonics only, at sin(pi/100)/sin(k*pi/100) of the fundamental.
	sum := 0.0
	for k := 3; k <= 19; k += 2 {
		r := math.Sin(math.Pi/100) / math.Sin(float64(k)*math.Pi/100)
		sum += r * r
		if got := res.Harmonics[k].ContentPct / 100; math.Abs(got-r) > 1e-9 {
			t.Fatalf("H%d ratio %v want %v", k, got, r)
		}
	}
	if math.Abs(res.THD-math.Sqrt(sum)) > 1e-9 {
		t.Fatalf("THD %v want %v", res.THD, math.Sqrt(sum))
	}
	if res.EvenHD > 1e-9 {
		t.Fatalf("EvenHD %v want 0", res.EvenHD)
	}
	if math.Abs(res.FundamentalLevel-4/math.Pi) > 0.01 {
		t.Fatalf("fundamental level %v", res.FundamentalLevel)
	}
}
