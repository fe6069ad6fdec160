package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Magnitude returns |X[k]| for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(out, re, im)
	putScratch(buf)
	return out
}

// Phase returns arg(X[k]) for each complex spectrum bin in radians.
func Phase(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	for i, c := range in {
		out[i] = cmplx.Phase(c)
	}
	return out
}

// BinCount returns the number of non-negative frequency bins of an n-point
// real transform, floor(n/2)+1.
func BinCount(n int) int {
	if n <= 0 {
		return 0
	}
	return n/2 + 1
}

// Frequencies returns the bin centre frequencies k*sampleRate/n for
// k = 0..floor(n/2).
func Frequencies(n int, sampleRate float64) []float64 {
	out := make([]float64, BinCount(n))
	df := sampleRate / float64(n)
	for k := range out {
		out[k] = float64(k) * df
	}
	return out
}

// SingleSided converts the non-negative half of an n-point spectrum into
// single-sided peak amplitudes.
//
// Every bin is divided by n*coherentGain so that a full-scale sinusoid
// centred on a bin reads its own amplitude. Interior bins are doubled to
// fold in their negative-frequency mirror; DC and, for even n, the Nyquist
// bin have no mirror and stay single.
func SingleSided(bins []complex128, n int, coherentGain float64) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("spectrum size must be > 0: %d", n)
	}
	if len(bins) != BinCount(n) {
		return nil, fmt.Errorf("spectrum bin count mismatch: %d != %d", len(bins), BinCount(n))
	}
	if !(coherentGain > 0) || math.IsInf(coherentGain, 0) {
		return nil, fmt.Errorf("spectrum coherent gain must be > 0: %v", coherentGain)
	}

	mag := Magnitude(bins)
	vecmath.ScaleBlock(mag, mag, 1/(float64(n)*coherentGain))

	last := len(mag) - 1
	if n%2 == 1 {
		last++
	}
	for k := 1; k < last; k++ {
		mag[k] *= 2
	}

	return mag, nil
}

// NearestBin returns the index of the bin closest to freq, clamped to
// [0, bins-1].
func NearestBin(freq, binWidth float64, bins int) int {
	if bins <= 0 || !(binWidth > 0) {
		return 0
	}
	k := int(math.Round(freq / binWidth))
	return max(0, min(k, bins-1))
}

// PeakBin returns the index of the largest value of mag within
// [center-radius, center+radius]. A tie with the centre keeps the centre;
// other ties resolve to the lowest index.
func PeakBin(mag []float64, center, radius int) int {
	if len(mag) == 0 {
		return 0
	}
	lo := max(0, center-radius)
	hi := min(len(mag)-1, center+radius)
	best := max(0, min(center, len(mag)-1))
	for k := lo; k <= hi; k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	return best
}
