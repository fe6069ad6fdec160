package spectral

import (
	"fmt"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend names the DFT implementation used by a Transformer.
type Backend string

const (
	// BackendAuto uses algo-fft when it can plan the size, gonum otherwise.
	BackendAuto    Backend = "auto"
	BackendAlgoFFT Backend = "algofft"
	BackendGonum   Backend = "gonum"
	BackendGoDSP   Backend = "godsp"
)

// Backends lists the selectable backends.
func Backends() []Backend {
	return []Backend{BackendAuto, BackendAlgoFFT, BackendGonum, BackendGoDSP}
}

// ParseBackend resolves a configuration name. The empty string selects
// BackendAuto.
func ParseBackend(name string) (Backend, error) {
	key := Backend(strings.ToLower(strings.TrimSpace(name)))
	if key == "" {
		return BackendAuto, nil
	}
	for _, b := range Backends() {
		if b == key {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown spectrum backend %q (known: auto, algofft, gonum, godsp)", name)
}

// forward returns the non-negative frequency bins 0..floor(n/2) of the DFT
// of x and the backend that produced them.
func forward(b Backend, x []float64) ([]complex128, Backend, error) {
	switch b {
	case BackendAlgoFFT:
		out, err := forwardAlgoFFT(x)
		return out, BackendAlgoFFT, err
	case BackendGonum:
		return forwardGonum(x), BackendGonum, nil
	case BackendGoDSP:
		return forwardGoDSP(x), BackendGoDSP, nil
	case BackendAuto, "":
		if out, err := forwardAlgoFFT(x); err == nil {
			return out, BackendAlgoFFT, nil
		}
		return forwardGonum(x), BackendGonum, nil
	default:
		return nil, b, fmt.Errorf("unknown spectrum backend %q", b)
	}
}

func forwardAlgoFFT(x []float64) ([]complex128, error) {
	n := len(x)
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("algofft plan %d: %w", n, err)
	}

	in := make([]complex128, n)
	for i, v := range x {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("algofft forward %d: %w", n, err)
	}

	return out[:n/2+1], nil
}

func forwardGonum(x []float64) []complex128 {
	return fourier.NewFFT(len(x)).Coefficients(nil, x)
}

func forwardGoDSP(x []float64) []complex128 {
	out := fft.FFTReal(x)
	return out[:len(x)/2+1]
}
