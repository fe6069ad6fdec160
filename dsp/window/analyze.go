package window

import "math"

// Analysis holds numerically computed spectral properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// Bandwidth3dB is the two-sided half-power main lobe width in bins.
	Bandwidth3dB float64
	// HighestSidelobedB is the highest sidelobe level relative to DC in dB.
	HighestSidelobedB float64
	// ScallopLossdB is the amplitude error of a tone half a bin off-center.
	ScallopLossdB float64
}

// Analyze evaluates the window's DTFT numerically and reports the figures an
// analyst needs to compare spectra taken with different windows.
func Analyze(coeffs []float64) Analysis {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}
	}

	dc := responseSq(coeffs, 0)
	if dc == 0 {
		return Analysis{}
	}

	cg, _ := CoherentGain(coeffs)
	enbw, _ := EquivalentNoiseBandwidth(coeffs)
	nf := float64(n)

	return Analysis{
		CoherentGain:      cg,
		ENBW:              enbw,
		Bandwidth3dB:      2 * halfPowerPoint(coeffs, dc) * nf,
		HighestSidelobedB: highestSidelobe(coeffs, dc),
		ScallopLossdB:     10 * math.Log10(responseSq(coeffs, 0.5/nf)/dc),
	}
}

// responseSq returns |W(f)|^2 at normalized frequency f (cycles per sample).
func responseSq(coeffs []float64, f float64) float64 {
	w := 2 * math.Pi * f
	re, im := 0.0, 0.0

	for k, c := range coeffs {
		s, co := math.Sincos(w * float64(k))
		re += c * co
		im -= c * s
	}

	return re*re + im*im
}

// halfPowerPoint bisects for the normalized frequency where the response
// falls to half of its DC power.
func halfPowerPoint(coeffs []float64, dc float64) float64 {
	lo, hi := 0.0, 0.5
	for range 64 {
		mid := (lo + hi) / 2
		if responseSq(coeffs, mid)/dc > 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo
}

// highestSidelobe walks outward from DC until the main lobe has turned
// upward once, then reports the largest response beyond that null.
func highestSidelobe(coeffs []float64, dc float64) float64 {
	step := 1 / (float64(len(coeffs)) * 16)

	prev := dc
	f := step
	for ; f < 0.5; f += step {
		v := responseSq(coeffs, f)
		if prev < 0.1*dc && v > prev {
			break
		}
		prev = v
	}

	peak := 0.0
	for ; f < 0.5; f += step {
		peak = math.Max(peak, responseSq(coeffs, f))
	}

	if peak <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(peak/dc)
}
