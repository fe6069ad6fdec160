// Package waveform summarizes a captured time-domain trace: level
// statistics plus the switching behaviour of a PWM-style signal.
package waveform

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultHysteresis is the edge detector dead band as a fraction of the
// peak-to-peak range.
const DefaultHysteresis = 0.1

// Stats holds time-domain statistics of a uniformly sampled trace.
type Stats struct {
	Length      int     `json:"length" yaml:"length"`
	DC          float64 `json:"dc" yaml:"dc"`   // mean
	RMS         float64 `json:"rms" yaml:"rms"` // including DC
	ACRMS       float64 `json:"ac_rms" yaml:"ac_rms"`
	Min         float64 `json:"min" yaml:"min"`
	Max         float64 `json:"max" yaml:"max"`
	PeakToPeak  float64 `json:"peak_to_peak" yaml:"peak_to_peak"`
	CrestFactor float64 `json:"crest_factor" yaml:"crest_factor"` // max(|min|,|max|) / RMS

	// Threshold is the mid level between Min and Max used for switching.
	Threshold    float64 `json:"threshold" yaml:"threshold"`
	DutyCycle    float64 `json:"duty_cycle" yaml:"duty_cycle"` // fraction of samples at or above Threshold
	RisingEdges  int     `json:"rising_edges" yaml:"rising_edges"`
	FallingEdges int     `json:"falling_edges" yaml:"falling_edges"`
	// SwitchingHz is estimated from the spacing of the first and last
	// rising edge; zero with fewer than two rising edges.
	SwitchingHz float64 `json:"switching_hz" yaml:"switching_hz"`
}

// Calculate computes trace statistics. sampleRate is only used for the
// switching frequency estimate and may be zero.
func Calculate(signal []float64, sampleRate float64) Stats {
	return CalculateWithHysteresis(signal, sampleRate, DefaultHysteresis)
}

// CalculateWithHysteresis is Calculate with an explicit edge dead band,
// expressed as a fraction of the peak-to-peak range.
func CalculateWithHysteresis(signal []float64, sampleRate, hysteresis float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	mean, std := stat.PopMeanStdDev(signal, nil)
	minVal := floats.Min(signal)
	maxVal := floats.Max(signal)

	s := Stats{
		Length:     n,
		DC:         mean,
		ACRMS:      std,
		RMS:        math.Sqrt(floats.Dot(signal, signal) / float64(n)),
		Min:        minVal,
		Max:        maxVal,
		PeakToPeak: maxVal - minVal,
		Threshold:  (minVal + maxVal) / 2,
	}

	if s.RMS > 0 {
		s.CrestFactor = math.Max(math.Abs(minVal), math.Abs(maxVal)) / s.RMS
	}

	if s.PeakToPeak == 0 {
		s.DutyCycle = 1
		return s
	}

	above := 0
	for _, v := range signal {
		if v >= s.Threshold {
			above++
		}
	}
	s.DutyCycle = float64(above) / float64(n)

	rising := edges(signal, s.Threshold, hysteresis*s.PeakToPeak/2, &s)
	if len(rising) >= 2 && sampleRate > 0 {
		span := float64(rising[len(rising)-1]-rising[0]) / sampleRate
		s.SwitchingHz = float64(len(rising)-1) / span
	}

	return s
}

// edges runs a Schmitt trigger over signal, counts transitions into s and
// returns the sample indices of rising edges.
func edges(signal []float64, threshold, band float64, s *Stats) []int {
	hi := threshold + band
	lo := threshold - band

	state := signal[0] >= threshold
	var rising []int
	for i, v := range signal {
		switch {
		case !state && v > hi:
			state = true
			s.RisingEdges++
			rising = append(rising, i)
		case state && v < lo:
			state = false
			s.FallingEdges++
		}
	}
	return rising
}
