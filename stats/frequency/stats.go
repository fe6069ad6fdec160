// Package frequency computes descriptors of a single-sided magnitude
// spectrum laid out on an explicit frequency axis.
package frequency

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds frequency-domain statistics. DC (bin 0) is excluded from
// peak, noise floor and shape descriptors.
type Stats struct {
	BinCount int     `json:"bin_count" yaml:"bin_count"`
	DC       float64 `json:"dc" yaml:"dc"`
	PeakBin  int     `json:"peak_bin" yaml:"peak_bin"`
	PeakHz   float64 `json:"peak_hz" yaml:"peak_hz"`
	Peak     float64 `json:"peak" yaml:"peak"`
	// NoiseFloor is the median non-DC magnitude.
	NoiseFloor    float64 `json:"noise_floor" yaml:"noise_floor"`
	PeakToNoisedB float64 `json:"peak_to_noise_db" yaml:"peak_to_noise_db"`
	Centroid      float64 `json:"centroid_hz" yaml:"centroid_hz"`
	Spread        float64 `json:"spread_hz" yaml:"spread_hz"`
	Flatness      float64 `json:"flatness" yaml:"flatness"` // Wiener entropy, 0..1
	Rolloff       float64 `json:"rolloff_hz" yaml:"rolloff_hz"`
	Bandwidth     float64 `json:"bandwidth_hz" yaml:"bandwidth_hz"` // 3 dB width around the peak
}

// Peak is a local maximum of the magnitude spectrum.
type Peak struct {
	Bin       int     `json:"bin" yaml:"bin"`
	Frequency float64 `json:"frequency_hz" yaml:"frequency_hz"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

// RolloffFraction is the energy fraction used for Stats.Rolloff.
const RolloffFraction = 0.85

// Calculate computes all statistics. freq and magnitude must have equal
// length; a shorter pair is truncated to the common length.
func Calculate(freq, magnitude []float64) Stats {
	n := min(len(freq), len(magnitude))
	freq, magnitude = freq[:n], magnitude[:n]

	s := Stats{BinCount: n}
	if n == 0 {
		return s
	}
	s.DC = magnitude[0]
	if n < 2 {
		return s
	}

	ac := magnitude[1:]
	s.PeakBin = floats.MaxIdx(ac) + 1
	s.PeakHz = freq[s.PeakBin]
	s.Peak = magnitude[s.PeakBin]
	s.NoiseFloor = NoiseFloor(magnitude)
	if s.NoiseFloor > 0 && s.Peak > 0 {
		s.PeakToNoisedB = 20 * math.Log10(s.Peak/s.NoiseFloor)
	}

	sum := floats.Sum(ac)
	if sum > 0 {
		s.Centroid = stat.Mean(freq[1:], ac)
		s.Spread = math.Sqrt(stat.MomentAbout(2, freq[1:], s.Centroid, ac))
	}
	s.Flatness = Flatness(magnitude)
	s.Rolloff = Rolloff(freq, magnitude, RolloffFraction)
	s.Bandwidth = bandwidth(freq, magnitude, s.PeakBin)

	return s
}

// NoiseFloor returns the median magnitude over bins 1..N-1.
func NoiseFloor(magnitude []float64) float64 {
	if len(magnitude) < 2 {
		return 0
	}
	sorted := slices.Clone(magnitude[1:])
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
// Flatness = exp(mean(log(|X_i|))) / mean(|X_i|)
//
// DC bin (index 0) is excluded from the computation. If any considered bin
// is zero, 0 is returned.
func Flatness(magnitude []float64) float64 {
	if len(magnitude) < 2 {
		return 0
	}

	ac := magnitude[1:]
	meanLin := stat.Mean(ac, nil)
	if meanLin <= 0 || floats.Min(ac) <= 0 {
		return 0
	}

	return stat.GeometricMean(ac, nil) / meanLin
}

// Rolloff returns the frequency below which the given fraction (0..1) of
// spectral energy lies, DC included.
func Rolloff(freq, magnitude []float64, fraction float64) float64 {
	n := min(len(freq), len(magnitude))
	if n < 2 {
		return 0
	}
	total := floats.Dot(magnitude[:n], magnitude[:n])
	if total == 0 {
		return 0
	}
	threshold := fraction * total
	cum := 0.0
	for i := range n {
		cum += magnitude[i] * magnitude[i]
		if cum >= threshold {
			return freq[i]
		}
	}
	return freq[n-1]
}

// Peaks returns up to count local maxima in descending magnitude order.
// A candidate closer than minSpacingHz to an already selected peak is
// skipped. DC is never reported.
func Peaks(freq, magnitude []float64, count int, minSpacingHz float64) []Peak {
	n := min(len(freq), len(magnitude))
	if n < 2 || count <= 0 {
		return nil
	}

	var cand []Peak
	for k := 1; k < n; k++ {
		v := magnitude[k]
		if v <= 0 || (k > 1 && v < magnitude[k-1]) || (k+1 < n && v < magnitude[k+1]) {
			continue
		}
		// Plateaus report their first bin only.
		if v == magnitude[k-1] && k > 1 {
			continue
		}
		cand = append(cand, Peak{Bin: k, Frequency: freq[k], Magnitude: v})
	}

	sort.SliceStable(cand, func(i, j int) bool {
		return cand[i].Magnitude > cand[j].Magnitude
	})

	out := make([]Peak, 0, min(count, len(cand)))
	for _, c := range cand {
		if len(out) == count {
			break
		}
		tooClose := false
		for _, p := range out {
			if math.Abs(p.Frequency-c.Frequency) < minSpacingHz {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, c)
		}
	}
	return out
}

// bandwidth returns the 3 dB width around peakBin, interpolating linearly
// between bins at both crossings.
func bandwidth(freq, magnitude []float64, peakBin int) float64 {
	n := len(magnitude)
	peak := magnitude[peakBin]
	if peak == 0 {
		return 0
	}

	threshold := peak / math.Sqrt2

	lower := freq[0]
	for i := peakBin; i >= 1; i-- {
		if magnitude[i-1] <= threshold && magnitude[i] > threshold {
			lower = interp(freq[i-1], freq[i], magnitude[i-1], magnitude[i], threshold)
			break
		}
	}

	upper := freq[n-1]
	for i := peakBin; i < n-1; i++ {
		if magnitude[i+1] <= threshold && magnitude[i] > threshold {
			upper = interp(freq[i], freq[i+1], magnitude[i], magnitude[i+1], threshold)
			break
		}
	}

	return max(0, upper-lower)
}

func interp(f0, f1, m0, m1, threshold float64) float64 {
	d := m1 - m0
	if d == 0 {
		return (f0 + f1) / 2
	}
	return f0 + (threshold-m0)/d*(f1-f0)
}
