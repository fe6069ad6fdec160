// Package thd measures harmonic content and total harmonic distortion from
// a single-sided amplitude spectrum.
package thd

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/pwmfft/dsp/spectrum"
)

const (
	defaultMaxOrder    = 20
	defaultCaptureBins = 1
)

// Config holds harmonic analysis parameters.
type Config struct {
	// FundamentalFreq pins the fundamental in Hz. Zero selects the
	// strongest non-DC bin within [RangeLowerFreq, RangeUpperFreq].
	FundamentalFreq float64
	// RangeLowerFreq and RangeUpperFreq bound the fundamental search.
	// Zero leaves the respective side open.
	RangeLowerFreq float64
	RangeUpperFreq float64
	// MaxOrder is the highest harmonic order reported (default 20).
	MaxOrder int
	// CaptureBins is the peak search radius around each nominal harmonic
	// bin. Negative disables the search; zero selects the default of 1.
	CaptureBins int
}

// Harmonic is one row of the harmonic content table. Order 0 is DC and
// order 1 the fundamental.
type Harmonic struct {
	Order      int     `json:"order" yaml:"order"`
	Bin        int     `json:"bin" yaml:"bin"`
	Frequency  float64 `json:"frequency_hz" yaml:"frequency_hz"`
	Magnitude  float64 `json:"magnitude_v" yaml:"magnitude_v"`
	ContentPct float64 `json:"content_pct" yaml:"content_pct"`
}

// Result holds harmonic measurement results. Ratios are linear; THDPct and
// THD_dB are derived from THD, and THD_dB is -Inf for a clean tone.
//
//nolint:revive
type Result struct {
	FundamentalFreq  float64
	FundamentalBin   int
	FundamentalLevel float64
	THD              float64
	THDPct           float64
	THD_dB           float64
	OddHD            float64
	EvenHD           float64
	Harmonics        []Harmonic
}

// Calculator performs harmonic analysis on amplitude spectra.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a new harmonic calculator.
func NewCalculator(cfg Config) *Calculator {
	cfg = normalizeConfig(cfg)
	return &Calculator{cfg: cfg}
}

// Analyze is a one-shot harmonic analysis.
func Analyze(freq, magnitude []float64, cfg Config) Result {
	return NewCalculator(cfg).Calculate(freq, magnitude)
}

// Calculate measures the harmonic series of the fundamental in a
// single-sided amplitude spectrum. freq must be the uniform bin axis
// k*fs/N belonging to magnitude.
//
// Orders whose nominal frequency lies above the last bin are omitted. The
// spectrum must hold at least DC and one further bin; otherwise an empty
// Result is returned.
func (c *Calculator) Calculate(freq, magnitude []float64) Result {
	n := min(len(freq), len(magnitude))
	if n < 2 {
		return Result{}
	}
	freq, magnitude = freq[:n], magnitude[:n]

	binHz := freq[1] - freq[0]
	if !(binHz > 0) {
		return Result{}
	}

	fundBin := c.findFundamentalBin(freq, magnitude, binHz)
	f0 := freq[fundBin]
	fundLevel := magnitude[fundBin]

	res := Result{
		FundamentalFreq:  f0,
		FundamentalBin:   fundBin,
		FundamentalLevel: fundLevel,
		Harmonics:        make([]Harmonic, 0, c.cfg.MaxOrder+1),
	}

	res.Harmonics = append(res.Harmonics, row(0, 0, freq, magnitude, fundLevel))
	res.Harmonics = append(res.Harmonics, row(1, fundBin, freq, magnitude, fundLevel))

	// Keep each harmonic's search window clear of its neighbours.
	radius := min(c.cfg.CaptureBins, fundBin/2)

	var sumSq, oddSq, evenSq float64
	last := freq[n-1]
	for k := 2; k <= c.cfg.MaxOrder; k++ {
		target := float64(k) * f0
		if target > last+binHz/2 {
			break
		}

		bin := spectrum.NearestBin(target, binHz, n)
		if radius > 0 {
			bin = spectrum.PeakBin(magnitude, bin, radius)
		}

		res.Harmonics = append(res.Harmonics, row(k, bin, freq, magnitude, fundLevel))
		if fundLevel <= 0 {
			continue
		}

		ratio := magnitude[bin] / fundLevel
		sumSq += ratio * ratio
		if k%2 == 0 {
			evenSq += ratio * ratio
		} else {
			oddSq += ratio * ratio
		}
	}

	res.THD = math.Sqrt(sumSq)
	res.THDPct = 100 * res.THD
	res.THD_dB = ratioToDB(res.THD)
	res.OddHD = math.Sqrt(oddSq)
	res.EvenHD = math.Sqrt(evenSq)

	return res
}

func row(order, bin int, freq, magnitude []float64, fundLevel float64) Harmonic {
	h := Harmonic{
		Order:     order,
		Bin:       bin,
		Frequency: freq[bin],
		Magnitude: magnitude[bin],
	}
	if fundLevel > 0 {
		h.ContentPct = 100 * magnitude[bin] / fundLevel
	}
	return h
}

func (c *Calculator) findFundamentalBin(freq, magnitude []float64, binHz float64) int {
	n := len(magnitude)
	if c.cfg.FundamentalFreq > 0 {
		bin := max(1, spectrum.NearestBin(c.cfg.FundamentalFreq, binHz, n))
		if c.cfg.CaptureBins > 0 {
			bin = max(1, spectrum.PeakBin(magnitude, bin, c.cfg.CaptureBins))
		}
		return bin
	}

	lowerBin := 1
	if c.cfg.RangeLowerFreq > 0 {
		lowerBin = clampInt(int(math.Ceil(c.cfg.RangeLowerFreq/binHz)), 1, n-1)
	}
	upperBin := n - 1
	if c.cfg.RangeUpperFreq > 0 {
		upperBin = clampInt(int(math.Floor(c.cfg.RangeUpperFreq/binHz)), lowerBin, n-1)
	}

	return lowerBin + floats.MaxIdx(magnitude[lowerBin:upperBin+1])
}

func normalizeConfig(cfg Config) Config {
	if cfg.FundamentalFreq < 0 {
		cfg.FundamentalFreq = 0
	}

	if cfg.RangeLowerFreq < 0 {
		cfg.RangeLowerFreq = 0
	}

	if cfg.RangeUpperFreq > 0 && cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	if cfg.MaxOrder <= 0 {
		cfg.MaxOrder = defaultMaxOrder
	}

	switch {
	case cfg.CaptureBins == 0:
		cfg.CaptureBins = defaultCaptureBins
	case cfg.CaptureBins < 0:
		cfg.CaptureBins = 0
	}

	return cfg
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}
