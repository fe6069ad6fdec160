package report

import (
	"math"
	"path/filepath"

	"github.com/cwbudde/pwmfft/measure/spectral"
	"github.com/cwbudde/pwmfft/measure/thd"
	"github.com/cwbudde/pwmfft/scope"
	"github.com/cwbudde/pwmfft/stats/frequency"
	"github.com/cwbudde/pwmfft/stats/waveform"
)

// Result bundles everything derived from one capture file.
type Result struct {
	// Source is the input path and Stem the base name artifacts are
	// derived from.
	Source string
	Stem   string

	Trace     scope.Trace
	Sampling  scope.SamplingInfo
	Spectrum  spectral.Spectrum
	Harmonics thd.Result

	Waveform      waveform.Stats
	SpectrumStats frequency.Stats
	Peaks         []frequency.Peak

	// Band is the band-limited waveform; nil when no band is configured.
	Band      []float64
	BandMinHz float64
	BandMaxHz float64
}

// Metadata is the JSON document written next to each spectrum.
type Metadata struct {
	File      string             `json:"file"`
	Source    string             `json:"source"`
	Sampling  scope.SamplingInfo `json:"sampling"`
	Spectrum  SpectrumMeta       `json:"spectrum"`
	Peak      frequency.Peak     `json:"peak"`
	Harmonics HarmonicsMeta      `json:"harmonics"`
	Waveform  waveform.Stats     `json:"waveform"`
	Stats     frequency.Stats    `json:"spectrum_stats"`
	Peaks     []frequency.Peak   `json:"dominant_peaks"`
	Band      *BandMeta          `json:"band,omitempty"`
	Artifacts []string           `json:"artifacts"`
}

// SpectrumMeta describes how the spectrum was computed.
type SpectrumMeta struct {
	Bins         int     `json:"bins"`
	Size         int     `json:"size"`
	BinWidth     float64 `json:"bin_width_hz"`
	Window       string  `json:"window"`
	CoherentGain float64 `json:"coherent_gain"`
	ENBW         float64 `json:"enbw_bins"`
	Backend      string  `json:"backend"`
	Phase        bool    `json:"phase"`
}

// HarmonicsMeta is the harmonic content summary. THDdB is omitted when the
// distortion is zero and the level is minus infinity.
type HarmonicsMeta struct {
	FundamentalHz  float64        `json:"fundamental_hz"`
	FundamentalBin int            `json:"fundamental_bin"`
	FundamentalV   float64        `json:"fundamental_v"`
	THDPct         float64        `json:"thd_pct"`
	THDdB          *float64       `json:"thd_db,omitempty"`
	OddPct         float64        `json:"odd_hd_pct"`
	EvenPct        float64        `json:"even_hd_pct"`
	Table          []thd.Harmonic `json:"table"`
}

// BandMeta records the band of the reconstructed waveform.
type BandMeta struct {
	MinHz float64 `json:"min_hz"`
	MaxHz float64 `json:"max_hz"`
}

// Metadata assembles the JSON document for r. artifacts lists the file
// names written alongside it.
func (r Result) Metadata(artifacts []string) Metadata {
	md := Metadata{
		File:     filepath.Base(r.Source),
		Source:   r.Source,
		Sampling: r.Sampling,
		Spectrum: SpectrumMeta{
			Bins:         r.Spectrum.Len(),
			Size:         r.Spectrum.Size,
			BinWidth:     r.Spectrum.BinWidth,
			Window:       r.Spectrum.Window.String(),
			CoherentGain: r.Spectrum.CoherentGain,
			ENBW:         r.Spectrum.ENBW,
			Backend:      string(r.Spectrum.Backend),
			Phase:        r.Spectrum.Phase != nil,
		},
		Harmonics: HarmonicsMeta{
			FundamentalHz:  r.Harmonics.FundamentalFreq,
			FundamentalBin: r.Harmonics.FundamentalBin,
			FundamentalV:   r.Harmonics.FundamentalLevel,
			THDPct:         r.Harmonics.THDPct,
			THDdB:          finite(r.Harmonics.THD_dB),
			OddPct:         100 * r.Harmonics.OddHD,
			EvenPct:        100 * r.Harmonics.EvenHD,
			Table:          r.Harmonics.Harmonics,
		},
		Waveform:  r.Waveform,
		Stats:     r.SpectrumStats,
		Peaks:     r.Peaks,
		Artifacts: artifacts,
	}

	if k := r.Spectrum.PeakBin(); k > 0 {
		md.Peak = frequency.Peak{
			Bin:       k,
			Frequency: r.Spectrum.Frequency[k],
			Magnitude: r.Spectrum.Magnitude[k],
		}
	}
	if md.Peaks == nil {
		md.Peaks = []frequency.Peak{}
	}
	if md.Harmonics.Table == nil {
		md.Harmonics.Table = []thd.Harmonic{}
	}
	if r.Band != nil {
		md.Band = &BandMeta{MinHz: r.BandMinHz, MaxHz: r.BandMaxHz}
	}

	return md
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
