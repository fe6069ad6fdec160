package scope

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultTolerance is the accepted relative deviation of any sample
// interval from the median interval.
const DefaultTolerance = 0.01

// SamplingInfo describes the time base of a trace.
type SamplingInfo struct {
	SampleRate   float64 `json:"sample_rate_hz" yaml:"sample_rate_hz"`
	Period       float64 `json:"period_s" yaml:"period_s"`
	Count        int     `json:"count" yaml:"count"`
	Duration     float64 `json:"duration_s" yaml:"duration_s"`
	MaxDeviation float64 `json:"max_deviation" yaml:"max_deviation"`
	Tolerance    float64 `json:"tolerance" yaml:"tolerance"`
	Uniform      bool    `json:"uniform" yaml:"uniform"`
}

// AnalyzeSampling derives the sample rate of tr from its median sample
// interval and checks that every interval stays within tolerance of it.
//
// An irregular trace is reported as ErrSamplingIrregular, wrapped in a
// *RecordError at the sample that ends the worst interval when the trace
// carries line numbers. The returned info is filled in either way.
func AnalyzeSampling(tr Trace, tolerance float64) (SamplingInfo, error) {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return SamplingInfo{}, fmt.Errorf("sampling tolerance must be > 0: %v", tolerance)
	}
	if err := tr.Validate(); err != nil {
		return SamplingInfo{}, err
	}

	n := len(tr.Time)
	deltas := make([]float64, n-1)
	for i := 1; i < n; i++ {
		deltas[i-1] = tr.Time[i] - tr.Time[i-1]
	}

	sorted := make([]float64, len(deltas))
	copy(sorted, deltas)
	sort.Float64s(sorted)
	period := median(sorted)

	worst := 0
	maxDev := 0.0
	for i, d := range deltas {
		dev := math.Abs(d-period) / period
		if dev > maxDev {
			maxDev = dev
			worst = i
		}
	}

	info := SamplingInfo{
		SampleRate:   1 / period,
		Period:       period,
		Count:        n,
		Duration:     tr.Time[n-1] - tr.Time[0],
		MaxDeviation: maxDev,
		Tolerance:    tolerance,
		Uniform:      maxDev <= tolerance,
	}

	if !info.Uniform {
		err := fmt.Errorf("%w: interval %gs before sample %d deviates %.3g%% from median period %gs (tolerance %.3g%%)",
			ErrSamplingIrregular, deltas[worst], worst+1, 100*maxDev, period, 100*tolerance)
		return info, tr.at(worst+1, err)
	}

	return info, nil
}

// Validate checks that info can drive a transform of count samples.
func (s SamplingInfo) Validate(count int) error {
	if !(s.SampleRate > 0) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrDegenerateTrace, s.SampleRate)
	}
	if s.Count != count {
		return fmt.Errorf("%w: sampling info covers %d samples, trace has %d", ErrDegenerateTrace, s.Count, count)
	}
	return nil
}

// median of ascending data. An even count averages the two middle values;
// stat.Quantile's empirical rule alone would return the lower one.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}
