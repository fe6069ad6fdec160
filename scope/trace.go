// Package scope reads oscilloscope ASCII exports into validated traces and
// derives their sampling properties.
package scope

import (
	"fmt"
	"math"
)

// Trace is a sampled signal read from one capture file. It is not modified
// after loading.
type Trace struct {
	// Time holds sample instants in seconds, strictly increasing.
	Time []float64
	// Value holds the sampled amplitude in volts.
	Value []float64
	// Lines maps each sample to its 1-based source line. Synthetic traces
	// may leave it nil.
	Lines []int
	// Source is the path the trace was read from.
	Source string
}

// Len returns the number of samples.
func (t Trace) Len() int {
	return len(t.Value)
}

// Line returns the source line of sample i, or 0 when unknown.
func (t Trace) Line(i int) int {
	if i < 0 || i >= len(t.Lines) {
		return 0
	}
	return t.Lines[i]
}

// Validate checks the trace invariants: equal column lengths, at least two
// samples, finite values and strictly increasing time.
func (t Trace) Validate() error {
	if len(t.Time) != len(t.Value) {
		return fmt.Errorf("%w: %d time values for %d samples", ErrDegenerateTrace, len(t.Time), len(t.Value))
	}
	if len(t.Value) < 2 {
		return fmt.Errorf("%w: %d samples, need at least 2", ErrDegenerateTrace, len(t.Value))
	}
	for i := range t.Value {
		if !finite(t.Time[i]) || !finite(t.Value[i]) {
			return t.at(i, fmt.Errorf("%w at sample %d", ErrNonFiniteValue, i))
		}
		if i > 0 && !(t.Time[i] > t.Time[i-1]) {
			return t.at(i, fmt.Errorf("%w: time %g does not follow %g", ErrSamplingIrregular, t.Time[i], t.Time[i-1]))
		}
	}
	return nil
}

func (t Trace) at(i int, err error) error {
	if line := t.Line(i); line > 0 {
		return &RecordError{Line: line, Err: err}
	}
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
