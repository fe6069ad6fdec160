package scope

import (
	"errors"
	"fmt"
)

// Sentinel errors classify why a capture could not be turned into a trace.
// Callers test for them with errors.Is.
var (
	ErrFileUnreadable    = errors.New("file unreadable")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrSamplingIrregular = errors.New("sampling irregular")
	ErrDegenerateTrace   = errors.New("degenerate trace")
	ErrNonFiniteValue    = errors.New("non-finite value")
)

// RecordError locates a failure at a line of the source file.
type RecordError struct {
	// Line is 1-based.
	Line int
	// Text is the offending line with surrounding space trimmed.
	Text string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// LineOf returns the source line carried by err, or 0.
func LineOf(err error) int {
	var rec *RecordError
	if errors.As(err, &rec) {
		return rec.Line
	}
	return 0
}
