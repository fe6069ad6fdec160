package batch

import (
	"errors"

	"github.com/cwbudde/pwmfft/report"
	"github.com/cwbudde/pwmfft/scope"
)

// Kind classifies why a file failed.
type Kind string

const (
	KindNone               Kind = ""
	KindFileUnreadable     Kind = "FileUnreadable"
	KindMalformedRecord    Kind = "MalformedRecord"
	KindSamplingIrregular  Kind = "SamplingIrregular"
	KindDegenerateTrace    Kind = "DegenerateTrace"
	KindNonFiniteValue     Kind = "NonFiniteValue"
	KindOutputWriteFailure Kind = "OutputWriteFailure"
	// KindInternal covers recovered panics and errors no component claims.
	KindInternal Kind = "Internal"
)

var kindBySentinel = []struct {
	err  error
	kind Kind
}{
	{scope.ErrMalformedRecord, KindMalformedRecord},
	{scope.ErrSamplingIrregular, KindSamplingIrregular},
	{scope.ErrNonFiniteValue, KindNonFiniteValue},
	{scope.ErrDegenerateTrace, KindDegenerateTrace},
	{scope.ErrFileUnreadable, KindFileUnreadable},
	{report.ErrOutputWrite, KindOutputWriteFailure},
}

// Classify maps a pipeline error to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, e := range kindBySentinel {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindInternal
}
