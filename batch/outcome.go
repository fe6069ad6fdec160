package batch

import (
	"time"

	"github.com/cwbudde/pwmfft/report"
)

// Outcome is the result of one input file: analyzed, failed or skipped.
type Outcome struct {
	File string
	Stem string

	Skipped bool
	Kind    Kind
	Line    int
	Err     error
	// Detail is the skip reason or the error text.
	Detail string

	PeakHz        float64
	FundamentalHz float64
	THDPct        float64
	Artifacts     []string
	Elapsed       time.Duration
}

// OK reports whether the file was analyzed and written.
func (o Outcome) OK() bool {
	return !o.Skipped && o.Err == nil
}

// Status maps the outcome to a summary status.
func (o Outcome) Status() report.Status {
	switch {
	case o.Skipped:
		return report.StatusSkipped
	case o.Err != nil:
		return report.StatusFailed
	default:
		return report.StatusOK
	}
}

// Summary returns the summary row of o.
func (o Outcome) Summary() report.FileSummary {
	fs := report.FileSummary{
		File:   o.File,
		Status: o.Status(),
		Detail: o.Detail,
	}
	if o.Err != nil {
		fs.Kind = string(o.Kind)
		fs.Line = o.Line
	}
	if o.OK() {
		fs.Stem = o.Stem
		fs.PeakHz = o.PeakHz
		fs.FundamentalHz = o.FundamentalHz
		fs.THDPct = o.THDPct
		fs.Artifacts = o.Artifacts
	}
	return fs
}
