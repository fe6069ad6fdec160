package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Summary file names.
const (
	SummaryFile = "summary.yaml"
	THDFile     = "thd.csv"
)

// Status is the outcome of one input file.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// FileSummary is one row of the run summary.
type FileSummary struct {
	File   string `yaml:"file"`
	Stem   string `yaml:"stem,omitempty"`
	Status Status `yaml:"status"`
	Kind   string `yaml:"kind,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Detail string `yaml:"detail,omitempty"`

	PeakHz        float64  `yaml:"peak_hz,omitempty"`
	FundamentalHz float64  `yaml:"fundamental_hz,omitempty"`
	THDPct        float64  `yaml:"thd_pct,omitempty"`
	Artifacts     []string `yaml:"artifacts,omitempty"`
}

// Summary is the run-level report.
type Summary struct {
	InputDir  string        `yaml:"input_dir"`
	OutputDir string        `yaml:"output_dir"`
	Succeeded int           `yaml:"succeeded"`
	Failed    int           `yaml:"failed"`
	Skipped   int           `yaml:"skipped"`
	Files     []FileSummary `yaml:"files"`
}

// NewSummary sorts files by name and counts outcomes.
func NewSummary(inputDir, outputDir string, files []FileSummary) Summary {
	files = slices.Clone(files)
	slices.SortStableFunc(files, func(a, b FileSummary) int {
		return cmp.Compare(a.File, b.File)
	})

	s := Summary{InputDir: inputDir, OutputDir: outputDir, Files: files}
	for _, f := range files {
		switch f.Status {
		case StatusOK:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	if s.Files == nil {
		s.Files = []FileSummary{}
	}
	return s
}

// WriteSummary writes summary.yaml and the thd.csv distortion table of the
// successful files into dir.
func WriteSummary(dir string, s Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	var ok []FileSummary
	for _, f := range s.Files {
		if f.Status == StatusOK {
			ok = append(ok, f)
		}
	}

	plan := []artifact{
		{
			name: SummaryFile,
			write: func(w io.Writer) error {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return err
				}
				return enc.Close()
			},
		},
		{
			name: THDFile,
			write: func(w io.Writer) error {
				return writeCSV(w, []string{"file", "fundamental_hz", "thd_pct"}, len(ok), func(i int, rec []string) {
					rec[0] = ok[i].File
					rec[1] = formatFloat(ok[i].FundamentalHz)
					rec[2] = formatFloat(ok[i].THDPct)
				})
			},
		},
	}

	written := make([]string, 0, len(plan))
	for _, a := range plan {
		if err := writeAtomic(filepath.Join(dir, a.name), a.write); err != nil {
			return written, fmt.Errorf("%w: %s: %w", ErrOutputWrite, a.name, err)
		}
		written = append(written, a.name)
	}
	return written, nil
}
