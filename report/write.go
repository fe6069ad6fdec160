package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// SpectrumRow is one bin of a Parquet spectrum table.
type SpectrumRow struct {
	FrequencyHz float64 `parquet:"frequency_hz"`
	MagnitudeV  float64 `parquet:"magnitude_v"`
}

// SpectrumPhaseRow is one bin of a Parquet spectrum table with phase.
type SpectrumPhaseRow struct {
	FrequencyHz float64 `parquet:"frequency_hz"`
	MagnitudeV  float64 `parquet:"magnitude_v"`
	PhaseRad    float64 `parquet:"phase_rad"`
}

// SampleRow is one time-domain sample of a Parquet waveform table.
type SampleRow struct {
	TimeS      float64 `parquet:"time_s"`
	AmplitudeV float64 `parquet:"amplitude_v"`
}

// writeAtomic streams write into a temporary file next to path and renames
// it into place once everything has been flushed.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// writeCSV writes header followed by n records produced by fill. fill
// receives a reused record slice of len(header).
func writeCSV(w io.Writer, header []string, n int, fill func(i int, rec []string)) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for i := range n {
		fill(i, rec)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeParquet[T any](w io.Writer, rows []T) error {
	pw := parquet.NewGenericWriter[T](w, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(rows); err != nil {
		return err
	}
	return pw.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
