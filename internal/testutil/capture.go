package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// CaptureText renders time/value pairs the way a bench scope exports them:
// two header lines followed by one comma separated record per sample.
func CaptureText(tm, values []float64) string {
	var b strings.Builder
	b.WriteString("x-axis,1\n")
	b.WriteString("second,Volt\n")
	for i := range tm {
		b.WriteString(strconv.FormatFloat(tm[i], 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(values[i], 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCapture writes a scope capture file and returns its path.
func WriteCapture(t *testing.T, dir, name string, tm, values []float64) string {
	t.Helper()
	if len(tm) != len(values) {
		t.Fatalf("capture length mismatch: %d time vs %d values", len(tm), len(values))
	}
	return WriteFile(t, dir, name, CaptureText(tm, values))
}

// SineCapture writes a uniformly sampled sine capture.
func SineCapture(t *testing.T, dir, name string, freqHz, sampleRate, amplitude float64, length int) string {
	t.Helper()
	return WriteCapture(t, dir, name, TimeAxis(sampleRate, length), DeterministicSine(freqHz, sampleRate, amplitude, length))
}
