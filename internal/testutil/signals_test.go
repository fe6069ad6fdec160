package testutil

import (
	"math"
	"os"
	"strings"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	// First sample of a sine at phase 0 should be 0.
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestSquareWave(t *testing.T) {
	s := SquareWave(1000, 8000, 2, 16)
	want := []float64{2, 2, 2, 2, -2, -2, -2, -2}
	for i, w := range want {
		if s[i] != w || s[i+8] != w {
			t.Fatalf("s[%d] = %v, want %v", i, s[i], w)
		}
	}
}

func TestTimeAxisAndDC(t *testing.T) {
	tm := TimeAxis(1000, 4)
	RequireSliceNearlyEqual(t, tm, []float64{0, 0.001, 0.002, 0.003}, 1e-15)

	for i, v := range DC(0.5, 4) {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestWriteCapture(t *testing.T) {
	dir := t.TempDir()
	path := WriteCapture(t, dir, "sub/a.csv", []float64{0, 0.5}, []float64{1.25, -3})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4: %q", len(lines), data)
	}
	if lines[2] != "0,1.25" || lines[3] != "0.5,-3" {
		t.Fatalf("unexpected records: %q", lines[2:])
	}
}
