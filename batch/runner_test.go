package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/pwmfft/internal/testutil"
	"github.com/cwbudde/pwmfft/report"
)

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(r report.Result) ([]string, error) {
	args := m.Called(r)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockEmitter) Clean(stem string) error {
	return m.Called(stem).Error(0)
}

func stem(s string) any {
	return mock.MatchedBy(func(r report.Result) bool { return r.Stem == s })
}

func testConfig(t *testing.T, input string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.InputDir = input
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	cfg.Workers = 2
	return cfg
}

// corruptCapture returns a 1 kHz capture whose sample i has a broken value.
func corruptCapture(i int) (string, int) {
	tm := testutil.TimeAxis(100_000, 1000)
	v := testutil.DeterministicSine(1000, 100_000, 1, 1000)
	lines := strings.Split(testutil.CaptureText(tm, v), "\n")
	// Two header lines precede the records.
	lines[2+i] = fmt.Sprintf("%g,4.2V", tm[i])
	return strings.Join(lines, "\n"), 3 + i
}

func findFile(t *testing.T, s report.Summary, name string) report.FileSummary {
	t.Helper()
	for _, f := range s.Files {
		if f.File == name {
			return f
		}
	}
	t.Fatalf("%s missing from summary", name)
	return report.FileSummary{}
}

func TestRunEndToEnd(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 1000, 100_000, 2, 10_000)
	text, badLine := corruptCapture(50)
	testutil.WriteFile(t, input, "b.csv", text)

	cfg := testConfig(t, input)
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Files, 2)

	a := findFile(t, summary, "a.csv")
	assert.Equal(t, report.StatusOK, a.Status)
	assert.InDelta(t, 1000, a.PeakHz, 10)
	assert.InDelta(t, 1000, a.FundamentalHz, 10)
	assert.Equal(t, []string{"a_spectrum.csv", "a_waveform.csv", "a_harmonics.csv", "a.json"}, a.Artifacts)

	b := findFile(t, summary, "b.csv")
	assert.Equal(t, report.StatusFailed, b.Status)
	assert.Equal(t, string(KindMalformedRecord), b.Kind)
	assert.Equal(t, badLine, b.Line)
	assert.Contains(t, b.Detail, "4.2V")

	for _, name := range append(a.Artifacts, report.SummaryFile, report.THDFile) {
		assert.FileExists(t, filepath.Join(cfg.Output.Dir, name))
	}
	assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, "b.json"))
}

func TestRunIsIdempotent(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 1000, 100_000, 2, 2000)
	testutil.SineCapture(t, input, "c.txt", 250, 10_000, 1, 1000)
	text, _ := corruptCapture(3)
	testutil.WriteFile(t, input, "b.csv", text)

	cfg := testConfig(t, input)
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	snapshot := func() map[string][]byte {
		entries, err := os.ReadDir(cfg.Output.Dir)
		require.NoError(t, err)
		out := map[string][]byte{}
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, e.Name()))
			require.NoError(t, err)
			out[e.Name()] = data
		}
		return out
	}

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	first := snapshot()

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	second := snapshot()

	require.Equal(t, len(first), len(second))
	for name, data := range first {
		assert.True(t, bytes.Equal(data, second[name]), "%s differs between runs", name)
	}
}

func TestRunSequentialMatchesParallel(t *testing.T) {
	input := t.TempDir()
	for i, f := range []float64{50, 120, 400, 1000} {
		testutil.SineCapture(t, input, fmt.Sprintf("f%d.csv", i), f, 10_000, 1, 1000)
	}

	run := func(workers int) report.Summary {
		cfg := testConfig(t, input)
		cfg.Workers = workers
		r, err := NewRunner(cfg)
		require.NoError(t, err)
		s, err := r.Run(context.Background())
		require.NoError(t, err)
		s.OutputDir = ""
		return s
	}

	assert.Equal(t, run(1), run(4))
}

func TestRunDetectsIrregularSampling(t *testing.T) {
	input := t.TempDir()
	tm := testutil.TimeAxis(1000, 200)
	v := testutil.DeterministicSine(50, 1000, 1, 200)
	tm[100] += 0.3e-3
	testutil.WriteCapture(t, input, "jitter.csv", tm, v)

	r, err := NewRunner(testConfig(t, input))
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	f := findFile(t, summary, "jitter.csv")
	assert.Equal(t, report.StatusFailed, f.Status)
	assert.Equal(t, string(KindSamplingIrregular), f.Kind)
	assert.Positive(t, f.Line)
}

func TestRunSpectrumOverflow(t *testing.T) {
	input := t.TempDir()
	testutil.WriteCapture(t, input, "big.csv", testutil.TimeAxis(1000, 64), testutil.DC(1e308, 64))

	cfg := testConfig(t, input)
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	f := findFile(t, summary, "big.csv")
	assert.Equal(t, report.StatusFailed, f.Status)
	assert.Equal(t, string(KindNonFiniteValue), f.Kind)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, "big_spectrum.csv"))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, "big.json"))
}

func TestRunRemovesArtifactsOfNowFailingFile(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 1000, 100_000, 1, 1000)
	testutil.SineCapture(t, input, "a_b.csv", 1000, 100_000, 1, 1000)

	cfg := testConfig(t, input)
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(cfg.Output.Dir, "a.json"))

	text, _ := corruptCapture(10)
	testutil.WriteFile(t, input, "a.csv", text)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailed, findFile(t, summary, "a.csv").Status)

	for _, name := range []string{"a.json", "a_spectrum.csv", "a_waveform.csv", "a_harmonics.csv"} {
		assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, name))
	}
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "a_b.json"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "a_b_spectrum.csv"))
}

func TestRunSkipsForeignFiles(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 50, 1000, 1, 200)
	testutil.WriteFile(t, input, "notes.md", "# bench notes\n")
	testutil.WriteFile(t, input, "blob.dat", "\x00\x01\x02binary")
	require.NoError(t, os.Mkdir(filepath.Join(input, "archive"), 0o755))

	r, err := NewRunner(testConfig(t, input))
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, "binary content", findFile(t, summary, "blob.dat").Detail)
	assert.Equal(t, report.StatusSkipped, findFile(t, summary, "notes.md").Status)
}

func TestRunMissingInputDir(t *testing.T) {
	r, err := NewRunner(testConfig(t, filepath.Join(t.TempDir(), "nope")))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputDir)
}

func TestRunInputIsFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.csv", "0,1\n1,2\n")
	r, err := NewRunner(testConfig(t, path))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputDir)
}

func TestRunCancelled(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 50, 1000, 1, 200)

	r, err := NewRunner(testConfig(t, input))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Files)
}

func TestRunEmitterFailureIsPerFile(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 50, 1000, 1, 200)
	testutil.SineCapture(t, input, "b.csv", 50, 1000, 1, 200)

	em := &mockEmitter{}
	em.On("Emit", stem("a")).Return([]string{"a.json"}, nil).Once()
	em.On("Emit", stem("b")).Return(nil, fmt.Errorf("%w: disk full", report.ErrOutputWrite)).Once()
	em.On("Clean", "b").Return(nil).Once()

	r, err := NewRunner(testConfig(t, input), WithEmitter(em))
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	em.AssertExpectations(t)

	assert.Equal(t, []string{"a.json"}, findFile(t, summary, "a.csv").Artifacts)
	b := findFile(t, summary, "b.csv")
	assert.Equal(t, string(KindOutputWriteFailure), b.Kind)
	assert.Contains(t, b.Detail, "disk full")
}

func TestRunRecoversPanic(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 50, 1000, 1, 200)
	testutil.SineCapture(t, input, "b.csv", 50, 1000, 1, 200)

	em := &mockEmitter{}
	em.On("Emit", stem("a")).Return([]string{"a.json"}, nil)
	em.On("Emit", stem("b")).Run(func(mock.Arguments) { panic("boom") })
	em.On("Clean", "b").Return(errors.New("read-only"))

	r, err := NewRunner(testConfig(t, input), WithEmitter(em))
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.StatusOK, findFile(t, summary, "a.csv").Status)
	b := findFile(t, summary, "b.csv")
	assert.Equal(t, string(KindInternal), b.Kind)
	assert.Contains(t, b.Detail, "boom")
}

func TestRunBandAndStemCollision(t *testing.T) {
	input := t.TempDir()
	testutil.SineCapture(t, input, "a.csv", 50, 1000, 1, 200)
	testutil.SineCapture(t, input, "a.txt", 100, 1000, 1, 200)

	cfg := testConfig(t, input)
	cfg.BandMinHz, cfg.BandMaxHz = 40, 60
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)

	assert.Equal(t, "a_csv", findFile(t, summary, "a.csv").Stem)
	assert.Equal(t, "a_txt", findFile(t, summary, "a.txt").Stem)
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "a_csv_band.csv"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "a_txt.json"))
}

func TestProcessEntryError(t *testing.T) {
	r, err := NewRunner(testConfig(t, t.TempDir()))
	require.NoError(t, err)

	missing := filepath.Join(t.TempDir(), "gone.csv")
	out := r.Process(Entry{Name: "gone.csv", Path: missing, Stem: "gone"})
	assert.Equal(t, KindFileUnreadable, out.Kind)
	assert.False(t, out.OK())
	assert.Equal(t, report.StatusFailed, out.Status())
}

func TestDefaultConfigLayout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "csv", cfg.InputDir)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "hann", cfg.Window.String())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"no input":       func(c *Config) { c.InputDir = "" },
		"workers":        func(c *Config) { c.Workers = -1 },
		"extensions":     func(c *Config) { c.Extensions = []string{" "} },
		"tolerance":      func(c *Config) { c.Tolerance = 0 },
		"columns":        func(c *Config) { c.Loader.ValueColumn = c.Loader.TimeColumn },
		"backend":        func(c *Config) { c.Backend = "fftw" },
		"window":         func(c *Config) { c.Window = 42 },
		"inverted band":  func(c *Config) { c.BandMinHz, c.BandMaxHz = 60, 40 },
		"negative band":  func(c *Config) { c.BandMinHz = -1 },
		"fundamental":    func(c *Config) { c.Harmonics.FundamentalFreq = -50 },
		"output format":  func(c *Config) { c.Output.Format = "xls" },
		"output missing": func(c *Config) { c.Output.Dir = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(&c)
			assert.Error(t, c.Validate())
			_, err := NewRunner(c)
			assert.Error(t, err)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindInternal, Classify(errors.New("surprise")))
	assert.Equal(t, KindOutputWriteFailure, Classify(fmt.Errorf("x: %w", report.ErrOutputWrite)))
}
