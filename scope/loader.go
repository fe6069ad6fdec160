package scope

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxLineBytes bounds a single record line.
const maxLineBytes = 1 << 20

// sniffBytes is how much of a file Sniff inspects.
const sniffBytes = 4096

// LoaderOptions select where samples live in an export.
type LoaderOptions struct {
	// SkipRows leading lines are skipped unconditionally.
	SkipRows int
	// TimeColumn and ValueColumn are 0-based field indices.
	TimeColumn  int
	ValueColumn int
}

// DefaultLoaderOptions reads time from the first and value from the second
// column, with header lines detected automatically.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{TimeColumn: 0, ValueColumn: 1}
}

// Validate reports whether the options are usable.
func (o LoaderOptions) Validate() error {
	if o.SkipRows < 0 {
		return fmt.Errorf("loader skip rows must be >= 0: %d", o.SkipRows)
	}
	if o.TimeColumn < 0 || o.ValueColumn < 0 {
		return fmt.Errorf("loader columns must be >= 0: time=%d value=%d", o.TimeColumn, o.ValueColumn)
	}
	if o.TimeColumn == o.ValueColumn {
		return fmt.Errorf("loader time and value column must differ: %d", o.TimeColumn)
	}
	return nil
}

// Load reads the capture at path.
func Load(path string, opts LoaderOptions) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	defer f.Close()

	return Parse(f, path, opts)
}

// Parse reads a capture from r. source is recorded in the returned trace.
//
// Lines before the first record with a numeric time column are treated as
// header and skipped. Blank lines are ignored. Every
// later line must be a valid record; the first one that is not fails the
// whole parse with a *RecordError naming the line.
func Parse(r io.Reader, source string, opts LoaderOptions) (Trace, error) {
	if err := opts.Validate(); err != nil {
		return Trace{}, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	tr := Trace{Source: source}
	need := max(opts.TimeColumn, opts.ValueColumn) + 1
	lineNo := 0
	inData := false

	for sc.Scan() {
		lineNo++
		if lineNo <= opts.SkipRows {
			continue
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := splitFields(text)
		if !inData {
			if len(fields) < need || !numeric(fields[opts.TimeColumn]) {
				continue
			}
			inData = true
		}

		if len(fields) < need {
			return Trace{}, &RecordError{
				Line: lineNo,
				Text: text,
				Err:  fmt.Errorf("%w: %d fields, need %d", ErrMalformedRecord, len(fields), need),
			}
		}

		t, err := parseValue(fields[opts.TimeColumn], "time")
		if err != nil {
			return Trace{}, &RecordError{Line: lineNo, Text: text, Err: err}
		}
		v, err := parseValue(fields[opts.ValueColumn], "value")
		if err != nil {
			return Trace{}, &RecordError{Line: lineNo, Text: text, Err: err}
		}

		if n := len(tr.Time); n > 0 && !(t > tr.Time[n-1]) {
			return Trace{}, &RecordError{
				Line: lineNo,
				Text: text,
				Err:  fmt.Errorf("%w: time %g does not follow %g", ErrSamplingIrregular, t, tr.Time[n-1]),
			}
		}

		tr.Time = append(tr.Time, t)
		tr.Value = append(tr.Value, v)
		tr.Lines = append(tr.Lines, lineNo)
	}

	if err := sc.Err(); err != nil {
		return Trace{}, fmt.Errorf("%w: line %d: %w", ErrFileUnreadable, lineNo+1, err)
	}

	if len(tr.Value) < 2 {
		return Trace{}, fmt.Errorf("%w: %d samples, need at least 2", ErrDegenerateTrace, len(tr.Value))
	}

	return tr, nil
}

// Sniff reports whether the leading bytes of r look like a text export:
// valid UTF-8 (allowing a rune cut at the end) without NUL bytes.
func Sniff(r io.Reader) (bool, error) {
	buf := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	buf = buf[:n]

	if len(buf) == 0 {
		return true, nil
	}
	if bytes.IndexByte(buf, 0) >= 0 {
		return false, nil
	}

	// A full buffer may end inside a multi-byte rune.
	cut := 0
	if n == sniffBytes {
		cut = utf8.UTFMax - 1
	}
	for k := 0; k <= cut && k < len(buf); k++ {
		if utf8.Valid(buf[:len(buf)-k]) {
			return true, nil
		}
	}
	return false, nil
}

// SniffFile opens path and runs Sniff on it.
func SniffFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	defer f.Close()

	return Sniff(f)
}

// splitFields splits a record on the first delimiter class it contains:
// tab, then semicolon, then comma, falling back to runs of spaces.
func splitFields(line string) []string {
	var parts []string
	switch {
	case strings.ContainsRune(line, '\t'):
		parts = strings.Split(line, "\t")
	case strings.ContainsRune(line, ';'):
		parts = strings.Split(line, ";")
	case strings.ContainsRune(line, ','):
		parts = strings.Split(line, ",")
	default:
		return strings.Fields(line)
	}
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return parts
}

func numeric(field string) bool {
	_, err := strconv.ParseFloat(field, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

func parseValue(field, column string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%w: %s %q out of range", ErrNonFiniteValue, column, field)
	case err != nil:
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRecord, column, field)
	case !finite(v):
		return 0, fmt.Errorf("%w: %s %q", ErrNonFiniteValue, column, field)
	}
	return v, nil
}
