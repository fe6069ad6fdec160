package batch

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/pwmfft/scope"
)

// DefaultExtensions are the capture file extensions picked up by default.
var DefaultExtensions = []string{".csv", ".txt", ".tsv", ".dat"}

// Entry is one regular file of the input directory.
type Entry struct {
	// Name is the file name inside the input directory.
	Name string
	Path string
	// Stem names the artifacts of the file; unique within one run.
	Stem string
	// Skip is the reason the file is not analyzed; empty when it is.
	Skip string
	// Err is set when the file could not even be inspected.
	Err error
}

// Discover lists dir and returns its regular files in name order. The
// returned sequence inspects each file only when it is reached.
//
// Stems are derived from the full set of matching names before iteration
// starts, so they do not depend on processing order: a name whose stem is
// shared with another matching file gets its extension appended.
func Discover(dir string, extensions []string) (iter.Seq[Entry], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputDir, err)
	}

	exts := normalizeExtensions(extensions)

	var names, matching []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
		if accepted(e.Name(), exts) {
			matching = append(matching, e.Name())
		}
	}
	stems := assignStems(matching)

	return func(yield func(Entry) bool) {
		for _, name := range names {
			if !yield(inspect(dir, name, exts, stems[name])) {
				return
			}
		}
	}, nil
}

func inspect(dir, name string, exts []string, stem string) Entry {
	e := Entry{Name: name, Path: filepath.Join(dir, name), Stem: stem}

	if !accepted(name, exts) {
		e.Skip = "extension not in " + strings.Join(exts, " ")
		return e
	}

	info, err := os.Stat(e.Path)
	if err != nil {
		e.Err = fmt.Errorf("%w: %w", scope.ErrFileUnreadable, err)
		return e
	}
	if !info.Mode().IsRegular() {
		e.Skip = "not a regular file"
		return e
	}

	text, err := scope.SniffFile(e.Path)
	if err != nil {
		e.Err = err
		return e
	}
	if !text {
		e.Skip = "binary content"
	}

	return e
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}

func accepted(name string, exts []string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// assignStems maps each name to a unique artifact stem. names must be
// sorted.
func assignStems(names []string) map[string]string {
	base := func(name string) string {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}

	count := map[string]int{}
	for _, name := range names {
		count[base(name)]++
	}

	used := map[string]bool{}
	for stem, n := range count {
		if n == 1 {
			used[stem] = true
		}
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		stem := base(name)
		if count[stem] == 1 {
			out[name] = stem
			continue
		}

		qualified := stem + "_" + strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		candidate := qualified
		for i := 2; used[candidate]; i++ {
			candidate = qualified + "_" + strconv.Itoa(i)
		}
		used[candidate] = true
		out[name] = candidate
	}
	return out
}
