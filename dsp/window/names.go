package window

import (
	"fmt"
	"strings"
)

var typeNames = []struct {
	name string
	typ  Type
}{
	{"rectangular", TypeRectangular},
	{"hann", TypeHann},
	{"hamming", TypeHamming},
	{"blackman", TypeBlackman},
	{"flat-top", TypeFlatTop},
}

// Parse resolves a configuration name such as "hann" or "flat-top" to a Type.
// Matching ignores case and surrounding space; "none" is an alias of
// rectangular and "flattop" of flat-top.
func Parse(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "none":
		return TypeRectangular, nil
	case "flattop":
		return TypeFlatTop, nil
	}

	for _, e := range typeNames {
		if e.name == key {
			return e.typ, nil
		}
	}

	return TypeRectangular, fmt.Errorf("unknown window %q (known: %s)", name, strings.Join(Names(), ", "))
}

// String returns the configuration name of t.
func (t Type) String() string {
	for _, e := range typeNames {
		if e.typ == t {
			return e.name
		}
	}

	return fmt.Sprintf("window(%d)", int(t))
}

// Names lists the configuration names of all supported windows.
func Names() []string {
	out := make([]string, len(typeNames))
	for i, e := range typeNames {
		out[i] = e.name
	}

	return out
}
