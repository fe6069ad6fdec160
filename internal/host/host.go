// Package host describes the machine a batch runs on: how many files it can
// analyze at once and which vector instructions the numeric kernels use.
//
// Detection runs once and is cached.
package host

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/cpu"
)

// SIMD names the widest vector extension available to the numeric kernels.
type SIMD string

const (
	SIMDNone   SIMD = "none"
	SIMDSSE2   SIMD = "sse2"
	SIMDAVX    SIMD = "avx"
	SIMDAVX2   SIMD = "avx2"
	SIMDAVX512 SIMD = "avx512"
	SIMDNEON   SIMD = "neon"
)

// Info is a snapshot of the host.
type Info struct {
	Arch string
	// LogicalCPUs is the logical core count reported by the OS, falling back
	// to runtime.NumCPU when the OS query fails.
	LogicalCPUs int
	SIMD        SIMD
}

var (
	detected   Info
	detectOnce sync.Once
)

// Detect returns the cached host description.
func Detect() Info {
	detectOnce.Do(func() {
		detected = Info{
			Arch:        runtime.GOARCH,
			LogicalCPUs: logicalCPUs(),
			SIMD:        detectSIMD(),
		}
	})
	return detected
}

// Workers returns requested when it is positive, otherwise one worker per
// logical CPU.
func (i Info) Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	if i.LogicalCPUs > 0 {
		return i.LogicalCPUs
	}
	return 1
}

func logicalCPUs() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
