//go:build arm64

package host

import "golang.org/x/sys/cpu"

func detectSIMD() SIMD {
	if cpu.ARM64.HasASIMD {
		return SIMDNEON
	}
	return SIMDNone
}
