//go:build amd64

package host

import "golang.org/x/sys/cpu"

// SSE2 is part of the amd64 baseline.
func detectSIMD() SIMD {
	switch {
	case cpu.X86.HasAVX512:
		return SIMDAVX512
	case cpu.X86.HasAVX2:
		return SIMDAVX2
	case cpu.X86.HasAVX:
		return SIMDAVX
	case cpu.X86.HasSSE2:
		return SIMDSSE2
	default:
		return SIMDNone
	}
}
