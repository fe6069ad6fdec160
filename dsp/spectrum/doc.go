// Package spectrum provides FFT-adjacent spectrum-domain utilities.
//
// The package does not implement an FFT itself. It operates on complex bins
// produced by an external FFT backend and provides helpers for single-sided
// amplitude scaling, the frequency axis, bin lookup and peak search.
package spectrum
