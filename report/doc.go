// Package report writes the artifacts of one analyzed capture: spectrum,
// waveform, harmonic and band tables as CSV or Parquet, a JSON metadata
// document and optional PNG graphs. Every file is written to a temporary
// name first and renamed into place.
//
// Numbers are printed in their shortest round-trip form, so analyzing the
// same capture twice produces byte-identical files.
package report
