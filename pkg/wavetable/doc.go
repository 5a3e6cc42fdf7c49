// ABOUTME: Wavetable generation package
// ABOUTME: Builds single-period sample tables for table-lookup oscillators
// Package wavetable generates fixed-size tables holding one period of a waveform.
//
// Supported kinds:
//   - Sine, Saw, Square, Triangle: closed-form tables in [-1, 1]
//   - AdditiveSaw, AdditiveTriangle: harmonic sums, not normalized
//   - Noise: uniform random samples
//
// Tables are immutable once generated and are meant to be shared read-only by
// every oscillator that plays them.
//
// Example:
//
//	sine, err := wavetable.Generate(wavetable.Sine, wavetable.DefaultSize)
//	peak := wavetable.Peak(sine) // 1.0
//
//	// The process-wide noise loop used by percussion instruments
//	noise := wavetable.NoiseLoop()
package wavetable
