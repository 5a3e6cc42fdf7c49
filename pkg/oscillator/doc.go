// ABOUTME: Table-lookup oscillator package
// ABOUTME: Phase-accumulating reader over shared wavetables
// Package oscillator reads a shared wavetable at an arbitrary frequency.
//
// An Oscillator owns only its phase state; the table it reads is shared and never
// written. Samples are produced lazily and forever: duration is imposed by the
// caller with Take or Render.
//
// Example:
//
//	table, _ := wavetable.Generate(wavetable.Sine, wavetable.DefaultSize)
//	osc := oscillator.New(44100, table)
//	osc.SetFrequency(440)
//	segment := osc.Render(44100) // one second of A4
package oscillator
