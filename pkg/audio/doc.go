// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Segment types and sample conversion functions
// Package audio provides fundamental audio types shared by the synthesis core
// and the output backends.
//
// This package defines:
//   - Format: Describes an output stream (sample rate, channels, bit depth)
//   - Segment: A finite run of float samples appended to a sink
//
// It also provides conversion from float samples to 16-bit PCM with clipping.
//
// Example:
//
//	seg := audio.Segment{Samples: samples, SampleRate: 44100, Channels: 1}
//	d := seg.Duration()
//	pcm := audio.FloatToInt16(seg.Samples[0])
package audio
