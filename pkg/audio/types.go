// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats, sample segments and PCM conversion
package audio

import (
	"math"
	"time"
)

const (
	// DefaultSampleRate is the rate used when none is configured
	DefaultSampleRate = 44100

	// DefaultChannels is mono; every track renders a single channel
	DefaultChannels = 1

	// DefaultBitDepth is the PCM depth written to devices
	DefaultBitDepth = 16
)

// Format describes an output stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns the mono 16-bit format at the given sample rate
func DefaultFormat(sampleRate int) Format {
	return Format{
		SampleRate: sampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// Segment is a finite run of interleaved float samples
type Segment struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames in the segment
func (s Segment) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// Duration returns the playback length of the segment
func (s Segment) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.SampleRate)
}

// FloatToInt16 converts a float sample to 16-bit PCM, clipping outside [-1, 1]
func FloatToInt16(v float32) int16 {
	switch {
	case v > 1:
		return math.MaxInt16
	case v < -1:
		return -math.MaxInt16
	default:
		return int16(v * math.MaxInt16)
	}
}
