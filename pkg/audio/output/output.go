// ABOUTME: Audio output interface definition
// ABOUTME: Common interfaces for audio playback backends
package output

import (
	"errors"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
)

// ErrDevice is wrapped by every failure to acquire an output stream or sink
var ErrDevice = errors.New("audio device error")

// Backend acquires output streams from an audio device
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// OpenStream acquires the default output stream in the given format
	OpenStream(format audio.Format) (Stream, error)
}

// Stream is an open output device that hands out sinks
type Stream interface {
	// NewSink creates a paused sink bound to this stream
	NewSink() (Sink, error)

	// Format returns the format the stream was opened with
	Format() audio.Format

	// Close releases the device
	Close() error
}

// Sink buffers an ordered sequence of segments and plays them back in order
type Sink interface {
	// Append queues a finite segment after everything appended before it
	Append(seg audio.Segment) error

	// SetVolume sets the linear gain applied at playback (1.0 = unity)
	SetVolume(volume float64)

	// Play starts or resumes playback
	Play()

	// Pause halts playback, keeping queued audio
	Pause()

	// Wait blocks until every queued segment has been played
	Wait()

	// Duration returns the total length of appended audio
	Duration() time.Duration

	// Close stops playback and releases the sink
	Close() error
}

// Backends lists the names accepted by ByName
var Backends = []string{"oto", "speaker", "null"}

// ByName returns the backend with the given name
func ByName(name string) (Backend, error) {
	switch name {
	case "oto":
		return NewOto(), nil
	case "speaker":
		return NewSpeaker(), nil
	case "null":
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}

// deviceError wraps a backend failure so callers can match ErrDevice
func deviceError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDevice, fmt.Sprintf(format, args...))
}

// checkSegment verifies that a segment matches the stream format
func checkSegment(format audio.Format, seg audio.Segment) error {
	if seg.SampleRate != format.SampleRate {
		return fmt.Errorf("segment sample rate %d does not match stream rate %d", seg.SampleRate, format.SampleRate)
	}
	if seg.Channels != format.Channels {
		return fmt.Errorf("segment has %d channels, stream expects %d", seg.Channels, format.Channels)
	}
	return nil
}
