// ABOUTME: Null audio output with no device behind it
// ABOUTME: Records appended segments and drains in wall-clock time
package output

import (
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
)

// NullConfig configures the null backend
type NullConfig struct {
	// Sleep blocks for a duration; defaults to time.Sleep
	Sleep func(time.Duration)
}

// Null is a Backend that plays nothing. Sinks keep everything appended to
// them so callers can inspect what would have been played.
type Null struct {
	sleep func(time.Duration)

	mu      sync.Mutex
	streams []*NullStream
}

// NewNull creates a null backend that waits in real time
func NewNull() *Null {
	return NewNullWithConfig(NullConfig{})
}

// NewNullWithConfig creates a null backend with a custom sleep function
func NewNullWithConfig(config NullConfig) *Null {
	sleep := config.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Null{sleep: sleep}
}

// Name returns the backend name
func (n *Null) Name() string { return "null" }

// OpenStream never fails
func (n *Null) OpenStream(format audio.Format) (Stream, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := &NullStream{format: format, sleep: n.sleep}
	n.streams = append(n.streams, s)
	return s, nil
}

// Streams returns every stream opened so far
func (n *Null) Streams() []*NullStream {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*NullStream(nil), n.streams...)
}

// NullStream hands out NullSinks
type NullStream struct {
	format audio.Format
	sleep  func(time.Duration)

	mu     sync.Mutex
	sinks  []*NullSink
	closed bool
}

func (s *NullStream) NewSink() (Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sink := &NullSink{format: s.format, sleep: s.sleep, volume: 1}
	s.sinks = append(s.sinks, sink)
	return sink, nil
}

func (s *NullStream) Format() audio.Format { return s.format }

func (s *NullStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Sinks returns every sink created on the stream
func (s *NullStream) Sinks() []*NullSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*NullSink(nil), s.sinks...)
}

// Closed reports whether Close was called
func (s *NullStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// NullSink records segments and simulates playback time
type NullSink struct {
	format audio.Format
	sleep  func(time.Duration)

	mu        sync.Mutex
	segments  []audio.Segment
	duration  time.Duration
	volume    float64
	playing   bool
	startedAt time.Time
	waited    time.Duration
	closed    bool
}

func (s *NullSink) Append(seg audio.Segment) error {
	if err := checkSegment(s.format, seg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.segments = append(s.segments, seg)
	s.duration += seg.Duration()
	return nil
}

func (s *NullSink) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
}

func (s *NullSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		s.playing = true
		s.startedAt = time.Now()
	}
}

func (s *NullSink) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

// Wait sleeps for whatever part of the queued audio has not yet "played".
// A paused sink returns immediately.
func (s *NullSink) Wait() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	remaining := s.duration - time.Since(s.startedAt)
	s.mu.Unlock()

	if remaining < 0 {
		remaining = 0
	}
	s.sleep(remaining)

	s.mu.Lock()
	s.waited += remaining
	s.mu.Unlock()
}

func (s *NullSink) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *NullSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.playing = false
	s.mu.Unlock()
	return nil
}

// Segments returns the appended segments in order
func (s *NullSink) Segments() []audio.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audio.Segment(nil), s.segments...)
}

// Volume returns the last volume set
func (s *NullSink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Playing reports whether the sink has been started and not paused
func (s *NullSink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Waited returns the total time spent sleeping in Wait
func (s *NullSink) Waited() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waited
}

// Closed reports whether Close was called
func (s *NullSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
