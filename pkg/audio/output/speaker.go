// ABOUTME: beep speaker audio output implementation
// ABOUTME: Mixes one paused beep.Ctrl per sink into the speaker
package output

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
)

// speakerBufferDuration is the speaker's internal buffer length
const speakerBufferDuration = 100 * time.Millisecond

var (
	speakerMu     sync.Mutex
	speakerReady  bool
	speakerFormat audio.Format
)

// Speaker is a Backend playing through the gopxl/beep speaker
type Speaker struct{}

// NewSpeaker creates a new beep speaker backend
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Name returns the backend name
func (b *Speaker) Name() string { return "speaker" }

// OpenStream initializes the speaker once per process
func (b *Speaker) OpenStream(format audio.Format) (Stream, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerReady {
		if speakerFormat.SampleRate != format.SampleRate {
			return nil, deviceError("speaker already running at %dHz, cannot reopen at %dHz",
				speakerFormat.SampleRate, format.SampleRate)
		}
		return &speakerStream{format: format}, nil
	}

	sr := beep.SampleRate(format.SampleRate)
	if err := speaker.Init(sr, sr.N(speakerBufferDuration)); err != nil {
		return nil, deviceError("failed to initialize speaker: %v", err)
	}

	speakerReady = true
	speakerFormat = format

	log.Printf("Speaker initialized: %dHz, buffer %v", format.SampleRate, speakerBufferDuration)

	return &speakerStream{format: format}, nil
}

type speakerStream struct {
	format audio.Format
}

func (s *speakerStream) NewSink() (Sink, error) {
	q := newQueue(s.format.Channels)
	gain := &effects.Gain{Streamer: q, Gain: 0}
	ctrl := &beep.Ctrl{Streamer: gain, Paused: true}

	sink := &speakerSink{
		queue:  q,
		gain:   gain,
		ctrl:   ctrl,
		format: s.format,
		done:   make(chan struct{}),
	}

	speaker.Play(beep.Seq(ctrl, beep.Callback(sink.finish)))
	return sink, nil
}

func (s *speakerStream) Format() audio.Format { return s.format }

func (s *speakerStream) Close() error {
	speaker.Clear()
	return nil
}

// speakerSink is a paused controller in the speaker mixer
type speakerSink struct {
	queue  *queue
	gain   *effects.Gain
	ctrl   *beep.Ctrl
	format audio.Format

	done     chan struct{}
	doneOnce sync.Once
}

func (s *speakerSink) finish() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *speakerSink) Append(seg audio.Segment) error {
	if err := checkSegment(s.format, seg); err != nil {
		return err
	}
	s.queue.push(seg.Samples)
	return nil
}

// SetVolume maps a linear volume onto the gain effect (gain 0 = unity)
func (s *speakerSink) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	speaker.Lock()
	s.gain.Gain = volume - 1
	speaker.Unlock()
}

func (s *speakerSink) Play() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *speakerSink) Pause() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *speakerSink) Wait() {
	if s.queue.samples() == 0 {
		return
	}
	<-s.done
}

func (s *speakerSink) Duration() time.Duration {
	return samplesDuration(s.queue.samples(), s.format)
}

func (s *speakerSink) Close() error {
	speaker.Lock()
	s.ctrl.Streamer = nil
	s.ctrl.Paused = false
	speaker.Unlock()
	s.finish()
	return nil
}
