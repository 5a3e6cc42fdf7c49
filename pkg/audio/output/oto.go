// ABOUTME: Oto-based audio output implementation
// ABOUTME: One oto player per sink with software volume control
package output

import (
	"encoding/binary"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
)

// oto allows a single context per process; it is created on first use and
// reused by every later stream with the same format
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat audio.Format
)

// drainPollInterval is how often Wait checks whether the player went idle
const drainPollInterval = 10 * time.Millisecond

// Oto is a Backend playing through ebitengine/oto
type Oto struct{}

// NewOto creates a new oto backend
func NewOto() *Oto {
	return &Oto{}
}

// Name returns the backend name
func (o *Oto) Name() string { return "oto" }

// OpenStream initializes the oto context for the format
func (o *Oto) OpenStream(format audio.Format) (Stream, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	// oto only supports 16-bit output through this backend
	if format.BitDepth != 16 {
		log.Printf("Warning: oto backend writes 16-bit PCM, ignoring requested bitDepth=%d", format.BitDepth)
		format.BitDepth = 16
	}

	if otoCtx != nil {
		if otoFormat != format {
			return nil, deviceError("oto context already open at %dHz %dch, cannot reopen at %dHz %dch",
				otoFormat.SampleRate, otoFormat.Channels, format.SampleRate, format.Channels)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, deviceError("failed to resume oto context: %v", err)
		}
		log.Printf("Audio output already initialized with same format, reusing context")
		return &otoStream{ctx: otoCtx, format: format}, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, deviceError("failed to create oto context: %v", err)
	}

	<-readyChan

	otoCtx = ctx
	otoFormat = format

	log.Printf("Audio output initialized: %dHz, %d channels", format.SampleRate, format.Channels)

	return &otoStream{ctx: ctx, format: format}, nil
}

// otoStream hands out players on a shared oto context
type otoStream struct {
	ctx    *oto.Context
	format audio.Format
}

func (s *otoStream) NewSink() (Sink, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, deviceError("oto context failed: %v", err)
	}

	q := newQueue(s.format.Channels)
	sink := &otoSink{
		queue:  q,
		format: s.format,
	}
	sink.player = s.ctx.NewPlayer(&pcmReader{queue: q})
	return sink, nil
}

func (s *otoStream) Format() audio.Format { return s.format }

func (s *otoStream) Close() error {
	return s.ctx.Suspend()
}

// otoSink plays its queue through one oto player
type otoSink struct {
	queue  *queue
	player *oto.Player
	format audio.Format
}

func (s *otoSink) Append(seg audio.Segment) error {
	if err := checkSegment(s.format, seg); err != nil {
		return err
	}
	s.queue.push(seg.Samples)
	return nil
}

func (s *otoSink) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	s.queue.setGain(volume)
}

func (s *otoSink) Play()  { s.player.Play() }
func (s *otoSink) Pause() { s.player.Pause() }

// Wait blocks until the queue is drained and the player has gone idle
func (s *otoSink) Wait() {
	if s.queue.samples() == 0 {
		return
	}
	<-s.queue.Done()
	for s.player.IsPlaying() {
		time.Sleep(drainPollInterval)
	}
}

func (s *otoSink) Duration() time.Duration {
	return samplesDuration(s.queue.samples(), s.format)
}

func (s *otoSink) Close() error {
	s.queue.markDrained()
	return s.player.Close()
}

// pcmReader converts queued float samples to 16-bit little-endian PCM
type pcmReader struct {
	queue *queue
	buf   []float32
}

func (r *pcmReader) Read(p []byte) (int, error) {
	want := len(p) / 2
	if want == 0 {
		return 0, nil
	}
	if cap(r.buf) < want {
		r.buf = make([]float32, want)
	}

	n := r.queue.read(r.buf[:want])
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range r.buf[:n] {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(audio.FloatToInt16(v)))
	}
	return n * 2, nil
}

// samplesDuration converts an interleaved sample count to a duration
func samplesDuration(samples int, format audio.Format) time.Duration {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return 0
	}
	frames := samples / format.Channels
	return time.Duration(frames) * time.Second / time.Duration(format.SampleRate)
}
