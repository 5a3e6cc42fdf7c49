// ABOUTME: Note scheduler converting proto tracks into rendered segments
// ABOUTME: Appends one oscillator segment per note to the track's sink
package composer

import (
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
)

// MaxNoteFrames is the longest note, in sample frames, a track may hold
const MaxNoteFrames = math.MaxInt32

// SchedulerConfig controls how notes are rendered
type SchedulerConfig struct {
	// RetriggerNotes restarts the oscillator phase at every note instead of
	// continuing from where the previous note ended
	RetriggerNotes bool

	// Volume is the per-track volume before the master multiplier
	Volume float64
}

// Scheduler renders proto tracks with oscillators from a bank
type Scheduler struct {
	bank   *Bank
	config SchedulerConfig
}

// NewScheduler creates a scheduler drawing oscillators from bank
func NewScheduler(bank *Bank, config SchedulerConfig) *Scheduler {
	if config.Volume == 0 {
		config.Volume = 1
	}
	return &Scheduler{
		bank:   bank,
		config: config,
	}
}

// Validate checks a proto track without rendering anything
func (s *Scheduler) Validate(proto ProtoTrack) error {
	if math.IsNaN(proto.Tempo) || math.IsInf(proto.Tempo, 0) || proto.Tempo <= 0 {
		return fmt.Errorf("%w: tempo %v must be a positive number of beats per minute", ErrConfiguration, proto.Tempo)
	}
	if !s.bank.Supports(proto.Instrument) {
		return fmt.Errorf("%w: %s has no wavetable", ErrUnsupportedInstrument, proto.Instrument)
	}
	sampleRate := float64(s.bank.SampleRate())
	for i, note := range proto.Notes {
		if math.IsNaN(note.Duration) || math.IsInf(note.Duration, 0) || note.Duration < 0 {
			return fmt.Errorf("%w: note %d has invalid duration %v", ErrConfiguration, i, note.Duration)
		}
		if frames := Seconds(note.Duration, proto.Tempo) * sampleRate; frames > MaxNoteFrames {
			return fmt.Errorf("%w: note %d lasts %.0f frames, limit is %d", ErrConfiguration, i, frames, MaxNoteFrames)
		}
	}
	return nil
}

// Schedule renders every note of proto onto sink, in order, and returns the
// resulting track. The sink is not started.
func (s *Scheduler) Schedule(proto ProtoTrack, sink output.Sink) (*Track, error) {
	if err := s.Validate(proto); err != nil {
		return nil, err
	}

	osc, err := s.bank.Oscillator(proto.Instrument)
	if err != nil {
		return nil, err
	}

	track := &Track{
		ID:         uuid.New().String(),
		Instrument: proto.Instrument,
		Notes:      append([]Note(nil), proto.Notes...),
		Tempo:      proto.Tempo,
		Volume:     s.config.Volume,
		oscillator: osc,
		sink:       sink,
	}

	sampleRate := s.bank.SampleRate()
	for i, note := range track.Notes {
		seconds := Seconds(note.Duration, track.Tempo)

		if s.config.RetriggerNotes {
			osc.Reset()
		}
		osc.SetFrequency(note.Pitch)

		frames := int(math.Round(seconds * float64(sampleRate)))
		seg := audio.Segment{
			Samples:    osc.Render(frames),
			SampleRate: sampleRate,
			Channels:   osc.Channels(),
		}
		if err := sink.Append(seg); err != nil {
			return nil, fmt.Errorf("failed to append note %d of track %s: %w", i, track.ID, err)
		}

		track.Duration += seconds
	}

	log.Printf("Scheduled %s track %s: %d notes, %.3fs at %v bpm",
		track.Instrument, track.ID, len(track.Notes), track.Duration, track.Tempo)

	return track, nil
}
