// ABOUTME: Playback coordinator for multi-track songs
// ABOUTME: Starts every track's sink together and waits for the longest
package composer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
)

// DefaultMasterVolume scales every track's volume
const DefaultMasterVolume = 0.5

// State is the playback state of a song
type State int

const (
	StateScheduled State = iota
	StatePlaying
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StatePlaying:
		return "playing"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PlayerConfig holds player configuration
type PlayerConfig struct {
	Backend      output.Backend
	SampleRate   int
	MasterVolume *float64 // nil selects DefaultMasterVolume
	Muted        bool

	Bank      BankConfig
	Scheduler SchedulerConfig

	// OnStateChange is called synchronously on every transition
	OnStateChange func(State)
}

// Player renders and plays songs
type Player struct {
	config    PlayerConfig
	scheduler *Scheduler

	mu           sync.RWMutex
	masterVolume float64
	muted        bool
	state        State
	tracks       []*Track
	startedAt    time.Time
}

// NewPlayer creates a player and generates its instrument bank
func NewPlayer(config PlayerConfig) (*Player, error) {
	if config.Backend == nil {
		return nil, fmt.Errorf("%w: no audio backend configured", ErrConfiguration)
	}
	if config.SampleRate == 0 {
		config.SampleRate = audio.DefaultSampleRate
	}
	masterVolume := DefaultMasterVolume
	if config.MasterVolume != nil {
		masterVolume = *config.MasterVolume
	}
	if masterVolume < 0 || math.IsNaN(masterVolume) {
		return nil, fmt.Errorf("%w: master volume %v must be a non-negative number", ErrConfiguration, masterVolume)
	}
	config.Bank.SampleRate = config.SampleRate

	bank, err := NewBank(config.Bank)
	if err != nil {
		return nil, err
	}

	return &Player{
		config:       config,
		scheduler:    NewScheduler(bank, config.Scheduler),
		masterVolume: masterVolume,
		muted:        config.Muted,
	}, nil
}

// PlaySong renders every proto track, starts them together and blocks until
// the longest one has finished. Either every track starts or none does.
func (p *Player) PlaySong(protos []ProtoTrack) error {
	p.setTracks(nil)
	p.setState(StateScheduled)

	// Reject bad input before touching the device
	for i, proto := range protos {
		if err := p.scheduler.Validate(proto); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}

	format := audio.DefaultFormat(p.config.SampleRate)
	stream, err := p.config.Backend.OpenStream(format)
	if err != nil {
		return fmt.Errorf("failed to open %s output: %w", p.config.Backend.Name(), wrapDevice(err))
	}
	defer func() {
		if err := stream.Close(); err != nil {
			log.Printf("Error closing output stream: %v", err)
		}
	}()

	tracks := make([]*Track, 0, len(protos))
	closeSinks := func() {
		for _, t := range tracks {
			if err := t.sink.Close(); err != nil {
				log.Printf("Error closing sink for track %s: %v", t.ID, err)
			}
		}
	}

	for i, proto := range protos {
		sink, err := stream.NewSink()
		if err != nil {
			closeSinks()
			return fmt.Errorf("track %d: failed to create sink: %w", i, wrapDevice(err))
		}
		sink.Pause()

		track, err := p.scheduler.Schedule(proto, sink)
		if err != nil {
			if cerr := sink.Close(); cerr != nil {
				log.Printf("Error closing sink for track %d: %v", i, cerr)
			}
			closeSinks()
			return fmt.Errorf("track %d: %w", i, err)
		}
		sink.SetVolume(p.effectiveVolume(track.Volume))
		tracks = append(tracks, track)
	}
	defer closeSinks()

	p.setTracks(tracks)

	// Start everything with no blocking work in between
	var longest *Track
	for _, t := range tracks {
		t.sink.Play()
		if longest == nil || t.Duration > longest.Duration {
			longest = t
		}
	}
	p.mu.Lock()
	p.startedAt = time.Now()
	p.mu.Unlock()
	p.setState(StatePlaying)

	if longest != nil {
		log.Printf("Playing %d tracks, longest %s track %s runs %v",
			len(tracks), longest.Instrument, longest.ID, longest.DurationTime())
		longest.sink.Wait()
	}

	p.setState(StateComplete)
	log.Printf("Song complete")

	return nil
}

// effectiveVolume applies the master multiplier and mute to a track volume
func (p *Player) effectiveVolume(trackVolume float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.muted {
		return 0
	}
	return trackVolume * p.masterVolume
}

// SetMasterVolume changes the master multiplier, including for tracks
// already playing. Negative values are clamped to 0.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	p.masterVolume = volume
	p.mu.Unlock()

	p.applyVolumes()
}

// SetMuted silences or restores every track
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()

	p.applyVolumes()
}

// MasterVolume returns the current master multiplier
func (p *Player) MasterVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.masterVolume
}

func (p *Player) applyVolumes() {
	for _, t := range p.Tracks() {
		t.sink.SetVolume(p.effectiveVolume(t.Volume))
	}
}

// State returns the current playback state
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Tracks returns the tracks of the song being played
func (p *Player) Tracks() []*Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Track(nil), p.tracks...)
}

// Elapsed returns the time since every sink was started
func (p *Player) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

func (p *Player) setTracks(tracks []*Track) {
	p.mu.Lock()
	p.tracks = tracks
	if tracks == nil {
		p.startedAt = time.Time{}
	}
	p.mu.Unlock()
}

func (p *Player) setState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	if p.config.OnStateChange != nil {
		p.config.OnStateChange(state)
	}
}

// wrapDevice makes sure backend failures match ErrAudioDevice
func wrapDevice(err error) error {
	if errors.Is(err, ErrAudioDevice) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAudioDevice, err)
}
