// ABOUTME: Tests for the playback coordinator
// ABOUTME: Tests simultaneous start, longest-track wait, volumes and failure handling
package composer

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
)

func volume(v float64) *float64 { return &v }

// demoTracks returns a 0.6s triangle track and a 1.8s sine track
func demoTracks() []ProtoTrack {
	return []ProtoTrack{
		{
			Instrument: Triangle,
			Tempo:      100,
			Notes:      []Note{{Pitch: 261.63, Duration: 0.5}, {Pitch: 293.66, Duration: 0.5}},
		},
		{
			Instrument: Sine,
			Tempo:      100,
			Notes:      []Note{{Pitch: 261.63, Duration: 1.5}, {Pitch: 293.66, Duration: 1.5}},
		},
	}
}

func TestNewPlayerRequiresBackend(t *testing.T) {
	_, err := NewPlayer(PlayerConfig{})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewPlayerRejectsNegativeVolume(t *testing.T) {
	_, err := NewPlayer(PlayerConfig{Backend: output.NewNull(), MasterVolume: volume(-1)})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestPlaySongWaitsForLongestTrack(t *testing.T) {
	var backend *output.Null
	var playingAtWait []bool

	backend = output.NewNullWithConfig(output.NullConfig{
		Sleep: func(d time.Duration) {
			for _, sink := range backend.Streams()[0].Sinks() {
				playingAtWait = append(playingAtWait, sink.Playing())
			}
		},
	})

	var states []State
	player, err := NewPlayer(PlayerConfig{
		Backend:       backend,
		OnStateChange: func(s State) { states = append(states, s) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := player.PlaySong(demoTracks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sinks := backend.Streams()[0].Sinks()
	if len(sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(sinks))
	}

	if sinks[1].Duration() != 1800*time.Millisecond {
		t.Errorf("expected longest sink of 1.8s, got %v", sinks[1].Duration())
	}
	if sinks[1].Waited() < 1700*time.Millisecond {
		t.Errorf("expected to wait ~1.8s on the longest sink, waited %v", sinks[1].Waited())
	}
	if sinks[0].Waited() != 0 {
		t.Errorf("expected no wait on the shorter sink, waited %v", sinks[0].Waited())
	}

	if len(playingAtWait) != 2 || !playingAtWait[0] || !playingAtWait[1] {
		t.Errorf("expected every sink started before waiting, got %v", playingAtWait)
	}

	expectedStates := []State{StateScheduled, StatePlaying, StateComplete}
	if len(states) != len(expectedStates) {
		t.Fatalf("expected states %v, got %v", expectedStates, states)
	}
	for i := range expectedStates {
		if states[i] != expectedStates[i] {
			t.Errorf("state %d: expected %v, got %v", i, expectedStates[i], states[i])
		}
	}
	if player.State() != StateComplete {
		t.Errorf("expected complete, got %v", player.State())
	}

	for i, sink := range sinks {
		if !sink.Closed() {
			t.Errorf("sink %d: expected closed after playback", i)
		}
	}
	if !backend.Streams()[0].Closed() {
		t.Error("expected stream closed after playback")
	}

	tracks := player.Tracks()
	if len(tracks) != 2 || tracks[0].Instrument != Triangle || tracks[1].Instrument != Sine {
		t.Errorf("unexpected tracks: %+v", tracks)
	}
}

func TestPlaySongBlocksInRealTime(t *testing.T) {
	player, err := NewPlayer(PlayerConfig{Backend: output.NewNull()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 6000 bpm: one beat lasts 10ms
	tracks := []ProtoTrack{
		{Instrument: Square, Tempo: 6000, Notes: []Note{{Pitch: 440, Duration: 3}}},
		{Instrument: Snare, Tempo: 6000, Notes: []Note{{Pitch: 100, Duration: 9}}},
	}

	start := time.Now()
	if err := player.PlaySong(tracks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected to block for at least 90ms, returned after %v", elapsed)
	}
}

func TestPlaySongVolumes(t *testing.T) {
	tests := []struct {
		name     string
		config   PlayerConfig
		expected float64
	}{
		{"default master", PlayerConfig{}, 0.5},
		{"custom master", PlayerConfig{MasterVolume: volume(0.8), Scheduler: SchedulerConfig{Volume: 0.5}}, 0.4},
		{"explicit zero master", PlayerConfig{MasterVolume: volume(0)}, 0},
		{"muted", PlayerConfig{Muted: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := output.NewNullWithConfig(output.NullConfig{Sleep: func(time.Duration) {}})
			tt.config.Backend = backend

			player, err := NewPlayer(tt.config)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := player.PlaySong(demoTracks()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for i, sink := range backend.Streams()[0].Sinks() {
				if diff := sink.Volume() - tt.expected; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("sink %d: expected volume %v, got %v", i, tt.expected, sink.Volume())
				}
			}
		})
	}
}

func TestPlaySongConfigurationErrorOpensNothing(t *testing.T) {
	tests := []struct {
		name    string
		tracks  []ProtoTrack
		wantErr error
	}{
		{
			"zero tempo on second track",
			[]ProtoTrack{demoTracks()[0], {Instrument: Sine, Tempo: 0, Notes: []Note{{440, 1}}}},
			ErrConfiguration,
		},
		{
			"note too long to render",
			[]ProtoTrack{demoTracks()[1], {Instrument: Sine, Tempo: 120, Notes: []Note{{440, 1e300}}}},
			ErrConfiguration,
		},
		{
			"unsupported instrument",
			[]ProtoTrack{{Instrument: Instrument(7), Tempo: 100}},
			ErrUnsupportedInstrument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := output.NewNull()
			player, err := NewPlayer(PlayerConfig{Backend: backend})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err = player.PlaySong(tt.tracks)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(backend.Streams()) != 0 {
				t.Error("expected no output stream to be opened")
			}
			if player.State() != StateScheduled {
				t.Errorf("expected player to stay scheduled, got %v", player.State())
			}
		})
	}
}

func TestPlaySongEmpty(t *testing.T) {
	backend := output.NewNull()
	player, err := NewPlayer(PlayerConfig{Backend: backend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := player.PlaySong(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.State() != StateComplete {
		t.Errorf("expected complete, got %v", player.State())
	}
}

// failingBackend fails to open a stream
type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }

func (failingBackend) OpenStream(audio.Format) (output.Stream, error) {
	return nil, errors.New("no sound card")
}

func TestPlaySongOpenStreamFailure(t *testing.T) {
	player, err := NewPlayer(PlayerConfig{Backend: failingBackend{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = player.PlaySong(demoTracks())
	if !errors.Is(err, ErrAudioDevice) {
		t.Errorf("expected ErrAudioDevice, got %v", err)
	}
}

// limitedBackend hands out a fixed number of sinks, then fails
type limitedBackend struct {
	*output.Null
	limit int
}

type limitedStream struct {
	output.Stream
	mu        sync.Mutex
	remaining int
}

func (b *limitedBackend) OpenStream(format audio.Format) (output.Stream, error) {
	stream, err := b.Null.OpenStream(format)
	if err != nil {
		return nil, err
	}
	return &limitedStream{Stream: stream, remaining: b.limit}, nil
}

func (s *limitedStream) NewSink() (output.Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remaining == 0 {
		return nil, errors.New("out of voices")
	}
	s.remaining--
	return s.Stream.NewSink()
}

func TestPlaySongSinkFailureStartsNothing(t *testing.T) {
	backend := &limitedBackend{Null: output.NewNull(), limit: 1}
	player, err := NewPlayer(PlayerConfig{Backend: backend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = player.PlaySong(demoTracks())
	if !errors.Is(err, ErrAudioDevice) {
		t.Fatalf("expected ErrAudioDevice, got %v", err)
	}

	sinks := backend.Streams()[0].Sinks()
	if len(sinks) != 1 {
		t.Fatalf("expected 1 sink created, got %d", len(sinks))
	}
	if sinks[0].Playing() {
		t.Error("expected no sink to be started")
	}
	if !sinks[0].Closed() {
		t.Error("expected created sink to be closed")
	}
	if !backend.Streams()[0].Closed() {
		t.Error("expected stream to be closed")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateScheduled, "scheduled"},
		{StatePlaying, "playing"},
		{StateComplete, "complete"},
		{State(9), "state(9)"},
	}

	for _, tt := range tests {
		if tt.state.String() != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, tt.state.String())
		}
	}
}

func TestSetMasterVolumeDuringPlayback(t *testing.T) {
	var player *Player
	backend := output.NewNullWithConfig(output.NullConfig{
		Sleep: func(time.Duration) {
			player.SetMasterVolume(0.2)
			player.SetMuted(true)
			player.SetMuted(false)
		},
	})

	player, err := NewPlayer(PlayerConfig{Backend: backend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := player.PlaySong(demoTracks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if player.MasterVolume() != 0.2 {
		t.Errorf("expected master volume 0.2, got %v", player.MasterVolume())
	}
	for i, sink := range backend.Streams()[0].Sinks() {
		if sink.Volume() != 0.2 {
			t.Errorf("sink %d: expected volume 0.2, got %v", i, sink.Volume())
		}
	}
}

func TestSetMasterVolumeClampsNegative(t *testing.T) {
	player, err := NewPlayer(PlayerConfig{Backend: output.NewNull()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	player.SetMasterVolume(-3)
	if player.MasterVolume() != 0 {
		t.Errorf("expected 0, got %v", player.MasterVolume())
	}
}

// brokenStream hands out sinks that reject audio and fail to close
type brokenStream struct {
	output.Stream
}

type brokenSink struct {
	output.Sink
}

type brokenBackend struct {
	*output.Null
}

func (b brokenBackend) OpenStream(format audio.Format) (output.Stream, error) {
	stream, err := b.Null.OpenStream(format)
	if err != nil {
		return nil, err
	}
	return brokenStream{Stream: stream}, nil
}

func (s brokenStream) NewSink() (output.Sink, error) {
	sink, err := s.Stream.NewSink()
	if err != nil {
		return nil, err
	}
	return brokenSink{Sink: sink}, nil
}

func (brokenSink) Append(audio.Segment) error { return errors.New("buffer full") }

func (s brokenSink) Close() error {
	_ = s.Sink.Close()
	return errors.New("device gone")
}

func TestPlaySongLogsSinkCloseFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	backend := brokenBackend{Null: output.NewNull()}
	player, err := NewPlayer(PlayerConfig{Backend: backend})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := player.PlaySong(demoTracks()); err == nil {
		t.Fatal("expected append error, got nil")
	}

	if !strings.Contains(buf.String(), "Error closing sink for track 0: device gone") {
		t.Errorf("expected sink close failure to be logged, got %q", buf.String())
	}
	if sinks := backend.Streams()[0].Sinks(); !sinks[0].Closed() || sinks[0].Playing() {
		t.Error("expected the sink to be closed and never started")
	}
}
