// ABOUTME: Tests for YAML song loading
// ABOUTME: Tests parsing, instrument resolution and the demo song
package song

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/resonate-composer/pkg/composer"
)

const testSong = `
title: Scale
tracks:
  - instrument: square
    tempo: 120
    notes:
      - {pitch: 440, duration: 1}
      - {pitch: 493.88, duration: 0.5}
  - instrument: Kick
    tempo: 60
    notes:
      - {pitch: 80, duration: 2}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testSong))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Title != "Scale" {
		t.Errorf("expected title Scale, got %q", s.Title)
	}

	protos, err := s.ProtoTracks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(protos) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(protos))
	}

	if protos[0].Instrument != composer.Square || protos[0].Tempo != 120 {
		t.Errorf("unexpected first track: %+v", protos[0])
	}
	if len(protos[0].Notes) != 2 || protos[0].Notes[1].Pitch != 493.88 || protos[0].Notes[1].Duration != 0.5 {
		t.Errorf("unexpected first track notes: %+v", protos[0].Notes)
	}
	if protos[1].Instrument != composer.Kick {
		t.Errorf("expected kick, got %v", protos[1].Instrument)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"malformed", "tracks: [unclosed"},
		{"unknown field", "title: x\nbpm: 120\n"},
		{"wrong type", "tracks:\n  - tempo: fast\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, composer.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestProtoTracksUnknownInstrument(t *testing.T) {
	s := &Song{Tracks: []Track{{Instrument: "sine", Tempo: 100}, {Instrument: "banjo", Tempo: 100}}}

	_, err := s.ProtoTracks()
	if !errors.Is(err, composer.ErrUnsupportedInstrument) {
		t.Errorf("expected ErrUnsupportedInstrument, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.yaml")
	if err := os.WriteFile(path, []byte(testSong), 0o644); err != nil {
		t.Fatalf("failed to write song: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Tracks) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(s.Tracks))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDemo(t *testing.T) {
	demo := Demo()

	protos, err := demo.ProtoTracks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(protos) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(protos))
	}
	if protos[0].Instrument != composer.Triangle || len(protos[0].Notes) != 6 {
		t.Errorf("unexpected melody track: %+v", protos[0])
	}
	if protos[1].Instrument != composer.Sine || len(protos[1].Notes) != 2 {
		t.Errorf("unexpected bass track: %+v", protos[1])
	}

	if math.Abs(demo.Duration()-1.8) > 1e-9 {
		t.Errorf("expected 1.8s, got %v", demo.Duration())
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Demo().Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "Demo" || len(s.Tracks) != 2 || len(s.Tracks[0].Notes) != 6 {
		t.Errorf("unexpected song after round trip: %+v", s)
	}
}

func TestDurationSkipsInvalidTempo(t *testing.T) {
	s := &Song{Tracks: []Track{
		{Instrument: "sine", Tempo: 0, Notes: []Note{{Pitch: 440, Duration: 100}}},
		{Instrument: "sine", Tempo: 120, Notes: []Note{{Pitch: 440, Duration: 2}}},
	}}
	if s.Duration() != 1 {
		t.Errorf("expected 1s, got %v", s.Duration())
	}
}
