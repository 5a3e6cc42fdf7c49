// ABOUTME: YAML song descriptions and the built-in demo song
// ABOUTME: Converts symbolic song files into composer proto tracks
package song

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Resonate-Protocol/resonate-composer/pkg/composer"
)

// Song is the on-disk form of a song
type Song struct {
	Title  string  `yaml:"title"`
	Tracks []Track `yaml:"tracks"`
}

// Track is one instrument's part, with the instrument given by name
type Track struct {
	Instrument string  `yaml:"instrument"`
	Tempo      float64 `yaml:"tempo"`
	Notes      []Note  `yaml:"notes"`
}

// Note is a pitch in Hz held for a number of beats
type Note struct {
	Pitch    float64 `yaml:"pitch"`
	Duration float64 `yaml:"duration"`
}

// Load reads and parses a song file
func Load(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read song %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML song. Unknown fields are rejected.
func Parse(data []byte) (*Song, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Song
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty song", composer.ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: invalid song: %v", composer.ErrConfiguration, err)
	}
	return &s, nil
}

// Marshal encodes the song as YAML
func (s *Song) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// ProtoTracks resolves instrument names and returns the tracks ready to be
// played. Tempo and durations are checked later by the scheduler.
func (s *Song) ProtoTracks() ([]composer.ProtoTrack, error) {
	protos := make([]composer.ProtoTrack, 0, len(s.Tracks))
	for i, t := range s.Tracks {
		inst, err := composer.ParseInstrument(t.Instrument)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}

		notes := make([]composer.Note, len(t.Notes))
		for j, n := range t.Notes {
			notes[j] = composer.Note{Pitch: n.Pitch, Duration: n.Duration}
		}

		protos = append(protos, composer.ProtoTrack{
			Instrument: inst,
			Notes:      notes,
			Tempo:      t.Tempo,
		})
	}
	return protos, nil
}

// Duration returns the length in seconds of the longest track, assuming
// valid tempos
func (s *Song) Duration() float64 {
	var longest float64
	for _, t := range s.Tracks {
		if t.Tempo <= 0 {
			continue
		}
		var beats float64
		for _, n := range t.Notes {
			beats += n.Duration
		}
		if d := composer.Seconds(beats, t.Tempo); d > longest {
			longest = d
		}
	}
	return longest
}

// Demo returns the built-in two-track song: a triangle melody over held
// sine notes, both 1.8 seconds long at 100 bpm
func Demo() *Song {
	return &Song{
		Title: "Demo",
		Tracks: []Track{
			{
				Instrument: "triangle",
				Tempo:      100,
				Notes: []Note{
					{Pitch: 261.63, Duration: 0.5},
					{Pitch: 293.66, Duration: 0.5},
					{Pitch: 329.63, Duration: 0.5},
					{Pitch: 349.23, Duration: 0.5},
					{Pitch: 329.63, Duration: 0.5},
					{Pitch: 293.66, Duration: 0.5},
				},
			},
			{
				Instrument: "sine",
				Tempo:      100,
				Notes: []Note{
					{Pitch: 261.63, Duration: 1.5},
					{Pitch: 293.66, Duration: 1.5},
				},
			},
		},
	}
}
