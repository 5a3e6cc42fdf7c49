// ABOUTME: Symbolic and runtime track types
// ABOUTME: Defines instruments, notes, proto tracks and rendered tracks
package composer

import (
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-composer/pkg/oscillator"
)

// Instrument selects the waveform a track is played with
type Instrument int

const (
	Sine Instrument = iota
	Saw
	Square
	Triangle
	Snare
	Kick
)

var instrumentNames = []string{"sine", "saw", "square", "triangle", "snare", "kick"}

func (i Instrument) String() string {
	if i >= 0 && int(i) < len(instrumentNames) {
		return instrumentNames[i]
	}
	return fmt.Sprintf("instrument(%d)", int(i))
}

// ParseInstrument converts an instrument name to an Instrument
func ParseInstrument(name string) (Instrument, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range instrumentNames {
		if n == name {
			return Instrument(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedInstrument, name)
}

// Note is a pitch held for a number of beats
type Note struct {
	Pitch    float64 // Hz
	Duration float64 // beats
}

// ProtoTrack is the symbolic description of one instrument's part
type ProtoTrack struct {
	Instrument Instrument
	Notes      []Note
	Tempo      float64 // beats per minute
}

// Track is a ProtoTrack rendered onto a sink
type Track struct {
	ID         string
	Instrument Instrument
	Notes      []Note
	Tempo      float64
	Volume     float64
	Duration   float64 // cumulative seconds rendered

	oscillator *oscillator.Oscillator
	sink       output.Sink
}

// DurationTime returns the rendered length as a time.Duration
func (t *Track) DurationTime() time.Duration {
	return time.Duration(t.Duration * float64(time.Second))
}

// Seconds converts a length in beats to seconds at the given tempo
func Seconds(beats, tempo float64) float64 {
	return beats * 60 / tempo
}
