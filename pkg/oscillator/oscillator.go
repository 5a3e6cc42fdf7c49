// ABOUTME: Wavetable oscillator with linear interpolation
// ABOUTME: Implements beep.Streamer as an infinite mono sample source
package oscillator

import (
	"math"

	"github.com/gopxl/beep"

	"github.com/Resonate-Protocol/resonate-composer/pkg/wavetable"
)

// renderChunk is the number of frames pulled per Stream call while rendering
const renderChunk = 512

// Oscillator reads a shared wavetable with a phase accumulator
type Oscillator struct {
	table      wavetable.Table // shared, read-only
	sampleRate int
	index      float64 // current phase in table samples, [0, len(table))
	increment  float64 // table samples advanced per output sample
}

// New creates an oscillator reading table at the given sample rate.
// The oscillator starts at phase 0 with a zero frequency.
func New(sampleRate int, table wavetable.Table) *Oscillator {
	return &Oscillator{
		table:      table,
		sampleRate: sampleRate,
	}
}

// SetFrequency sets the phase increment for freq Hz. The value is not
// validated: negative frequencies read the table backwards.
func (o *Oscillator) SetFrequency(freq float64) {
	o.increment = freq * float64(len(o.table)) / float64(o.sampleRate)
}

// NextSample returns the interpolated sample at the current phase and advances it
func (o *Oscillator) NextSample() float32 {
	if len(o.table) == 0 {
		return 0
	}
	sample := o.lerp()
	o.SetPhase(o.index + o.increment)
	return sample
}

// lerp interpolates linearly between the two table entries around the phase
func (o *Oscillator) lerp() float32 {
	i := int(o.index)
	j := (i + 1) % len(o.table)

	nextWeight := float32(o.index - float64(i))
	return (1-nextWeight)*o.table[i] + nextWeight*o.table[j]
}

// SetPhase moves the read position, wrapping it into [0, len(table))
func (o *Oscillator) SetPhase(phase float64) {
	size := float64(len(o.table))
	if size == 0 {
		o.index = 0
		return
	}

	phase = math.Mod(phase, size)
	if phase < 0 {
		phase += size
	}
	// Non-finite increments collapse the phase to the table start
	if math.IsNaN(phase) || phase >= size {
		phase = 0
	}
	o.index = phase
}

// Reset returns the phase to the start of the table
func (o *Oscillator) Reset() {
	o.index = 0
}

// Phase returns the current read position in table samples
func (o *Oscillator) Phase() float64 { return o.index }

// Increment returns the phase step per output sample
func (o *Oscillator) Increment() float64 { return o.increment }

// SampleRate returns the output sample rate
func (o *Oscillator) SampleRate() int { return o.sampleRate }

// Channels returns the output channel count (always mono)
func (o *Oscillator) Channels() int { return 1 }

// TableSize returns the length of the underlying table
func (o *Oscillator) TableSize() int { return len(o.table) }

// Clone returns an oscillator with a copy of the phase state that shares
// the same table
func (o *Oscillator) Clone() *Oscillator {
	clone := *o
	return &clone
}

// Stream fills samples with the mono signal on both channels. It never ends.
func (o *Oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := float64(o.NextSample())
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err always returns nil; an oscillator cannot fail
func (o *Oscillator) Err() error { return nil }

// Take returns a streamer that yields the next n samples of the oscillator
func (o *Oscillator) Take(n int) beep.Streamer {
	return beep.Take(n, o)
}

// Render pulls exactly n samples into a new mono buffer, advancing the phase
func (o *Oscillator) Render(n int) []float32 {
	if n <= 0 {
		return nil
	}

	out := make([]float32, 0, n)
	buf := make([][2]float64, renderChunk)
	s := o.Take(n)
	for {
		got, ok := s.Stream(buf)
		for i := 0; i < got; i++ {
			out = append(out, float32(buf[i][0]))
		}
		if !ok || got == 0 {
			break
		}
	}
	return out
}
