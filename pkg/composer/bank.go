// ABOUTME: Instrument bank mapping instruments to shared wavetables
// ABOUTME: Generates each table once and hands out fresh oscillators
package composer

import (
	"fmt"
	"log"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
	"github.com/Resonate-Protocol/resonate-composer/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-composer/pkg/wavetable"
)

// BankConfig selects the tables generated for each instrument
type BankConfig struct {
	SampleRate int
	TableSize  int
	Harmonics  int

	// Use the harmonic-sum tables instead of the closed-form ones
	AdditiveSaw      bool
	AdditiveTriangle bool
}

// Bank owns one prototype oscillator per instrument. Prototypes are never
// played; callers get clones that share the table.
type Bank struct {
	sampleRate  int
	oscillators map[Instrument]*oscillator.Oscillator
}

// NewBank generates every table the instruments need
func NewBank(config BankConfig) (*Bank, error) {
	if config.SampleRate == 0 {
		config.SampleRate = audio.DefaultSampleRate
	}
	if config.TableSize == 0 {
		config.TableSize = wavetable.DefaultSize
	}
	if config.Harmonics == 0 {
		config.Harmonics = wavetable.DefaultHarmonics
	}
	if config.SampleRate < 0 {
		return nil, fmt.Errorf("%w: sample rate %d must be positive", ErrConfiguration, config.SampleRate)
	}

	sawKind := wavetable.Saw
	if config.AdditiveSaw {
		sawKind = wavetable.AdditiveSaw
	}
	triangleKind := wavetable.Triangle
	if config.AdditiveTriangle {
		triangleKind = wavetable.AdditiveTriangle
	}

	kinds := map[Instrument]wavetable.Kind{
		Sine:     wavetable.Sine,
		Saw:      sawKind,
		Square:   wavetable.Square,
		Triangle: triangleKind,
	}

	b := &Bank{
		sampleRate:  config.SampleRate,
		oscillators: make(map[Instrument]*oscillator.Oscillator),
	}

	for inst, kind := range kinds {
		table, err := wavetable.GenerateAdditive(kind, config.TableSize, config.Harmonics)
		if err != nil {
			return nil, fmt.Errorf("%w: %s table: %v", ErrConfiguration, inst, err)
		}
		if peak := wavetable.Peak(table); peak > 1 {
			log.Printf("Warning: %s table (%s) peaks at %.2f and will clip", inst, kind, peak)
		}
		b.oscillators[inst] = oscillator.New(config.SampleRate, table)
	}

	// Percussion reuses the process-wide noise loop
	noise := oscillator.New(config.SampleRate, wavetable.NoiseLoop())
	b.oscillators[Snare] = noise
	b.oscillators[Kick] = noise

	log.Printf("Instrument bank ready: %d instruments, %d-sample tables at %dHz",
		len(b.oscillators), config.TableSize, config.SampleRate)

	return b, nil
}

// Oscillator returns a fresh oscillator for the instrument, at phase 0
func (b *Bank) Oscillator(inst Instrument) (*oscillator.Oscillator, error) {
	proto, ok := b.oscillators[inst]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no wavetable", ErrUnsupportedInstrument, inst)
	}
	return proto.Clone(), nil
}

// Supports reports whether the instrument has a wavetable
func (b *Bank) Supports(inst Instrument) bool {
	_, ok := b.oscillators[inst]
	return ok
}

// SampleRate returns the rate every oscillator renders at
func (b *Bank) SampleRate() int {
	return b.sampleRate
}
