// ABOUTME: Error kinds reported by scheduling and playback
// ABOUTME: Sentinel errors matched with errors.Is
package composer

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
)

// Sentinel errors
var (
	// ErrConfiguration reports invalid track parameters such as a non-positive tempo
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedInstrument reports an instrument with no wavetable mapping
	ErrUnsupportedInstrument = errors.New("unsupported instrument")

	// ErrAudioDevice reports a failure to acquire an output stream or sink
	ErrAudioDevice = output.ErrDevice
)
