// ABOUTME: TUI initialization and control
// ABOUTME: Seeds the playback model and wraps it in a bubbletea program
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Options describes the song and output before playback starts
type Options struct {
	Title        string
	SongDuration time.Duration
	Backend      string
	SampleRate   int
	Volume       int // percent of full scale, 0 is silent
	Muted        bool
}

// VolumeControl carries user input from the TUI to the player
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a model in the idle state. volCtrl may be nil.
func NewModel(volCtrl *VolumeControl, opts Options) Model {
	volume := opts.Volume
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	return Model{
		title:        opts.Title,
		songDuration: opts.SongDuration,
		backend:      opts.Backend,
		sampleRate:   opts.SampleRate,
		volume:       volume,
		muted:        opts.Muted,
		state:        "idle",
		volumeCtrl:   volCtrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(volCtrl *VolumeControl, opts Options) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(volCtrl, opts), tea.WithAltScreen())
	return p, nil
}
