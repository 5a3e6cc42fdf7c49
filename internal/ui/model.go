// ABOUTME: Bubbletea model for the composer TUI
// ABOUTME: Defines playback view state and update logic
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-composer/internal/version"
)

// TrackInfo describes one scheduled track
type TrackInfo struct {
	Instrument string
	Notes      int
	Duration   time.Duration
}

// VolumeChangeMsg carries a volume change made in the TUI
type VolumeChangeMsg struct {
	Volume int // percent of full scale
	Muted  bool
}

// QuitMsg is sent when the user quits the TUI
type QuitMsg struct{}

// Model represents the TUI state
type Model struct {
	// Song
	title        string
	songDuration time.Duration
	tracks       []TrackInfo

	// Output
	backend    string
	sampleRate int

	// Playback
	state   string
	elapsed time.Duration
	volume  int
	muted   bool
	err     string

	volumeCtrl *VolumeControl

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTracks()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders song, output and playback state
func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "(untitled)"
	}
	if m.songDuration > 0 {
		title = fmt.Sprintf("%s (%.1fs)", title, m.songDuration.Seconds())
	}

	output := "-"
	if m.backend != "" {
		output = fmt.Sprintf("%s %dHz Mono 16-bit", m.backend, m.sampleRate)
	}

	state := m.state
	if m.err != "" {
		state = "error: " + m.err
	}

	return fmt.Sprintf(`┌─ %-51s┐
│ Song:   %-44s │
│ Output: %-44s │
│ State:  %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(version.Product+" "+version.Version+" ", 51),
		truncate(title, 44), truncate(output, 44), truncate(state, 44))
}

// renderTracks renders one progress line per track
func (m Model) renderTracks() string {
	if len(m.tracks) == 0 {
		return "│ No tracks scheduled                                  │\n"
	}

	s := ""
	for _, t := range m.tracks {
		played := m.elapsed
		if played > t.Duration {
			played = t.Duration
		}
		bar := renderBar(int(played.Milliseconds()), int(t.Duration.Milliseconds()), 16)
		s += fmt.Sprintf("│ %-8s %2d notes [%s] %5.1f/%5.1fs │\n",
			truncate(t.Instrument, 8), t.Notes, bar, played.Seconds(), t.Duration.Seconds())
	}
	return s
}

// renderControls renders volume status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	volumeBar := renderBar(m.volume, 100, 10)
	line := fmt.Sprintf("Volume: [%s] %d%%%s", volumeBar, m.volume, muteIcon)

	return "│                                                      │\n" +
		fmt.Sprintf("│ %-52s │\n", line)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  q:Quit                           │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sendQuit()
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func (m Model) sendQuit() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Quit <- QuitMsg{}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.Backend != "" {
		m.backend = msg.Backend
		m.sampleRate = msg.SampleRate
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Tracks != nil {
		m.tracks = msg.Tracks
	}
	if msg.Elapsed != 0 {
		m.elapsed = msg.Elapsed
	}
	if msg.Err != nil {
		m.err = msg.Err.Error()
	}
}

// StatusMsg updates TUI state. Zero fields leave the current value alone.
type StatusMsg struct {
	Title      string
	Backend    string
	SampleRate int
	State      string
	Tracks     []TrackInfo
	Elapsed    time.Duration
	Err        error
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
