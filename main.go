// ABOUTME: Entry point for the wavetable composer
// ABOUTME: Parses CLI flags, loads a song and plays it on the chosen backend
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-composer/internal/song"
	"github.com/Resonate-Protocol/resonate-composer/internal/ui"
	"github.com/Resonate-Protocol/resonate-composer/internal/version"
	"github.com/Resonate-Protocol/resonate-composer/pkg/audio"
	"github.com/Resonate-Protocol/resonate-composer/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-composer/pkg/composer"
	"github.com/Resonate-Protocol/resonate-composer/pkg/wavetable"
)

var (
	songFile         = flag.String("song", "", "YAML song file (default: built-in demo)")
	backendName      = flag.String("backend", "oto", "Audio backend: "+strings.Join(output.Backends, ", "))
	masterVolume     = flag.Float64("volume", composer.DefaultMasterVolume, "Master volume multiplier")
	mute             = flag.Bool("mute", false, "Start muted")
	sampleRate       = flag.Int("sample-rate", audio.DefaultSampleRate, "Output sample rate in Hz")
	tableSize        = flag.Int("table-size", wavetable.DefaultSize, "Wavetable length in samples")
	harmonics        = flag.Int("harmonics", wavetable.DefaultHarmonics, "Partials summed by additive tables")
	additiveSaw      = flag.Bool("additive-saw", false, "Use the additive saw table")
	additiveTriangle = flag.Bool("additive-triangle", false, "Use the additive triangle table")
	retrigger        = flag.Bool("retrigger", false, "Restart oscillator phase at every note")
	printSong        = flag.Bool("print-song", false, "Print the song as YAML and exit")
	showVersion      = flag.Bool("version", false, "Print version and exit")
	logFile          = flag.String("log-file", "composer.log", "Log file path")
	noTUI            = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI && !*printSong

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stderr and file
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	code := run(useTUI)
	if code != 0 {
		_ = f.Close()
		os.Exit(code)
	}
}

// run plays the song and returns the process exit code
func run(useTUI bool) int {
	s, err := loadSong()
	if err != nil {
		return fail(err)
	}

	if *printSong {
		data, err := s.Marshal()
		if err != nil {
			return fail(err)
		}
		fmt.Print(string(data))
		return 0
	}

	protos, err := s.ProtoTracks()
	if err != nil {
		return fail(err)
	}

	backend, err := output.ByName(*backendName)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", composer.ErrConfiguration, err))
	}

	log.Printf("Starting %s %s: song %q, %d tracks (%.1fs), %s backend",
		version.Product, version.Version, s.Title, len(protos), s.Duration(), backend.Name())

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl
	tuiDone := make(chan struct{})

	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg, err = ui.Run(volumeCtrl, ui.Options{
			Title:        s.Title,
			SongDuration: time.Duration(s.Duration() * float64(time.Second)),
			Backend:      backend.Name(),
			SampleRate:   *sampleRate,
			Volume:       int(math.Round(*masterVolume * 100)),
			Muted:        *mute,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to start TUI: %w", err))
		}
		go func() {
			defer close(tuiDone)
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	} else {
		close(tuiDone)
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	var player *composer.Player
	player, err = composer.NewPlayer(composer.PlayerConfig{
		Backend:      backend,
		SampleRate:   *sampleRate,
		MasterVolume: masterVolume,
		Muted:        *mute,
		Bank: composer.BankConfig{
			TableSize:        *tableSize,
			Harmonics:        *harmonics,
			AdditiveSaw:      *additiveSaw,
			AdditiveTriangle: *additiveTriangle,
		},
		Scheduler: composer.SchedulerConfig{
			RetriggerNotes: *retrigger,
		},
		OnStateChange: func(state composer.State) {
			log.Printf("Playback state: %s", state)
			msg := ui.StatusMsg{State: state.String()}
			if state == composer.StatePlaying {
				msg.Tracks = trackInfo(player.Tracks())
			}
			updateTUI(msg)
		},
	})
	if err != nil {
		return finish(tuiProg, tuiDone, err)
	}

	// Start volume control handler if TUI is enabled
	if volumeCtrl != nil {
		go handleVolumeControl(player, volumeCtrl)
		go progressLoop(player, updateTUI)
	}

	result := make(chan error, 1)
	go func() {
		result <- player.PlaySong(protos)
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quit chan ui.QuitMsg
	if volumeCtrl != nil {
		quit = volumeCtrl.Quit
	}

	select {
	case err = <-result:
		if err == nil {
			log.Printf("Song finished after %v", player.Elapsed().Round(time.Millisecond))
			updateTUI(ui.StatusMsg{State: composer.StateComplete.String(), Elapsed: player.Elapsed()})
		}
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	}

	return finish(tuiProg, tuiDone, err)
}

// finish stops the TUI, reports err and returns the exit code
func finish(tuiProg *tea.Program, tuiDone <-chan struct{}, err error) int {
	if tuiProg != nil {
		if err != nil {
			tuiProg.Send(ui.StatusMsg{Err: err})
		}
		tuiProg.Quit()
		<-tuiDone
	}
	if err != nil {
		return fail(err)
	}
	log.Printf("Composer stopped")
	return 0
}

func loadSong() (*song.Song, error) {
	if *songFile == "" {
		return song.Demo(), nil
	}
	return song.Load(*songFile)
}

// fail logs err, prints it and maps it to an exit code
func fail(err error) int {
	log.Printf("Error: %v", err)
	fmt.Fprintf(os.Stderr, "composer: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, composer.ErrConfiguration):
		return 2
	case errors.Is(err, composer.ErrUnsupportedInstrument):
		return 3
	case errors.Is(err, composer.ErrAudioDevice):
		return 4
	default:
		return 1
	}
}

func trackInfo(tracks []*composer.Track) []ui.TrackInfo {
	info := make([]ui.TrackInfo, 0, len(tracks))
	for _, t := range tracks {
		info = append(info, ui.TrackInfo{
			Instrument: t.Instrument.String(),
			Notes:      len(t.Notes),
			Duration:   t.DurationTime(),
		})
	}
	return info
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(player *composer.Player, volumeCtrl *ui.VolumeControl) {
	for vol := range volumeCtrl.Changes {
		log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
		player.SetMasterVolume(float64(vol.Volume) / 100)
		player.SetMuted(vol.Muted)
	}
}

// progressLoop periodically updates the TUI with elapsed playback time
func progressLoop(player *composer.Player, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if player.State() != composer.StatePlaying {
			continue
		}
		updateTUI(ui.StatusMsg{Elapsed: player.Elapsed()})
	}
}
