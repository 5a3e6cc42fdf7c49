// ABOUTME: Note scheduling and multi-track playback package
// ABOUTME: Renders symbolic tracks through wavetable oscillators and plays them together
// Package composer turns symbolic tracks into audio and plays them.
//
// This package provides:
//   - Bank: one shared wavetable and prototype oscillator per instrument
//   - Scheduler: converts a ProtoTrack into per-note segments on a sink
//   - Player: starts every track at once and waits for the longest
//
// Example:
//
//	player, err := composer.NewPlayer(composer.PlayerConfig{
//	    Backend: output.NewOto(),
//	})
//	err = player.PlaySong([]composer.ProtoTrack{
//	    {Instrument: composer.Sine, Tempo: 100, Notes: []composer.Note{{Pitch: 261.63, Duration: 1.5}}},
//	})
package composer
