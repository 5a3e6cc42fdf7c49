// ABOUTME: Audio output package for playing rendered tracks
// ABOUTME: Provides Backend/Stream/Sink interfaces and oto, speaker and null backends
// Package output provides the audio device side of playback.
//
// A Backend opens one output Stream per song. Each track gets its own Sink on
// that stream: segments are appended while the sink is paused, then every sink
// is started together and the caller waits on the longest one.
//
// Backends:
//   - NewOto: ebitengine/oto player per sink, 16-bit PCM with software volume
//   - NewSpeaker: gopxl/beep speaker mixer with one controlled streamer per sink
//   - NewNull: no device; sinks drain in wall-clock time
//
// Example:
//
//	stream, err := output.NewOto().OpenStream(audio.DefaultFormat(44100))
//	sink, err := stream.NewSink()
//	err = sink.Append(segment)
//	sink.Play()
//	sink.Wait()
package output
