// Package core defines the shared types and interfaces for the Open JTalk
// speech backend.
package core

import "context"

// AudioFormat tags the byte order of raw PCM sample data handed to a
// playback sink. Open JTalk always emits little-endian samples, so the
// backend hard-codes FormatLittleEndian rather than detecting it.
type AudioFormat string

// FormatLittleEndian is the only format this backend produces.
const FormatLittleEndian AudioFormat = "pcm_le"

// VoiceType is a coarse voice category, as opposed to an exact named voice.
type VoiceType string

// Coarse voice types understood by the host service.
const (
	VoiceMale1       VoiceType = "MALE1"
	VoiceMale2       VoiceType = "MALE2"
	VoiceMale3       VoiceType = "MALE3"
	VoiceFemale1     VoiceType = "FEMALE1"
	VoiceFemale2     VoiceType = "FEMALE2"
	VoiceFemale3     VoiceType = "FEMALE3"
	VoiceChildMale   VoiceType = "CHILD_MALE"
	VoiceChildFemale VoiceType = "CHILD_FEMALE"
)

// Voice describes one registered synthesis voice. Identifier is the
// engine-internal string substituted into search-path templates; Name is the
// user-facing selection name.
type Voice struct {
	Name       string
	Language   string
	Type       VoiceType
	Identifier string
}

// AudioTrack is one decoded synthesis result: interleaved PCM samples plus
// the header fields needed to play them. Samples holds exactly
// FrameCount * Channels * Bits/8 bytes.
type AudioTrack struct {
	Bits       int
	Channels   int
	SampleRate int
	FrameCount int
	Samples    []byte
}

// SpeakRequest carries one speech request from the host. Empty parameter
// fields mean "unchanged since the previous request".
type SpeakRequest struct {
	Text      string
	Language  string
	Type      VoiceType
	VoiceName string
}

// Synthesizer invokes the external synthesis engine against text and a
// resolved voice resource path. It returns the path of the engine's output
// file; the path is non-empty whenever the file was created, even on
// failure, because removing it is the caller's responsibility.
type Synthesizer interface {
	Synthesize(ctx context.Context, voicePath, text string) (string, error)
}

// TrackDecoder turns an engine output file into an AudioTrack.
type TrackDecoder interface {
	Decode(path string) (*AudioTrack, error)
}

// PlaybackSink consumes one decoded track. The backend calls it at most once
// per request and owns the track until Play returns.
type PlaybackSink interface {
	Play(ctx context.Context, track *AudioTrack, format AudioFormat) error
}

// EventReporter receives the begin/end marks the host expects around each
// accepted speech request.
type EventReporter interface {
	EventBegin()
	EventEnd()
}

// SpeechBackend is the module surface a host transport drives.
type SpeechBackend interface {
	Speak(ctx context.Context, req SpeakRequest) error
	ListVoices() []Voice
	SetReporter(reporter EventReporter)
}

// ObjectStore is a key-value blob store for synthesized audio payloads.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
