package worker

// SpeakRequestedEvent is the JSON payload a host publishes to request
// speech. Empty parameter fields mean "unchanged since the previous
// request", matching the backend's lazy parameter application.
type SpeakRequestedEvent struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
	VoiceType string `json:"voice_type,omitempty"`
	VoiceName string `json:"voice_name,omitempty"`
}

// SpeakCompletedEvent is the reply to a speak request. On success AudioKey
// names the uploaded PCM payload (empty in local playback mode) and the
// header fields describe the decoded track; on failure only Error is set.
type SpeakCompletedEvent struct {
	RequestID  string `json:"request_id"`
	AudioKey   string `json:"audio_key,omitempty"`
	Format     string `json:"format,omitempty"`
	Bits       int    `json:"bits,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	FrameCount int    `json:"frame_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventMarkEvent marks the begin or end of an accepted speech request, the
// equivalent of the host protocol's event reports.
type EventMarkEvent struct {
	RequestID string `json:"request_id"`
	State     string `json:"state"`
}

// Event mark states.
const (
	EventStateBegin = "begin"
	EventStateEnd   = "end"
)

// VoiceInfo is one entry of a list-voices reply.
type VoiceInfo struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Type     string `json:"type"`
}
