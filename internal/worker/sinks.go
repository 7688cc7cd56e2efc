package worker

import (
	"context"
	"fmt"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/speech-backends/openjtalk/internal/core"
)

const audioKeySuffix = ".pcm"

// ResultSink is a playback sink that also exposes what the last request
// produced, so the worker can describe it in the reply event. Requests are
// serialized, so one pending result at a time is enough.
type ResultSink interface {
	core.PlaybackSink

	// Result returns the audio key (empty when nothing was uploaded) and the
	// track of the last successful Play, then clears them.
	Result() (string, *core.AudioTrack)
}

// UploadSink uploads each decoded PCM payload to the object store under a
// fresh UUID key.
type UploadSink struct {
	store core.ObjectStore
	log   *logger.Logger

	lastKey   string
	lastTrack *core.AudioTrack
}

// NewUploadSink creates a sink that publishes audio to the object store.
func NewUploadSink(store core.ObjectStore, log *logger.Logger) *UploadSink {
	return &UploadSink{
		store: store,
		log:   log,
	}
}

// Play uploads the track's samples and records the generated key.
func (s *UploadSink) Play(
	ctx context.Context,
	track *core.AudioTrack,
	format core.AudioFormat,
) error {
	if format != core.FormatLittleEndian {
		return fmt.Errorf("%w: %s", ErrUnsupportedReplyFormat, format)
	}

	audioKey := uuid.NewString() + audioKeySuffix

	uploadErr := s.store.Upload(ctx, audioKey, track.Samples)
	if uploadErr != nil {
		return fmt.Errorf("failed to upload audio data for key '%s': %w",
			audioKey, uploadErr)
	}

	s.log.Info("uploaded audio '%s' (%d bytes)", audioKey, len(track.Samples))
	s.lastKey = audioKey
	s.lastTrack = track

	return nil
}

// Result returns and clears the last uploaded key and track.
func (s *UploadSink) Result() (string, *core.AudioTrack) {
	key, track := s.lastKey, s.lastTrack
	s.lastKey, s.lastTrack = "", nil

	return key, track
}

// LocalSink wraps a real playback sink (local audio output) while still
// recording the track for the reply event.
type LocalSink struct {
	inner core.PlaybackSink

	lastTrack *core.AudioTrack
}

// NewLocalSink creates a sink that plays through inner.
func NewLocalSink(inner core.PlaybackSink) *LocalSink {
	return &LocalSink{
		inner: inner,
	}
}

// Play forwards to the wrapped sink and records the track on success.
func (s *LocalSink) Play(
	ctx context.Context,
	track *core.AudioTrack,
	format core.AudioFormat,
) error {
	playErr := s.inner.Play(ctx, track, format)
	if playErr != nil {
		return fmt.Errorf("local playback failed: %w", playErr)
	}

	s.lastTrack = track

	return nil
}

// Result returns and clears the last played track. The key is always empty;
// nothing is uploaded in local mode.
func (s *LocalSink) Result() (string, *core.AudioTrack) {
	track := s.lastTrack
	s.lastTrack = nil

	return "", track
}
