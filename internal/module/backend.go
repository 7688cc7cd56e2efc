// Package module implements the speech backend: it applies per-request voice
// parameters, resolves the voice resource, runs the synthesis engine, decodes
// the engine's WAV output, and hands the decoded track to a playback sink.
package module

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/book-expert/logger"

	"github.com/speech-backends/openjtalk/internal/core"
	"github.com/speech-backends/openjtalk/internal/text"
	"github.com/speech-backends/openjtalk/internal/voice"
)

// Static errors.
var (
	// ErrNoVoiceResolved indicates that no voice resource path is currently
	// resolved, which makes synthesis impossible. The request is rejected
	// before any subprocess is spawned.
	ErrNoVoiceResolved = errors.New("no synthesis voice resolved")
	// ErrPauseUnsupported is reported for every pause request; the engine
	// cannot pause mid-synthesis.
	ErrPauseUnsupported = errors.New("pause is not supported")
)

// Backend is one speech backend instance. All voice-selection state is held
// per instance, so independent backends can coexist in one process.
//
// Requests are serialized by the host transport; Backend itself is not safe
// for concurrent Speak calls.
type Backend struct {
	registry *voice.Registry
	resolver *voice.Resolver
	synth    core.Synthesizer
	decoder  core.TrackDecoder
	sink     core.PlaybackSink
	stripper *text.Stripper
	reporter core.EventReporter
	log      *logger.Logger

	// Resolved-voice state, mutated only by parameter changes.
	language  string
	voiceType core.VoiceType
	voiceName string
	voiceID   string
	voicePath string
}

// New creates a backend over its collaborators.
func New(
	registry *voice.Registry,
	resolver *voice.Resolver,
	synth core.Synthesizer,
	decoder core.TrackDecoder,
	sink core.PlaybackSink,
	log *logger.Logger,
) *Backend {
	return &Backend{
		registry: registry,
		resolver: resolver,
		synth:    synth,
		decoder:  decoder,
		sink:     sink,
		stripper: text.NewStripper(),
		log:      log,
	}
}

// SetReporter registers the host's begin/end event reporter. A nil reporter
// disables event marks.
func (b *Backend) SetReporter(reporter core.EventReporter) {
	b.reporter = reporter
}

// Init verifies the backend can become active. It fails when no voices are
// registered.
func (b *Backend) Init() error {
	b.log.Info("initializing")

	validateErr := b.registry.Validate()
	if validateErr != nil {
		return fmt.Errorf("backend startup failed: %w", validateErr)
	}

	return nil
}

// ListVoices returns the registered voices.
func (b *Backend) ListVoices() []core.Voice {
	return b.registry.List()
}

// Speak runs the full pipeline for one request: apply parameter changes,
// resolve the voice, synthesize, decode, play. Every failure is terminal for
// this request only; the backend stays ready for the next one. The engine's
// temporary output file is removed on every exit path except failure of its
// own creation.
func (b *Backend) Speak(ctx context.Context, req core.SpeakRequest) error {
	b.applyParameters(req)

	if b.voicePath == "" {
		b.log.Warn("no voice specified")

		return ErrNoVoiceResolved
	}

	b.eventBegin()
	defer b.eventEnd()

	plainText := b.stripper.Strip(req.Text)
	b.log.Info("speaking '%s'", plainText)

	outputPath, synthErr := b.synth.Synthesize(ctx, b.voicePath, plainText)
	if outputPath != "" {
		defer func() {
			removeErr := os.Remove(outputPath)
			if removeErr != nil {
				b.log.Warn("failed to remove temp file '%s': %v",
					outputPath, removeErr)
			}
		}()
	}

	if synthErr != nil {
		return fmt.Errorf("synthesis failed: %w", synthErr)
	}

	track, decodeErr := b.decoder.Decode(outputPath)
	if decodeErr != nil {
		return fmt.Errorf("failed to decode synthesis output: %w", decodeErr)
	}

	playErr := b.sink.Play(ctx, track, core.FormatLittleEndian)
	if playErr != nil {
		return fmt.Errorf("playback failed: %w", playErr)
	}

	return nil
}

// Pause reports that pausing is unsupported.
func (b *Backend) Pause() error {
	b.log.Info("pausing (not supported)")

	return ErrPauseUnsupported
}

// Stop is accepted as a no-op; it does not interrupt an in-flight request.
func (b *Backend) Stop() error {
	b.log.Info("stopping (not supported)")

	return nil
}

// Close releases nothing; the backend holds no persistent resources.
func (b *Backend) Close() error {
	b.log.Info("closing")

	return nil
}

// applyParameters applies pending parameter changes in a fixed order:
// language, then coarse voice type, then explicit voice name. A language
// change overwrites a type-derived identifier, and a name selected
// afterwards overrides it again. Unchanged parameters trigger nothing.
func (b *Backend) applyParameters(req core.SpeakRequest) {
	if req.Language != "" && req.Language != b.language {
		b.setLanguage(req.Language)
	}

	if req.Type != "" && req.Type != b.voiceType {
		b.setVoiceType(req.Type)
	}

	if req.VoiceName != "" && req.VoiceName != b.voiceName {
		b.setVoiceName(req.VoiceName)
	}
}

func (b *Backend) setLanguage(language string) {
	b.log.Info("setting language %s", language)
	b.language = language
	b.deriveVoice()
}

func (b *Backend) setVoiceType(voiceType core.VoiceType) {
	b.log.Info("setting voice type %s", voiceType)
	b.voiceType = voiceType
	b.deriveVoice()
}

// setVoiceName selects an exact named voice. A registered name overrides the
// derived identifier directly, bypassing type-based lookup; an unregistered
// name changes nothing.
func (b *Backend) setVoiceName(name string) {
	b.log.Info("setting voice name %s", name)
	b.voiceName = name

	if !b.registry.ExistsByName(name) {
		b.log.Warn("voice name %s is not registered", name)

		return
	}

	b.voiceID = name
	b.resolveVoicePath()
}

// deriveVoice re-derives the voice identifier from the current language and
// coarse type, then re-resolves the resource path.
func (b *Backend) deriveVoice() {
	identifier, ok := b.registry.Identifier(b.language, b.voiceType)
	if !ok {
		b.log.Warn("invalid voice type specified or no voice available")
		b.voiceID = ""
	} else {
		b.voiceID = identifier
	}

	b.resolveVoicePath()
}

// resolveVoicePath re-runs the search-path resolution. It is never cached
// across identifier changes; an unresolved path is a valid state meaning "no
// voice available".
func (b *Backend) resolveVoicePath() {
	path, ok := b.resolver.Resolve(b.voiceID)
	if !ok {
		b.log.Warn("no voice file found for identifier '%s'", b.voiceID)
		b.voicePath = ""

		return
	}

	b.log.Info("resolved voice '%s' to %s", b.voiceID, path)
	b.voicePath = path
}

func (b *Backend) eventBegin() {
	if b.reporter != nil {
		b.reporter.EventBegin()
	}
}

func (b *Backend) eventEnd() {
	if b.reporter != nil {
		b.reporter.EventEnd()
	}
}
