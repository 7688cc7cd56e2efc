// Package playback plays decoded audio tracks on the default output device
// using PortAudio.
package playback

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/book-expert/logger"
	"github.com/gordonklaus/portaudio"

	"github.com/speech-backends/openjtalk/internal/core"
)

const (
	bufferFrames     = 1024
	bytesPerSample16 = 2
	int16Scale       = 32768.0
	supportedBits    = 16
)

// Static errors.
var (
	// ErrUnsupportedFormat indicates a format tag other than little-endian PCM.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrUnsupportedBitDepth indicates a bit depth this sink cannot convert.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)

// PortAudioSink implements core.PlaybackSink for 16-bit little-endian
// tracks. PortAudio is initialized per call; the sink holds no device state
// between requests.
type PortAudioSink struct {
	log *logger.Logger
}

// NewPortAudioSink creates a sink that plays on the default output device.
func NewPortAudioSink(log *logger.Logger) *PortAudioSink {
	return &PortAudioSink{
		log: log,
	}
}

// Play blocks until the whole track has been written to the output stream,
// or the context is cancelled.
func (s *PortAudioSink) Play(
	ctx context.Context,
	track *core.AudioTrack,
	format core.AudioFormat,
) error {
	samples, err := samplesToFloat32(track, format)
	if err != nil {
		return err
	}

	s.log.Info("playing %d frames at %d Hz on %d channel(s)",
		track.FrameCount, track.SampleRate, track.Channels)

	return s.stream(ctx, samples, track.Channels, float64(track.SampleRate))
}

func (s *PortAudioSink) stream(
	ctx context.Context,
	samples []float32,
	channels int,
	sampleRate float64,
) error {
	initErr := portaudio.Initialize()
	if initErr != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", initErr)
	}

	defer func() {
		termErr := portaudio.Terminate()
		if termErr != nil {
			s.log.Warn("failed to terminate portaudio: %v", termErr)
		}
	}()

	bufferLen := bufferFrames * channels
	buffer := make([]float32, bufferLen)

	stream, err := portaudio.OpenDefaultStream(
		0, channels, sampleRate, bufferFrames, &buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}

	defer func() {
		closeErr := stream.Close()
		if closeErr != nil {
			s.log.Warn("failed to close output stream: %v", closeErr)
		}
	}()

	startErr := stream.Start()
	if startErr != nil {
		return fmt.Errorf("failed to start output stream: %w", startErr)
	}

	defer func() {
		stopErr := stream.Stop()
		if stopErr != nil {
			s.log.Warn("failed to stop output stream: %v", stopErr)
		}
	}()

	for position := 0; position < len(samples); position += bufferLen {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return fmt.Errorf("playback cancelled: %w", ctxErr)
		}

		for i := range buffer {
			if position+i < len(samples) {
				buffer[i] = samples[position+i]
			} else {
				buffer[i] = 0
			}
		}

		writeErr := stream.Write()
		if writeErr != nil {
			return fmt.Errorf("failed to write to output stream: %w", writeErr)
		}
	}

	return nil
}

// samplesToFloat32 converts a track's interleaved 16-bit little-endian
// samples into the float32 form PortAudio consumes.
func samplesToFloat32(track *core.AudioTrack, format core.AudioFormat) ([]float32, error) {
	if format != core.FormatLittleEndian {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if track.Bits != supportedBits {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, track.Bits)
	}

	sampleCount := len(track.Samples) / bytesPerSample16
	samples := make([]float32, sampleCount)

	for i := range samples {
		raw := binary.LittleEndian.Uint16(track.Samples[i*bytesPerSample16:])
		samples[i] = float32(int16(raw)) / int16Scale
	}

	return samples, nil
}
