// Package wav decodes the WAV files emitted by the Open JTalk engine.
//
// This is deliberately not a general RIFF parser: the engine writes one
// fixed, known-offset layout, and the decoder reads exactly that layout as
// an explicit offset table. Every field is little-endian.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/book-expert/logger"

	"github.com/speech-backends/openjtalk/internal/core"
)

// Byte offsets of the header fields consumed from the engine's output.
const (
	offsetChannels    = 22 // u16 channel count
	offsetSampleRate  = 24 // u32 sample rate in Hz
	offsetBits        = 34 // u16 bits per sample
	offsetPayloadSize = 40 // u32 payload byte size
	offsetSamples     = 44 // raw interleaved PCM payload
)

// ErrMalformedHeader indicates a short read at any offset, or header fields
// that would make the frame computation divide by zero. No partial track is
// ever returned alongside it.
var ErrMalformedHeader = errors.New("malformed wav header")

// Decoder reads engine output files into audio tracks.
type Decoder struct {
	log *logger.Logger
}

// NewDecoder creates a decoder.
func NewDecoder(log *logger.Logger) *Decoder {
	return &Decoder{
		log: log,
	}
}

// Decode reads the fixed-offset header fields and the sample payload from
// path. The frame count is computed from the declared payload size; a
// payload shorter than its declaration is a hard failure, not a truncation.
func (d *Decoder) Decode(path string) (*core.AudioTrack, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open synthesis output: %w", err)
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			d.log.Warn("failed to close synthesis output '%s': %v", path, closeErr)
		}
	}()

	channels, err := readUint16At(file, offsetChannels)
	if err != nil {
		return nil, fmt.Errorf("%w: channel count: %v", ErrMalformedHeader, err)
	}

	sampleRate, err := readUint32At(file, offsetSampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: sample rate: %v", ErrMalformedHeader, err)
	}

	bits, err := readUint16At(file, offsetBits)
	if err != nil {
		return nil, fmt.Errorf("%w: bits per sample: %v", ErrMalformedHeader, err)
	}

	payloadSize, err := readUint32At(file, offsetPayloadSize)
	if err != nil {
		return nil, fmt.Errorf("%w: payload size: %v", ErrMalformedHeader, err)
	}

	// The engine never validates these fields; a corrupted file must not
	// reach the divisions below.
	bytesPerSample := int(bits) / 8
	if channels == 0 || bytesPerSample == 0 {
		return nil, fmt.Errorf(
			"%w: channels=%d bits=%d", ErrMalformedHeader, channels, bits)
	}

	frameCount := int(payloadSize) / int(channels) / bytesPerSample
	payloadLen := frameCount * int(channels) * bytesPerSample

	samples := make([]byte, payloadLen)

	_, err = file.ReadAt(samples, offsetSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: sample payload: %v", ErrMalformedHeader, err)
	}

	d.log.Info("decoded wav: bits=%d channels=%d rate=%d frames=%d",
		bits, channels, sampleRate, frameCount)

	return &core.AudioTrack{
		Bits:       int(bits),
		Channels:   int(channels),
		SampleRate: int(sampleRate),
		FrameCount: frameCount,
		Samples:    samples,
	}, nil
}

// readUint16At reads exactly two bytes at the given offset. ReadAt reports
// an error on any short read, which is exactly the contract needed here.
func readUint16At(file *os.File, offset int64) (uint16, error) {
	var buf [2]byte

	_, err := file.ReadAt(buf[:], offset)
	if err != nil {
		return 0, fmt.Errorf("read at offset %d: %w", offset, err)
	}

	return binary.LittleEndian.Uint16(buf[:]), nil
}

// readUint32At reads exactly four bytes at the given offset.
func readUint32At(file *os.File, offset int64) (uint32, error) {
	var buf [4]byte

	_, err := file.ReadAt(buf[:], offset)
	if err != nil {
		return 0, fmt.Errorf("read at offset %d: %w", offset, err)
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}
