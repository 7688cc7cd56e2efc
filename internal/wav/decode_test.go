// Package wav_test tests the fixed-offset WAV decoder.
package wav_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speech-backends/openjtalk/internal/wav"
)

const headerLen = 44

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "wav-test.log")
	require.NoError(t, err)

	return log
}

// buildWAV assembles a synthetic engine output file: a 44-byte header with
// the four consumed fields at their fixed offsets, followed by the payload.
func buildWAV(channels uint16, sampleRate uint32, bits uint16, declaredSize uint32, payload []byte) []byte {
	header := make([]byte, headerLen)
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint16(header[34:36], bits)
	binary.LittleEndian.PutUint32(header[40:44], declaredSize)

	return append(header, payload...)
}

func writeWAV(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.wav")
	err := os.WriteFile(path, data, 0o600)
	require.NoError(t, err)

	return path
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 4000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	path := writeWAV(t, buildWAV(2, 22050, 16, 4000, payload))
	decoder := wav.NewDecoder(newTestLogger(t))

	track, err := decoder.Decode(path)
	require.NoError(t, err)

	assert.Equal(t, 16, track.Bits)
	assert.Equal(t, 2, track.Channels)
	assert.Equal(t, 22050, track.SampleRate)
	assert.Equal(t, 1000, track.FrameCount)
	assert.Equal(t, payload, track.Samples)
}

func TestDecode_ShortPayloadIsMalformed(t *testing.T) {
	t.Parallel()

	// Declared size 4000 but only 100 payload bytes present: a hard
	// failure, never a truncated track.
	path := writeWAV(t, buildWAV(2, 22050, 16, 4000, make([]byte, 100)))
	decoder := wav.NewDecoder(newTestLogger(t))

	track, err := decoder.Decode(path)
	require.Error(t, err)
	require.ErrorIs(t, err, wav.ErrMalformedHeader)
	assert.Nil(t, track)
}

func TestDecode_TruncatedHeaderIsMalformed(t *testing.T) {
	t.Parallel()

	full := buildWAV(2, 22050, 16, 4000, make([]byte, 4000))
	decoder := wav.NewDecoder(newTestLogger(t))

	// Truncation before each consumed field must fail at that field.
	for _, cut := range []int{0, 10, 23, 25, 35, 42} {
		path := writeWAV(t, full[:cut])

		track, err := decoder.Decode(path)
		require.Error(t, err, "truncated at %d", cut)
		require.ErrorIs(t, err, wav.ErrMalformedHeader)
		assert.Nil(t, track)
	}
}

func TestDecode_ZeroChannelsIsMalformed(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, buildWAV(0, 22050, 16, 4000, make([]byte, 4000)))
	decoder := wav.NewDecoder(newTestLogger(t))

	_, err := decoder.Decode(path)
	require.Error(t, err)
	require.ErrorIs(t, err, wav.ErrMalformedHeader)
}

func TestDecode_ZeroBitsIsMalformed(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, buildWAV(2, 22050, 0, 4000, make([]byte, 4000)))
	decoder := wav.NewDecoder(newTestLogger(t))

	_, err := decoder.Decode(path)
	require.Error(t, err)
	require.ErrorIs(t, err, wav.ErrMalformedHeader)
}

func TestDecode_SubByteBitDepthIsMalformed(t *testing.T) {
	t.Parallel()

	// bits=4 makes bytes-per-sample zero, the same divide-by-zero class as
	// bits=0.
	path := writeWAV(t, buildWAV(2, 22050, 4, 4000, make([]byte, 4000)))
	decoder := wav.NewDecoder(newTestLogger(t))

	_, err := decoder.Decode(path)
	require.Error(t, err)
	require.ErrorIs(t, err, wav.ErrMalformedHeader)
}

func TestDecode_PartialTrailingFrameIsDropped(t *testing.T) {
	t.Parallel()

	// Declared size 4001 with 16-bit stereo frames: integer arithmetic
	// keeps 1000 whole frames and ignores the odd byte.
	path := writeWAV(t, buildWAV(2, 22050, 16, 4001, make([]byte, 4001)))
	decoder := wav.NewDecoder(newTestLogger(t))

	track, err := decoder.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, track.FrameCount)
	assert.Len(t, track.Samples, 4000)
}

func TestDecode_MissingFile(t *testing.T) {
	t.Parallel()

	decoder := wav.NewDecoder(newTestLogger(t))

	_, err := decoder.Decode(filepath.Join(t.TempDir(), "absent.wav"))
	require.Error(t, err)
}

func TestDecode_MonoEightBit(t *testing.T) {
	t.Parallel()

	payload := []byte{1, 2, 3, 4, 5}
	path := writeWAV(t, buildWAV(1, 48000, 8, 5, payload))
	decoder := wav.NewDecoder(newTestLogger(t))

	track, err := decoder.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 5, track.FrameCount)
	assert.Equal(t, payload, track.Samples)
}
