package decode

import (
	"bytes"
	"context"
	"io"
	"math"
	"math/rand/v2"
	"os/exec"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/audiocore/export"
	"github.com/tphakala/keyclip/internal/errors"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping test")
	}
}

// encodeWAV writes interleaved int samples as a WAV file.
func encodeWAV(t *testing.T, data []int, rate, bitDepth, channels int) []byte {
	t.Helper()
	ws := &memFile{}
	enc := wav.NewEncoder(ws, rate, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: rate, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	return ws.data
}

func TestParseMimeHint(t *testing.T) {
	tests := []struct {
		hint string
		want Format
	}{
		{"audio/wav", FormatWAV},
		{"audio/x-wav", FormatWAV},
		{"AUDIO/WAV", FormatWAV},
		{"audio/mpeg", FormatMP3},
		{"audio/ogg; codecs=opus", FormatOGG},
		{"audio/flac", FormatFLAC},
		{"flac", FormatFLAC},
	}
	for _, tt := range tests {
		got, err := ParseMimeHint(tt.hint)
		require.NoError(t, err, tt.hint)
		assert.Equal(t, tt.want, got, tt.hint)
	}

	for _, bad := range []string{"", "video/mp4", "audio/aac", "text/plain"} {
		_, err := ParseMimeHint(bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, audiocore.ErrUnsupportedFormat, bad)
	}
}

func TestHintFromPath(t *testing.T) {
	assert.Equal(t, audiocore.MimeWAV, HintFromPath("/tmp/take.WAV"))
	assert.Equal(t, audiocore.MimeMP3, HintFromPath("song.mp3"))
	assert.Equal(t, audiocore.MimeOGG, HintFromPath("a.oga"))
	assert.Equal(t, audiocore.MimeFLAC, HintFromPath("a.flac"))
	assert.Equal(t, "aac", HintFromPath("a.aac"))

	_, err := ParseMimeHint(HintFromPath("a.aac"))
	assert.ErrorIs(t, err, audiocore.ErrUnsupportedFormat)
}

func TestDecodeUnsupportedBeforeDecoding(t *testing.T) {
	svc := NewService(Config{}, nil)

	// valid WAV bytes are still rejected on the declared type
	data := encodeWAV(t, []int{1, 2, 3}, 8000, 16, 1)
	_, err := svc.Decode(context.Background(), data, "video/mp4")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryUnsupportedFormat))
	assert.NotErrorIs(t, err, audiocore.ErrDecodeFailure)
}

// WAV written by the exporter decodes back within one quantization step.
func TestDecodeWAVRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	samples := make([]float32, 3000)
	for i := range samples {
		samples[i] = float32(rng.Float64()*2 - 1)
	}
	src, err := audiocore.NewSampleBuffer(samples, 16000)
	require.NoError(t, err)

	data, err := export.Encode(src)
	require.NoError(t, err)

	buf, err := NewService(Config{}, nil).Decode(context.Background(), data, audiocore.MimeWAV)
	require.NoError(t, err)
	require.Equal(t, len(samples), buf.Len())
	assert.Equal(t, 16000, buf.SampleRate())

	for i, s := range samples {
		assert.LessOrEqual(t, math.Abs(float64(buf.At(i)-s)), 1.0/32767, "sample %d", i)
	}
}

func TestDecodeWAVKeepsFirstChannel(t *testing.T) {
	// L = 16384, R = -16384
	interleaved := []int{16384, -16384, 16384, -16384, 16384, -16384}
	data := encodeWAV(t, interleaved, 8000, 16, 2)

	buf, err := NewService(Config{}, nil).Decode(context.Background(), data, "audio/wav")
	require.NoError(t, err)
	require.Equal(t, 3, buf.Len())
	for i := range 3 {
		assert.InDelta(t, 16384.0/32767, buf.At(i), 1e-6)
	}
}

func TestDecodeWAV24Bit(t *testing.T) {
	data := encodeWAV(t, []int{8388607, -8388607, 0}, 44100, 24, 1)

	buf, err := NewService(Config{}, nil).Decode(context.Background(), data, "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -1, 0}, buf.Samples())
}

func TestDecodeEmptyWAV(t *testing.T) {
	data := encodeWAV(t, nil, 8000, 16, 1)

	buf, err := NewService(Config{}, nil).Decode(context.Background(), data, "audio/wav")
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
	assert.Zero(t, buf.Duration())
}

func TestDecodeGarbage(t *testing.T) {
	svc := NewService(Config{}, nil)
	garbage := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 64)

	for _, hint := range []string{audiocore.MimeWAV, audiocore.MimeFLAC} {
		_, err := svc.Decode(context.Background(), garbage, hint)
		require.Error(t, err, hint)
		assert.ErrorIs(t, err, audiocore.ErrDecodeFailure, hint)
	}
}

func TestDecodeFFmpegMissingBinary(t *testing.T) {
	svc := NewService(Config{FfmpegPath: "/nonexistent/ffmpeg"}, nil)

	_, err := svc.Decode(context.Background(), []byte("not audio"), audiocore.MimeMP3)
	require.Error(t, err)
	assert.ErrorIs(t, err, audiocore.ErrDecodeFailure)
}

func TestDecodeFFmpeg(t *testing.T) {
	skipIfNoFFmpeg(t)

	samples := make([]float32, 8000)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	src, err := audiocore.NewSampleBuffer(samples, 8000)
	require.NoError(t, err)
	data, err := export.Encode(src)
	require.NoError(t, err)

	// ffmpeg probes the container itself, so WAV input works with any hint it handles
	buf, err := NewService(Config{SampleRate: 16000}, nil).Decode(context.Background(), data, audiocore.MimeOGG)
	require.NoError(t, err)
	assert.Equal(t, 16000, buf.SampleRate())
	assert.InDelta(t, 1.0, buf.Duration(), 0.05)
	assert.InDelta(t, 0.5, buf.Peak(), 0.05)
}

func TestDecodeFFmpegRejectsGarbage(t *testing.T) {
	skipIfNoFFmpeg(t)

	_, err := NewService(Config{}, nil).Decode(context.Background(), []byte("definitely not audio"), audiocore.MimeMP3)
	require.Error(t, err)
	assert.ErrorIs(t, err, audiocore.ErrDecodeFailure)
}

func TestToFloatClamps(t *testing.T) {
	assert.InDelta(t, 1.0, toFloat(40000, 32767), 0)
	assert.InDelta(t, -1.0, toFloat(-40000, 32767), 0)
	assert.InDelta(t, 0.5, toFloat(16384, 32768), 1e-9)
}

func TestDivisorFor(t *testing.T) {
	for _, depth := range []int{16, 24, 32} {
		_, err := divisorFor(depth)
		require.NoError(t, err)
	}
	_, err := divisorFor(8)
	require.Error(t, err)
}

// memFile is an in-memory io.WriteSeeker for the WAV encoder.
type memFile struct {
	data []byte
	pos  int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	copy(m.data[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = int(offset)
	case io.SeekCurrent:
		m.pos += int(offset)
	case io.SeekEnd:
		m.pos = len(m.data) + int(offset)
	}
	return int64(m.pos), nil
}
