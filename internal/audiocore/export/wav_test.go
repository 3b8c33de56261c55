package export

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/audiocore"
)

func newBuffer(t *testing.T, samples []float32, rate int) *audiocore.SampleBuffer {
	t.Helper()
	buf, err := audiocore.NewSampleBuffer(samples, rate)
	require.NoError(t, err)
	return buf
}

func TestEncodeCanonicalHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	data, err := Encode(newBuffer(t, samples, 16000))
	require.NoError(t, err)

	n := uint32(len(samples))
	require.Len(t, data, WAVHeaderSize+int(2*n))

	le := binary.LittleEndian
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, 36+2*n, le.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint32(16), le.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), le.Uint16(data[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), le.Uint16(data[22:24]), "channels")
	assert.Equal(t, uint32(16000), le.Uint32(data[24:28]))
	assert.Equal(t, uint32(32000), le.Uint32(data[28:32]), "byte rate")
	assert.Equal(t, uint16(2), le.Uint16(data[32:34]), "block align")
	assert.Equal(t, uint16(16), le.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, 2*n, le.Uint32(data[40:44]))

	want := []int16{0, 16384, -16384, 32767, -32767}
	for i, w := range want {
		got := int16(le.Uint16(data[WAVHeaderSize+2*i:]))
		assert.Equal(t, w, got, "sample %d", i)
	}
}

func TestEncodeEmptyBuffer(t *testing.T) {
	data, err := Encode(newBuffer(t, nil, 8000))
	require.NoError(t, err)
	require.Len(t, data, WAVHeaderSize)

	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[40:44]))
}

func TestEncodeRejectsBadRate(t *testing.T) {
	_, err := EncodePCM16([]int{1}, 0)
	require.Error(t, err)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{1.5, 32767},
		{-3, -32767},
		{0.25, 8192},
		{-0.25, -8192},
		{1.0 / 32767, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quantize(tt.in), "Quantize(%v)", tt.in)
	}
}

// Decoding with a standard PCM reader returns the input within one quantization step.
func TestWAVRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 24))
	samples := make([]float32, 4000)
	for i := range samples {
		samples[i] = float32(rng.Float64()*2 - 1)
	}

	data, err := Encode(newBuffer(t, samples, 22050))
	require.NoError(t, err)

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, pcm.Data, len(samples))
	assert.Equal(t, 22050, int(dec.SampleRate))

	for i, s := range samples {
		decoded := float64(pcm.Data[i]) / fullScale
		assert.LessOrEqual(t, math.Abs(decoded-float64(s)), 1.0/fullScale, "sample %d", i)
	}
}

func TestSeekableBufferOverwrites(t *testing.T) {
	sb := &seekableBuffer{}
	_, err := sb.Write([]byte("abcdef"))
	require.NoError(t, err)

	pos, err := sb.Seek(2, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
	_, err = sb.Write([]byte("XY"))
	require.NoError(t, err)

	pos, err = sb.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)
	_, err = sb.Write([]byte("!"))
	require.NoError(t, err)

	assert.Equal(t, "abXYef!", string(sb.Bytes()))

	_, err = sb.Seek(-10, io.SeekCurrent)
	require.Error(t, err)
	_, err = sb.Seek(0, 42)
	require.Error(t, err)
}
