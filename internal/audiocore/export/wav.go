package export

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/errors"
)

const (
	bitDepth    = 16
	numChannels = 1
	pcmFormat   = 1

	// WAVHeaderSize is the size of the canonical RIFF/WAVE header.
	WAVHeaderSize = 44

	// fullScale maps a float sample in [-1, 1] to a 16-bit integer.
	fullScale = 32767
)

// seekableBuffer is an in-memory io.WriteSeeker. The WAV encoder seeks back
// to patch chunk sizes, so writes after a seek overwrite existing bytes.
type seekableBuffer struct {
	data []byte
	pos  int
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.data) {
		s.data = append(s.data, make([]byte, end-len(s.data))...)
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.data))
	default:
		return 0, errors.Newf("invalid whence %d", whence).
			Component("export").
			Category(errors.CategoryValidation).
			Build()
	}

	next := base + offset
	if next < 0 {
		return 0, errors.Newf("negative seek position %d", next).
			Component("export").
			Category(errors.CategoryValidation).
			Build()
	}
	s.pos = int(next)
	return next, nil
}

func (s *seekableBuffer) Bytes() []byte {
	return s.data
}

// Quantize clamps a sample to [-1, 1] and scales it to a signed 16-bit value.
func Quantize(sample float32) int {
	v := math.Max(-1, math.Min(1, float64(sample)))
	return int(math.Round(v * fullScale))
}

// Encode serializes buf as a mono 16-bit PCM WAV file.
func Encode(buf *audiocore.SampleBuffer) ([]byte, error) {
	ints := make([]int, buf.Len())
	for i := range ints {
		ints[i] = Quantize(buf.At(i))
	}
	return EncodePCM16(ints, buf.SampleRate())
}

// EncodePCM16 writes already quantized mono samples as a WAV file.
func EncodePCM16(samples []int, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, errors.Newf("invalid sample rate %d", sampleRate).
			Component("export").
			Category(errors.CategoryValidation).
			Context("operation", "encode_wav").
			Build()
	}

	out := &seekableBuffer{data: make([]byte, 0, WAVHeaderSize+2*len(samples))}
	if err := EncodeTo(out, samples, sampleRate); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EncodeTo streams a WAV file to ws. The header is always written, so an
// empty sample slice produces a valid zero-length file.
func EncodeTo(ws io.WriteSeeker, samples []int, sampleRate int) error {
	enc := wav.NewEncoder(ws, sampleRate, bitDepth, numChannels, pcmFormat)

	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryExport).
			Context("operation", "encode_wav").
			Context("sample_count", len(samples)).
			Build()
	}

	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryExport).
			Context("operation", "finalize_wav").
			Build()
	}
	return nil
}
