package audiocore

import (
	"math"

	"github.com/tphakala/keyclip/internal/errors"
)

// SampleBuffer is an immutable mono sample sequence. Amplitudes are expected
// in [-1, 1]; values outside that range are passed through untouched.
type SampleBuffer struct {
	samples    []float32
	sampleRate int
}

// NewSampleBuffer copies samples into a new buffer. sampleRate must be positive.
func NewSampleBuffer(samples []float32, sampleRate int) (*SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, errors.Newf("invalid sample rate %d", sampleRate).
			Component(ComponentAudioCore).
			Category(errors.CategoryValidation).
			Context("operation", "new_sample_buffer").
			Build()
	}

	owned := make([]float32, len(samples))
	copy(owned, samples)
	return &SampleBuffer{samples: owned, sampleRate: sampleRate}, nil
}

// newOwnedBuffer wraps samples without copying; callers must not retain them.
func newOwnedBuffer(samples []float32, sampleRate int) *SampleBuffer {
	return &SampleBuffer{samples: samples, sampleRate: sampleRate}
}

// Len returns the number of samples.
func (b *SampleBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// SampleRate returns the rate in Hz.
func (b *SampleBuffer) SampleRate() int {
	if b == nil {
		return 0
	}
	return b.sampleRate
}

// Duration returns Len()/SampleRate() in seconds. It is always derived,
// never cached.
func (b *SampleBuffer) Duration() float64 {
	if b == nil || b.sampleRate == 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// At returns sample i, or 0 when i is outside the buffer.
func (b *SampleBuffer) At(i int) float32 {
	if b == nil || i < 0 || i >= len(b.samples) {
		return 0
	}
	return b.samples[i]
}

// Samples returns a copy of the sample data.
func (b *SampleBuffer) Samples() []float32 {
	if b == nil {
		return nil
	}
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// SampleIndex converts a time in seconds to floor(t*sampleRate).
func (b *SampleBuffer) SampleIndex(t float64) int {
	if b == nil {
		return 0
	}
	return int(math.Floor(t * float64(b.sampleRate)))
}

// Slice returns a new buffer holding samples [start, end). Indices outside
// the source are filled with silence; end <= start yields an empty buffer.
func (b *SampleBuffer) Slice(start, end int) *SampleBuffer {
	length := max(end-start, 0)
	out := make([]float32, length)

	if b != nil {
		// copy the overlap with the source, the rest stays zero
		lo := max(start, 0)
		hi := min(end, len(b.samples))
		if lo < hi {
			copy(out[lo-start:], b.samples[lo:hi])
		}
	}

	rate := 0
	if b != nil {
		rate = b.sampleRate
	}
	return newOwnedBuffer(out, rate)
}

// Peak returns the largest absolute sample value.
func (b *SampleBuffer) Peak() float32 {
	var peak float32
	if b == nil {
		return 0
	}
	for _, s := range b.samples {
		peak = max(peak, float32(math.Abs(float64(s))))
	}
	return peak
}
