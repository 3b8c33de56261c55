package capture

import (
	"encoding/binary"
	"math"
)

// AudioLevel is a scaled input level for the record meter.
type AudioLevel struct {
	Level    int // 0-100
	Clipping bool
}

// calculateAudioLevel computes the RMS of S16LE samples and maps -60..-10 dBFS
// onto 0-100.
func calculateAudioLevel(samples []byte) AudioLevel {
	sampleCount := len(samples) / bytesPerSample
	if sampleCount == 0 {
		return AudioLevel{}
	}

	var sum float64
	clipping := false
	for i := 0; i+1 < len(samples); i += bytesPerSample {
		sample := int16(binary.LittleEndian.Uint16(samples[i:]))
		v := float64(sample)
		sum += v * v

		if sample == math.MaxInt16 || sample == math.MinInt16 {
			clipping = true
		}
	}

	rms := math.Sqrt(sum / float64(sampleCount))
	if rms == 0 {
		return AudioLevel{Clipping: clipping}
	}

	db := 20 * math.Log10(rms/32768.0)
	scaled := (db + 60) * (100.0 / 50.0)

	if clipping {
		scaled = math.Max(scaled, 95)
	}

	return AudioLevel{
		Level:    int(math.Max(0, math.Min(100, scaled))),
		Clipping: clipping,
	}
}
