package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/keyclip/internal/audiocore"
)

// wavReadFrames is the number of frames read per PCMBuffer call.
const wavReadFrames = 8192

func decodeWAV(data []byte) (*audiocore.SampleBuffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()

	channels := int(decoder.NumChans)
	if channels < 1 || decoder.SampleRate == 0 || decoder.BitDepth < 8 {
		return nil, fmt.Errorf("input is not a valid WAV audio file")
	}

	// IsValidFile rejects a well-formed header with no PCM data, which is
	// what an immediately stopped recording produces.
	if !decoder.IsValidFile() {
		if _, err := divisorFor(int(decoder.BitDepth)); err != nil {
			return nil, err
		}
		return audiocore.NewSampleBuffer(nil, int(decoder.SampleRate))
	}

	divisor, err := divisorFor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	buf := &audio.IntBuffer{
		Data:   make([]int, wavReadFrames*channels),
		Format: &audio.Format{SampleRate: int(decoder.SampleRate), NumChannels: channels},
	}

	var samples []float32
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("error reading WAV samples: %w", err)
		}
		if n == 0 {
			break
		}

		// keep the first channel of each interleaved frame
		for i := 0; i < n; i += channels {
			samples = append(samples, toFloat(buf.Data[i], divisor))
		}

		if err != nil {
			break
		}
	}

	return audiocore.NewSampleBuffer(samples, int(decoder.SampleRate))
}
