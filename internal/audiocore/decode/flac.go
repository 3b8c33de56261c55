package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tphakala/flac"

	"github.com/tphakala/keyclip/internal/audiocore"
)

func decodeFLAC(data []byte) (buf *audiocore.SampleBuffer, err error) {
	// malformed streams can panic inside the frame parser
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("corrupt FLAC stream: %v", r)
		}
	}()

	decoder, err := flac.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid FLAC data: %w", err)
	}

	if decoder.NChannels < 1 {
		return nil, fmt.Errorf("invalid FLAC channel count: %d", decoder.NChannels)
	}

	divisor, err := divisorFor(decoder.BitsPerSample)
	if err != nil {
		return nil, err
	}

	width := decoder.BitsPerSample / 8
	stride := width * decoder.NChannels

	var samples []float32
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("error reading FLAC frame: %w", err)
		}

		// first channel of each interleaved frame
		for i := 0; i+width <= len(frame); i += stride {
			var sample int32
			switch decoder.BitsPerSample {
			case 16:
				sample = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
			case 24:
				sample = int32(frame[i]) | int32(frame[i+1])<<8 | int32(int8(frame[i+2]))<<16
			case 32:
				sample = int32(binary.LittleEndian.Uint32(frame[i:]))
			}
			samples = append(samples, toFloat(int(sample), divisor))
		}
	}

	return audiocore.NewSampleBuffer(samples, decoder.SampleRate)
}
