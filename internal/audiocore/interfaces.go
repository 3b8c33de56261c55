package audiocore

import (
	"context"
)

// MIME hints understood by the decode service.
const (
	MimeWAV  = "audio/wav"
	MimeMP3  = "audio/mpeg"
	MimeOGG  = "audio/ogg"
	MimeFLAC = "audio/flac"
)

// Recording is the finalized output of a capture.
type Recording struct {
	Data     []byte // encoded audio bytes
	MimeHint string // container type of Data
}

// CaptureService records audio from an input device.
type CaptureService interface {
	// Start begins capture. The returned channel carries copies of raw
	// chunks as they arrive and is closed when capture stops. Slow readers
	// miss chunks; the finalized recording is unaffected.
	Start(ctx context.Context) (<-chan []byte, error)

	// Stop ends capture and returns the finalized recording exactly once.
	// Stopping an idle service returns ErrNotRecording.
	Stop() (Recording, error)
}

// Decoder turns encoded audio into a SampleBuffer.
type Decoder interface {
	// Decode rejects unknown hints with ErrUnsupportedFormat before looking
	// at data, and undecodable data with ErrDecodeFailure.
	Decode(ctx context.Context, data []byte, mimeHint string) (*SampleBuffer, error)
}
