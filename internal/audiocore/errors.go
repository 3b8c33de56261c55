package audiocore

import (
	"github.com/tphakala/keyclip/internal/errors"
)

// Component identifier for audiocore errors
const ComponentAudioCore = "audiocore"

// Session-level failure sentinels. errors.Is matches any error built with the
// same category, so wrapped instances from capture, decode and export compare
// equal to these.
var (
	// ErrCaptureUnavailable is returned when the capture device cannot be acquired
	ErrCaptureUnavailable = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryCaptureUnavailable).
		Build()

	// ErrDecodeFailure is returned when audio bytes cannot be decoded
	ErrDecodeFailure = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryDecode).
		Build()

	// ErrUnsupportedFormat is returned for a MIME hint no decoder accepts
	ErrUnsupportedFormat = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryUnsupportedFormat).
		Build()

	// ErrEmptySelection is returned when export is requested with nothing selected
	ErrEmptySelection = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryEmptySelection).
		Build()

	// ErrNotRecording is returned when a capture is stopped that never started
	ErrNotRecording = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryState).
		Context("resource", "capture").
		Build()
)
