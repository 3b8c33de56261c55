// Package export slices key press segments out of a recording, encodes them
// as 16-bit PCM WAV and hands them to an archive sink.
package export

import (
	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/timeline"
)

// Extract returns the samples inside the event's window as a new buffer.
// Its length is exactly floor(WindowEnd*sr) - floor(WindowStart*sr); indices
// past the source are padded with silence.
func Extract(buf *audiocore.SampleBuffer, evt *timeline.KeyEvent) *audiocore.SampleBuffer {
	return ExtractRange(buf, evt.WindowStart, evt.WindowEnd)
}

// ExtractRange slices [start, end) seconds with the same flooring rules as Extract.
// A range that ends before it starts yields an empty buffer.
func ExtractRange(buf *audiocore.SampleBuffer, start, end float64) *audiocore.SampleBuffer {
	return buf.Slice(buf.SampleIndex(start), buf.SampleIndex(end))
}
