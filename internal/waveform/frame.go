// Package waveform turns a sample buffer, an event timeline and a viewport
// into a drawable Frame, and paints frames onto raster surfaces.
//
// Render is a pure function of its input. Nothing here holds state between
// frames; the host redraws whenever any input changes.
package waveform

import (
	"strings"

	"github.com/tphakala/keyclip/internal/errors"
)

// Mode selects how amplitude is drawn.
type Mode string

const (
	ModeWaveform Mode = "waveform"
	// ModeSpectrogram is an amplitude heatmap: each column's hue and bar
	// height come from the absolute amplitude of its sample. No frequency
	// analysis is performed.
	ModeSpectrogram Mode = "spectrogram"
)

// ParseMode parses a mode name. An empty string selects ModeWaveform.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "waveform", "wave":
		return ModeWaveform, nil
	case "spectrogram", "spectro", "heatmap":
		return ModeSpectrogram, nil
	}
	return "", errors.Newf("unknown render mode %q", s).
		Component("waveform").
		Category(errors.CategoryValidation).
		Context("mode", s).
		Build()
}

// TickCount is the number of time-axis ticks on every frame.
const TickCount = 11

// Point is a waveform vertex in canvas coordinates.
type Point struct {
	X, Y float64
}

// Bar is one spectrogram column.
type Bar struct {
	X      float64
	Y      float64 // top edge
	Height float64
	Hue    float64 // degrees, 240 (blue) for silence down to 0 (red) at full scale
}

// Line is a labelled vertical line such as a trim marker.
type Line struct {
	X     float64
	Time  float64
	Label string
}

// Span is a horizontal pixel range.
type Span struct {
	X0, X1 float64
}

// Marker is a key event drawn on the frame.
type Marker struct {
	EventID  string
	X        float64
	Label    string
	Selected bool
	// Highlight covers the event window and is set only for selected events.
	Highlight *Span
}

// Tick is one time-axis label.
type Tick struct {
	X     float64
	Time  float64
	Label string
}

// Frame is everything needed to draw one redraw.
type Frame struct {
	Width, Height int
	Mode          Mode
	VisibleStart  float64
	VisibleEnd    float64

	Points []Point // waveform mode
	Bars   []Bar   // spectrogram mode

	TrimStart *Line
	TrimEnd   *Line
	Playhead  *Line
	Markers   []Marker
	Ticks     []Tick
}

// Mid returns the vertical center of the frame.
func (f *Frame) Mid() float64 {
	return float64(f.Height) / 2
}

// SelectedMarkers returns the markers of selected events.
func (f *Frame) SelectedMarkers() []Marker {
	var out []Marker
	for _, m := range f.Markers {
		if m.Selected {
			out = append(out, m)
		}
	}
	return out
}
