// Package viewport maps between timeline seconds and canvas pixels for a
// zoomed and panned window onto an audio buffer.
//
// Viewport is a value type; every change returns a new Viewport with zoom and
// pan already clamped, so the visible window always stays inside
// [0, Duration].
package viewport

import "math"

// Zoom step factors.
const (
	WheelDownFactor = 0.9
	WheelUpFactor   = 1.1
	ButtonFactor    = 1.2

	DefaultMinZoom = 1.0
	DefaultMaxZoom = 20.0
)

// Viewport is the visible time range [Pan, Pan+Duration/Zoom] of a buffer.
type Viewport struct {
	Duration float64 // total buffer duration in seconds
	Zoom     float64
	Pan      float64 // visible start in seconds
	MinZoom  float64
	MaxZoom  float64
}

// New returns a fully zoomed-out viewport over duration seconds.
func New(duration float64) Viewport {
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	return Viewport{
		Duration: duration,
		Zoom:     DefaultMinZoom,
		MinZoom:  DefaultMinZoom,
		MaxZoom:  DefaultMaxZoom,
	}
}

// WithBounds replaces the zoom limits and re-clamps the current zoom.
func (v Viewport) WithBounds(minZoom, maxZoom float64) Viewport {
	if minZoom >= DefaultMinZoom && maxZoom >= minZoom {
		v.MinZoom, v.MaxZoom = minZoom, maxZoom
	}
	return v.WithZoom(v.Zoom)
}

// Visible returns the visible duration, Duration/Zoom.
func (v Viewport) Visible() float64 {
	if v.Zoom <= 0 {
		return v.Duration
	}
	return v.Duration / v.Zoom
}

// Start returns the first visible second.
func (v Viewport) Start() float64 {
	return v.Pan
}

// End returns the last visible second.
func (v Viewport) End() float64 {
	return v.Pan + v.Visible()
}

// Contains reports whether t lies inside the visible window.
func (v Viewport) Contains(t float64) bool {
	return t >= v.Start() && t <= v.End()
}

// MaxPan returns the largest pan that keeps the window inside the buffer.
func (v Viewport) MaxPan() float64 {
	return math.Max(0, v.Duration-v.Visible())
}

// WithZoom sets the zoom level, clamped to [MinZoom, MaxZoom], and re-clamps pan.
// At the minimum zoom of 1 the whole buffer is visible and pan is 0.
func (v Viewport) WithZoom(zoom float64) Viewport {
	if math.IsNaN(zoom) {
		return v
	}
	v.Zoom = math.Min(math.Max(zoom, v.MinZoom), v.MaxZoom)
	if v.Zoom <= DefaultMinZoom {
		v.Pan = 0
		return v
	}
	return v.WithPan(v.Pan)
}

// ZoomBy multiplies the zoom level by factor.
func (v Viewport) ZoomBy(factor float64) Viewport {
	return v.WithZoom(v.Zoom * factor)
}

// ZoomIn applies one zoom-in button step.
func (v Viewport) ZoomIn() Viewport {
	return v.ZoomBy(ButtonFactor)
}

// ZoomOut applies one zoom-out button step.
func (v Viewport) ZoomOut() Viewport {
	return v.ZoomBy(1 / ButtonFactor)
}

// Wheel applies one wheel tick. Positive deltaY (wheel down) zooms out.
func (v Viewport) Wheel(deltaY float64) Viewport {
	switch {
	case deltaY > 0:
		return v.ZoomBy(WheelDownFactor)
	case deltaY < 0:
		return v.ZoomBy(WheelUpFactor)
	}
	return v
}

// WithPan sets the visible start, clamped to [0, MaxPan].
func (v Viewport) WithPan(pan float64) Viewport {
	if math.IsNaN(pan) {
		return v
	}
	v.Pan = math.Min(math.Max(pan, 0), v.MaxPan())
	return v
}

// Drag pans by a pixel delta measured on a canvas widthPx wide. dxPx is the
// previous pointer x minus the current one, so dragging left moves forward
// in time.
func (v Viewport) Drag(dxPx, widthPx float64) Viewport {
	if widthPx <= 0 {
		return v
	}
	return v.WithPan(v.Pan + dxPx/widthPx*v.Visible())
}

// TimeToPixel maps t seconds to an x coordinate on a canvas widthPx wide.
func (v Viewport) TimeToPixel(t, widthPx float64) float64 {
	visible := v.Visible()
	if visible <= 0 {
		return 0
	}
	return (t - v.Pan) / visible * widthPx
}

// PixelToTime maps an x coordinate back to seconds.
func (v Viewport) PixelToTime(x, widthPx float64) float64 {
	if widthPx <= 0 {
		return v.Pan
	}
	return v.Pan + x/widthPx*v.Visible()
}

// ForDuration returns a viewport over a new buffer, keeping the zoom limits
// and resetting zoom and pan.
func (v Viewport) ForDuration(duration float64) Viewport {
	next := New(duration)
	if v.MaxZoom > 0 {
		next = next.WithBounds(v.MinZoom, v.MaxZoom)
	}
	return next
}
