package waveform

import (
	"image/color"
	"math"
)

// Surface is a drawing target. Coordinates are canvas pixels with the origin
// at the top left.
type Surface interface {
	Clear(c color.Color)
	FillRect(x0, y0, x1, y1 float64, c color.Color)
	Line(x0, y0, x1, y1 float64, c color.Color)
	Text(x, y float64, s string, c color.Color)
}

// Palette holds the colors Paint uses.
type Palette struct {
	Background    color.Color
	WaveFill      color.Color
	WaveStroke    color.Color
	Axis          color.Color
	Marker        color.Color
	MarkerActive  color.Color
	Highlight     color.Color
	Playhead      color.Color
	Trim          color.Color
	Text          color.Color
	HeatmapAlpha  uint8
	LabelOffsetPx float64
}

// DefaultPalette is a dark theme.
var DefaultPalette = Palette{
	Background:    color.RGBA{0x12, 0x14, 0x1a, 0xff},
	WaveFill:      color.RGBA{0x1f, 0x5f, 0x8f, 0x80},
	WaveStroke:    color.RGBA{0x4f, 0xb3, 0xff, 0xff},
	Axis:          color.RGBA{0x44, 0x48, 0x52, 0xff},
	Marker:        color.RGBA{0x9a, 0xa0, 0xab, 0xff},
	MarkerActive:  color.RGBA{0xff, 0xb0, 0x20, 0xff},
	Highlight:     color.RGBA{0x40, 0x2c, 0x08, 0x40},
	Playhead:      color.RGBA{0xff, 0x40, 0x40, 0xff},
	Trim:          color.RGBA{0x40, 0xe0, 0x80, 0xff},
	Text:          color.RGBA{0xe0, 0xe4, 0xea, 0xff},
	HeatmapAlpha:  0xff,
	LabelOffsetPx: 3,
}

// axisHeight is the strip at the bottom reserved for tick labels.
const axisHeight = 16

// Paint draws f onto s with DefaultPalette. A nil surface or frame is a no-op.
func Paint(s Surface, f *Frame) {
	PaintWith(s, f, DefaultPalette)
}

// PaintWith draws f onto s with the given palette.
func PaintWith(s Surface, f *Frame, p Palette) {
	if s == nil || f == nil || f.Width <= 0 || f.Height <= 0 {
		return
	}

	w, h := float64(f.Width), float64(f.Height)
	s.Clear(p.Background)

	// highlights go under the signal
	for _, m := range f.Markers {
		if m.Highlight != nil {
			s.FillRect(m.Highlight.X0, 0, m.Highlight.X1, h, p.Highlight)
		}
	}

	switch f.Mode {
	case ModeSpectrogram:
		for _, b := range f.Bars {
			s.FillRect(b.X, b.Y, b.X+1, b.Y+b.Height, hueColor(b.Hue, p.HeatmapAlpha))
		}
	default:
		mid := f.Mid()
		s.Line(0, mid, w, mid, p.Axis)
		for i, pt := range f.Points {
			s.FillRect(pt.X, math.Min(pt.Y, mid), pt.X+1, math.Max(pt.Y, mid), p.WaveFill)
			if i > 0 {
				prev := f.Points[i-1]
				s.Line(prev.X, prev.Y, pt.X, pt.Y, p.WaveStroke)
			}
		}
	}

	for _, trim := range []*Line{f.TrimStart, f.TrimEnd} {
		if trim == nil {
			continue
		}
		s.Line(trim.X, 0, trim.X, h, p.Trim)
		s.Text(trim.X+p.LabelOffsetPx, 2*axisHeight, trim.Label, p.Trim)
	}

	if f.Playhead != nil {
		s.Line(f.Playhead.X, 0, f.Playhead.X, h, p.Playhead)
	}

	for _, m := range f.Markers {
		c := p.Marker
		if m.Selected {
			c = p.MarkerActive
			// doubled stroke marks the selected state
			s.Line(m.X+1, 0, m.X+1, h-axisHeight, c)
		}
		s.Line(m.X, 0, m.X, h-axisHeight, c)
		s.Text(m.X+p.LabelOffsetPx, axisHeight-4, m.Label, c)
	}

	for _, t := range f.Ticks {
		s.Line(t.X, h-axisHeight, t.X, h-axisHeight+4, p.Axis)
		s.Text(tickTextX(t.X, w), h-3, t.Label, p.Text)
	}
}

// tickTextX keeps tick labels on the canvas near the edges.
func tickTextX(x, width float64) float64 {
	const labelWidth = 42
	return math.Min(math.Max(x-labelWidth/2, 0), width-labelWidth)
}

// hueColor converts a hue in degrees to a fully saturated RGB color.
func hueColor(hue float64, alpha uint8) color.RGBA {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	sector := h / 60
	x := 1 - math.Abs(math.Mod(sector, 2)-1)

	var r, g, b float64
	switch {
	case sector < 1:
		r, g, b = 1, x, 0
	case sector < 2:
		r, g, b = x, 1, 0
	case sector < 3:
		r, g, b = 0, 1, x
	case sector < 4:
		r, g, b = 0, x, 1
	case sector < 5:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}

	scale := func(v float64) uint8 { return uint8(math.Round(v * float64(alpha))) }
	return color.RGBA{R: scale(r), G: scale(g), B: scale(b), A: alpha}
}
