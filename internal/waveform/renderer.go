package waveform

import (
	"fmt"
	"math"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/timeline"
	"github.com/tphakala/keyclip/internal/viewport"
)

// Trim holds optional trim markers. Either end may be unset.
type Trim struct {
	Start, End       float64
	HasStart, HasEnd bool
}

// Range returns the trim range and whether both ends are set.
func (t Trim) Range() (start, end float64, ok bool) {
	if !t.HasStart || !t.HasEnd {
		return 0, 0, false
	}
	return min(t.Start, t.End), max(t.Start, t.End), true
}

// Input is the complete state a frame is rendered from.
type Input struct {
	Buffer   *audiocore.SampleBuffer
	Events   []timeline.KeyEvent
	Viewport viewport.Viewport
	Playhead float64
	Trim     Trim
	Mode     Mode
	Width    int
	Height   int
}

// Render builds a frame. With no buffer or an empty canvas the frame carries
// only its size.
func Render(in Input) *Frame {
	frame := &Frame{Width: in.Width, Height: in.Height, Mode: in.Mode}
	if frame.Mode == "" {
		frame.Mode = ModeWaveform
	}
	if in.Buffer == nil || in.Width <= 0 || in.Height <= 0 {
		return frame
	}

	vp := in.Viewport
	width := float64(in.Width)
	frame.VisibleStart = vp.Start()
	frame.VisibleEnd = vp.End()

	switch frame.Mode {
	case ModeSpectrogram:
		frame.Bars = heatmapBars(in.Buffer, vp, in.Width, in.Height)
	default:
		frame.Points = waveformPoints(in.Buffer, vp, in.Width, in.Height)
	}

	if in.Trim.HasStart && vp.Contains(in.Trim.Start) {
		frame.TrimStart = &Line{
			X:     vp.TimeToPixel(in.Trim.Start, width),
			Time:  in.Trim.Start,
			Label: fmt.Sprintf("Start %.2fs", in.Trim.Start),
		}
	}
	if in.Trim.HasEnd && vp.Contains(in.Trim.End) {
		frame.TrimEnd = &Line{
			X:     vp.TimeToPixel(in.Trim.End, width),
			Time:  in.Trim.End,
			Label: fmt.Sprintf("End %.2fs", in.Trim.End),
		}
	}

	if vp.Contains(in.Playhead) {
		frame.Playhead = &Line{
			X:    vp.TimeToPixel(in.Playhead, width),
			Time: in.Playhead,
		}
	}

	for i := range in.Events {
		evt := &in.Events[i]
		if !vp.Contains(evt.Time) {
			continue
		}
		marker := Marker{
			EventID:  evt.ID,
			X:        vp.TimeToPixel(evt.Time, width),
			Label:    evt.KeyLabel(),
			Selected: evt.Selected,
		}
		if evt.Selected {
			marker.Highlight = &Span{
				X0: clampPixel(vp.TimeToPixel(evt.WindowStart, width), width),
				X1: clampPixel(vp.TimeToPixel(evt.WindowEnd, width), width),
			}
		}
		frame.Markers = append(frame.Markers, marker)
	}

	frame.Ticks = ticks(vp, width)
	return frame
}

// visibleSamples returns the first visible sample index and the visible
// sample count.
func visibleSamples(buf *audiocore.SampleBuffer, vp viewport.Viewport) (start, count int) {
	start = buf.SampleIndex(vp.Start())
	end := buf.SampleIndex(vp.End())
	return start, max(end-start, 0)
}

// columnSample picks the representative sample for column x by nearest-sample
// decimation.
func columnSample(buf *audiocore.SampleBuffer, start, count, x, width int) float32 {
	idx := start + int(math.Floor(float64(x)/float64(width)*float64(count)))
	return buf.At(idx)
}

func waveformPoints(buf *audiocore.SampleBuffer, vp viewport.Viewport, width, height int) []Point {
	start, count := visibleSamples(buf, vp)
	mid := float64(height) / 2

	points := make([]Point, width)
	for x := range width {
		amp := float64(columnSample(buf, start, count, x, width))
		points[x] = Point{X: float64(x), Y: mid - amp*mid}
	}
	return points
}

func heatmapBars(buf *audiocore.SampleBuffer, vp viewport.Viewport, width, height int) []Bar {
	start, count := visibleSamples(buf, vp)
	h := float64(height)

	bars := make([]Bar, width)
	for x := range width {
		a := math.Min(math.Abs(float64(columnSample(buf, start, count, x, width))), 1)
		bars[x] = Bar{
			X:      float64(x),
			Y:      h - a*h,
			Height: a * h,
			Hue:    (1 - a) * 240,
		}
	}
	return bars
}

func ticks(vp viewport.Viewport, width float64) []Tick {
	step := vp.Visible() / float64(TickCount-1)
	out := make([]Tick, TickCount)
	for i := range TickCount {
		t := vp.Start() + float64(i)*step
		out[i] = Tick{
			X:     vp.TimeToPixel(t, width),
			Time:  t,
			Label: fmt.Sprintf("%.2fs", t),
		}
	}
	return out
}

func clampPixel(x, width float64) float64 {
	return math.Min(math.Max(x, 0), width)
}
