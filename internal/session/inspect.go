package session

import (
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability/metrics"
	"github.com/tphakala/keyclip/internal/timeline"
	"github.com/tphakala/keyclip/internal/viewport"
	"github.com/tphakala/keyclip/internal/waveform"
)

// Viewport returns the current viewport.
func (s *Session) Viewport() viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Playhead returns the last known playback position in seconds.
func (s *Session) Playhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead
}

// Playing reports whether a playhead loop is running.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Trim returns the current trim markers.
func (s *Session) Trim() waveform.Trim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trim
}

// Mode returns the render mode.
func (s *Session) Mode() waveform.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SelectedCount returns the number of selected events.
func (s *Session) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.SelectedCount()
}

// Click hit-tests a click at pixel x on a canvas width pixels wide and
// toggles the nearest event. It reports the toggled event, or false when
// nothing was close enough or no take is loaded.
func (s *Session) Click(x, width float64) (timeline.KeyEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return timeline.KeyEvent{}, false
	}
	return s.toggleAt(s.viewport.PixelToTime(x, width))
}

// ToggleAt toggles the event nearest to t seconds.
func (s *Session) ToggleAt(t float64) (timeline.KeyEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return timeline.KeyEvent{}, false
	}
	return s.toggleAt(t)
}

func (s *Session) toggleAt(t float64) (timeline.KeyEvent, bool) {
	evt, ok := s.timeline.ToggleAt(t)
	if !ok {
		s.metrics.RecordOperation(metrics.OpToggle, metrics.StatusMiss)
		return evt, false
	}
	s.touch()
	s.metrics.RecordOperation(metrics.OpToggle, metrics.StatusSuccess)
	s.metrics.RecordToggle(evt.Selected, s.timeline.SelectedCount())
	s.log.Debug("selection toggled",
		logger.String("event_id", evt.ID),
		logger.Float64("at", evt.Time),
		logger.Bool("selected", evt.Selected))
	return evt, true
}

// SelectAll selects every event.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.SelectAll()
	s.touch()
	s.metrics.SetSelected(s.timeline.SelectedCount())
}

// ClearSelection deselects every event.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.ClearSelection()
	s.touch()
	s.metrics.SetSelected(0)
}

// Wheel zooms by one mouse wheel step.
func (s *Session) Wheel(deltaY float64) {
	s.updateViewport(func(vp viewport.Viewport) viewport.Viewport { return vp.Wheel(deltaY) })
}

// ZoomIn zooms in by one button step.
func (s *Session) ZoomIn() {
	s.updateViewport(viewport.Viewport.ZoomIn)
}

// ZoomOut zooms out by one button step.
func (s *Session) ZoomOut() {
	s.updateViewport(viewport.Viewport.ZoomOut)
}

// SetZoom sets an absolute zoom level, clamped to the configured bounds.
func (s *Session) SetZoom(zoom float64) {
	s.updateViewport(func(vp viewport.Viewport) viewport.Viewport { return vp.WithZoom(zoom) })
}

// SetPan sets the visible start in seconds, clamped to the valid range.
func (s *Session) SetPan(pan float64) {
	s.updateViewport(func(vp viewport.Viewport) viewport.Viewport { return vp.WithPan(pan) })
}

// Drag pans by a pointer movement of dxPx pixels on a canvas width pixels wide.
func (s *Session) Drag(dxPx, width float64) {
	s.updateViewport(func(vp viewport.Viewport) viewport.Viewport { return vp.Drag(dxPx, width) })
}

func (s *Session) updateViewport(fn func(viewport.Viewport) viewport.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.viewport)
	if next != s.viewport {
		s.viewport = next
		s.touch()
	}
}

// SetTrim sets both trim markers. The order of start and end does not matter.
func (s *Session) SetTrim(start, end float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTrimTime(start); err != nil {
		return err
	}
	if err := s.checkTrimTime(end); err != nil {
		return err
	}
	s.trim = waveform.Trim{Start: start, End: end, HasStart: true, HasEnd: true}
	s.touch()
	return nil
}

// SetTrimStart sets the start marker, leaving the end marker as it is.
func (s *Session) SetTrimStart(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTrimTime(t); err != nil {
		return err
	}
	s.trim.Start, s.trim.HasStart = t, true
	s.touch()
	return nil
}

// SetTrimEnd sets the end marker, leaving the start marker as it is.
func (s *Session) SetTrimEnd(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTrimTime(t); err != nil {
		return err
	}
	s.trim.End, s.trim.HasEnd = t, true
	s.touch()
	return nil
}

// ClearTrim removes both trim markers.
func (s *Session) ClearTrim() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trim = waveform.Trim{}
	s.touch()
}

func (s *Session) checkTrimTime(t float64) error {
	if s.buffer == nil {
		return errors.Newf("no audio loaded").
			Component(componentSession).
			Category(errors.CategoryState).
			Context("operation", "set_trim").
			Build()
	}
	if t < 0 || t > s.buffer.Duration() {
		return errors.Newf("trim time %.3fs outside audio of %.3fs", t, s.buffer.Duration()).
			Component(componentSession).
			Category(errors.CategoryValidation).
			Context("operation", "set_trim").
			Build()
	}
	return nil
}

// SetMode switches between waveform and spectrogram rendering.
func (s *Session) SetMode(mode waveform.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == "" || mode == s.mode {
		return
	}
	s.mode = mode
	s.touch()
}

// Render returns the frame for the current state at the given canvas size.
// Frames are cached until the state changes and must not be modified.
func (s *Session) Render(width, height int) *waveform.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%d:%dx%d", s.revision, width, height)
	if cached, found := s.frames.Get(key); found {
		if frame, ok := cached.(*waveform.Frame); ok {
			return frame
		}
	}
	s.frames.DeleteExpired()

	start := s.now()
	frame := waveform.Render(waveform.Input{
		Buffer:   s.buffer,
		Events:   s.timeline.Events(),
		Viewport: s.viewport,
		Playhead: s.playhead,
		Trim:     s.trim,
		Mode:     s.mode,
		Width:    width,
		Height:   height,
	})
	s.metrics.RecordDuration(metrics.OpRender, s.now().Sub(start).Seconds())
	s.metrics.RecordOperation(metrics.OpRender, metrics.StatusSuccess)

	s.frames.Set(key, frame, cache.DefaultExpiration)
	return frame
}
