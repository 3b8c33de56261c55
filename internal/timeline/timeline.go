// Package timeline keeps the ordered, selectable list of key events recorded
// alongside an audio take, and answers the time queries rendering, selection
// and export need.
//
// A Timeline is not safe for concurrent use; the session serializes access.
package timeline

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/tphakala/keyclip/internal/errors"
)

const componentTimeline = "timeline"

// Timeline is an append-ordered sequence of KeyEvents. Event times never
// decrease, so insertion order is temporal order.
type Timeline struct {
	events       []KeyEvent
	index        map[string]int // id -> position in events
	halfWindow   float64
	hitThreshold float64
	clamped      bool
	newID        func() string
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithHalfWindow overrides the extraction half window in seconds.
func WithHalfWindow(seconds float64) Option {
	return func(t *Timeline) {
		if seconds > 0 {
			t.halfWindow = seconds
		}
	}
}

// WithHitThreshold overrides the click distance that still selects an event.
func WithHitThreshold(seconds float64) Option {
	return func(t *Timeline) {
		if seconds > 0 {
			t.hitThreshold = seconds
		}
	}
}

// WithIDGenerator replaces the uuid-based event id source.
func WithIDGenerator(gen func() string) Option {
	return func(t *Timeline) {
		if gen != nil {
			t.newID = gen
		}
	}
}

// New returns an empty timeline.
func New(opts ...Option) *Timeline {
	t := &Timeline{
		index:        make(map[string]int),
		halfWindow:   DefaultHalfWindow,
		hitThreshold: DefaultHitThreshold,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append records a key press at time at (seconds since recording start).
// Presses must arrive in time order and cannot be added once the timeline
// has been clamped to a finalized buffer.
func (t *Timeline) Append(code, label string, at float64) (KeyEvent, error) {
	if t.clamped {
		return KeyEvent{}, errors.Newf("timeline is finalized").
			Component(componentTimeline).
			Category(errors.CategoryState).
			Context("operation", "append_event").
			Build()
	}
	if at < 0 || math.IsNaN(at) || math.IsInf(at, 0) {
		return KeyEvent{}, errors.Newf("invalid event time %v", at).
			Component(componentTimeline).
			Category(errors.CategoryValidation).
			Context("operation", "append_event").
			Build()
	}
	if n := len(t.events); n > 0 && at < t.events[n-1].Time {
		return KeyEvent{}, errors.Newf("event time %.3f precedes last event at %.3f", at, t.events[n-1].Time).
			Component(componentTimeline).
			Category(errors.CategoryValidation).
			Context("operation", "append_event").
			Build()
	}

	info := NormalizeKey(code, label)
	start, end := Window(at, t.halfWindow)
	evt := KeyEvent{
		ID:          t.newID(),
		Label:       label,
		Code:        code,
		Group:       info.Group,
		Display:     info.Display,
		Time:        at,
		WindowStart: start,
		WindowEnd:   end,
	}

	t.index[evt.ID] = len(t.events)
	t.events = append(t.events, evt)
	return evt, nil
}

// Clamp limits every window end to duration. It applies once; later calls
// return false and change nothing. Events pressed after duration cannot be
// represented in the audio and are dropped; the number dropped is returned.
func (t *Timeline) Clamp(duration float64) (applied bool, dropped int) {
	if t.clamped {
		return false, 0
	}
	t.clamped = true

	kept := t.events[:0]
	for i := range t.events {
		evt := t.events[i]
		if evt.Time > duration {
			dropped++
			continue
		}
		evt.WindowEnd = math.Min(evt.WindowEnd, duration)
		kept = append(kept, evt)
	}
	t.events = kept
	t.reindex()

	return true, dropped
}

// Clamped reports whether Clamp has been applied.
func (t *Timeline) Clamped() bool {
	return t.clamped
}

// Reset discards all events and selection, ready for a new take.
func (t *Timeline) Reset() {
	t.events = nil
	t.clamped = false
	clear(t.index)
}

func (t *Timeline) reindex() {
	clear(t.index)
	for i := range t.events {
		t.index[t.events[i].ID] = i
	}
}

// Len returns the number of events.
func (t *Timeline) Len() int {
	return len(t.events)
}

// HalfWindow returns the configured half window in seconds.
func (t *Timeline) HalfWindow() float64 {
	return t.halfWindow
}

// Events returns a copy of all events in time order.
func (t *Timeline) Events() []KeyEvent {
	return slices.Clone(t.events)
}

// Get returns the event with the given id.
func (t *Timeline) Get(id string) (KeyEvent, bool) {
	i, ok := t.index[id]
	if !ok {
		return KeyEvent{}, false
	}
	return t.events[i], true
}

// InRange returns events whose press time lies in [start, end], in order.
func (t *Timeline) InRange(start, end float64) []KeyEvent {
	lo, _ := slices.BinarySearchFunc(t.events, start, func(e KeyEvent, target float64) int {
		switch {
		case e.Time < target:
			return -1
		case e.Time > target:
			return 1
		}
		return 0
	})

	var out []KeyEvent
	for i := lo; i < len(t.events) && t.events[i].Time <= end; i++ {
		out = append(out, t.events[i])
	}
	return out
}
