package timeline

import "math"

// DefaultHitThreshold is the largest click distance, exclusive, that selects an event.
const DefaultHitThreshold = 0.1

// FindNearest returns the index of the event closest to clickTime, or -1 when
// the closest event is threshold seconds away or more. Ties go to the earlier
// event.
func FindNearest(events []KeyEvent, clickTime, threshold float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range events {
		if d := math.Abs(events[i].Time - clickTime); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || !(bestDist < threshold) {
		return -1
	}
	return best
}

// Nearest returns the event within the hit threshold of clickTime.
func (t *Timeline) Nearest(clickTime float64) (KeyEvent, bool) {
	i := FindNearest(t.events, clickTime, t.hitThreshold)
	if i < 0 {
		return KeyEvent{}, false
	}
	return t.events[i], true
}

// ToggleAt hit-tests clickTime and flips the selection of the matched event.
// It returns the event after the change; ok is false when nothing was hit and
// selection is unchanged.
func (t *Timeline) ToggleAt(clickTime float64) (evt KeyEvent, ok bool) {
	i := FindNearest(t.events, clickTime, t.hitThreshold)
	if i < 0 {
		return KeyEvent{}, false
	}
	t.events[i].Selected = !t.events[i].Selected
	return t.events[i], true
}
