package timeline

import (
	"math"
)

// DefaultHalfWindow is the time captured on each side of a key press.
const DefaultHalfWindow = 0.5

// KeyEvent is one observed key-down with its derived extraction window.
type KeyEvent struct {
	ID          string   `json:"id"`
	Label       string   `json:"keyLabel"`
	Code        string   `json:"keyCode"`
	Group       KeyGroup `json:"keyGroup"`
	Display     string   `json:"displayLabel"`
	Time        float64  `json:"eventTime"`
	WindowStart float64  `json:"windowStart"`
	WindowEnd   float64  `json:"windowEnd"`
	Selected    bool     `json:"selected"`
}

// Window returns the [start, end] window for a press at t.
func Window(t, halfWindow float64) (start, end float64) {
	return math.Max(0, t-halfWindow), t + halfWindow
}

// Duration returns WindowEnd - WindowStart.
func (e *KeyEvent) Duration() float64 {
	return e.WindowEnd - e.WindowStart
}

// KeyLabel returns the logical key label as shown on markers and in export
// filenames. The space key reads "Space"; a press without a label falls back
// to its key code.
func (e *KeyEvent) KeyLabel() string {
	switch e.Label {
	case " ":
		return "Space"
	case "":
		return e.Code
	}
	return e.Label
}

// Contains reports whether the press time lies inside [start, end].
func (e *KeyEvent) Contains(start, end float64) bool {
	return e.Time >= start && e.Time <= end
}
