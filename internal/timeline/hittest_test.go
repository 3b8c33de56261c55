package timeline

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsAt(times ...float64) []KeyEvent {
	events := make([]KeyEvent, len(times))
	for i, at := range times {
		events[i] = KeyEvent{Time: at}
	}
	return events
}

func TestFindNearest(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
		click float64
		want  int
	}{
		{"picks closer of two", []float64{4.85, 5.05}, 5.00, 1},
		{"exact hit", []float64{1, 2, 3}, 2, 1},
		{"too far", []float64{1, 2}, 1.5, -1},
		{"beyond threshold", []float64{1.0}, 1.25, -1},
		{"just inside threshold", []float64{1.0}, 1.09, 0},
		{"tie goes to first", []float64{0.95, 1.05}, 1.0, 0},
		{"empty", nil, 1.0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindNearest(eventsAt(tt.times...), tt.click, DefaultHitThreshold))
		})
	}
}

func TestFindNearestExactThreshold(t *testing.T) {
	// distance equal to the threshold does not select
	assert.Equal(t, -1, FindNearest(eventsAt(0), 0.5, 0.5))
	assert.Equal(t, 0, FindNearest(eventsAt(0), 0.49, 0.5))
}

// A click selects e iff e minimizes the distance and that minimum is below the threshold.
func TestHitThresholdProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for range 500 {
		n := 1 + rng.IntN(8)
		times := make([]float64, n)
		at := 0.0
		for i := range times {
			at += rng.Float64() * 0.5
			times[i] = at
		}
		click := rng.Float64() * (at + 0.5)

		minDist := math.Inf(1)
		for _, tm := range times {
			minDist = math.Min(minDist, math.Abs(tm-click))
		}

		got := FindNearest(eventsAt(times...), click, DefaultHitThreshold)
		if minDist < DefaultHitThreshold {
			require.GreaterOrEqual(t, got, 0)
			assert.InDelta(t, minDist, math.Abs(times[got]-click), 0)
			for j := range got {
				assert.Greater(t, math.Abs(times[j]-click), minDist, "an earlier event at the same distance must win")
			}
		} else {
			assert.Equal(t, -1, got)
		}
	}
}

func TestToggleAtSelectsNearestEvent(t *testing.T) {
	tl := New(sequentialIDs())
	mustAppend(t, tl, "KeyA", "a", 4.85)
	mustAppend(t, tl, "KeyB", "b", 5.05)

	evt, ok := tl.ToggleAt(5.00)
	require.True(t, ok)
	assert.Equal(t, "evt-2", evt.ID)
	assert.True(t, evt.Selected)
	assert.Equal(t, []string{"evt-2"}, tl.SelectedIDs())

	evt, ok = tl.ToggleAt(5.04)
	require.True(t, ok)
	assert.False(t, evt.Selected)
	assert.Empty(t, tl.SelectedIDs())
}

func TestToggleAtMissLeavesSelection(t *testing.T) {
	tl := New(sequentialIDs())
	mustAppend(t, tl, "KeyA", "a", 1.0)
	require.NoError(t, tl.SetSelected("evt-1", true))

	_, ok := tl.ToggleAt(3.0)
	assert.False(t, ok)
	assert.Equal(t, []string{"evt-1"}, tl.SelectedIDs())
}

func TestNearestUsesConfiguredThreshold(t *testing.T) {
	tl := New(WithHitThreshold(0.5))
	mustAppend(t, tl, "KeyA", "a", 1.0)

	_, ok := tl.Nearest(1.3)
	assert.True(t, ok)
	_, ok = tl.Nearest(1.6)
	assert.False(t, ok)
}
