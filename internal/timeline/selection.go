package timeline

import (
	"github.com/tphakala/keyclip/internal/errors"
)

// The selected flag on each event is the only selection state; the id set
// is derived from it, so the two can never disagree.

// Toggle flips the selection of the event with the given id and returns the
// new state.
func (t *Timeline) Toggle(id string) (bool, error) {
	i, ok := t.index[id]
	if !ok {
		return false, unknownEventError(id, "toggle_selection")
	}
	t.events[i].Selected = !t.events[i].Selected
	return t.events[i].Selected, nil
}

// SetSelected sets the selection of one event.
func (t *Timeline) SetSelected(id string, selected bool) error {
	i, ok := t.index[id]
	if !ok {
		return unknownEventError(id, "set_selection")
	}
	t.events[i].Selected = selected
	return nil
}

// SelectAll marks every event selected.
func (t *Timeline) SelectAll() {
	for i := range t.events {
		t.events[i].Selected = true
	}
}

// ClearSelection unselects every event.
func (t *Timeline) ClearSelection() {
	for i := range t.events {
		t.events[i].Selected = false
	}
}

// SelectedIDs returns the ids of selected events in time order.
func (t *Timeline) SelectedIDs() []string {
	var ids []string
	for i := range t.events {
		if t.events[i].Selected {
			ids = append(ids, t.events[i].ID)
		}
	}
	return ids
}

// Selected returns copies of the selected events in time order.
func (t *Timeline) Selected() []KeyEvent {
	var out []KeyEvent
	for i := range t.events {
		if t.events[i].Selected {
			out = append(out, t.events[i])
		}
	}
	return out
}

// SelectedCount returns the number of selected events.
func (t *Timeline) SelectedCount() int {
	n := 0
	for i := range t.events {
		if t.events[i].Selected {
			n++
		}
	}
	return n
}

func unknownEventError(id, operation string) error {
	return errors.Newf("unknown event id %q", id).
		Component(componentTimeline).
		Category(errors.CategoryValidation).
		Context("operation", operation).
		Build()
}
