package timeline

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/tphakala/keyclip/internal/errors"
)

// Record is the on-disk form of one key press in events.json.
type Record struct {
	KeyLabel  string  `json:"keyLabel"`
	KeyCode   string  `json:"keyCode"`
	EventTime float64 `json:"eventTime"`
}

// ReadRecords decodes an events.json document.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.New(fmt.Errorf("decode events document: %w", err)).
			Component(componentTimeline).
			Category(errors.CategoryValidation).
			Build()
	}
	return records, nil
}

// WriteRecords encodes the timeline's events as an events.json document.
func (t *Timeline) WriteRecords(w io.Writer) error {
	records := make([]Record, 0, len(t.events))
	for i := range t.events {
		records = append(records, Record{
			KeyLabel:  t.events[i].Label,
			KeyCode:   t.events[i].Code,
			EventTime: t.events[i].Time,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// AppendRecords appends records in time order. The input is sorted stably
// first, so presses logged out of order by an external tool still load.
func (t *Timeline) AppendRecords(records []Record) error {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return cmp.Compare(a.EventTime, b.EventTime)
	})

	for _, rec := range sorted {
		if _, err := t.Append(rec.KeyCode, rec.KeyLabel, rec.EventTime); err != nil {
			return err
		}
	}
	return nil
}
