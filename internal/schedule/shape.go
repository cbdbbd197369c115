package schedule

import (
	"encoding/json"
	"fmt"
)

// Record is one availability entry as returned by the scheduling backend.
type Record struct {
	ID        int64    `json:"id"`
	StylistID int64    `json:"stylist_id,omitempty"`
	Date      string   `json:"date"`
	TimeSlots []string `json:"time_slots"`
}

// UnmarshalJSON accepts both snake_case and camelCase field names.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             int64    `json:"id"`
		StylistID      int64    `json:"stylist_id"`
		StylistIDCamel int64    `json:"stylistId"`
		Date           string   `json:"date"`
		TimeSlots      []string `json:"time_slots"`
		TimeSlotsCamel []string `json:"timeSlots"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = raw.ID
	r.Date = raw.Date
	r.StylistID = raw.StylistID
	if r.StylistID == 0 {
		r.StylistID = raw.StylistIDCamel
	}
	r.TimeSlots = raw.TimeSlots
	if r.TimeSlots == nil {
		r.TimeSlots = raw.TimeSlotsCamel
	}
	return nil
}

// Shape groups records into an Index. Records for the same date are merged.
// Entries with an unreadable date or time are skipped and reported.
func Shape(records []Record) (Index, []error) {
	var errs []error
	byDate := make(map[string][]Slot)
	order := make([]string, 0, len(records))

	for _, rec := range records {
		key, err := NormalizeDate(rec.Date)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", rec.ID, err))
			continue
		}
		if _, ok := byDate[key]; !ok {
			order = append(order, key)
			byDate[key] = nil
		}
		for _, label := range rec.TimeSlots {
			slot, err := NewSlot(label)
			if err != nil {
				errs = append(errs, fmt.Errorf("record %d (%s): %w", rec.ID, key, err))
				continue
			}
			byDate[key] = append(byDate[key], slot)
		}
	}

	days := make(map[string]Day, len(order))
	for _, key := range order {
		days[key] = NewDay(byDate[key])
	}
	return NewIndex(days), errs
}

// ValidateSlots checks that every time string parses and returns the period of each.
func ValidateSlots(labels []string) (map[string]Period, error) {
	out := make(map[string]Period, len(labels))
	for _, label := range labels {
		slot, err := NewSlot(label)
		if err != nil {
			return nil, err
		}
		out[slot.Label] = slot.Period()
	}
	return out, nil
}
