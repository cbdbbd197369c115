package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the layout of date keys.
const DateLayout = "2006-01-02"

// Slot is a bookable start time as offered by the backend.
type Slot struct {
	Label string `json:"label"`
	Clock Clock  `json:"-"`
}

// Period returns the bucket of the slot, always derived from its hour.
func (s Slot) Period() Period {
	return s.Clock.Period()
}

// NewSlot parses a backend time string into a slot.
func NewSlot(label string) (Slot, error) {
	clock, err := ParseClock(label)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Label: strings.TrimSpace(label), Clock: clock}, nil
}

// Day holds the slots offered on one date, grouped by period.
// A Day is never modified after it is built.
type Day struct {
	periods map[Period][]Slot
}

// NewDay groups slots by period keeping chronological order and dropping duplicates.
func NewDay(slots []Slot) Day {
	seen := make(map[int]bool, len(slots))
	uniq := make([]Slot, 0, len(slots))
	for _, s := range slots {
		m := s.Clock.Minutes()
		if seen[m] {
			continue
		}
		seen[m] = true
		uniq = append(uniq, s)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return uniq[i].Clock.Minutes() < uniq[j].Clock.Minutes()
	})

	periods := make(map[Period][]Slot)
	for _, s := range uniq {
		p := s.Period()
		periods[p] = append(periods[p], s)
	}
	return Day{periods: periods}
}

// Slots returns a copy of the slots in period p.
func (d Day) Slots(p Period) []Slot {
	src := d.periods[p]
	if len(src) == 0 {
		return nil
	}
	out := make([]Slot, len(src))
	copy(out, src)
	return out
}

// All returns every slot of the day in period order.
func (d Day) All() []Slot {
	var out []Slot
	for _, p := range Periods {
		out = append(out, d.periods[p]...)
	}
	return out
}

// Len returns the number of slots across all periods.
func (d Day) Len() int {
	n := 0
	for _, s := range d.periods {
		n += len(s)
	}
	return n
}

// Empty reports whether no period has any slot.
func (d Day) Empty() bool {
	return d.Len() == 0
}

// Find looks up a slot by its label or by its clock value.
func (d Day) Find(label string) (Slot, bool) {
	label = strings.TrimSpace(label)
	for _, s := range d.All() {
		if strings.EqualFold(s.Label, label) {
			return s, true
		}
	}
	clock, err := ParseClock(label)
	if err != nil {
		return Slot{}, false
	}
	for _, s := range d.periods[clock.Period()] {
		if s.Clock == clock {
			return s, true
		}
	}
	return Slot{}, false
}

// MarshalJSON renders the day as period -> labels with every period present.
func (d Day) MarshalJSON() ([]byte, error) {
	out := make(map[Period][]string, len(Periods))
	for _, p := range Periods {
		labels := make([]string, 0, len(d.periods[p]))
		for _, s := range d.periods[p] {
			labels = append(labels, s.Label)
		}
		out[p] = labels
	}
	return json.Marshal(out)
}

// Index maps date keys to the availability of that date.
type Index struct {
	days map[string]Day
}

// NewIndex builds an index from already grouped days. Empty days are dropped.
func NewIndex(days map[string]Day) Index {
	out := make(map[string]Day, len(days))
	for k, d := range days {
		if d.Empty() {
			continue
		}
		out[k] = d
	}
	return Index{days: out}
}

// Day returns the availability of a date key.
func (i Index) Day(key string) (Day, bool) {
	d, ok := i.days[key]
	if !ok || d.Empty() {
		return Day{}, false
	}
	return d, true
}

// HasAvailability reports whether any period of the date has a slot.
func (i Index) HasAvailability(key string) bool {
	_, ok := i.Day(key)
	return ok
}

// Dates returns the date keys with availability in ascending order.
func (i Index) Dates() []string {
	keys := make([]string, 0, len(i.days))
	for k := range i.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of dates with availability.
func (i Index) Len() int {
	return len(i.days)
}

// DateKey formats t as a date key in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate turns a backend date ("2025-02-16", "2025-02-16T00:00:00Z",
// "2025-02-16 10:00:00+03") into a date key. The calendar date is taken
// as written; time of day and zone are ignored.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(DateLayout) {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	key := raw[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, key); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return key, nil
}
