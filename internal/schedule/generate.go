package schedule

import "sort"

// SlotStep is the spacing in minutes of generated slots.
const SlotStep = 30

const (
	firstBookableMinute = 6 * 60
	minutesPerDay       = 24 * 60
)

// GenerateSlots lists the half-hour slots of a period between 6:00 AM and
// 11:30 PM. Night slots after midnight are not generated.
func GenerateSlots(period Period) []Slot {
	var out []Slot
	for m := firstBookableMinute; m < minutesPerDay; m += SlotStep {
		c := Clock{Hour: m / 60, Minute: m % 60}
		if Classify(c.Hour) != period {
			continue
		}
		out = append(out, Slot{Label: c.String(), Clock: c})
	}
	return out
}

// NormalizeSlots parses labels and returns them in canonical "09:30 AM" form,
// de-duplicated by minute and sorted chronologically.
func NormalizeSlots(labels []string) ([]string, error) {
	seen := make(map[int]bool, len(labels))
	clocks := make([]Clock, 0, len(labels))
	for _, label := range labels {
		c, err := ParseClock(label)
		if err != nil {
			return nil, err
		}
		if seen[c.Minutes()] {
			continue
		}
		seen[c.Minutes()] = true
		clocks = append(clocks, c)
	}
	sort.Slice(clocks, func(i, j int) bool { return clocks[i].Minutes() < clocks[j].Minutes() })

	out := make([]string, 0, len(clocks))
	for _, c := range clocks {
		out = append(out, c.String())
	}
	return out, nil
}
