package calendar

import (
	"fmt"
	"time"
)

// Cell is one square of the month grid. Blank cells have Day == 0.
type Cell struct {
	Day             int    `json:"day"`
	Date            string `json:"date,omitempty"`
	Today           bool   `json:"today"`
	Selected        bool   `json:"selected"`
	HasAvailability bool   `json:"has_availability"`
}

// Blank reports whether the cell is padding.
func (c Cell) Blank() bool {
	return c.Day == 0
}

// Month is a rendered month grid.
type Month struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Title    string     `json:"title"`
	Weekdays []string   `json:"weekdays"`
	Weeks    [][]Cell   `json:"weeks"`
	Selected string     `json:"selected,omitempty"`
	State    State      `json:"state"`
}

// Grid renders the visible month. avail may be nil, in which case no day is marked.
func (s *Selector) Grid(avail Availability) Month {
	s.mu.Lock()
	month := s.month
	selected := s.selected
	weekStart := s.weekStart
	s.mu.Unlock()

	today := s.Today()
	state := StateViewing
	if selected != "" {
		state = StateDaySelected
	}

	out := Month{
		Year:     month.Year(),
		Month:    month.Month(),
		Title:    fmt.Sprintf("%s %d", month.Month(), month.Year()),
		Weekdays: weekdayNames(weekStart),
		Selected: selected,
		State:    state,
	}

	offset := (int(month.Weekday()) - int(weekStart) + 7) % 7
	cells := make([]Cell, offset, offset+31)

	for day := 1; day <= daysIn(month); day++ {
		key := fmt.Sprintf("%04d-%02d-%02d", month.Year(), month.Month(), day)
		cells = append(cells, Cell{
			Day:             day,
			Date:            key,
			Today:           key == today,
			Selected:        key == selected,
			HasAvailability: avail != nil && avail.HasAvailability(key),
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{})
	}

	for i := 0; i < len(cells); i += 7 {
		out.Weeks = append(out.Weeks, cells[i:i+7])
	}
	return out
}

func weekdayNames(start time.Weekday) []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday((int(start) + i) % 7).String()[:3]
	}
	return names
}
