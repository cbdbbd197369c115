// Package slots implements the time slot picker for a selected date.
package slots

import (
	"errors"
	"fmt"
	"sync"

	"salonbook/internal/schedule"
)

var (
	ErrNoDate          = errors.New("no date selected")
	ErrSlotUnavailable = errors.New("slot is not available")
)

// Chip is one selectable slot.
type Chip struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Section groups the chips of one period. Empty sections are not interactive.
type Section struct {
	Period      schedule.Period `json:"period"`
	Title       string          `json:"title"`
	Range       string          `json:"range"`
	Chips       []Chip          `json:"chips"`
	Interactive bool            `json:"interactive"`
}

// NoAvailability reports whether the section has nothing to pick.
func (s Section) NoAvailability() bool {
	return len(s.Chips) == 0
}

// Picker holds the slots of the selected date and at most one chosen slot.
type Picker struct {
	mu       sync.Mutex
	date     string
	day      schedule.Day
	selected *schedule.Slot
}

// NewPicker creates a picker with no date.
func NewPicker() *Picker {
	return &Picker{}
}

// Show switches the picker to a date. The chosen slot survives only when the
// date is unchanged and the slot is still offered.
func (p *Picker) Show(date string, day schedule.Day, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !ok {
		day = schedule.Day{}
	}
	if date != p.date {
		p.selected = nil
	} else if p.selected != nil {
		if _, still := day.Find(p.selected.Label); !still {
			p.selected = nil
		}
	}
	p.date = date
	p.day = day
}

// Date returns the date the picker shows.
func (p *Picker) Date() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

// Sections returns one section per period in display order.
func (p *Picker) Sections() []Section {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Section, 0, len(schedule.Periods))
	for _, period := range schedule.Periods {
		sec := Section{
			Period: period,
			Title:  period.Title(),
			Range:  period.Range(),
			Chips:  []Chip{},
		}
		for _, s := range p.day.Slots(period) {
			sec.Chips = append(sec.Chips, Chip{
				Label:    s.Label,
				Selected: p.selected != nil && p.selected.Clock == s.Clock,
			})
		}
		sec.Interactive = len(sec.Chips) > 0
		out = append(out, sec)
	}
	return out
}

// Section returns the section of a single period.
func (p *Picker) Section(period schedule.Period) (Section, bool) {
	for _, s := range p.Sections() {
		if s.Period == period {
			return s, true
		}
	}
	return Section{}, false
}

// Pick chooses a slot by label. Picking the chosen slot again keeps it.
func (p *Picker) Pick(label string) (schedule.Slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.date == "" {
		return schedule.Slot{}, ErrNoDate
	}
	slot, ok := p.day.Find(label)
	if !ok {
		return schedule.Slot{}, fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, label, p.date)
	}
	p.selected = &slot
	return slot, nil
}

// Selected returns the chosen slot.
func (p *Picker) Selected() (schedule.Slot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return schedule.Slot{}, false
	}
	return *p.selected, true
}

// ClearSlot drops the chosen slot and keeps the date.
func (p *Picker) ClearSlot() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Reset drops the date and the slot.
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.date = ""
	p.day = schedule.Day{}
	p.selected = nil
}

// CanConfirm reports whether both a date and a slot are chosen.
func (p *Picker) CanConfirm() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date != "" && p.selected != nil
}
