// Package calendar implements the month-grid date selector.
package calendar

import (
	"fmt"
	"sync"
	"time"

	"salonbook/internal/schedule"
)

// State of the selector.
type State string

const (
	StateViewing     State = "viewing"
	StateDaySelected State = "day_selected"
)

// Availability answers whether a date key has at least one slot.
type Availability interface {
	HasAvailability(key string) bool
}

// Selector tracks the visible month and the selected date. The selection is
// independent of the visible month.
type Selector struct {
	mu        sync.Mutex
	month     time.Time
	selected  string
	weekStart time.Weekday
	now       func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithWeekStart sets the first column of the grid. Sunday by default.
func WithWeekStart(d time.Weekday) Option {
	return func(s *Selector) { s.weekStart = d }
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// New creates a selector viewing the current month.
func New(opts ...Option) *Selector {
	s := &Selector{weekStart: time.Sunday, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.month = firstOfMonth(s.now())
	return s
}

// State returns Viewing or DaySelected.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return StateViewing
	}
	return StateDaySelected
}

// Month returns the first day of the visible month.
func (s *Selector) Month() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// Selected returns the selected date key.
func (s *Selector) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// PrevMonth moves the visible month back. The selection is kept.
func (s *Selector) PrevMonth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = s.month.AddDate(0, -1, 0)
}

// NextMonth moves the visible month forward. The selection is kept.
func (s *Selector) NextMonth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = s.month.AddDate(0, 1, 0)
}

// ShowMonth jumps to the month of t.
func (s *Selector) ShowMonth(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = firstOfMonth(t)
}

// SelectDay selects a date key. It reports whether the selection changed,
// in which case any slot chosen for the previous date is stale.
func (s *Selector) SelectDay(key string) (bool, error) {
	if _, err := time.Parse(schedule.DateLayout, key); err != nil {
		return false, fmt.Errorf("select day %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == key {
		return false, nil
	}
	s.selected = key
	return true, nil
}

// ClearSelection returns to the Viewing state.
func (s *Selector) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Today returns today's date key.
func (s *Selector) Today() string {
	return schedule.DateKey(s.now())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
