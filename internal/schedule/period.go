// Package schedule shapes raw stylist availability into per-day, per-period slot lists.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Period is an hour-range bucket used to group slots for display.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// Periods lists every period in display order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}

var periodTitles = map[Period]string{
	PeriodMorning:   "Morning",
	PeriodAfternoon: "Afternoon",
	PeriodEvening:   "Evening",
	PeriodNight:     "Night",
}

var periodRanges = map[Period]string{
	PeriodMorning:   "6:00 AM - 11:30 AM",
	PeriodAfternoon: "12:00 PM - 4:30 PM",
	PeriodEvening:   "5:00 PM - 8:30 PM",
	PeriodNight:     "9:00 PM - 5:30 AM",
}

// Classify returns the period for an hour of the day (0-23).
// Hours before 6 belong to the night bucket.
func Classify(hour int) Period {
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 17:
		return PeriodAfternoon
	case hour >= 17 && hour < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Title returns the capitalized period name.
func (p Period) Title() string {
	if t, ok := periodTitles[p]; ok {
		return t
	}
	return string(p)
}

// Range returns a human readable clock range for the period.
func (p Period) Range() string {
	return periodRanges[p]
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	_, ok := periodTitles[p]
	return ok
}

// ErrInvalidClock is returned when a time string cannot be parsed.
var ErrInvalidClock = errors.New("invalid clock time")

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "09:30 AM", "9:30PM", "14:00" and "14:00:00".
func ParseClock(s string) (Clock, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return Clock{}, fmt.Errorf("%w: empty", ErrInvalidClock)
	}

	meridian := ""
	switch {
	case strings.HasSuffix(raw, "AM"):
		meridian = "AM"
	case strings.HasSuffix(raw, "PM"):
		meridian = "PM"
	}
	if meridian != "" {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, meridian))
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	if meridian != "" {
		if hour < 1 || hour > 12 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		switch {
		case meridian == "AM" && hour == 12:
			hour = 0
		case meridian == "PM" && hour != 12:
			hour += 12
		}
	} else if hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// Minutes returns the minute of the day.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Period returns the bucket derived from the hour.
func (c Clock) Period() Period {
	return Classify(c.Hour)
}

// String formats the clock as "09:30 AM".
func (c Clock) String() string {
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	ampm := "AM"
	if c.Hour >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h, c.Minute, ampm)
}
