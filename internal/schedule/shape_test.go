package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Label)
	}
	return out
}

func TestShapeGroupsByPeriod(t *testing.T) {
	idx, errs := Shape([]Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"09:00 AM", "09:30 AM", "01:00 PM"}},
	})
	require.Empty(t, errs)

	day, ok := idx.Day("2025-02-16")
	require.True(t, ok)
	assert.Equal(t, []string{"09:00 AM", "09:30 AM"}, labels(day.Slots(PeriodMorning)))
	assert.Equal(t, []string{"01:00 PM"}, labels(day.Slots(PeriodAfternoon)))
	assert.Empty(t, day.Slots(PeriodEvening))
	assert.Empty(t, day.Slots(PeriodNight))
	assert.True(t, idx.HasAvailability("2025-02-16"))
	assert.False(t, idx.HasAvailability("2025-02-17"))
}

func TestShapeMergesDuplicateDates(t *testing.T) {
	idx, errs := Shape([]Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"01:00 PM", "09:00 AM"}},
		{ID: 2, Date: "2025-02-16T00:00:00.000Z", TimeSlots: []string{"13:00", "06:30 PM"}},
	})
	require.Empty(t, errs)
	require.Equal(t, 1, idx.Len())

	day, ok := idx.Day("2025-02-16")
	require.True(t, ok)
	assert.Equal(t, []string{"09:00 AM"}, labels(day.Slots(PeriodMorning)))
	assert.Equal(t, []string{"01:00 PM"}, labels(day.Slots(PeriodAfternoon)))
	assert.Equal(t, []string{"06:30 PM"}, labels(day.Slots(PeriodEvening)))
	assert.Equal(t, 3, day.Len())
}

func TestShapeSkipsMalformedEntries(t *testing.T) {
	idx, errs := Shape([]Record{
		{ID: 1, Date: "not-a-date", TimeSlots: []string{"09:00 AM"}},
		{ID: 2, Date: "2025-02-17", TimeSlots: []string{"whenever", "10:00 AM"}},
		{ID: 3, Date: "2025-02-18", TimeSlots: []string{"nope"}},
	})
	assert.Len(t, errs, 3)
	assert.True(t, idx.HasAvailability("2025-02-17"))
	assert.False(t, idx.HasAvailability("2025-02-18"))
	assert.Equal(t, []string{"2025-02-17"}, idx.Dates())
}

func TestEmptyDayEqualsAbsent(t *testing.T) {
	idx, errs := Shape([]Record{{ID: 1, Date: "2025-02-20", TimeSlots: nil}})
	require.Empty(t, errs)

	_, ok := idx.Day("2025-02-20")
	assert.False(t, ok)
	assert.False(t, idx.HasAvailability("2025-02-20"))
	assert.Zero(t, idx.Len())
}

func TestRecordUnmarshalAcceptsBothCasings(t *testing.T) {
	var snake, camel Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"stylist_id":4,"date":"2025-02-16","time_slots":["09:00 AM"]}`), &snake))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"stylistId":4,"date":"2025-02-16","timeSlots":["09:00 AM"]}`), &camel))

	assert.Equal(t, snake, camel)
	assert.Equal(t, int64(4), camel.StylistID)
	assert.Equal(t, []string{"09:00 AM"}, camel.TimeSlots)
}

func TestDayFind(t *testing.T) {
	day := NewDay([]Slot{mustSlot(t, "09:30 AM"), mustSlot(t, "02:00 PM")})

	s, ok := day.Find("09:30 am")
	require.True(t, ok)
	assert.Equal(t, "09:30 AM", s.Label)

	s, ok = day.Find("14:00")
	require.True(t, ok)
	assert.Equal(t, "02:00 PM", s.Label)

	_, ok = day.Find("06:00 PM")
	assert.False(t, ok)
}

func TestDayMarshalJSON(t *testing.T) {
	day := NewDay([]Slot{mustSlot(t, "09:30 AM")})
	data, err := json.Marshal(day)
	require.NoError(t, err)
	assert.JSONEq(t, `{"morning":["09:30 AM"],"afternoon":[],"evening":[],"night":[]}`, string(data))
}

func TestNormalizeDate(t *testing.T) {
	key, err := NormalizeDate("2025-02-16 23:30:00+03")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-16", key)

	_, err = NormalizeDate("2025-13-01")
	assert.Error(t, err)
}

func TestValidateSlots(t *testing.T) {
	got, err := ValidateSlots([]string{"09:00 AM", "09:00 PM"})
	require.NoError(t, err)
	assert.Equal(t, PeriodMorning, got["09:00 AM"])
	assert.Equal(t, PeriodNight, got["09:00 PM"])

	_, err = ValidateSlots([]string{"later"})
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func mustSlot(t *testing.T, label string) Slot {
	t.Helper()
	s, err := NewSlot(label)
	require.NoError(t, err)
	return s
}
