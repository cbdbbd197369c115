package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/schedule"
)

func feb16(t *testing.T) schedule.Index {
	t.Helper()
	idx, errs := schedule.Shape([]schedule.Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM", "09:30 AM", "12:30 PM"}},
		{ID: 2, Date: "2025-02-17", TimeSlots: []string{"10:00 AM"}},
	})
	require.Empty(t, errs)
	return idx
}

func show(p *Picker, idx schedule.Index, date string) {
	day, ok := idx.Day(date)
	p.Show(date, day, ok)
}

func TestEmptyEveningIsNotInteractive(t *testing.T) {
	idx := feb16(t)
	p := NewPicker()
	show(p, idx, "2025-02-16")

	sections := p.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, schedule.PeriodMorning, sections[0].Period)
	assert.Equal(t, schedule.PeriodNight, sections[3].Period)

	evening, ok := p.Section(schedule.PeriodEvening)
	require.True(t, ok)
	assert.True(t, evening.NoAvailability())
	assert.False(t, evening.Interactive)

	morning, _ := p.Section(schedule.PeriodMorning)
	assert.True(t, morning.Interactive)
	assert.Len(t, morning.Chips, 2)

	assert.False(t, p.CanConfirm())

	_, err := p.Pick("06:00 PM")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.False(t, p.CanConfirm())

	slot, err := p.Pick("12:30 PM")
	require.NoError(t, err)
	assert.Equal(t, schedule.PeriodAfternoon, slot.Period())
	assert.True(t, p.CanConfirm())
}

func TestPickIsIdempotent(t *testing.T) {
	idx := feb16(t)
	p := NewPicker()
	show(p, idx, "2025-02-16")

	_, err := p.Pick("09:30 AM")
	require.NoError(t, err)
	_, err = p.Pick("09:30 AM")
	require.NoError(t, err)

	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "09:30 AM", sel.Label)

	morning, _ := p.Section(schedule.PeriodMorning)
	assert.False(t, morning.Chips[0].Selected)
	assert.True(t, morning.Chips[1].Selected)

	_, err = p.Pick("08:00 AM")
	require.NoError(t, err)
	sel, _ = p.Selected()
	assert.Equal(t, "08:00 AM", sel.Label)
}

func TestNewDateClearsSlotSameDateKeepsIt(t *testing.T) {
	idx := feb16(t)
	p := NewPicker()
	show(p, idx, "2025-02-16")
	_, err := p.Pick("08:00 AM")
	require.NoError(t, err)

	show(p, idx, "2025-02-16")
	_, ok := p.Selected()
	assert.True(t, ok)

	show(p, idx, "2025-02-17")
	_, ok = p.Selected()
	assert.False(t, ok)
	assert.Equal(t, "2025-02-17", p.Date())
}

func TestReloadDropsVanishedSlot(t *testing.T) {
	idx := feb16(t)
	p := NewPicker()
	show(p, idx, "2025-02-16")
	_, err := p.Pick("08:00 AM")
	require.NoError(t, err)

	p.Show("2025-02-16", schedule.NewDay(nil), false)
	_, ok := p.Selected()
	assert.False(t, ok)
	for _, s := range p.Sections() {
		assert.True(t, s.NoAvailability())
	}
}

func TestPickWithoutDate(t *testing.T) {
	p := NewPicker()
	_, err := p.Pick("08:00 AM")
	assert.ErrorIs(t, err, ErrNoDate)

	show(p, feb16(t), "2025-02-17")
	_, err = p.Pick("10:00 AM")
	require.NoError(t, err)
	p.Reset()
	assert.Empty(t, p.Date())
	assert.False(t, p.CanConfirm())
}
