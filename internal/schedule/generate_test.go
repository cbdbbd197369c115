package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		period Period
		count  int
		first  string
		last   string
	}{
		{PeriodMorning, 12, "06:00 AM", "11:30 AM"},
		{PeriodAfternoon, 10, "12:00 PM", "04:30 PM"},
		{PeriodEvening, 8, "05:00 PM", "08:30 PM"},
		{PeriodNight, 6, "09:00 PM", "11:30 PM"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := GenerateSlots(tt.period)
			require.Len(t, got, tt.count)
			assert.Equal(t, tt.first, got[0].Label)
			assert.Equal(t, tt.last, got[len(got)-1].Label)
			for _, s := range got {
				assert.Equal(t, tt.period, s.Period(), s.Label)
				assert.Equal(t, 0, s.Clock.Minute%SlotStep)
			}
		})
	}

	assert.Empty(t, GenerateSlots(Period("brunch")))
}

func TestNormalizeSlots(t *testing.T) {
	got, err := NormalizeSlots([]string{"5:00 PM", "9:30 AM", "09:30", "14:00:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30 AM", "02:00 PM", "05:00 PM"}, got)

	_, err = NormalizeSlots([]string{"09:00 AM", "soon"})
	assert.ErrorIs(t, err, ErrInvalidClock)
}
