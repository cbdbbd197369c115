package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonbook/internal/schedule"
)

func TestWriteAvailability(t *testing.T) {
	idx, errs := schedule.Shape([]schedule.Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM", "09:30 AM", "12:30 PM"}},
		{ID: 2, Date: "2025-02-17", TimeSlots: []string{"09:00 PM"}},
	})
	require.Empty(t, errs)

	var buf bytes.Buffer
	require.NoError(t, WriteAvailability(&buf, 4, idx))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Stylist 4", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Stylist 4")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date", "Period", "Time"}, rows[0])
	assert.Equal(t, []string{"2025-02-16", "Morning", "08:00 AM"}, rows[1])
	assert.Equal(t, []string{"2025-02-16", "Afternoon", "12:30 PM"}, rows[3])
	assert.Equal(t, []string{"2025-02-17", "Night", "09:00 PM"}, rows[4])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Date", "Morning", "Afternoon", "Evening", "Night", "Total"}, summary[0])
	assert.Equal(t, []string{"2025-02-16", "2", "1", "0", "0", "3"}, summary[1])
}

func TestWriteAvailabilityEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAvailability(&buf, 1, schedule.Index{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Stylist 1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
