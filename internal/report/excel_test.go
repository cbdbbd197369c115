package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHeaderStylesRow(t *testing.T) {
	w := newSheetWriter()
	defer w.close()

	require.NoError(t, w.addSheet("Slots"))
	require.NoError(t, w.writeHeader("Date", "Time"))
	require.NoError(t, w.writeRow("2025-02-16", "08:00 AM"))

	assert.Positive(t, w.headerStyle)
	for _, cell := range []string{"A1", "B1"} {
		style, err := w.file.GetCellStyle("Slots", cell)
		require.NoError(t, err)
		assert.Equal(t, w.headerStyle, style, cell)
	}
	body, err := w.file.GetCellStyle("Slots", "A2")
	require.NoError(t, err)
	assert.NotEqual(t, w.headerStyle, body)
}

func TestWriteHeaderErrors(t *testing.T) {
	w := newSheetWriter()
	defer w.close()

	assert.Error(t, w.writeHeader("Date"), "no active sheet")

	require.NoError(t, w.addSheet("Slots"))
	assert.Error(t, w.writeHeader())
}
