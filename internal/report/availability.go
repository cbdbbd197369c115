package report

import (
	"fmt"
	"io"

	"salonbook/internal/schedule"
)

// WriteAvailability writes a workbook with one row per slot and a per-date summary.
func WriteAvailability(out io.Writer, stylistID int64, idx schedule.Index) error {
	w := newSheetWriter()
	defer w.close()

	if err := w.addSheet(fmt.Sprintf("Stylist %d", stylistID)); err != nil {
		return err
	}
	if err := w.writeHeader("Date", "Period", "Time"); err != nil {
		return err
	}
	for _, date := range idx.Dates() {
		day, _ := idx.Day(date)
		for _, p := range schedule.Periods {
			for _, s := range day.Slots(p) {
				if err := w.writeRow(date, p.Title(), s.Label); err != nil {
					return err
				}
			}
		}
	}

	if err := w.addSheet("Summary"); err != nil {
		return err
	}
	header := []string{"Date"}
	for _, p := range schedule.Periods {
		header = append(header, p.Title())
	}
	header = append(header, "Total")
	if err := w.writeHeader(header...); err != nil {
		return err
	}
	for _, date := range idx.Dates() {
		day, _ := idx.Day(date)
		row := []any{date}
		for _, p := range schedule.Periods {
			row = append(row, len(day.Slots(p)))
		}
		row = append(row, day.Len())
		if err := w.writeRow(row...); err != nil {
			return err
		}
	}

	return w.save(out)
}
