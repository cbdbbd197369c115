// Package report exports shaped availability as XLSX workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetWriter appends rows to the sheets of one workbook.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	headerStyle  int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile(), headerStyle: -1}
}

// addSheet starts a new sheet. Names are cut to the 31 char Excel limit.
func (w *sheetWriter) addSheet(name string) error {
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// writeHeader writes one bold row. All header rows share a single style.
func (w *sheetWriter) writeHeader(columns ...string) error {
	if len(columns) == 0 {
		return fmt.Errorf("header for %s has no columns", w.currentSheet)
	}
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := w.writeRow(row...); err != nil {
		return err
	}

	if w.headerStyle < 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		w.headerStyle = style
	}
	start, err := excelize.CoordinatesToCellName(1, w.currentRow-1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.currentSheet, start, end, w.headerStyle); err != nil {
		return fmt.Errorf("style header of %s: %w", w.currentSheet, err)
	}
	return nil
}

func (w *sheetWriter) writeRow(values ...any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &values); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) save(out io.Writer) error {
	return w.file.Write(out)
}

func (w *sheetWriter) close() error {
	return w.file.Close()
}
