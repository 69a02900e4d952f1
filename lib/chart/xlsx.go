package chart

import (
	"fmt"
	"io"

	"github.com/icco/statlines/lib/timeline"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// WriteXLSX writes the table as a spreadsheet: a Date column, one column
// per player, and an embedded line chart over the data.
func WriteXLSX(w io.Writer, axis *timeline.Axis, columns map[string][]float64, order []string, title string) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetCellValue(xlsxSheet, "A1", "Date"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for ci, name := range order {
		cell, err := excelize.CoordinatesToCellName(ci+2, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header for %q: %w", name, err)
		}
	}

	for ri, date := range axis.Dates() {
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return fmt.Errorf("failed to address date cell: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, date.Format("2006-01-02")); err != nil {
			return fmt.Errorf("failed to write date: %w", err)
		}
		for ci, name := range order {
			values := columns[name]
			cell, err := excelize.CoordinatesToCellName(ci+2, ri+2)
			if err != nil {
				return fmt.Errorf("failed to address value cell: %w", err)
			}
			if err := f.SetCellValue(xlsxSheet, cell, values[ri]); err != nil {
				return fmt.Errorf("failed to write value for %q: %w", name, err)
			}
		}
	}

	lastRow := axis.Len() + 1
	series := make([]excelize.ChartSeries, 0, len(order))
	for ci := range order {
		col, err := excelize.ColumnNumberToName(ci + 2)
		if err != nil {
			return fmt.Errorf("failed to name series column: %w", err)
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", xlsxSheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", xlsxSheet, lastRow),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", xlsxSheet, col, col, lastRow),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(order)+3, 2)
	if err != nil {
		return fmt.Errorf("failed to place chart: %w", err)
	}
	if err := f.AddChart(xlsxSheet, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 400,
		},
	}); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}
