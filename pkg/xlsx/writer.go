package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// unmatchedFill is the background color for highlighted rows.
const unmatchedFill = "#FFE5E5"

// WriteFile writes a Table as a plain .xlsx file. The header goes to
// row 1, data rows follow; values are written as text.
func WriteFile(t *table.Table, path string, sheetName string) error {
	f, err := newSheetFile(&sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeRows(f, t, sheetName, nil); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// Write writes a Table as an .xlsx stream (for direct downloads).
func Write(t *table.Table, w io.Writer, sheetName string) error {
	f, err := newSheetFile(&sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeRows(f, t, sheetName, nil); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteAnnotatedFile writes a Table with row highlighting: rows whose
// flagColumn cell equals "true" get a light red background. Used for
// the "colored" merge artifact where unmatched rows must stand out.
func WriteAnnotatedFile(t *table.Table, path string, sheetName string, flagColumn string) error {
	f, err := newSheetFile(&sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{unmatchedFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	flagIdx := t.ColumnIndex(flagColumn)
	highlight := func(row int) *int {
		if flagIdx == -1 {
			return nil
		}
		if t.Cell(row, flagIdx) == "true" {
			return &style
		}
		return nil
	}

	if err := writeRows(f, t, sheetName, highlight); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// newSheetFile creates an excelize file with a single named sheet.
func newSheetFile(sheetName *string) (*excelize.File, error) {
	f := excelize.NewFile()
	if *sheetName == "" {
		*sheetName = "Sheet1"
	}
	if *sheetName != "Sheet1" {
		index, err := f.NewSheet(*sheetName)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

// writeRows writes the header and data rows; rowStyle, when non-nil,
// returns the style to apply to a data row (nil = unstyled).
func writeRows(f *excelize.File, t *table.Table, sheetName string, rowStyle func(row int) *int) error {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i := range t.Rows {
		var style *int
		if rowStyle != nil {
			style = rowStyle(i)
		}
		for col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, t.Cell(i, col))
			if style != nil {
				f.SetCellStyle(sheetName, cell, cell, *style)
			}
		}
	}

	// Fixed column width keeps the output readable without a second
	// pass over the data.
	if t.ColumnCount() > 0 {
		first, _ := excelize.ColumnNumberToName(1)
		last, _ := excelize.ColumnNumberToName(t.ColumnCount())
		f.SetColWidth(sheetName, first, last, 15)
	}
	return nil
}
