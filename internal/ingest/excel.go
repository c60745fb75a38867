package ingest

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/datadash/internal/table"
)

// decodeXLSX reads the first sheet of a workbook. Cells come back with their
// display formatting applied, so dates arrive as text and are picked up by
// datetime detection later.
func decodeXLSX(data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatXLSX, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Format: FormatXLSX, Err: ErrEmptyFile}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Format: FormatXLSX, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	return gridToTable(FormatXLSX, rows)
}

// decodeXLS reads the first sheet of a legacy workbook.
func decodeXLS(data []byte) (t *table.Table, err error) {
	// the BIFF reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = &DecodeError{Format: FormatXLS, Err: fmt.Errorf("corrupt workbook: %v", r)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DecodeError{Format: FormatXLS, Err: fmt.Errorf("open workbook: %w", err)}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &DecodeError{Format: FormatXLS, Err: ErrEmptyFile}
	}

	var grid [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return gridToTable(FormatXLS, grid)
}

// gridToTable treats the first non-empty row as the header.
func gridToTable(format Format, grid [][]string) (*table.Table, error) {
	start := 0
	for start < len(grid) && isBlankRow(grid[start]) {
		start++
	}
	if start == len(grid) {
		return nil, &DecodeError{Format: format, Err: ErrEmptyFile}
	}

	t, err := buildTable(grid[start], grid[start+1:])
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if !isNA(c) {
			return false
		}
	}
	return true
}
