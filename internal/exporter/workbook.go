package exporter

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"wlrecon/pkg/contracts/domain"
)

// MaxColumnWidth caps auto-sized column widths
const MaxColumnWidth = 80

// Sheet is one named worksheet
type Sheet struct {
	Name  string
	Table domain.Table
}

// WriteWorkbook renders sheets into a single xlsx workbook
func WriteWorkbook(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s, header); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	t := s.Table
	widths := make([]int, len(t.Columns))

	for j, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, col); err != nil {
			return err
		}
		widths[j] = utf8.RuneCountInString(col)
	}

	for i, row := range t.Rows {
		for j := range t.Columns {
			if j >= len(row) || row[j].IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			text := row[j].String()
			if err := f.SetCellStr(s.Name, cell, text); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(text); n > widths[j] {
				widths[j] = n
			}
		}
	}

	if len(t.Columns) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(t.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	for j, w := range widths {
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, name, name, columnWidth(w)); err != nil {
			return err
		}
	}
	return nil
}

// columnWidth is the longest cell plus padding, capped
func columnWidth(longest int) float64 {
	w := longest + 2
	if w > MaxColumnWidth {
		w = MaxColumnWidth
	}
	return float64(w)
}
