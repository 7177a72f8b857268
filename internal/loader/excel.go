package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"wlrecon/pkg/contracts/domain"
)

// ReadExcel loads a worksheet from an Excel file. An empty sheet name
// selects the first sheet.
func ReadExcel(path, sheet string) (domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(path), sheet)
}

// ReadExcelReader loads a worksheet from an in-memory workbook
func ReadExcelReader(r io.Reader, name, sheet string) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	return readWorkbook(f, name, sheet)
}

func readWorkbook(f *excelize.File, name, sheet string) (domain.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.Table{}, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, name, err)
	}
	return tableFromGrid(name, rows), nil
}
