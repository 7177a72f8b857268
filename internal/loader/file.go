package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"wlrecon/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for files no reader can handle
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions are the file types ReadFile accepts
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}

// IsSupported reports whether the file extension can be loaded
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ReadFile loads the first sheet of a workbook or a CSV file, by extension.
func ReadFile(path string) (domain.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return ReadExcel(path, "")
	case ".csv":
		return ReadCSV(path)
	case ".xls":
		return domain.Table{}, fmt.Errorf("%s: legacy .xls workbooks must be re-saved as .xlsx: %w", filepath.Base(path), ErrUnsupportedFormat)
	default:
		return domain.Table{}, fmt.Errorf("%s: extension %q: %w", filepath.Base(path), ext, ErrUnsupportedFormat)
	}
}

// ReadReader is ReadFile for in-memory content; name supplies the extension.
func ReadReader(r io.Reader, name string) (domain.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return ReadExcelReader(r, name, "")
	case ".csv":
		return ReadCSVReader(r, name)
	default:
		return domain.Table{}, fmt.Errorf("%s: extension %q: %w", name, ext, ErrUnsupportedFormat)
	}
}
