package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wlrecon/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads a comma-separated file
func ReadCSV(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSVReader(f, filepath.Base(path))
}

// ReadCSVReader loads CSV data. A leading UTF-8 byte order mark is skipped.
func ReadCSVReader(r io.Reader, name string) (domain.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return domain.Table{}, err
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return tableFromGrid(name, records), nil
}
