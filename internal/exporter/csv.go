package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"wlrecon/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer. Relative paths resolve against outputDir.
func NewCSVWriter(outputDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outputDir: outputDir, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix  bool // Add UTF-8 BOM for Excel compatibility
	OmitHeader bool
}

// WriteTable writes t to w. Null cells are written as empty fields.
func (c *CSVWriter) WriteTable(w io.Writer, t domain.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if !options.OmitHeader {
		if err := writer.Write(t.Columns); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = row[j].String()
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes t to a CSV file with a BOM and returns the full path
func (c *CSVWriter) WriteFile(filePath string, t domain.Table) (string, error) {
	fullPath := c.resolvePath(filePath)

	c.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := c.WriteTable(file, t, WriteOptions{BOMPrefix: true}); err != nil {
		file.Close()
		return "", err
	}
	return fullPath, file.Close()
}

func (c *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || c.outputDir == "" {
		return filePath
	}
	return filepath.Join(c.outputDir, filePath)
}
