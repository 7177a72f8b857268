package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Upload validation errors
var (
	ErrEmptyFileName   = errors.New("empty file name")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrTemporaryFile   = errors.New("temporary office file")
)

// AllowedExtensions are the spreadsheet types accepted for upload
var AllowedExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileValidator checks files before they are loaded
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUpload checks an uploaded file name and size. maxBytes <= 0
// disables the size check.
func (v *FileValidator) ValidateUpload(name string, size, maxBytes int64) error {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		v.logger.Warn("Empty filename received")
		return ErrEmptyFileName
	}

	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", base))
		return fmt.Errorf("%s: %w", base, ErrTemporaryFile)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExtension(ext) {
		v.logger.Warn("Invalid file type",
			slog.String("file", base),
			slog.String("extension", ext))
		return fmt.Errorf("%s: only %s files are allowed: %w", base, strings.Join(AllowedExtensions, ", "), ErrInvalidFileType)
	}

	if maxBytes > 0 && size > maxBytes {
		v.logger.Warn("File exceeds upload limit",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", maxBytes))
		return fmt.Errorf("%s: %d bytes exceeds the %d byte limit: %w", base, size, maxBytes, ErrFileTooLarge)
	}

	return nil
}

// ValidateFile checks that a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func allowedExtension(ext string) bool {
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
