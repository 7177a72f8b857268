package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved directories the application writes to
type Paths struct {
	BaseDir   string
	UploadDir string
	OutputDir string
	LogsDir   string
}

// Paths resolves the configured directories against base. An empty base
// means the working directory.
func (c *Config) Paths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}
	return &Paths{
		BaseDir:   base,
		UploadDir: resolve(c.Reconcile.UploadDir),
		OutputDir: resolve(c.Reconcile.OutputDir),
		LogsDir:   resolve(filepath.Dir(c.Logging.FilePath)),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.UploadDir, p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SessionDir is the upload directory of one session
func (p *Paths) SessionDir(sessionID string) string {
	return filepath.Join(p.UploadDir, sessionID)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("upload_dir", p.UploadDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir))
}
