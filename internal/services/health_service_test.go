package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/config"
)

type fakeCounter struct{ sessions, runs int }

func (f fakeCounter) Counts() (int, int) { return f.sessions, f.runs }

func TestHealthService(t *testing.T) {
	base := t.TempDir()
	paths := &config.Paths{
		UploadDir: filepath.Join(base, "uploads"),
		OutputDir: filepath.Join(base, "output"),
	}
	hs := NewHealthService("1.2.3", "2026-01-01", paths, fakeCounter{sessions: 2, runs: 1}, nil)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "2 sessions, 1 runs", ready.Services["store"].(ServiceHealth).Message)
	assert.DirExists(t, paths.UploadDir)

	alive := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", alive.Status)
	assert.Contains(t, alive.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "2026-01-01", version["build_time"])
}

func TestHealthService_NotReady(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// A regular file where the upload directory should be
	hs := NewHealthService("dev", "", &config.Paths{UploadDir: blocker, OutputDir: base}, nil, nil)
	ready := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "not_ready", ready.Services["uploads"].(ServiceHealth).Status)
}
