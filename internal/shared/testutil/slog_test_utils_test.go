package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("component", "reconcile")).Warn("duplicate composite key", slog.String("key", "A|X"))
	logger.Info("done")

	records := handler.Records()
	require.Len(t, records, 2)
	assert.True(t, handler.Contains(slog.LevelWarn, "duplicate"))
	assert.False(t, handler.Contains(slog.LevelError, "duplicate"))
	assert.True(t, handler.HasAttr("component", "reconcile"), "attrs from With are kept")
	assert.True(t, handler.HasAttr("key", "A|X"))
	assert.Len(t, handler.RecordsAt(slog.LevelInfo), 1)
}

func TestBuildTable(t *testing.T) {
	tbl := BuildTable(t, "at", []string{"symbol", "exchange"},
		[]string{"AAA", "HK"},
		[]string{"BBB", Nil},
	)

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Value(1, "exchange").IsNull())
	assert.Equal(t, "AAA", tbl.Value(0, "symbol").String())
}

func TestWriteExcel(t *testing.T) {
	path := WriteExcel(t, t.TempDir(), "CCP_Security.xlsx", "Sheet1",
		[]string{"Symbol", "Exchange"},
		[]string{"AAA", "HK"},
	)
	assert.FileExists(t, path)
}
