package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/config"
	apierrors "wlrecon/internal/errors"
	"wlrecon/internal/services"
	"wlrecon/internal/shared/testutil"
	handlers "wlrecon/internal/transport/http"
	"wlrecon/pkg/contracts"
)

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Reconcile.UploadDir = filepath.Join(base, "uploads")
	cfg.Reconcile.OutputDir = filepath.Join(base, "output")
	cfg.Logging.FilePath = filepath.Join(base, "logs", "wlrecon.log")
	cfg.Security.RateLimit.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	application, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Stop(context.Background()) })
	return application
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew_CreatesDirectories(t *testing.T) {
	a := newTestApp(t)

	assert.DirExists(t, a.Paths.UploadDir)
	assert.DirExists(t, a.Paths.OutputDir)
	assert.DirExists(t, a.Paths.LogsDir)
	assert.Equal(t, "127.0.0.1:0", a.Server.Addr)
	assert.NotNil(t, a.ReconciliationService)
	assert.NotNil(t, a.HealthService)
}

func TestApplication_ReconciliationWorkflow(t *testing.T) {
	a := newTestApp(t)
	sec, rules, at := testutil.WriteSampleInputs(t, t.TempDir())

	rec := serve(a, testutil.NewUploadRequest(t, "/api/upload", handlers.UploadField, sec, rules, at))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	sessionID := testutil.DecodeJSON(t, rec)["session_id"].(string)

	rec = serve(a, testutil.NewJSONRequest(t, http.MethodPost, "/api/compare", handlers.CompareRequest{SessionID: sessionID}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := testutil.DecodeJSON(t, rec)
	runID := body["run_id"].(string)
	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 4, stats["total_ccp"])
	assert.EqualValues(t, 3, stats["total_at"])
	assert.EqualValues(t, 2, stats["total_common"])

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/results/"+runID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	results := testutil.DecodeJSON(t, rec)
	assert.EqualValues(t, 1, results["requirement_3"].(map[string]any)["total"])

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/download/"+runID+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "00_Comparison_Report.xlsx")

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reconcile_runs_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestApplication_DuplicateRulesRejected(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	sec, _, at := testutil.WriteSampleInputs(t, t.TempDir())
	rules := testutil.WriteExcel(t, dir, "CCP_Market_Rules.xlsx", "Rules",
		[]string{"Exchange", "Maximum Notional"},
		[]string{"LSE", "10"},
		[]string{"lse", "20"},
	)

	rec := serve(a, testutil.NewUploadRequest(t, "/api/upload", handlers.UploadField, sec, rules, at))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionID := testutil.DecodeJSON(t, rec)["session_id"].(string)

	rec = serve(a, testutil.NewJSONRequest(t, http.MethodPost, "/api/compare", handlers.CompareRequest{SessionID: sessionID}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := testutil.DecodeJSON(t, rec)
	assert.Equal(t, apierrors.TypeMultiplicity, body["type"])
	assert.Equal(t, "/api/compare", body["instance"])
	assert.NotEmpty(t, body["trace_id"])
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantType   string
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/api/nothing", wantStatus: http.StatusNotFound, wantType: apierrors.TypeNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/api/compare", wantStatus: http.StatusMethodNotAllowed, wantType: apierrors.TypeMethodNotAllowed},
		{name: "unknown run", method: http.MethodGet, path: "/api/results/missing", wantStatus: http.StatusNotFound, wantType: "/errors/run/not-found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, testutil.DecodeJSON(t, rec)["type"])
			}
		})
	}

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, contracts.Version, testutil.DecodeJSON(t, rec)["version"])
}

func TestApplication_CORS(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"http://recon.local"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/compare", nil)
	req.Header.Set("Origin", "http://recon.local")
	rec := serve(a, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://recon.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.Telemetry.MetricsEnabled = false })

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApplication_StartStop(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx, cancel))
	require.NoError(t, a.Stop(context.Background()))
}
