package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/config"
	"wlrecon/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{ServiceName: "svc", TracingExporter: "none", MetricsEnabled: true}, "1.2.3")
	assert.Equal(t, "svc", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "prometheus", cfg.MetricExporter)

	cfg = OTelConfigFrom(config.TelemetryConfig{ServiceName: "svc"}, "dev")
	assert.Equal(t, "none", cfg.MetricExporter)
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "none"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "test", TraceExporter: "jaeger"}, quietLogger())
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestMetrics_PrometheusExposition(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "test", ServiceVersion: "dev", TraceExporter: "none", MetricExporter: "prometheus", SampleRatio: 1}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := NewMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRun(ctx, 150*time.Millisecond, &domain.Statistics{Requirement1Count: 2, AmbiguousCCPKeys: 1})
	metrics.RecordRun(ctx, time.Second, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "reconcile_runs_total")
	assert.Contains(t, body, `status="failure"`)
	assert.Contains(t, body, "reconcile_run_duration_seconds")
	assert.Contains(t, body, `requirement="req1"`)
	assert.Contains(t, body, `side="ccp"`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.RecordRun(context.Background(), time.Second, nil) })
}
