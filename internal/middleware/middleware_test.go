package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	apierrors "wlrecon/internal/errors"
	"wlrecon/internal/infrastructure"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		var seen, traced string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetReqID(r.Context())
			traced = infrastructure.GetTraceID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, traced)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")

		rec := httptest.NewRecorder()
		RequestID(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, discardLogger())
	h := rl.Handler(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeRateLimit, body["type"])
	assert.Equal(t, apierrors.ErrRateLimitExceeded.ErrorCode, body["error_code"])
	assert.Equal(t, apierrors.ErrRateLimitExceeded.Message, body["detail"])
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/compare", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware_RecordsRoute(t *testing.T) {
	metrics, err := infrastructure.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	m := NewOTelMiddleware(nil, metrics, discardLogger())

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/results/{runID}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/results/{runID}", getRoutePattern(r))
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestStructuredLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rec := httptest.NewRecorder()
	StructuredLogger(logger)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	assert.Contains(t, buf.String(), `"msg":"request completed"`)
	assert.Contains(t, buf.String(), `"path":"/api/reset"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

type compareBody struct {
	SessionID   string `json:"session_id" validate:"required,uuid"`
	Requirement string `json:"requirement" validate:"omitempty,requirement"`
	MappingFile string `json:"mapping_file" validate:"omitempty,filename"`
}

func TestValidator_DecodeAndValidate(t *testing.T) {
	v := NewValidator(discardLogger())

	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{name: "valid", body: `{"session_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","requirement":"req3"}`},
		{name: "missing session", body: `{}`, wantErr: true, wantField: "session_id"},
		{name: "bad requirement", body: `{"session_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","requirement":"req9"}`, wantErr: true, wantField: "requirement"},
		{name: "traversal", body: `{"session_id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","mapping_file":"../etc/passwd"}`, wantErr: true, wantField: "mapping_file"},
		{name: "bad json", body: `{"session_id":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(tt.body))
			var body compareBody
			err := v.DecodeAndValidate(req, &body)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			if tt.wantField != "" {
				details, ok := apiErr.Details.(apierrors.ValidationErrors)
				require.True(t, ok)
				require.Len(t, details.Errors, 1)
				assert.Equal(t, tt.wantField, details.Errors[0].Field)
			}
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	qv := NewQueryParamValidator(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))

	rec := httptest.NewRecorder()
	n, ok := qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?limit=25", nil), "limit", 1, 1000, 100)
	assert.True(t, ok)
	assert.Equal(t, 25, n)

	rec = httptest.NewRecorder()
	n, ok = qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "limit", 1, 1000, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, n)

	rec = httptest.NewRecorder()
	_, ok = qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?limit=0", nil), "limit", 1, 1000, 100)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	format, ok := qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=csv", nil), "format", []string{"xlsx", "csv"}, "xlsx")
	assert.True(t, ok)
	assert.Equal(t, "csv", format)

	rec = httptest.NewRecorder()
	_, ok = qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil), "format", []string{"xlsx", "csv"}, "xlsx")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
