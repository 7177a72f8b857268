package http

import (
	"net/http"

	apierrors "wlrecon/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the OpenTelemetry meter
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. exporter is nil when metrics
// are disabled.
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable.WithDetails(
			"metrics are disabled, set telemetry.metrics_enabled to expose /metrics",
		))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
