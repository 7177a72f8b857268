package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"wlrecon/pkg/contracts/domain"
)

// Run outcome labels
const (
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// Metrics holds the application instruments
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Reconciliation metrics
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	RequirementRows metric.Int64Histogram
	AmbiguousKeys   metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.RunsTotal, err = meter.Int64Counter(
		"reconcile_runs_total",
		metric.WithDescription("Total number of reconciliation runs"),
	); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram(
		"reconcile_run_duration_seconds",
		metric.WithDescription("Reconciliation run duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RequirementRows, err = meter.Int64Histogram(
		"reconcile_requirement_rows",
		metric.WithDescription("Rows produced per requirement per run"),
	); err != nil {
		return nil, err
	}
	if m.AmbiguousKeys, err = meter.Int64Counter(
		"reconcile_ambiguous_keys_total",
		metric.WithDescription("Composite keys found on more than one row"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records one reconciliation. stats is nil for failed runs.
func (m *Metrics) RecordRun(ctx context.Context, duration time.Duration, stats *domain.Statistics) {
	if m == nil {
		return
	}

	status := RunStatusSuccess
	if stats == nil {
		status = RunStatusFailure
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))

	if stats == nil {
		return
	}
	rows := map[domain.Requirement]int{
		domain.RequirementMissingInAT:  stats.Requirement1Count,
		domain.RequirementMissingInCCP: stats.Requirement2Count,
		domain.RequirementMismatch:     stats.Requirement3Count,
	}
	for req, n := range rows {
		m.RequirementRows.Record(ctx, int64(n), metric.WithAttributes(attribute.String("requirement", string(req))))
	}
	m.AmbiguousKeys.Add(ctx, int64(stats.AmbiguousCCPKeys), metric.WithAttributes(attribute.String("side", "ccp")))
	m.AmbiguousKeys.Add(ctx, int64(stats.AmbiguousATKeys), metric.WithAttributes(attribute.String("side", "at")))
}
