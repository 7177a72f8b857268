package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wlrecon/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of engine spans
const TracerName = "wlrecon/reconcile"

// Input carries the three role-assigned tables of a run.
type Input struct {
	Security domain.Table
	Rules    domain.Table
	AT       domain.Table
}

// Result is the complete output of one run
type Result struct {
	CCPSymbolColumn string
	ATSymbolColumn  string

	// Combined is the security x rules join before alignment.
	Combined domain.Table
	// AlignedCCP and AT are the keyed tables fed to the analyzer.
	AlignedCCP domain.Table
	AT         domain.Table

	Analysis   *Analysis
	Statistics domain.Statistics
}

// Table returns the output table of a row-level requirement.
func (r *Result) Table(req domain.Requirement) (domain.Table, bool) {
	switch req {
	case domain.RequirementMissingInAT:
		return r.Analysis.Requirement1, true
	case domain.RequirementMissingInCCP:
		return r.Analysis.Requirement2, true
	case domain.RequirementMismatch:
		return r.Analysis.Requirement3, true
	case domain.RequirementPivot:
		return r.Analysis.Pivot.Table(), true
	}
	return domain.Table{}, false
}

// Engine runs the reconciliation pipeline. It holds no per-run state.
type Engine struct {
	mapping FieldMapping
	logger  *slog.Logger
	clock   func() time.Time
	tracer  trace.Tracer
}

// Option configures an Engine
type Option func(*Engine)

// WithMapping replaces the built-in field mapping
func WithMapping(m FieldMapping) Option {
	return func(e *Engine) {
		if m != nil {
			e.mapping = m
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the time source used for the statistics timestamp
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine creates an engine using the default mapping unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		mapping: DefaultMapping(),
		logger:  slog.Default(),
		clock:   time.Now,
		tracer:  otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "reconcile"))
	return e
}

// Run reconciles the CCP tables against the AT table. Schema and
// multiplicity errors abort the run with no partial result. The context is
// used for log correlation and tracing only.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "reconcile.run", trace.WithAttributes(
		attribute.Int("ccp.security.rows", in.Security.Len()),
		attribute.Int("ccp.rules.rows", in.Rules.Len()),
		attribute.Int("at.rows", in.AT.Len()),
	))
	defer span.End()

	start := e.clock()
	res, err := e.run(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "reconciliation failed", slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("requirement_1.rows", res.Statistics.Requirement1Count),
		attribute.Int("requirement_2.rows", res.Statistics.Requirement2Count),
		attribute.Int("requirement_3.rows", res.Statistics.Requirement3Count),
	)
	e.logger.InfoContext(ctx, "reconciliation completed",
		slog.Int("total_ccp", res.Statistics.TotalCCP),
		slog.Int("total_at", res.Statistics.TotalAT),
		slog.Int("total_common", res.Statistics.TotalCommon),
		slog.Int("total_action_required", res.Statistics.TotalActionRequired),
		slog.Duration("duration", e.clock().Sub(start)))
	return res, nil
}

func (e *Engine) run(ctx context.Context, in Input) (*Result, error) {
	security := NormalizeColumns(in.Security)
	rules := NormalizeColumns(in.Rules)
	at := NormalizeColumns(in.AT)

	for _, t := range []domain.Table{security, rules, at} {
		if !t.HasColumn(ExchangeColumn) {
			return nil, fmt.Errorf("validate: %w", missingColumn(t.Name, ExchangeColumn, t.Columns))
		}
	}

	ccpSymbol, err := DetectSymbolColumn(security)
	if err != nil {
		return nil, fmt.Errorf("detect symbol: %w", err)
	}
	atSymbol, err := DetectSymbolColumn(at)
	if err != nil {
		return nil, fmt.Errorf("detect symbol: %w", err)
	}
	e.logger.DebugContext(ctx, "symbol columns detected",
		slog.String("ccp", ccpSymbol),
		slog.String("at", atSymbol))

	res := &Result{CCPSymbolColumn: ccpSymbol, ATSymbolColumn: atSymbol}

	err = e.stage(ctx, "combine", func() error {
		res.Combined, err = Combine(security, rules)
		return err
	})
	if err != nil {
		return nil, err
	}

	var aligned domain.Table
	err = e.stage(ctx, "align", func() error {
		aligned, err = Align(res.Combined, ccpSymbol, atSymbol, e.mapping)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, "keys", func() error {
		if res.AlignedCCP, err = WithCompositeKey(aligned, atSymbol, ExchangeColumn); err != nil {
			return err
		}
		res.AT, err = WithCompositeKey(at, atSymbol, ExchangeColumn)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, "analyze", func() error {
		res.Analysis, err = NewAnalyzer(e.mapping, e.logger).Analyze(ctx, res.AlignedCCP, res.AT, atSymbol)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Statistics = Summarize(res.AlignedCCP, res.AT, res.Analysis, e.clock())
	return res, nil
}

// stage runs fn inside a span and prefixes its error with the stage name.
func (e *Engine) stage(ctx context.Context, name string, fn func() error) error {
	_, span := e.tracer.Start(ctx, "reconcile."+name)
	defer span.End()

	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
