package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wlrecon/internal/config"
	apierrors "wlrecon/internal/errors"
	"wlrecon/internal/exporter"
	"wlrecon/internal/fieldmap"
	"wlrecon/internal/infrastructure"
	"wlrecon/internal/loader"
	"wlrecon/internal/reconcile"
	"wlrecon/internal/store"
	"wlrecon/internal/validation"
	"wlrecon/pkg/contracts/domain"
)

// Download content types
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeZIP  = "application/zip"
)

// UploadedFile is one file of an upload request
type UploadedFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// UploadResult describes a newly created session
type UploadResult struct {
	SessionID  string                 `json:"session_id"`
	Files      map[domain.Role]string `json:"files"`
	Validation *validation.Report     `json:"validation"`
}

// RunSummary is returned by Compare
type RunSummary struct {
	RunID        string                 `json:"run_id"`
	SessionID    string                 `json:"session_id"`
	Statistics   domain.Statistics      `json:"statistics"`
	Summary      map[string]int         `json:"summary"`
	Resolutions  []fieldmap.Resolution  `json:"resolutions,omitempty"`
	Fingerprints map[domain.Role]string `json:"fingerprints,omitempty"`
}

// RequirementPreview holds the leading rows of one requirement table
type RequirementPreview struct {
	Columns []string                  `json:"columns"`
	Data    []map[string]domain.Value `json:"data"`
	Total   int                       `json:"total"`
	Preview bool                      `json:"preview"`
}

// ResultsPreview is returned by Results
type ResultsPreview struct {
	RunID        string             `json:"run_id"`
	Statistics   domain.Statistics  `json:"statistics"`
	Requirement1 RequirementPreview `json:"requirement_1"`
	Requirement2 RequirementPreview `json:"requirement_2"`
	Requirement3 RequirementPreview `json:"requirement_3"`
	Pivot        RequirementPreview `json:"pivot"`
}

// Download is a rendered output file
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReconciliationService runs comparisons for uploaded sessions
type ReconciliationService struct {
	cfg      config.ReconcileConfig
	paths    *config.Paths
	mapping  reconcile.FieldMapping
	custom   bool
	loader   *loader.Loader
	files    *validation.FileValidator
	inputs   *validation.InputValidator
	sessions *store.SessionStore
	runs     *store.RunStore
	metrics  *infrastructure.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	// guards Session.LastRunID
	mu sync.Mutex
}

// NewReconciliationService wires the service. When cfg.MappingFile is set
// the mapping is loaded from it, otherwise the built-in mapping is used.
// metrics may be nil.
func NewReconciliationService(cfg config.ReconcileConfig, paths *config.Paths, metrics *infrastructure.Metrics, logger *slog.Logger) (*ReconciliationService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "reconciliation"))

	var mapping reconcile.FieldMapping = reconcile.DefaultMapping()
	if cfg.MappingFile != "" {
		m, err := fieldmap.LoadFile(cfg.MappingFile)
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load mapping file", err).
				WithContext("mapping_file", cfg.MappingFile)
		}
		mapping = m
		logger.Info("Loaded field mapping",
			slog.String("file", cfg.MappingFile),
			slog.Int("entries", m.Len()))
	}

	s := &ReconciliationService{
		cfg:      cfg,
		paths:    paths,
		mapping:  mapping,
		custom:   cfg.MappingFile != "",
		loader:   loader.New(logger),
		files:    validation.NewFileValidator(logger),
		inputs:   validation.NewInputValidator(logger),
		sessions: store.NewSessionStore(cfg.ResultTTL),
		runs:     store.NewRunStore(cfg.ResultTTL),
		metrics:  metrics,
		tracer:   otel.Tracer("wlrecon/services"),
		logger:   logger,
	}
	s.sessions.OnEvicted(func(sess *store.Session) {
		if err := os.RemoveAll(sess.Dir); err != nil {
			s.logger.Warn("Could not remove session files",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()))
		}
	})

	logger.Info("ReconciliationService initialized",
		slog.String("upload_dir", paths.UploadDir),
		slog.Duration("result_ttl", cfg.ResultTTL),
		slog.Float64("fuzzy_threshold", cfg.FuzzyThreshold))
	return s, nil
}

// Mapping returns the base field mapping used when a session has none
func (s *ReconciliationService) Mapping() reconcile.FieldMapping {
	return s.mapping
}

// Upload saves files into a new session and pre-validates them. Each file
// name must identify its role. On validation failure the session is
// discarded and the report is returned alongside the error.
func (s *ReconciliationService) Upload(ctx context.Context, files []UploadedFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, apierrors.NewAppError(apierrors.ErrTypeValidation,
			"No files provided. Please upload all required files.", ErrNoFiles)
	}

	byRole := make(map[domain.Role]UploadedFile, len(files))
	for _, f := range files {
		if err := s.files.ValidateUpload(f.Name, f.Size, s.cfg.MaxUploadBytes); err != nil {
			return nil, uploadError(f.Name, err)
		}
		name := filepath.Base(f.Name)
		role, ok := domain.DetectRole(name)
		if !ok {
			return nil, apierrors.NewAppError(apierrors.ErrTypeValidation,
				fmt.Sprintf("Cannot tell which input %s is. Expected names like %s", name, expectedNames()),
				ErrUnknownFileRole).WithContext("file", name)
		}
		if prev, dup := byRole[role]; dup {
			return nil, apierrors.NewAppError(apierrors.ErrTypeValidation,
				fmt.Sprintf("Files %s and %s are both %s", filepath.Base(prev.Name), name, role.CanonicalFileName()),
				ErrDuplicateRole)
		}
		byRole[role] = f
	}

	sess := s.sessions.Create(s.paths.SessionDir)
	if err := os.MkdirAll(sess.Dir, 0755); err != nil {
		s.sessions.Delete(sess.ID)
		return nil, apierrors.NewStorageError("failed to create session directory", err)
	}

	names := make(map[domain.Role]string, len(byRole))
	for role, f := range byRole {
		name := filepath.Base(f.Name)
		path := filepath.Join(sess.Dir, name)
		if err := saveUpload(path, f.Reader, s.cfg.MaxUploadBytes); err != nil {
			s.sessions.Delete(sess.ID)
			if errors.Is(err, validation.ErrFileTooLarge) {
				return nil, uploadError(name, err)
			}
			return nil, apierrors.NewStorageError("failed to save uploaded file", err).WithContext("file", name)
		}
		sess.Files[role] = path
		names[role] = name
		s.logger.InfoContext(ctx, "Saved file",
			slog.String("session_id", sess.ID),
			slog.String("role", string(role)),
			slog.String("file", name))
	}

	tables := make(map[domain.Role]domain.Table, len(sess.Files))
	loadErrs := make(map[domain.Role]error)
	for role, path := range sess.Files {
		t, err := loader.ReadFile(path)
		if err != nil {
			loadErrs[role] = err
			continue
		}
		tables[role] = t
	}

	report := s.inputs.Validate(tables, loadErrs, names)
	result := &UploadResult{SessionID: sess.ID, Files: names, Validation: report}
	if !report.Success {
		s.sessions.Delete(sess.ID)
		result.SessionID = ""
		return result, apierrors.NewAppError(apierrors.ErrTypeValidation,
			"Uploaded files failed validation", ErrInputsInvalid).
			WithContext("validation", report)
	}

	s.logger.InfoContext(ctx, "Files uploaded and validated successfully",
		slog.String("session_id", sess.ID),
		slog.Int("files", len(names)),
		slog.Int("warnings", len(report.Warnings)))
	return result, nil
}

// Compare loads a session's files and reconciles them. The run is stored
// under a new ID which replaces the session's previous run.
func (s *ReconciliationService) Compare(ctx context.Context, sessionID string) (*RunSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.compare", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	summary, err := s.compare(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("run.id", summary.RunID))
	return summary, nil
}

func (s *ReconciliationService) compare(ctx context.Context, sessionID string) (*RunSummary, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, apierrors.NewNotFoundError("session", err)
	}

	start := time.Now()
	inputs, err := s.loader.LoadInputs(ctx, loader.RoleSet(sess.Files))
	if err != nil {
		s.metrics.RecordRun(ctx, time.Since(start), nil)
		return nil, apierrors.NewParsingError("failed to load session files", err)
	}
	in, err := inputs.ReconcileInput()
	if err != nil {
		s.metrics.RecordRun(ctx, time.Since(start), nil)
		return nil, apierrors.NewAppError(apierrors.ErrTypeValidation, err.Error(), err)
	}

	mapping, custom, err := s.mappingFor(inputs)
	if err != nil {
		s.metrics.RecordRun(ctx, time.Since(start), nil)
		return nil, apierrors.NewAppError(apierrors.ErrTypeValidation, "Invalid column mapping file", err)
	}

	var resolutions []fieldmap.Resolution
	if custom && s.cfg.FuzzyThreshold > 0 {
		mapping, resolutions = fieldmap.ResolveInput(mapping, in, s.cfg.FuzzyThreshold, s.logger)
	}

	engine := reconcile.NewEngine(
		reconcile.WithMapping(mapping),
		reconcile.WithLogger(s.logger),
		reconcile.WithTracer(s.tracer),
	)
	result, err := engine.Run(ctx, in)
	if err != nil {
		s.metrics.RecordRun(ctx, time.Since(start), nil)
		return nil, err
	}
	s.metrics.RecordRun(ctx, time.Since(start), &result.Statistics)

	runID := s.runs.Put(&store.Run{
		SessionID:    sess.ID,
		Result:       result,
		Fingerprints: inputs.Fingerprints,
	})

	s.mu.Lock()
	previous := sess.LastRunID
	sess.LastRunID = runID
	s.mu.Unlock()
	if previous != "" {
		s.runs.Delete(previous)
	}

	s.logger.InfoContext(ctx, "Comparison completed",
		slog.String("session_id", sess.ID),
		slog.String("run_id", runID),
		slog.Int("total_action_required", result.Statistics.TotalActionRequired))

	return &RunSummary{
		RunID:      runID,
		SessionID:  sess.ID,
		Statistics: result.Statistics,
		Summary: map[string]int{
			"requirement_1_count": result.Statistics.Requirement1Count,
			"requirement_2_count": result.Statistics.Requirement2Count,
			"requirement_3_count": result.Statistics.Requirement3Count,
		},
		Resolutions:  resolutions,
		Fingerprints: inputs.Fingerprints,
	}, nil
}

// mappingFor prefers an uploaded column mapping over the base mapping.
// custom is false only for the built-in mapping, which is never resolved
// against spreadsheet columns.
func (s *ReconciliationService) mappingFor(inputs *loader.Inputs) (m reconcile.FieldMapping, custom bool, err error) {
	t, ok := inputs.Table(domain.RoleColumnMapping)
	if !ok {
		return s.mapping, s.custom, nil
	}
	m, err = fieldmap.FromTable(t)
	return m, true, err
}

// Results returns the first PreviewRows rows of each requirement
func (s *ReconciliationService) Results(ctx context.Context, runID string) (*ResultsPreview, error) {
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	res := run.Result
	preview := &ResultsPreview{
		RunID:        run.ID,
		Statistics:   res.Statistics,
		Requirement1: s.preview(res.Analysis.Requirement1),
		Requirement2: s.preview(res.Analysis.Requirement2),
		Requirement3: s.preview(res.Analysis.Requirement3),
		Pivot:        s.preview(res.Analysis.Pivot.Table()),
	}
	s.logger.DebugContext(ctx, "Results previewed", slog.String("run_id", runID))
	return preview, nil
}

func (s *ReconciliationService) preview(t domain.Table) RequirementPreview {
	return RequirementPreview{
		Columns: t.Columns,
		Data:    t.Head(s.cfg.PreviewRows).Records(),
		Total:   t.Len(),
		Preview: t.Len() > s.cfg.PreviewRows,
	}
}

// Download renders one requirement of a run as a workbook, or the ZIP
// bundle for domain.RequirementAll.
func (s *ReconciliationService) Download(ctx context.Context, runID string, req domain.Requirement) (*Download, error) {
	if _, err := domain.ParseRequirement(string(req)); err != nil {
		return nil, apierrors.NewAppError(apierrors.ErrTypeValidation, err.Error(), ErrNoRequirement)
	}
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exporter.Render(&buf, run.Result, req); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", req, err)
	}

	contentType := ContentTypeXLSX
	if req == domain.RequirementAll {
		contentType = ContentTypeZIP
	}
	s.logger.InfoContext(ctx, "Download rendered",
		slog.String("run_id", runID),
		slog.String("requirement", string(req)),
		slog.Int("bytes", buf.Len()))
	return &Download{
		FileName:    req.FileName(),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

// Bundle renders the ZIP of all requirement workbooks of a run
func (s *ReconciliationService) Bundle(ctx context.Context, runID string) (*Download, error) {
	return s.Download(ctx, runID, domain.RequirementAll)
}

// Reset drops a session with its files and last run. Unknown sessions
// are ignored.
func (s *ReconciliationService) Reset(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.logger.DebugContext(ctx, "Reset of unknown session", slog.String("session_id", sessionID))
		return nil
	}

	s.mu.Lock()
	runID := sess.LastRunID
	s.mu.Unlock()
	if runID != "" {
		s.runs.Delete(runID)
	}
	s.sessions.Delete(sess.ID)

	s.logger.InfoContext(ctx, "Session reset and temporary files cleared",
		slog.String("session_id", sess.ID))
	return nil
}

// Counts reports live sessions and runs
func (s *ReconciliationService) Counts() (sessions, runs int) {
	return s.sessions.Len(), s.runs.Len()
}

func (s *ReconciliationService) run(runID string) (*store.Run, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, apierrors.NewNotFoundError("run", err).WithContext("run_id", runID)
	}
	return run, nil
}

func uploadError(name string, err error) error {
	if errors.Is(err, validation.ErrFileTooLarge) {
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error(), name)
	}
	return apierrors.NewAppError(apierrors.ErrTypeValidation, err.Error(), err).WithContext("file", filepath.Base(name))
}

// saveUpload copies r to path, failing once more than maxBytes arrive
func saveUpload(path string, r io.Reader, maxBytes int64) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = fmt.Errorf("%s: more than %d bytes: %w", filepath.Base(path), maxBytes, validation.ErrFileTooLarge)
	}
	return err
}

func expectedNames() string {
	names := make([]string, 0, len(domain.RequiredRoles)+1)
	for _, r := range append(append([]domain.Role{}, domain.RequiredRoles...), domain.RoleColumnMapping) {
		names = append(names, r.CanonicalFileName())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
