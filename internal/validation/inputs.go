package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// File status values
const (
	StatusValid   = "valid"
	StatusError   = "error"
	StatusMissing = "missing"
)

// FileStatus describes one expected input
type FileStatus struct {
	File    string `json:"file,omitempty"`
	Status  string `json:"status"`
	Rows    int    `json:"rows,omitempty"`
	Columns int    `json:"columns,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report is the outcome of pre-validating a set of inputs
type Report struct {
	Success  bool                        `json:"success"`
	Errors   []string                    `json:"errors"`
	Warnings []string                    `json:"warnings"`
	Files    map[domain.Role]*FileStatus `json:"files_status"`
}

func (r *Report) fail(format string, args ...any) {
	r.Success = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// InputValidator checks loaded tables for the columns each role needs
type InputValidator struct {
	logger *slog.Logger
}

// NewInputValidator creates an input validator
func NewInputValidator(logger *slog.Logger) *InputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputValidator{logger: logger.With(slog.String("component", "input_validator"))}
}

// Validate inspects every required role plus the optional column mapping.
// tables holds what loaded, loadErrs what failed to load, and files the
// file name behind each role, for messages.
func (v *InputValidator) Validate(tables map[domain.Role]domain.Table, loadErrs map[domain.Role]error, files map[domain.Role]string) *Report {
	report := &Report{
		Success:  true,
		Errors:   []string{},
		Warnings: []string{},
		Files:    make(map[domain.Role]*FileStatus),
	}

	roles := append([]domain.Role{}, domain.RequiredRoles...)
	if _, ok := tables[domain.RoleColumnMapping]; ok {
		roles = append(roles, domain.RoleColumnMapping)
	} else if _, ok := loadErrs[domain.RoleColumnMapping]; ok {
		roles = append(roles, domain.RoleColumnMapping)
	}

	for _, role := range roles {
		name := files[role]
		if name == "" {
			name = role.CanonicalFileName()
		}

		if err, failed := loadErrs[role]; failed {
			report.fail("Error reading file '%s': %v", name, err)
			report.Files[role] = &FileStatus{File: name, Status: StatusError, Error: err.Error()}
			v.logger.Error("Error validating input", slog.String("role", string(role)), slog.String("error", err.Error()))
			continue
		}

		t, ok := tables[role]
		if !ok {
			report.fail("Required file missing: %s", role.CanonicalFileName())
			report.Files[role] = &FileStatus{Status: StatusMissing}
			v.logger.Warn("Required file not found", slog.String("role", string(role)))
			continue
		}

		t = reconcile.NormalizeColumns(t)
		var missing []string
		for _, col := range role.RequiredColumns() {
			if !t.HasColumn(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			report.fail("File '%s' is missing required columns: %s", name, strings.Join(missing, ", "))
		}

		if t.Len() == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("File '%s' is empty (no data rows)", name))
		}

		if role == domain.RoleCCPSecurity && t.HasColumn("symbol") && t.Len() > 0 && allNull(t, "symbol") {
			report.fail("File '%s': Symbol column is empty", name)
		}

		report.Files[role] = &FileStatus{File: name, Status: StatusValid, Rows: t.Len(), Columns: len(t.Columns)}
		v.logger.Info("Validated input",
			slog.String("role", string(role)),
			slog.String("file", name),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.Columns)))
	}

	return report
}

func allNull(t domain.Table, column string) bool {
	values, _ := t.Column(column)
	for _, v := range values {
		if !v.IsNull() {
			return false
		}
	}
	return true
}
