package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// ResultsSheet is the sheet name of single-requirement downloads
const ResultsSheet = "Results"

// Summary report columns
const (
	MetricColumn = "Metric"
	ValueColumn  = "Count/Value"
)

// SummaryReport lays the run statistics out as the comparison report sheet
func SummaryReport(s domain.Statistics) domain.Table {
	t := domain.NewTable(string(domain.RequirementReport), []string{MetricColumn, ValueColumn})
	add := func(metric, value string) {
		_ = t.AppendRow(domain.StringValue(metric), domain.CellValue(value))
	}
	records := func(n int) string { return strconv.Itoa(n) + " records" }

	add("Total CCP Records (Merged)", strconv.Itoa(s.TotalCCP))
	add("Total AT Records", strconv.Itoa(s.TotalAT))
	add("Records in Both (No Action Required)", strconv.Itoa(s.TotalCommon))
	add("", "")
	add("REQUIREMENT 1: Securities in CCP but NOT in AT", strconv.Itoa(s.Requirement1Count))
	add("  → Action: "+domain.ActionAddToAT, records(s.Requirement1Count))
	add("", "")
	add("REQUIREMENT 2: Securities in AT but NOT in CCP", strconv.Itoa(s.Requirement2Count))
	add("  → Action: "+domain.ActionReviewATOnly, records(s.Requirement2Count))
	add("", "")
	add("REQUIREMENT 3: Securities in BOTH with Config Mismatch", strconv.Itoa(s.Requirement3Count))
	add("  → Action: "+domain.ActionUpdateAT, records(s.Requirement3Count))
	add("", "")
	add("TOTAL Records Requiring Action", strconv.Itoa(s.TotalActionRequired))
	add("", "")
	add("Ambiguous CCP Keys", strconv.Itoa(s.AmbiguousCCPKeys))
	add("Ambiguous AT Keys", strconv.Itoa(s.AmbiguousATKeys))
	add("CCP Rows With Null Key Part", strconv.Itoa(s.NullKeyRowsCCP))
	add("AT Rows With Null Key Part", strconv.Itoa(s.NullKeyRowsAT))
	add("", "")
	add("Report Generated", s.Timestamp)
	return t
}

// RequirementTable returns the table behind a single-sheet requirement
func RequirementTable(result *reconcile.Result, req domain.Requirement) (domain.Table, error) {
	if req == domain.RequirementReport {
		return SummaryReport(result.Statistics), nil
	}
	t, ok := result.Table(req)
	if !ok {
		return domain.Table{}, fmt.Errorf("requirement %s has no table", req)
	}
	return t, nil
}

// RequirementWorkbook is the one-sheet workbook served for a requirement
func RequirementWorkbook(result *reconcile.Result, req domain.Requirement) ([]Sheet, error) {
	t, err := RequirementTable(result, req)
	if err != nil {
		return nil, err
	}
	return []Sheet{{Name: ResultsSheet, Table: t}}, nil
}

// FullWorkbook holds the summary and every requirement on its own sheet
func FullWorkbook(result *reconcile.Result) []Sheet {
	sheets := make([]Sheet, 0, len(domain.Requirements))
	for _, req := range domain.Requirements {
		t, err := RequirementTable(result, req)
		if err != nil {
			continue
		}
		sheets = append(sheets, Sheet{Name: req.SheetName(), Table: t})
	}
	return sheets
}

// WriteBundle writes a ZIP holding one workbook per requirement
func WriteBundle(w io.Writer, result *reconcile.Result) error {
	zw := zip.NewWriter(w)
	for _, req := range domain.Requirements {
		sheets, err := RequirementWorkbook(result, req)
		if err != nil {
			zw.Close()
			return err
		}
		entry, err := zw.Create(req.FileName())
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s: %w", req.FileName(), err)
		}
		if err := WriteWorkbook(entry, sheets...); err != nil {
			zw.Close()
			return fmt.Errorf("%s: %w", req.FileName(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish bundle: %w", err)
	}
	return nil
}

// Render writes the download for req: a workbook, or the ZIP bundle for "all"
func Render(w io.Writer, result *reconcile.Result, req domain.Requirement) error {
	if req == domain.RequirementAll {
		return WriteBundle(w, result)
	}
	sheets, err := RequirementWorkbook(result, req)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, sheets...)
}
