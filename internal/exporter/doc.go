// Package exporter writes reconciliation results for people to read.
//
// It contains three components:
//
// CSVWriter: writes any domain.Table as CSV with a UTF-8 BOM for Excel
// compatibility, to a writer or to a file under the output directory.
//
// Workbooks: WriteWorkbook renders sheets through excelize with a bold header
// row and content-sized columns. RequirementWorkbook produces the single
// "Results" sheet served by downloads and FullWorkbook the combined
// Summary / CCP_Not_In_AT / AT_Not_In_CCP / Config_Mismatch / Mismatch_Pivot
// workbook written by the CLI.
//
// Bundles: WriteBundle zips every per-requirement workbook of a run.
//
// Example usage:
//
//	var buf bytes.Buffer
//	if err := exporter.WriteWorkbook(&buf, exporter.FullWorkbook(result)...); err != nil {
//		return err
//	}
package exporter
