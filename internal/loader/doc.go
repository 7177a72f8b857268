// Package loader turns spreadsheets into domain tables and assigns them to
// reconciliation roles.
//
// Supported sources are Excel workbooks (.xlsx, .xlsm) read with excelize,
// CSV files, and Google Sheets ranges. Blank or whitespace-only cells load as
// null values. Fully blank rows inside the data are kept as all-null rows so
// that integrity checks can report them; trailing blank rows are dropped.
//
// Role assignment works on file names (see domain.DetectRole). LoadInputs
// reads the assigned files concurrently and fingerprints each one with
// BLAKE2b so a run can be tied to its exact inputs.
package loader
