package domain

import "fmt"

// Requirement identifies one reconciliation output
type Requirement string

const (
	RequirementMissingInAT  Requirement = "req1"
	RequirementMissingInCCP Requirement = "req2"
	RequirementMismatch     Requirement = "req3"
	RequirementPivot        Requirement = "pivot"
	RequirementReport       Requirement = "report"
	RequirementAll          Requirement = "all"
)

// Actions attached to requirement rows
const (
	ActionAddToAT      = "ADD to AT Asia Whitelist"
	ActionReviewATOnly = "REVIEW: Check activity/positions - DELETE or ADD to Exception List"
	ActionUpdateAT     = "UPDATE AT to match CCP and SETUP Market Exception rule in CCP"
)

// Requirements lists the downloadable single-sheet outputs in file order.
var Requirements = []Requirement{
	RequirementReport,
	RequirementMissingInAT,
	RequirementMissingInCCP,
	RequirementMismatch,
	RequirementPivot,
}

// ParseRequirement validates a requirement identifier
func ParseRequirement(s string) (Requirement, error) {
	switch r := Requirement(s); r {
	case RequirementMissingInAT, RequirementMissingInCCP, RequirementMismatch,
		RequirementPivot, RequirementReport, RequirementAll:
		return r, nil
	}
	return "", fmt.Errorf("unknown requirement %q", s)
}

// Action returns the action text for row-level requirements, or "".
func (r Requirement) Action() string {
	switch r {
	case RequirementMissingInAT:
		return ActionAddToAT
	case RequirementMissingInCCP:
		return ActionReviewATOnly
	case RequirementMismatch:
		return ActionUpdateAT
	}
	return ""
}

// FileName is the workbook name used for downloads
func (r Requirement) FileName() string {
	switch r {
	case RequirementMissingInAT:
		return "01_Securities_In_CCP_Not_In_AT.xlsx"
	case RequirementMissingInCCP:
		return "02_Securities_In_AT_Not_In_CCP.xlsx"
	case RequirementMismatch:
		return "03_Securities_Config_Mismatch.xlsx"
	case RequirementPivot:
		return "04_Mismatch_Pivot.xlsx"
	case RequirementReport:
		return "00_Comparison_Report.xlsx"
	case RequirementAll:
		return "Whitelist_Comparison.zip"
	}
	return string(r) + ".xlsx"
}

// SheetName is the sheet title used in the combined workbook
func (r Requirement) SheetName() string {
	switch r {
	case RequirementMissingInAT:
		return "CCP_Not_In_AT"
	case RequirementMissingInCCP:
		return "AT_Not_In_CCP"
	case RequirementMismatch:
		return "Config_Mismatch"
	case RequirementPivot:
		return "Mismatch_Pivot"
	case RequirementReport:
		return "Summary"
	}
	return string(r)
}
