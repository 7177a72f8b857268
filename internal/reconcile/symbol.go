package reconcile

import "wlrecon/pkg/contracts/domain"

// SymbolCandidates lists identifier column names in detection priority.
var SymbolCandidates = []string{"symbol", "security_id", "isin", "cusip", "identifier", "secid"}

// DetectSymbolColumn returns the first candidate present in t.
func DetectSymbolColumn(t domain.Table) (string, error) {
	for _, c := range SymbolCandidates {
		if t.HasColumn(c) {
			return c, nil
		}
	}
	return "", missingColumn(t.Name, "symbol", t.Columns)
}
