package fieldmap

import (
	"log/slog"

	"github.com/agnivade/levenshtein"

	"wlrecon/internal/reconcile"
)

// DefaultThreshold is the minimum similarity for a substitution
const DefaultThreshold = 0.85

// Resolution records one CCP field name replaced by a close column name
type Resolution struct {
	Declared   string  `json:"declared"`
	Resolved   string  `json:"resolved"`
	Similarity float64 `json:"similarity"`
}

// Similarity is 1 - distance / longest length, in [0, 1]
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Resolve rewrites mapping entries whose CCP field is absent from
// ccpColumns to the most similar unclaimed column, when the similarity
// reaches threshold. Fields already present, and columns claimed by another
// entry, are left alone. The original mapping is not modified.
func Resolve(m reconcile.FieldMapping, ccpColumns []string, threshold float64, logger *slog.Logger) (*reconcile.MappingTable, []Resolution) {
	if logger == nil {
		logger = slog.Default()
	}

	present := make(map[string]bool, len(ccpColumns))
	for _, c := range ccpColumns {
		present[c] = true
	}
	entries := m.Entries()
	claimed := make(map[string]bool, len(entries))
	for _, e := range entries {
		if present[e.CCP] {
			claimed[e.CCP] = true
		}
	}

	var resolutions []Resolution
	for i, e := range entries {
		if present[e.CCP] {
			continue
		}
		best, score := "", 0.0
		for _, c := range ccpColumns {
			if claimed[c] {
				continue
			}
			if s := Similarity(e.CCP, c); s > score {
				best, score = c, s
			}
		}
		if best == "" || score < threshold {
			continue
		}

		claimed[best] = true
		entries[i].CCP = best
		resolutions = append(resolutions, Resolution{Declared: e.CCP, Resolved: best, Similarity: score})
		logger.Info("Resolved mapping field",
			slog.String("declared", e.CCP),
			slog.String("resolved", best),
			slog.Float64("similarity", score))
	}

	return reconcile.NewMappingTable(entries, excludedOf(m)), resolutions
}

func excludedOf(m reconcile.FieldMapping) []string {
	if t, ok := m.(*reconcile.MappingTable); ok {
		return t.ExcludedFields()
	}
	return append([]string{}, reconcile.DefaultExcludedFields...)
}

// ResolveInput resolves m against the columns the combined CCP table of in
// will have. When the inputs cannot be combined the mapping is returned
// as-is and the engine reports the error.
func ResolveInput(m reconcile.FieldMapping, in reconcile.Input, threshold float64, logger *slog.Logger) (*reconcile.MappingTable, []Resolution) {
	combined, err := reconcile.Combine(reconcile.NormalizeColumns(in.Security), reconcile.NormalizeColumns(in.Rules))
	if err != nil {
		return reconcile.NewMappingTable(m.Entries(), excludedOf(m)), nil
	}
	return Resolve(m, combined.Columns, threshold, logger)
}
