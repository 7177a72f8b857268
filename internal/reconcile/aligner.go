package reconcile

import (
	"wlrecon/pkg/contracts/domain"
)

// CCPOnlyPrefix marks aligned columns that have no AT counterpart
const CCPOnlyPrefix = "ccp_only_"

// Align projects the combined CCP table onto AT field names.
//
// The result starts with the CCP symbol column renamed to atSymbol and the
// exchange column. Mapping entries are then applied in order: mapped fields
// are copied under their AT name (null when the CCP field is absent) and
// CCP-only fields are copied under ccp_only_<field> when present. A later
// entry targeting the same AT name replaces the earlier one. The identity
// columns are never replaced by mapping entries.
func Align(combined domain.Table, ccpSymbol, atSymbol string, m FieldMapping) (domain.Table, error) {
	symIdx := combined.ColumnIndex(ccpSymbol)
	if symIdx < 0 {
		return domain.Table{}, missingColumn(combined.Name, ccpSymbol, combined.Columns)
	}
	exIdx := combined.ColumnIndex(ExchangeColumn)
	if exIdx < 0 {
		return domain.Table{}, missingColumn(combined.Name, ExchangeColumn, combined.Columns)
	}

	// sources[i] is the combined column feeding output column i, -1 for nulls
	columns := []string{atSymbol, ExchangeColumn}
	sources := []int{symIdx, exIdx}
	position := map[string]int{atSymbol: 0, ExchangeColumn: 1}

	assign := func(name string, src int) {
		if pos, ok := position[name]; ok {
			if pos < 2 {
				return
			}
			sources[pos] = src
			return
		}
		position[name] = len(columns)
		columns = append(columns, name)
		sources = append(sources, src)
	}

	for _, e := range m.Entries() {
		src := combined.ColumnIndex(e.CCP)
		if e.CCPOnly() {
			if src >= 0 {
				assign(CCPOnlyPrefix+e.CCP, src)
			}
			continue
		}
		assign(e.AT, src)
	}

	out := domain.NewTable(combined.Name, columns)
	out.Rows = make([][]domain.Value, len(combined.Rows))
	for r, in := range combined.Rows {
		row := make([]domain.Value, len(columns))
		for c, src := range sources {
			if src >= 0 {
				row[c] = in[src]
			}
		}
		out.Rows[r] = row
	}
	return out, nil
}
