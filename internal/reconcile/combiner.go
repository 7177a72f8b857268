package reconcile

import (
	"strings"

	"wlrecon/pkg/contracts/domain"
)

// ExchangeColumn is the join column shared by every input table
const ExchangeColumn = "exchange"

// Overlap suffixes for non-key columns present in both CCP tables. The bare
// column name keeps the security value.
const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// exchangeJoinKey is the value used to match security rows to rule rows.
// Null exchanges never join.
func exchangeJoinKey(v domain.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(v.String())), true
}

// Combine left-joins the security table to the rules table on exchange.
// Every security row appears exactly once, in order. Security rows whose
// exchange has no rule row get null rule columns.
func Combine(security, rules domain.Table) (domain.Table, error) {
	secEx := security.ColumnIndex(ExchangeColumn)
	if secEx < 0 {
		return domain.Table{}, missingColumn(security.Name, ExchangeColumn, security.Columns)
	}
	rulesEx := rules.ColumnIndex(ExchangeColumn)
	if rulesEx < 0 {
		return domain.Table{}, missingColumn(rules.Name, ExchangeColumn, rules.Columns)
	}

	ruleRow, err := indexRules(rules, rulesEx)
	if err != nil {
		return domain.Table{}, err
	}

	// Lay out output columns: security columns first, then rule columns.
	secCols := make(map[string]bool, len(security.Columns))
	for _, c := range security.Columns {
		secCols[c] = true
	}
	columns := append([]string{}, security.Columns...)
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	type source struct {
		fromRules bool
		index     int
	}
	sources := make([]source, 0, len(security.Columns)+len(rules.Columns))
	for i := range security.Columns {
		sources = append(sources, source{index: i})
	}
	addColumn := func(name string, src source) {
		if taken[name] {
			return
		}
		taken[name] = true
		columns = append(columns, name)
		sources = append(sources, src)
	}
	for i, c := range rules.Columns {
		if i == rulesEx {
			continue
		}
		if secCols[c] {
			addColumn(c+leftSuffix, source{index: security.ColumnIndex(c)})
			addColumn(c+rightSuffix, source{fromRules: true, index: i})
			continue
		}
		addColumn(c, source{fromRules: true, index: i})
	}

	out := domain.NewTable(security.Name, columns)
	out.Rows = make([][]domain.Value, len(security.Rows))
	for r, secRow := range security.Rows {
		var rule []domain.Value
		if key, ok := exchangeJoinKey(secRow[secEx]); ok {
			if idx, found := ruleRow[key]; found {
				rule = rules.Rows[idx]
			}
		}

		row := make([]domain.Value, len(columns))
		for c, src := range sources {
			switch {
			case !src.fromRules:
				row[c] = secRow[src.index]
			case rule != nil:
				row[c] = rule[src.index]
			default:
				row[c] = domain.Null()
			}
		}
		out.Rows[r] = row
	}

	return out, nil
}

// indexRules maps each exchange to its single rule row.
func indexRules(rules domain.Table, exchangeIdx int) (map[string]int, error) {
	counts := make(map[string]int, len(rules.Rows))
	for _, row := range rules.Rows {
		if key, ok := exchangeJoinKey(row[exchangeIdx]); ok {
			counts[key]++
		}
	}

	index := make(map[string]int, len(counts))
	for i, row := range rules.Rows {
		key, ok := exchangeJoinKey(row[exchangeIdx])
		if !ok {
			continue
		}
		if counts[key] > 1 {
			return nil, &MultiplicityError{
				Table:    rules.Name,
				Exchange: row[exchangeIdx].String(),
				Rows:     counts[key],
			}
		}
		index[key] = i
	}
	return index, nil
}
