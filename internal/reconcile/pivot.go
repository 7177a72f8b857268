package reconcile

import (
	"sort"
	"strconv"

	"wlrecon/pkg/contracts/domain"
)

// Pivot table columns
const (
	PivotFieldColumn = "field"
	PivotTotalColumn = "Total"
)

// PivotRow counts mismatches of one field per exchange.
type PivotRow struct {
	Field  string         `json:"field"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// PivotSummary shows which fields are out of sync and where.
type PivotSummary struct {
	Exchanges []string   `json:"exchanges"`
	Rows      []PivotRow `json:"rows"`
}

// BuildPivot explodes each record's mismatched fields into (field, exchange)
// pairs and counts them. Rows are sorted by Total descending, then by field.
func BuildPivot(records []MismatchRecord) PivotSummary {
	byField := make(map[string]*PivotRow)
	exchanges := make(map[string]struct{})

	for _, rec := range records {
		exchange := rec.Exchange.KeyString()
		exchanges[exchange] = struct{}{}
		for _, field := range rec.MismatchedFields {
			row, ok := byField[field]
			if !ok {
				row = &PivotRow{Field: field, Counts: make(map[string]int)}
				byField[field] = row
			}
			row.Counts[exchange]++
			row.Total++
		}
	}

	summary := PivotSummary{
		Exchanges: make([]string, 0, len(exchanges)),
		Rows:      make([]PivotRow, 0, len(byField)),
	}
	for ex := range exchanges {
		summary.Exchanges = append(summary.Exchanges, ex)
	}
	sort.Strings(summary.Exchanges)

	for _, row := range byField {
		summary.Rows = append(summary.Rows, *row)
	}
	sort.Slice(summary.Rows, func(i, j int) bool {
		if summary.Rows[i].Total != summary.Rows[j].Total {
			return summary.Rows[i].Total > summary.Rows[j].Total
		}
		return summary.Rows[i].Field < summary.Rows[j].Field
	})
	return summary
}

// Count returns the cell for field and exchange, 0 when absent.
func (p PivotSummary) Count(field, exchange string) int {
	for _, row := range p.Rows {
		if row.Field == field {
			return row.Counts[exchange]
		}
	}
	return 0
}

// Table renders the pivot as field, one column per exchange, Total.
func (p PivotSummary) Table() domain.Table {
	columns := append([]string{PivotFieldColumn}, p.Exchanges...)
	columns = append(columns, PivotTotalColumn)

	out := domain.NewTable(string(domain.RequirementPivot), columns)
	for _, row := range p.Rows {
		cells := make([]domain.Value, 0, len(columns))
		cells = append(cells, domain.StringValue(row.Field))
		for _, ex := range p.Exchanges {
			cells = append(cells, domain.StringValue(strconv.Itoa(row.Counts[ex])))
		}
		cells = append(cells, domain.StringValue(strconv.Itoa(row.Total)))
		out.Rows = append(out.Rows, cells)
	}
	return out
}
