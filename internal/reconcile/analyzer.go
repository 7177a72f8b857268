package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"wlrecon/pkg/contracts/domain"
)

// Requirement 3 output columns
const (
	ATPrefix               = "at_"
	CCPPrefix              = "ccp_"
	MismatchedFieldsColumn = "mismatched_fields"
	ActionColumn           = "action"
)

// MismatchRecord is one common key whose mapped fields disagree.
type MismatchRecord struct {
	Key              string                  `json:"key"`
	Symbol           domain.Value            `json:"symbol"`
	Exchange         domain.Value            `json:"exchange"`
	AT               map[string]domain.Value `json:"at"`
	CCP              map[string]domain.Value `json:"ccp"`
	MismatchedFields []string                `json:"mismatched_fields"`
}

// Analysis holds the three requirement tables and the mismatch pivot.
type Analysis struct {
	Requirement1 domain.Table
	Requirement2 domain.Table
	Requirement3 domain.Table
	Mismatches   []MismatchRecord
	Pivot        PivotSummary

	CCPKeys    int
	ATKeys     int
	CommonKeys int

	AmbiguousCCPKeys []string
	AmbiguousATKeys  []string
	NullKeyRowsCCP   int
	NullKeyRowsAT    int
}

// Analyzer compares an aligned, keyed CCP table with a keyed AT table.
type Analyzer struct {
	mapping FieldMapping
	logger  *slog.Logger
}

// NewAnalyzer creates an analyzer for the given mapping
func NewAnalyzer(m FieldMapping, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{mapping: m, logger: logger.With(slog.String("component", "analyzer"))}
}

// keyIndex groups row positions by composite key in first-appearance order.
type keyIndex struct {
	order []string
	rows  map[string][]int
}

func buildKeyIndex(t domain.Table) (*keyIndex, error) {
	col, ok := t.Column(KeyColumn)
	if !ok {
		return nil, fmt.Errorf("%s: %w", t.Name, ErrMissingCompositeKey)
	}
	idx := &keyIndex{rows: make(map[string][]int, len(col))}
	for i, v := range col {
		k := v.String()
		if _, seen := idx.rows[k]; !seen {
			idx.order = append(idx.order, k)
		}
		idx.rows[k] = append(idx.rows[k], i)
	}
	return idx, nil
}

func (k *keyIndex) has(key string) bool {
	_, ok := k.rows[key]
	return ok
}

// first returns the first row carrying key, in table order.
func (k *keyIndex) first(key string) int {
	return k.rows[key][0]
}

func (k *keyIndex) ambiguous() []string {
	var out []string
	for _, key := range k.order {
		if len(k.rows[key]) > 1 {
			out = append(out, key)
		}
	}
	return out
}

// Analyze computes requirement 1 (CCP-only keys), requirement 2 (AT-only keys)
// and requirement 3 (common keys with mismatched mapped fields). Both tables
// must carry a composite_key column. atSymbol names the symbol column shared
// by the aligned CCP table and the AT table.
func (a *Analyzer) Analyze(ctx context.Context, ccp, at domain.Table, atSymbol string) (*Analysis, error) {
	ccpIdx, err := buildKeyIndex(ccp)
	if err != nil {
		return nil, err
	}
	atIdx, err := buildKeyIndex(at)
	if err != nil {
		return nil, err
	}

	res := &Analysis{
		CCPKeys:          len(ccpIdx.order),
		ATKeys:           len(atIdx.order),
		AmbiguousCCPKeys: ccpIdx.ambiguous(),
		AmbiguousATKeys:  atIdx.ambiguous(),
		NullKeyRowsCCP:   countNullKeyRows(ccp, atSymbol),
		NullKeyRowsAT:    countNullKeyRows(at, atSymbol),
	}

	// Requirement 1 and 2 keep every row of a one-sided key, in table order.
	var req1Rows, req2Rows []int
	for i, v := range mustColumn(ccp, KeyColumn) {
		if !atIdx.has(v.String()) {
			req1Rows = append(req1Rows, i)
		}
	}
	for i, v := range mustColumn(at, KeyColumn) {
		if !ccpIdx.has(v.String()) {
			req2Rows = append(req2Rows, i)
		}
	}
	if res.Requirement1, err = withAction(ccp.Select(req1Rows), domain.ActionAddToAT); err != nil {
		return nil, err
	}
	if res.Requirement2, err = withAction(at.Select(req2Rows), domain.ActionReviewATOnly); err != nil {
		return nil, err
	}
	res.Requirement1.Name = string(domain.RequirementMissingInAT)
	res.Requirement2.Name = string(domain.RequirementMissingInCCP)

	a.warnAmbiguous(ctx, "ccp", ccp.Name, res.AmbiguousCCPKeys, ccpIdx)
	a.warnAmbiguous(ctx, "at", at.Name, res.AmbiguousATKeys, atIdx)

	// Requirement 3 walks common keys in CCP first-appearance order.
	fields := a.comparableFields(atSymbol)
	for _, key := range ccpIdx.order {
		if !atIdx.has(key) {
			continue
		}
		res.CommonKeys++

		ccpRow := ccpIdx.first(key)
		atRow := atIdx.first(key)

		var mismatched []string
		for _, f := range fields {
			if !ValuesMatch(ccpFieldValue(ccp, ccpRow, f), at.Value(atRow, f.AT)) {
				mismatched = append(mismatched, f.AT)
			}
		}
		if len(mismatched) == 0 {
			continue
		}
		res.Mismatches = append(res.Mismatches, MismatchRecord{
			Key:              key,
			Symbol:           at.Value(atRow, atSymbol),
			Exchange:         at.Value(atRow, ExchangeColumn),
			AT:               sideValues(at, atRow, atSymbol),
			CCP:              sideValues(ccp, ccpRow, atSymbol),
			MismatchedFields: mismatched,
		})
	}

	res.Requirement3 = mismatchTable(res.Mismatches, ccp, at, atSymbol)
	res.Pivot = BuildPivot(res.Mismatches)

	a.logger.InfoContext(ctx, "requirements analysis completed",
		slog.Int("requirement_1", res.Requirement1.Len()),
		slog.Int("requirement_2", res.Requirement2.Len()),
		slog.Int("requirement_3", res.Requirement3.Len()),
		slog.Int("common_keys", res.CommonKeys),
		slog.Int("compared_fields", len(fields)))

	return res, nil
}

// comparableFields returns the mapped pairs that take part in requirement 3.
// Each AT field is compared once, using its first mapping entry.
func (a *Analyzer) comparableFields(atSymbol string) []FieldPair {
	identity := map[string]bool{atSymbol: true, ExchangeColumn: true, KeyColumn: true}
	seen := make(map[string]bool)
	var out []FieldPair
	for _, p := range a.mapping.MappedPairs() {
		if identity[p.AT] || seen[p.AT] {
			continue
		}
		if a.mapping.IsExcluded(p.AT) || a.mapping.IsExcluded(p.CCP) {
			continue
		}
		seen[p.AT] = true
		out = append(out, p)
	}
	return out
}

func (a *Analyzer) warnAmbiguous(ctx context.Context, side, table string, keys []string, idx *keyIndex) {
	for _, key := range keys {
		a.logger.WarnContext(ctx, "duplicate composite key, using first row",
			slog.String("side", side),
			slog.String("table", table),
			slog.String("key", key),
			slog.Int("rows", len(idx.rows[key])))
	}
}

// ccpFieldValue reads the aligned AT-named column, falling back to the
// ccp_only_ copy of the CCP field.
func ccpFieldValue(ccp domain.Table, row int, f FieldPair) domain.Value {
	if ccp.HasColumn(f.AT) {
		return ccp.Value(row, f.AT)
	}
	if name := CCPOnlyPrefix + f.CCP; ccp.HasColumn(name) {
		return ccp.Value(row, name)
	}
	return domain.Null()
}

// sideColumns lists the non-identity columns of t, in order.
func sideColumns(t domain.Table, atSymbol string) []string {
	var out []string
	for _, c := range t.Columns {
		if c == atSymbol || c == ExchangeColumn || c == KeyColumn {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sideValues(t domain.Table, row int, atSymbol string) map[string]domain.Value {
	cols := sideColumns(t, atSymbol)
	out := make(map[string]domain.Value, len(cols))
	for _, c := range cols {
		out[c] = t.Value(row, c)
	}
	return out
}

// mismatchTable renders mismatch records side by side for review.
func mismatchTable(records []MismatchRecord, ccp, at domain.Table, atSymbol string) domain.Table {
	atCols := sideColumns(at, atSymbol)
	ccpCols := sideColumns(ccp, atSymbol)

	columns := []string{atSymbol, ExchangeColumn}
	for _, c := range atCols {
		columns = append(columns, ATPrefix+c)
	}
	for _, c := range ccpCols {
		columns = append(columns, CCPPrefix+c)
	}
	columns = append(columns, MismatchedFieldsColumn, ActionColumn)

	out := domain.NewTable(string(domain.RequirementMismatch), columns)
	for _, rec := range records {
		row := make([]domain.Value, 0, len(columns))
		row = append(row, rec.Symbol, rec.Exchange)
		for _, c := range atCols {
			row = append(row, rec.AT[c])
		}
		for _, c := range ccpCols {
			row = append(row, rec.CCP[c])
		}
		row = append(row,
			domain.StringValue(strings.Join(rec.MismatchedFields, ", ")),
			domain.StringValue(domain.ActionUpdateAT))
		out.Rows = append(out.Rows, row)
	}
	return out
}

// withAction drops the key column and appends a constant action column.
func withAction(t domain.Table, action string) (domain.Table, error) {
	t = t.DropColumn(KeyColumn)
	values := make([]domain.Value, t.Len())
	for i := range values {
		values[i] = domain.StringValue(action)
	}
	return t.SetColumn(ActionColumn, values)
}

func countNullKeyRows(t domain.Table, symbolCol string) int {
	n := 0
	for i := range t.Rows {
		if HasNullKeyPart(t.Value(i, symbolCol), t.Value(i, ExchangeColumn)) {
			n++
		}
	}
	return n
}

func mustColumn(t domain.Table, name string) []domain.Value {
	col, _ := t.Column(name)
	return col
}
