// Package audit checks that loaded inputs survive reconciliation without
// silently losing or duplicating records.
package audit

import (
	"fmt"
	"strings"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// Status of a single check
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is the outcome of one audit step
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Report collects every check of an audit run
type Report struct {
	Checks     []Check `json:"checks"`
	CCPKeys    int     `json:"ccp_keys"`
	ATKeys     int     `json:"at_keys"`
	CommonKeys int     `json:"common_keys"`
}

// Healthy reports whether no check failed
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Check returns the named check
func (r *Report) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
}

// Check names
const (
	CheckLoadCounts      = "load_counts"
	CheckEmptyRows       = "empty_rows"
	CheckCriticalNulls   = "critical_nulls"
	CheckSymbolColumns   = "symbol_columns"
	CheckRuleExchanges   = "duplicate_rule_exchanges"
	CheckMergePreserved  = "merge_preservation"
	CheckNullKeys        = "null_keys"
	CheckKeyAccounting   = "key_accounting"
	CheckDuplicateKeys   = "duplicate_key_rows"
	CheckSymbolSpaces    = "symbol_whitespace"
	CheckMappingCoverage = "mapping_coverage"
)

// Run audits raw input tables against the mapping. Steps that depend on a
// failed step are skipped.
func Run(in reconcile.Input, m reconcile.FieldMapping) *Report {
	if m == nil {
		m = reconcile.DefaultMapping()
	}
	r := &Report{}

	security := reconcile.NormalizeColumns(in.Security)
	rules := reconcile.NormalizeColumns(in.Rules)
	at := reconcile.NormalizeColumns(in.AT)

	r.add(CheckLoadCounts, StatusOK, "ccp security %d, ccp rules %d, at %d rows",
		security.Len(), rules.Len(), at.Len())

	empty := []int{emptyRows(security), emptyRows(rules), emptyRows(at)}
	if empty[0]+empty[1]+empty[2] > 0 {
		r.add(CheckEmptyRows, StatusWarn, "fully empty rows processed as data: ccp security %d, ccp rules %d, at %d",
			empty[0], empty[1], empty[2])
	} else {
		r.add(CheckEmptyRows, StatusOK, "no fully empty rows")
	}

	for _, t := range []domain.Table{security, rules, at} {
		if !t.HasColumn(reconcile.ExchangeColumn) {
			r.add(CheckCriticalNulls, StatusFail, "%s: exchange column not found", t.Name)
			return r
		}
	}

	ccpSymbol, err := reconcile.DetectSymbolColumn(security)
	if err != nil {
		r.add(CheckSymbolColumns, StatusFail, "%v", err)
		return r
	}
	atSymbol, err := reconcile.DetectSymbolColumn(at)
	if err != nil {
		r.add(CheckSymbolColumns, StatusFail, "%v", err)
		return r
	}
	r.add(CheckSymbolColumns, StatusOK, "ccp %s, at %s", ccpSymbol, atSymbol)

	nulls := []int{
		nullCount(security, reconcile.ExchangeColumn),
		nullCount(security, ccpSymbol),
		nullCount(rules, reconcile.ExchangeColumn),
		nullCount(at, reconcile.ExchangeColumn),
		nullCount(at, atSymbol),
	}
	detail := fmt.Sprintf("null values: ccp security exchange %d, ccp security %s %d, ccp rules exchange %d, at exchange %d, at %s %d",
		nulls[0], ccpSymbol, nulls[1], nulls[2], nulls[3], atSymbol, nulls[4])
	if sum(nulls) > 0 {
		r.add(CheckCriticalNulls, StatusWarn, "%s", detail)
	} else {
		r.add(CheckCriticalNulls, StatusOK, "%s", detail)
	}

	if dups := duplicateExchanges(rules); len(dups) > 0 {
		r.add(CheckRuleExchanges, StatusFail, "multiple rules for exchanges: %s", strings.Join(dups, ", "))
		return r
	}
	r.add(CheckRuleExchanges, StatusOK, "one rule per exchange")

	combined, err := reconcile.Combine(security, rules)
	if err != nil {
		r.add(CheckMergePreserved, StatusFail, "%v", err)
		return r
	}
	if combined.Len() != security.Len() {
		r.add(CheckMergePreserved, StatusFail, "expected %d rows after merge, got %d", security.Len(), combined.Len())
		return r
	}
	r.add(CheckMergePreserved, StatusOK, "all %d ccp security rows preserved", combined.Len())

	ccpKeys := keyCounts(combined, ccpSymbol)
	atKeys := keyCounts(at, atSymbol)
	r.CCPKeys, r.ATKeys = len(ccpKeys.counts), len(atKeys.counts)

	if ccpKeys.nullRows+atKeys.nullRows > 0 {
		r.add(CheckNullKeys, StatusWarn, "rows with a null key part: ccp %d, at %d", ccpKeys.nullRows, atKeys.nullRows)
	} else {
		r.add(CheckNullKeys, StatusOK, "no null key parts")
	}

	missing, extra := 0, 0
	for k := range ccpKeys.counts {
		if _, ok := atKeys.counts[k]; ok {
			r.CommonKeys++
		} else {
			missing++
		}
	}
	for k := range atKeys.counts {
		if _, ok := ccpKeys.counts[k]; !ok {
			extra++
		}
	}
	if missing+r.CommonKeys == r.CCPKeys && extra+r.CommonKeys == r.ATKeys {
		r.add(CheckKeyAccounting, StatusOK, "ccp %d = %d missing in at + %d common; at %d = %d missing in ccp + %d common",
			r.CCPKeys, missing, r.CommonKeys, r.ATKeys, extra, r.CommonKeys)
	} else {
		r.add(CheckKeyAccounting, StatusFail, "keys unaccounted for: ccp %d vs %d, at %d vs %d",
			r.CCPKeys, missing+r.CommonKeys, r.ATKeys, extra+r.CommonKeys)
	}

	if d := ccpKeys.duplicated() + atKeys.duplicated(); d > 0 {
		r.add(CheckDuplicateKeys, StatusWarn, "keys on more than one row: ccp %d, at %d", ccpKeys.duplicated(), atKeys.duplicated())
	} else {
		r.add(CheckDuplicateKeys, StatusOK, "every key is on one row")
	}

	cs, as := paddedCount(security, ccpSymbol), paddedCount(at, atSymbol)
	if cs+as > 0 {
		r.add(CheckSymbolSpaces, StatusWarn, "symbols with surrounding whitespace: ccp %d, at %d", cs, as)
	} else {
		r.add(CheckSymbolSpaces, StatusOK, "no surrounding whitespace in symbols")
	}

	var absent []string
	for _, p := range m.MappedPairs() {
		if m.IsExcluded(p.AT) || m.IsExcluded(p.CCP) || p.AT == atSymbol || p.AT == reconcile.ExchangeColumn {
			continue
		}
		if !at.HasColumn(p.AT) {
			absent = append(absent, p.AT)
		}
	}
	if len(absent) > 0 {
		r.add(CheckMappingCoverage, StatusWarn, "mapped fields absent from at: %s", strings.Join(absent, ", "))
	} else {
		r.add(CheckMappingCoverage, StatusOK, "every mapped field present in at")
	}

	return r
}

type keyStats struct {
	counts   map[string]int
	nullRows int
}

func (k keyStats) duplicated() int {
	n := 0
	for _, c := range k.counts {
		if c > 1 {
			n++
		}
	}
	return n
}

func keyCounts(t domain.Table, symbolCol string) keyStats {
	ks := keyStats{counts: make(map[string]int, t.Len())}
	for i := 0; i < t.Len(); i++ {
		sym, ex := t.Value(i, symbolCol), t.Value(i, reconcile.ExchangeColumn)
		if reconcile.HasNullKeyPart(sym, ex) {
			ks.nullRows++
		}
		ks.counts[reconcile.CompositeKey(sym, ex)]++
	}
	return ks
}

func emptyRows(t domain.Table) int {
	n := 0
	for _, row := range t.Rows {
		blank := true
		for _, v := range row {
			if !v.IsNull() {
				blank = false
				break
			}
		}
		if blank {
			n++
		}
	}
	return n
}

func nullCount(t domain.Table, column string) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, column).IsNull() {
			n++
		}
	}
	return n
}

func paddedCount(t domain.Table, column string) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, column)
		if !v.IsNull() && v.String() != strings.TrimSpace(v.String()) {
			n++
		}
	}
	return n
}

func duplicateExchanges(rules domain.Table) []string {
	seen := make(map[string]int)
	var dups []string
	for i := 0; i < rules.Len(); i++ {
		v := rules.Value(i, reconcile.ExchangeColumn)
		if v.IsNull() {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(v.String()))
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
