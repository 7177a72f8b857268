package reconcile

import (
	"sort"
	"strings"
)

// FieldPair maps a CCP field to its AT counterpart. An empty AT field marks
// a CCP-only field that is carried for review but never compared.
type FieldPair struct {
	CCP string `json:"ccp" yaml:"ccp"`
	AT  string `json:"at" yaml:"at"`
}

// CCPOnly reports whether the pair has no AT counterpart
func (p FieldPair) CCPOnly() bool {
	return p.AT == ""
}

// FieldMapping is the read-only correspondence between CCP and AT fields.
// Implementations are resolved once per run and never change during it.
type FieldMapping interface {
	// Entries returns every pair in declaration order, CCP-only pairs included.
	Entries() []FieldPair
	// MappedPairs returns the pairs with a non-empty AT field, in order.
	MappedPairs() []FieldPair
	// IsExcluded reports whether a field is never compared. Case-insensitive.
	IsExcluded(field string) bool
}

// MappingTable is the standard FieldMapping implementation
type MappingTable struct {
	entries  []FieldPair
	excluded map[string]struct{}
}

// NewMappingTable builds a mapping. Field names are trimmed and lowercased.
func NewMappingTable(entries []FieldPair, excluded []string) *MappingTable {
	m := &MappingTable{
		entries:  make([]FieldPair, 0, len(entries)),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, e := range entries {
		ccp := strings.ToLower(strings.TrimSpace(e.CCP))
		if ccp == "" {
			continue
		}
		m.entries = append(m.entries, FieldPair{CCP: ccp, AT: strings.ToLower(strings.TrimSpace(e.AT))})
	}
	for _, x := range excluded {
		m.excluded[strings.ToLower(strings.TrimSpace(x))] = struct{}{}
	}
	return m
}

// Entries implements FieldMapping
func (m *MappingTable) Entries() []FieldPair {
	out := make([]FieldPair, len(m.entries))
	copy(out, m.entries)
	return out
}

// MappedPairs implements FieldMapping
func (m *MappingTable) MappedPairs() []FieldPair {
	out := make([]FieldPair, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.CCPOnly() {
			out = append(out, e)
		}
	}
	return out
}

// IsExcluded implements FieldMapping
func (m *MappingTable) IsExcluded(field string) bool {
	_, ok := m.excluded[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// ExcludedFields returns the exclusion set, sorted.
func (m *MappingTable) ExcludedFields() []string {
	out := make([]string, 0, len(m.excluded))
	for f := range m.excluded {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries
func (m *MappingTable) Len() int {
	return len(m.entries)
}

// DefaultExcludedFields are audit and bookkeeping columns never compared.
var DefaultExcludedFields = []string{
	"composite_key",
	"updated_date",
	"created_by",
	"institution",
	"updated_by",
	"last_updated",
}

var defaultMapping = NewMappingTable([]FieldPair{
	{CCP: "symbol", AT: "symbol"},
	{CCP: "exchange", AT: "exchange"},
	{CCP: "security_name"},
	{CCP: "currency"},
	{CCP: "isin"},
	{CCP: "country_code"},
	{CCP: "mic_code_x"},
	{CCP: "bbg_ticker"},
	{CCP: "tcl1"},
	{CCP: "tcl2"},
	{CCP: "tcl3"},
	{CCP: "status"},
	{CCP: "tradability"},
	{CCP: "mic_code_y"},
	{CCP: "minimum_order_value", AT: "minimum_order_value"},
	{CCP: "minimum_order_quantity", AT: "minimum_quantity"},
	{CCP: "minimum_ticker_price", AT: "min_ticker_price"},
	{CCP: "maximum_price_diff_preev_cls"},
	{CCP: "maximum_price_diff_other_prices"},
	{CCP: "enb_wfa_ord_in_prc_validtn"},
	{CCP: "buy_restricted"},
	{CCP: "sell_restricted"},
	{CCP: "maximum_notional", AT: "max_notional"},
	{CCP: "maximum_quantity", AT: "minimum_quantity"},
	{CCP: "maximum_single_moo_pool_quantity", AT: "max_single_moo_pool_qty"},
	{CCP: "accumulate_fractional_moo_order", AT: "accumulate_fractional_moo_order"},
	{CCP: "combine_buy_sell_moo_pool_order", AT: "combine_buy/sell_moo_pool_order"},
	{CCP: "accumulate_moo_in_pre_open", AT: "accumulate_moo_in_pre-open"},
	{CCP: "national_moo_pool_order", AT: "notional_moo_pool_order"},
	{CCP: "maximum_internal_exec_quantity", AT: "max_internal_exec_qty"},
	{CCP: "allow_less_than_one_execute_internally", AT: "allow_less_than_one_exec_intly"},
	{CCP: "enable_limit_less_than_eqty_min", AT: "enabled_limit_less_than_equity_min"},
	{CCP: "maximum_pool_profit_percent", AT: "max_pool_profit_%"},
	{CCP: "maximum_pool_loss_percent", AT: "max_pool_loss_%"},
	{CCP: "minimum_auto_close_quantity", AT: "min_auto_close_qty"},
	{CCP: "maximum_market_value_allowed_in_pool", AT: "max_market_value_allowed_in_pool"},
	{CCP: "allow_auto_close_limit"},
	{CCP: "allow_auto_close_whole_quantity_in_pool", AT: "allow_auto_close_whole_qty_pool"},
	{CCP: "allow_auto_close_whole_quantity_in_pool_scheduler", AT: "allow_auto_close_whole_qty_in_pool_scheduler"},
	{CCP: "minimum_quantity_for_additional_price_percent", AT: "minimum_qty_for_additional_price_%"},
	{CCP: "additional_price_percent", AT: "additional_price_%"},
	{CCP: "redis_price_enabled"},
	{CCP: "price_bracket_enabled", AT: "price_bracket_enabled"},
}, DefaultExcludedFields)

// DefaultMapping returns the built-in CCP to AT field mapping. The returned
// table is shared and must not be modified.
func DefaultMapping() *MappingTable {
	return defaultMapping
}
