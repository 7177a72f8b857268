package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/shared/testutil"
	"wlrecon/pkg/contracts/domain"
)

func keyed(t *testing.T, tbl domain.Table) domain.Table {
	t.Helper()
	out, err := WithCompositeKey(tbl, "symbol", ExchangeColumn)
	require.NoError(t, err)
	return out
}

func TestAnalyzer_Basic(t *testing.T) {
	ccp := keyed(t, testutil.BuildTable(t, "ccp", []string{"symbol", "exchange", "minimum_order_value"},
		[]string{"A", "X", "100"},
	))
	at := keyed(t, testutil.BuildTable(t, "at", []string{"symbol", "exchange", "minimum_order_value"},
		[]string{"A", "X", "50"},
		[]string{"C", "Z", "300"},
	))

	res, err := NewAnalyzer(DefaultMapping(), nil).Analyze(context.Background(), ccp, at, "symbol")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Requirement1.Len())

	require.Equal(t, 1, res.Requirement2.Len())
	assert.Equal(t, "C", res.Requirement2.Value(0, "symbol").String())
	assert.Equal(t, domain.ActionReviewATOnly, res.Requirement2.Value(0, ActionColumn).String())
	assert.False(t, res.Requirement2.HasColumn(KeyColumn), "key column is dropped")

	require.Equal(t, 1, res.Requirement3.Len())
	assert.Equal(t, "minimum_order_value", res.Requirement3.Value(0, MismatchedFieldsColumn).String())
	assert.Equal(t, domain.ActionUpdateAT, res.Requirement3.Value(0, ActionColumn).String())
	assert.Equal(t, []string{"symbol", "exchange", "at_minimum_order_value", "ccp_minimum_order_value", "mismatched_fields", "action"},
		res.Requirement3.Columns)
	assert.Equal(t, "50", res.Requirement3.Value(0, "at_minimum_order_value").String())
	assert.Equal(t, "100", res.Requirement3.Value(0, "ccp_minimum_order_value").String())

	assert.Equal(t, 1, res.CommonKeys)
	assert.Equal(t, 1, res.Pivot.Count("minimum_order_value", "X"))
}

func TestAnalyzer_Partition(t *testing.T) {
	ccp := keyed(t, testutil.BuildTable(t, "ccp", []string{"symbol", "exchange", "max_notional"},
		[]string{"AAA", "HK", "10"},
		[]string{"BBB", "HK", "20"},
		[]string{"ccc ", "sg", "30"},
		[]string{"DDD", "SG", "40"},
	))
	at := keyed(t, testutil.BuildTable(t, "at", []string{"symbol", "exchange", "max_notional", "updated_by"},
		[]string{"AAA", "HK", "10", "alice"},
		[]string{"CCC", "SG", "31", "bob"},
		[]string{"EEE", "JP", "1", "carol"},
	))

	res, err := NewAnalyzer(DefaultMapping(), nil).Analyze(context.Background(), ccp, at, "symbol")
	require.NoError(t, err)

	req1 := testutil.RecordsBy(res.Requirement1, "symbol", "exchange")
	req2 := testutil.RecordsBy(res.Requirement2, "symbol", "exchange")
	req3 := testutil.RecordsBy(res.Requirement3, "symbol", "exchange")

	assert.Equal(t, []string{"BBB|HK", "DDD|SG"}, testutil.SortedKeys(req1))
	assert.Equal(t, []string{"EEE|JP"}, testutil.SortedKeys(req2))
	assert.Equal(t, []string{"CCC|SG"}, testutil.SortedKeys(req3), "symbol and exchange come from the AT row")

	assert.Equal(t, domain.ActionAddToAT, req1["BBB|HK"][ActionColumn])
	assert.Equal(t, "max_notional", req3["CCC|SG"][MismatchedFieldsColumn])
	assert.Equal(t, "bob", req3["CCC|SG"]["at_updated_by"], "AT-side columns are carried for review")

	// ccp keys = req1 keys + common keys, at keys = req2 keys + common keys
	assert.Equal(t, 4, res.CCPKeys)
	assert.Equal(t, 3, res.ATKeys)
	assert.Equal(t, 2, res.CommonKeys)
	assert.Equal(t, res.CCPKeys, len(req1)+res.CommonKeys)
	assert.Equal(t, res.ATKeys, len(req2)+res.CommonKeys)
}

func TestAnalyzer_FieldRules(t *testing.T) {
	m := NewMappingTable([]FieldPair{
		{CCP: "symbol", AT: "symbol"},
		{CCP: "exchange", AT: "exchange"},
		{CCP: "status"},
		{CCP: "buy_enabled", AT: "buy_enabled"},
		{CCP: "minimum_order_quantity", AT: "minimum_quantity"},
		{CCP: "maximum_quantity", AT: "minimum_quantity"},
		{CCP: "last_updated", AT: "last_updated"},
		{CCP: "owner", AT: "audited_owner"},
		{CCP: "lot_size", AT: "lot"},
	}, []string{"last_updated", "owner"})

	ccp := keyed(t, testutil.BuildTable(t, "ccp",
		[]string{"symbol", "exchange", "buy_enabled", "minimum_quantity", "last_updated", "audited_owner", "ccp_only_lot_size"},
		[]string{"AAA", "HK", "Yes", "5", "2024-01-01", "ops", "100"},
	))
	at := keyed(t, testutil.BuildTable(t, "at",
		[]string{"symbol", "exchange", "buy_enabled", "minimum_quantity", "last_updated", "audited_owner", "lot"},
		[]string{"AAA", "HK", "TRUE", "6", "2025-05-05", "someone", "200"},
	))

	res, err := NewAnalyzer(m, nil).Analyze(context.Background(), ccp, at, "symbol")
	require.NoError(t, err)

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, []string{"minimum_quantity", "lot"}, res.Mismatches[0].MismatchedFields,
		"booleans fold, excluded fields are skipped, duplicate AT targets are compared once, ccp_only_ values are used as fallback")
}

func TestAnalyzer_NullValues(t *testing.T) {
	ccp := keyed(t, testutil.BuildTable(t, "ccp", []string{"symbol", "exchange", "max_notional", "min_ticker_price"},
		[]string{"AAA", "HK", testutil.Nil, testutil.Nil},
	))
	at := keyed(t, testutil.BuildTable(t, "at", []string{"symbol", "exchange", "max_notional", "min_ticker_price"},
		[]string{"AAA", "HK", testutil.Nil, "0.01"},
	))

	res, err := NewAnalyzer(DefaultMapping(), nil).Analyze(context.Background(), ccp, at, "symbol")
	require.NoError(t, err)

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, []string{"min_ticker_price"}, res.Mismatches[0].MismatchedFields)
}

func TestAnalyzer_AmbiguousKeys(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	ccp := keyed(t, testutil.BuildTable(t, "ccp", []string{"symbol", "exchange", "max_notional"},
		[]string{"AAA", "HK", "10"},
		[]string{"aaa", "hk", "99"},
		[]string{testutil.Nil, "HK", "1"},
	))
	at := keyed(t, testutil.BuildTable(t, "at", []string{"symbol", "exchange", "max_notional"},
		[]string{"AAA", "HK", "10"},
		[]string{"AAA", "HK", "11"},
	))

	res, err := NewAnalyzer(DefaultMapping(), logger).Analyze(context.Background(), ccp, at, "symbol")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA|HK"}, res.AmbiguousCCPKeys)
	assert.Equal(t, []string{"AAA|HK"}, res.AmbiguousATKeys)
	assert.Empty(t, res.Mismatches, "first row on each side is compared")
	assert.Equal(t, 1, res.NullKeyRowsCCP)
	assert.Equal(t, 0, res.NullKeyRowsAT)

	assert.True(t, logs.Contains(slog.LevelWarn, "duplicate composite key"))
	assert.True(t, logs.HasAttr("side", "at"))

	// NAN|HK is CCP-only and still takes part in the set operations
	assert.Equal(t, 1, res.Requirement1.Len())
	assert.True(t, res.Requirement1.Value(0, "symbol").IsNull())
}

func TestAnalyzer_RequiresKeys(t *testing.T) {
	unkeyed := testutil.BuildTable(t, "ccp", []string{"symbol", "exchange"})
	_, err := NewAnalyzer(DefaultMapping(), nil).Analyze(context.Background(), unkeyed, unkeyed, "symbol")
	assert.True(t, errors.Is(err, ErrMissingCompositeKey))
}

func TestBuildPivot(t *testing.T) {
	s := domain.StringValue
	records := []MismatchRecord{
		{Exchange: s("HK"), MismatchedFields: []string{"max_notional", "lot"}},
		{Exchange: s("HK"), MismatchedFields: []string{"max_notional"}},
		{Exchange: s("SG"), MismatchedFields: []string{"max_notional", "status"}},
		{Exchange: domain.Null(), MismatchedFields: []string{"lot"}},
	}

	pivot := BuildPivot(records)

	assert.Equal(t, []string{"HK", "NAN", "SG"}, pivot.Exchanges)
	require.Len(t, pivot.Rows, 3)
	assert.Equal(t, "max_notional", pivot.Rows[0].Field)
	assert.Equal(t, 3, pivot.Rows[0].Total)
	assert.Equal(t, "lot", pivot.Rows[1].Field)
	assert.Equal(t, 2, pivot.Rows[1].Total)
	assert.Equal(t, 2, pivot.Count("max_notional", "HK"))
	assert.Equal(t, 0, pivot.Count("status", "HK"))

	tbl := pivot.Table()
	assert.Equal(t, []string{"field", "HK", "NAN", "SG", "Total"}, tbl.Columns)
	assert.Equal(t, "3", tbl.Value(0, "Total").String())
	assert.Equal(t, "0", tbl.Value(2, "HK").String())

	for i := 1; i < len(pivot.Rows); i++ {
		assert.GreaterOrEqual(t, pivot.Rows[i-1].Total, pivot.Rows[i].Total, "rows sorted by total descending")
	}
}
