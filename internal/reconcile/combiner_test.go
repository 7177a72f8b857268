package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/shared/testutil"
)

func TestCombine_LeftJoin(t *testing.T) {
	security := testutil.BuildTable(t, "ccp_security", []string{"symbol", "exchange", "currency"},
		[]string{"AAA", "HKEX", "HKD"},
		[]string{"BBB", "SGX", "SGD"},
		[]string{"CCC", "NYSE", "USD"},
		[]string{"DDD", "NYSE", "USD"},
		[]string{"EEE", testutil.Nil, "USD"},
	)
	rules := testutil.BuildTable(t, "ccp_rules", []string{"exchange", "minimum_order_value", "max_notional"},
		[]string{"HKEX", "100", "5000"},
		[]string{" sgx ", "10", testutil.Nil},
	)

	combined, err := Combine(security, rules)
	require.NoError(t, err)

	assert.Equal(t, security.Len(), combined.Len(), "every security row appears exactly once")
	assert.Equal(t, []string{"symbol", "exchange", "currency", "minimum_order_value", "max_notional"}, combined.Columns)

	assert.Equal(t, "100", combined.Value(0, "minimum_order_value").String())
	assert.Equal(t, "10", combined.Value(1, "minimum_order_value").String(), "exchange join ignores case and padding")
	assert.Equal(t, "SGX", combined.Value(1, "exchange").String(), "security exchange value is kept")

	// NYSE has no rule row: rule columns are null, rows are not dropped
	for _, row := range []int{2, 3} {
		assert.True(t, combined.Value(row, "minimum_order_value").IsNull())
		assert.True(t, combined.Value(row, "max_notional").IsNull())
	}
	assert.True(t, combined.Value(4, "minimum_order_value").IsNull(), "null exchange never joins")

	for i := range security.Rows {
		assert.Equal(t, security.Value(i, "symbol"), combined.Value(i, "symbol"), "row order is preserved")
	}
}

func TestCombine_OverlappingColumns(t *testing.T) {
	security := testutil.BuildTable(t, "ccp_security", []string{"symbol", "exchange", "mic_code", "minimum_order_value"},
		[]string{"AAA", "HKEX", "XHKG", "100"},
	)
	rules := testutil.BuildTable(t, "ccp_rules", []string{"exchange", "mic_code", "minimum_order_value"},
		[]string{"HKEX", "XHKF", "250"},
	)

	combined, err := Combine(security, rules)
	require.NoError(t, err)

	assert.Equal(t, "XHKG", combined.Value(0, "mic_code").String(), "left value wins under the bare name")
	assert.Equal(t, "XHKG", combined.Value(0, "mic_code_x").String())
	assert.Equal(t, "XHKF", combined.Value(0, "mic_code_y").String())
	assert.Equal(t, "100", combined.Value(0, "minimum_order_value").String())
	assert.Equal(t, "250", combined.Value(0, "minimum_order_value_y").String())
}

func TestCombine_MultipleRuleRowsPerExchange(t *testing.T) {
	security := testutil.BuildTable(t, "ccp_security", []string{"symbol", "exchange"},
		[]string{"AAA", "HKEX"},
	)
	rules := testutil.BuildTable(t, "ccp_rules", []string{"exchange", "max_notional"},
		[]string{"SGX", "1"},
		[]string{"HKEX", "1"},
		[]string{"hkex ", "2"},
		[]string{testutil.Nil, "3"},
		[]string{testutil.Nil, "4"},
	)

	_, err := Combine(security, rules)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultiplicity))

	var multErr *MultiplicityError
	require.True(t, errors.As(err, &multErr))
	assert.Equal(t, "HKEX", multErr.Exchange)
	assert.Equal(t, 2, multErr.Rows)
}

func TestCombine_MissingExchange(t *testing.T) {
	withExchange := testutil.BuildTable(t, "ccp_rules", []string{"exchange"})
	withoutExchange := testutil.BuildTable(t, "ccp_security", []string{"symbol", "market"})

	_, err := Combine(withoutExchange, withExchange)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Contains(t, err.Error(), "ccp_security")

	_, err = Combine(testutil.BuildTable(t, "ccp_security", []string{"symbol", "exchange"}), testutil.BuildTable(t, "ccp_rules", []string{"market"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestAlign(t *testing.T) {
	combined := testutil.BuildTable(t, "ccp_security",
		[]string{"isin", "exchange", "minimum_order_value", "minimum_order_quantity", "maximum_quantity", "currency", "tcl1"},
		[]string{"US0001", "NYSE", "100", "5", "900", "USD", testutil.Nil},
	)
	m := NewMappingTable([]FieldPair{
		{CCP: "symbol", AT: "symbol"},
		{CCP: "exchange", AT: "exchange"},
		{CCP: "minimum_order_value", AT: "minimum_order_value"},
		{CCP: "minimum_order_quantity", AT: "minimum_quantity"},
		{CCP: "maximum_notional", AT: "max_notional"},
		{CCP: "maximum_quantity", AT: "minimum_quantity"},
		{CCP: "currency"},
		{CCP: "tcl1"},
		{CCP: "bbg_ticker"},
	}, nil)

	aligned, err := Align(combined, "isin", "symbol", m)
	require.NoError(t, err)

	assert.Equal(t, []string{"symbol", "exchange", "minimum_order_value", "minimum_quantity", "max_notional", "ccp_only_currency", "ccp_only_tcl1"}, aligned.Columns)
	assert.Equal(t, combined.Len(), aligned.Len())

	assert.Equal(t, "US0001", aligned.Value(0, "symbol").String(), "symbol column is carried under the AT name")
	assert.Equal(t, "NYSE", aligned.Value(0, "exchange").String())
	assert.Equal(t, "100", aligned.Value(0, "minimum_order_value").String())
	assert.Equal(t, "900", aligned.Value(0, "minimum_quantity").String(), "later entry for the same AT field wins")
	assert.True(t, aligned.Value(0, "max_notional").IsNull(), "absent CCP field becomes a null column")
	assert.Equal(t, "USD", aligned.Value(0, "ccp_only_currency").String())
	assert.True(t, aligned.Value(0, "ccp_only_tcl1").IsNull())
	assert.False(t, aligned.HasColumn("ccp_only_bbg_ticker"), "absent CCP-only fields are not synthesized")
}

func TestAlign_MissingSymbol(t *testing.T) {
	combined := testutil.BuildTable(t, "ccp", []string{"exchange"})
	_, err := Align(combined, "symbol", "symbol", DefaultMapping())
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestCompositeKey(t *testing.T) {
	tbl := testutil.BuildTable(t, "at", []string{"symbol", "exchange", "status"},
		[]string{" aaa ", "hkex", "A"},
		[]string{testutil.Nil, "SGX", "A"},
		[]string{testutil.Nil, testutil.Nil, "A"},
	)

	keyed, err := WithCompositeKey(tbl, "symbol", "exchange")
	require.NoError(t, err)

	assert.Equal(t, "AAA|HKEX", keyed.Value(0, KeyColumn).String())
	assert.Equal(t, "NAN|SGX", keyed.Value(1, KeyColumn).String())
	assert.Equal(t, "NAN|NAN", keyed.Value(2, KeyColumn).String())
	assert.Equal(t, " aaa ", keyed.Value(0, "symbol").String(), "stored values are not normalized")

	rekeyed, err := WithCompositeKey(keyed, "symbol", "exchange")
	require.NoError(t, err)
	assert.Equal(t, keyed.Columns, rekeyed.Columns, "existing key column is replaced")

	_, err = WithCompositeKey(tbl, "isin", "exchange")
	assert.True(t, errors.Is(err, ErrSchema))
}
