package reconcile

import (
	"strings"

	"wlrecon/pkg/contracts/domain"
)

// KeyColumn holds the SYMBOL|EXCHANGE identity of a row
const KeyColumn = "composite_key"

// CompositeKey builds UPPER(TRIM(symbol)) + "|" + UPPER(TRIM(exchange)).
// Null parts become "NAN".
func CompositeKey(symbol, exchange domain.Value) string {
	return keyPart(symbol) + "|" + keyPart(exchange)
}

func keyPart(v domain.Value) string {
	return strings.ToUpper(strings.TrimSpace(v.KeyString()))
}

// HasNullKeyPart reports whether either key component is missing
func HasNullKeyPart(symbol, exchange domain.Value) bool {
	return symbol.IsNull() || exchange.IsNull()
}

// WithCompositeKey adds or replaces the composite_key column. Stored field
// values are left as they are.
func WithCompositeKey(t domain.Table, symbolCol, exchangeCol string) (domain.Table, error) {
	symIdx := t.ColumnIndex(symbolCol)
	if symIdx < 0 {
		return domain.Table{}, missingColumn(t.Name, symbolCol, t.Columns)
	}
	exIdx := t.ColumnIndex(exchangeCol)
	if exIdx < 0 {
		return domain.Table{}, missingColumn(t.Name, exchangeCol, t.Columns)
	}

	keys := make([]domain.Value, len(t.Rows))
	for i, row := range t.Rows {
		keys[i] = domain.StringValue(CompositeKey(row[symIdx], row[exIdx]))
	}
	return t.SetColumn(KeyColumn, keys)
}
