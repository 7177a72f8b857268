package domain

import (
	"encoding/json"
	"strings"
)

// NullKeyToken is the key fragment used for a missing symbol or exchange.
const NullKeyToken = "NAN"

// Value is a single nullable cell. The zero Value is null.
type Value struct {
	s     string
	valid bool
}

// StringValue wraps s as a present cell value. An empty string is a value, not a null.
func StringValue(s string) Value {
	return Value{s: s, valid: true}
}

// Null returns the missing value.
func Null() Value {
	return Value{}
}

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool {
	return !v.valid
}

// String returns the raw cell text, or "" for null.
func (v Value) String() string {
	return v.s
}

// KeyString returns the text used when the value takes part in a composite key.
func (v Value) KeyString() string {
	if !v.valid {
		return NullKeyToken
	}
	return v.s
}

// Equal reports exact equality, including nullness.
func (v Value) Equal(other Value) bool {
	return v.valid == other.valid && v.s == other.s
}

// Trimmed returns the value with surrounding whitespace removed. Nulls stay null.
func (v Value) Trimmed() Value {
	if !v.valid {
		return v
	}
	return StringValue(strings.TrimSpace(v.s))
}

// MarshalJSON encodes null cells as JSON null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON accepts JSON null, strings, numbers and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = StringValue(string(raw))
	return nil
}

// CellValue converts loader text into a Value, treating blank cells as null.
func CellValue(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Null()
	}
	return StringValue(s)
}
