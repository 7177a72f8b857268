package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) Table {
	t.Helper()
	tbl := NewTable("sample", []string{"symbol", "exchange", "currency"})
	require.NoError(t, tbl.AppendRow(StringValue("AAA"), StringValue("HK"), StringValue("HKD")))
	require.NoError(t, tbl.AppendRow(StringValue("BBB"), StringValue("SG")))
	return tbl
}

func TestTable_AppendRow(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Value(1, "currency").IsNull(), "short rows are padded with nulls")

	err := tbl.AppendRow(StringValue("a"), StringValue("b"), StringValue("c"), StringValue("d"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 3 columns")
}

func TestTable_Value(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, "HK", tbl.Value(0, "exchange").String())
	assert.True(t, tbl.Value(0, "missing").IsNull())
	assert.True(t, tbl.Value(5, "symbol").IsNull())
}

func TestTable_DropAndSetColumn(t *testing.T) {
	tbl := sampleTable(t)

	dropped := tbl.DropColumn("exchange")
	assert.Equal(t, []string{"symbol", "currency"}, dropped.Columns)
	assert.Equal(t, "HKD", dropped.Value(0, "currency").String())
	assert.Equal(t, []string{"symbol", "exchange", "currency"}, tbl.Columns, "receiver is unchanged")

	added, err := tbl.SetColumn("status", []Value{StringValue("A"), Null()})
	require.NoError(t, err)
	assert.Equal(t, "status", added.Columns[3])
	assert.True(t, added.Value(1, "status").IsNull())
	assert.Len(t, tbl.Rows[0], 3, "receiver rows are not extended")

	replaced, err := tbl.SetColumn("symbol", []Value{StringValue("X"), StringValue("Y")})
	require.NoError(t, err)
	assert.Equal(t, "Y", replaced.Value(1, "symbol").String())
	assert.Equal(t, "BBB", tbl.Value(1, "symbol").String())

	_, err = tbl.SetColumn("status", []Value{Null()})
	assert.Error(t, err)
}

func TestTable_SelectAndHead(t *testing.T) {
	tbl := sampleTable(t)

	sel := tbl.Select([]int{1, 0})
	assert.Equal(t, "BBB", sel.Value(0, "symbol").String())
	assert.Equal(t, "AAA", sel.Value(1, "symbol").String())

	assert.Equal(t, 1, tbl.Head(1).Len())
	assert.Equal(t, 2, tbl.Head(100).Len())
}

func TestValue(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		isNull  bool
		keyText string
		json    string
	}{
		{name: "null", value: Null(), isNull: true, keyText: "NAN", json: "null"},
		{name: "empty string is a value", value: StringValue(""), keyText: "", json: `""`},
		{name: "text", value: StringValue("Tsx"), keyText: "Tsx", json: `"Tsx"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isNull, tt.value.IsNull())
			assert.Equal(t, tt.keyText, tt.value.KeyString())

			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var back Value
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, back.Equal(tt.value))
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.True(t, CellValue("").IsNull())
	assert.True(t, CellValue("   ").IsNull())
	assert.Equal(t, " x ", CellValue(" x ").String())
}

func TestParseRequirement(t *testing.T) {
	r, err := ParseRequirement("req3")
	require.NoError(t, err)
	assert.Equal(t, ActionUpdateAT, r.Action())
	assert.Equal(t, "03_Securities_Config_Mismatch.xlsx", r.FileName())

	_, err = ParseRequirement("req9")
	assert.Error(t, err)
}

func TestStatistics_Lines(t *testing.T) {
	s := Statistics{TotalCCP: 3, Requirement3Count: 1, Timestamp: "2024-01-02 03:04:05"}
	lines := s.Lines()

	assert.Equal(t, "Total CCP Securities", lines[0].Metric)
	assert.Equal(t, "3", lines[0].Value)
	assert.Equal(t, "2024-01-02 03:04:05", lines[len(lines)-1].Value)
}

func TestDetectRole(t *testing.T) {
	tests := []struct {
		file string
		want Role
		ok   bool
	}{
		{file: "CCP_Security_Whitelist.xlsx", want: RoleCCPSecurity, ok: true},
		{file: "ccp market rules 2024.xlsx", want: RoleCCPRules, ok: true},
		{file: "/tmp/up/AT-Whitelist.csv", want: RoleATWhitelist, ok: true},
		{file: "Column_Mapping.xlsx", want: RoleColumnMapping, ok: true},
		{file: "notes.xlsx", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, ok := DetectRole(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
