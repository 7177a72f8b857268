package testutil

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wlrecon/pkg/contracts/domain"
)

// Nil marks a null cell in fixture rows
const Nil = "<nil>"

// BuildTable creates a table from string rows. Cells equal to Nil are null.
func BuildTable(t testing.TB, name string, columns []string, rows ...[]string) domain.Table {
	t.Helper()
	tbl := domain.NewTable(name, columns)
	for _, row := range rows {
		values := make([]domain.Value, len(row))
		for i, cell := range row {
			if cell == Nil {
				values[i] = domain.Null()
				continue
			}
			values[i] = domain.StringValue(cell)
		}
		require.NoError(t, tbl.AppendRow(values...))
	}
	return tbl
}

// RecordsBy indexes rows by the joined values of keyCols, so tests can
// compare outputs whose row order is not fixed. Nulls render as Nil.
func RecordsBy(tbl domain.Table, keyCols ...string) map[string]map[string]string {
	out := make(map[string]map[string]string, tbl.Len())
	for i := range tbl.Rows {
		key := ""
		for j, c := range keyCols {
			if j > 0 {
				key += "|"
			}
			key += cellText(tbl.Value(i, c))
		}
		rec := make(map[string]string, len(tbl.Columns))
		for _, c := range tbl.Columns {
			rec[c] = cellText(tbl.Value(i, c))
		}
		out[key] = rec
	}
	return out
}

// SortedKeys returns the keys of RecordsBy output, sorted
func SortedKeys(records map[string]map[string]string) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cellText(v domain.Value) string {
	if v.IsNull() {
		return Nil
	}
	return v.String()
}

// WriteExcel saves a single-sheet workbook and returns its path. Cells equal
// to Nil are left empty.
func WriteExcel(t testing.TB, dir, fileName, sheet string, columns []string, rows ...[]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetName(defaultSheet, sheet))

	write := func(rowNum int, cells []string) {
		for col, cell := range cells {
			if cell == Nil {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(col+1, rowNum)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, cell))
		}
	}
	write(1, columns)
	for i, row := range rows {
		write(i+2, row)
	}

	path := filepath.Join(dir, fileName)
	require.NoError(t, f.SaveAs(path))
	return path
}

// SampleInputs returns a small security, rules and AT whitelist triple.
// AAA|HKEX mismatches on minimum order value, DDD and EEE on LSE exist
// only in the CCP and CCC|ZZZ only in AT.
func SampleInputs(t testing.TB) (security, rules, at domain.Table) {
	t.Helper()
	security = BuildTable(t, "CCP_Security_Whitelist.xlsx", []string{"Symbol", "Exchange", "Security Name", "Minimum Order Value"},
		[]string{"AAA", "HKEX", "Alpha", "100"},
		[]string{"BBB", "HKEX", "Beta", "100"},
		[]string{"DDD", "LSE", "Delta", Nil},
		[]string{"EEE", "LSE", "Epsilon", Nil},
	)
	rules = BuildTable(t, "CCP_Market_Rules.xlsx", []string{"Exchange", "Minimum Order Value", "Maximum Notional"},
		[]string{"HKEX", "100", "1000000"},
	)
	at = BuildTable(t, "AT_Whitelist.xlsx", []string{"Symbol", "Exchange", "Minimum Order Value", "Max Notional"},
		[]string{"AAA", "HKEX", "50", "1000000"},
		[]string{"BBB", "HKEX", "100", "1000000"},
		[]string{"CCC", "ZZZ", "1", "2"},
	)
	return security, rules, at
}

// WriteTableExcel saves tbl as a single-sheet workbook named fileName in dir.
func WriteTableExcel(t testing.TB, dir, fileName string, tbl domain.Table) string {
	t.Helper()
	rows := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellText(v)
		}
		rows[i] = cells
	}
	return WriteExcel(t, dir, fileName, "Sheet1", tbl.Columns, rows...)
}

// WriteSampleInputs saves SampleInputs under their canonical upload names
// and returns the paths in security, rules, AT order.
func WriteSampleInputs(t testing.TB, dir string) (security, rules, at string) {
	t.Helper()
	sec, rul, atTbl := SampleInputs(t)
	return WriteTableExcel(t, dir, domain.RoleCCPSecurity.CanonicalFileName(), sec),
		WriteTableExcel(t, dir, domain.RoleCCPRules.CanonicalFileName(), rul),
		WriteTableExcel(t, dir, domain.RoleATWhitelist.CanonicalFileName(), atTbl)
}
