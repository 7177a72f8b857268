package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wlrecon/internal/reconcile"
	"wlrecon/internal/shared/testutil"
	"wlrecon/pkg/contracts/domain"
)

func sampleResult(t *testing.T) *reconcile.Result {
	t.Helper()
	security, rules, at := testutil.SampleInputs(t)
	engine := reconcile.NewEngine(reconcile.WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	}))
	res, err := engine.Run(context.Background(), reconcile.Input{Security: security, Rules: rules, AT: at})
	require.NoError(t, err)
	return res
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tbl := testutil.BuildTable(t, "t", []string{"symbol", "note"},
		[]string{"AAA", "a,b"},
		[]string{"BBB", testutil.Nil},
	)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter("", nil).WriteTable(&buf, tbl, WriteOptions{BOMPrefix: true}))

	out := buf.Bytes()
	assert.Equal(t, utf8BOM, out[:3])
	assert.Equal(t, "symbol,note\nAAA,\"a,b\"\nBBB,\n", string(out[3:]))
}

func TestCSVWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)
	tbl := testutil.BuildTable(t, "t", []string{"a"}, []string{"1"})

	path, err := w.WriteFile(filepath.Join("reports", "out.csv"), tbl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "out.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", strings.TrimPrefix(string(data), string(utf8BOM)))
}

func TestWriteWorkbook(t *testing.T) {
	tbl := testutil.BuildTable(t, "t", []string{"symbol", "description"},
		[]string{"AAA", strings.Repeat("x", 200)},
		[]string{"BBB", testutil.Nil},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, Sheet{Name: "First", Table: tbl}, Sheet{Name: "Second", Table: tbl}))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{"First", "Second"}, f.GetSheetList())

	rows, err := f.GetRows("First")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"symbol", "description"}, rows[0])
	assert.Equal(t, []string{"BBB"}, rows[2], "null cells stay empty")

	width, err := f.GetColWidth("First", "A")
	require.NoError(t, err)
	assert.Equal(t, 8.0, width, "symbol header plus padding")
	width, err = f.GetColWidth("First", "B")
	require.NoError(t, err)
	assert.Equal(t, float64(MaxColumnWidth), width)
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	assert.Error(t, WriteWorkbook(&bytes.Buffer{}))
}

func TestSummaryReport(t *testing.T) {
	report := SummaryReport(domain.Statistics{
		TotalCCP: 4, TotalAT: 3, TotalCommon: 2,
		Requirement1Count: 2, Requirement2Count: 1, Requirement3Count: 1,
		TotalActionRequired: 4, Timestamp: "2024-03-15 09:30:00",
	})

	assert.Equal(t, []string{MetricColumn, ValueColumn}, report.Columns)
	records := report.Records()
	assert.Equal(t, "Total CCP Records (Merged)", records[0][MetricColumn].String())
	assert.Equal(t, "4", records[0][ValueColumn].String())
	assert.Equal(t, "2 records", records[5][ValueColumn].String())
	last := records[len(records)-1]
	assert.Equal(t, "Report Generated", last[MetricColumn].String())
	assert.Equal(t, "2024-03-15 09:30:00", last[ValueColumn].String())
}

func TestRender_Requirement(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, domain.RequirementMissingInAT))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{ResultsSheet}, f.GetSheetList())
	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus DDD and EEE")
	assert.Contains(t, rows[0], "action")
}

func TestFullWorkbook(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, FullWorkbook(res)...))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{"Summary", "CCP_Not_In_AT", "AT_Not_In_CCP", "Config_Mismatch", "Mismatch_Pivot"}, f.GetSheetList())

	pivot, err := f.GetRows("Mismatch_Pivot")
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "HKEX", "Total"}, pivot[0])
	assert.Equal(t, []string{"minimum_order_value", "1", "1"}, pivot[1])
}

func TestWriteBundle(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, domain.RequirementAll))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"00_Comparison_Report.xlsx",
		"01_Securities_In_CCP_Not_In_AT.xlsx",
		"02_Securities_In_AT_Not_In_CCP.xlsx",
		"03_Securities_Config_Mismatch.xlsx",
		"04_Mismatch_Pivot.xlsx",
	}, names)
}
