package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/shared/testutil"
	"wlrecon/pkg/contracts"
	"wlrecon/pkg/contracts/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := New(&out, &errOut).Execute(context.Background(), append([]string{"--env-file", ""}, args...))
	return out.String(), err
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteSampleInputs(t, dir)
	return dir
}

func TestCompare_Text(t *testing.T) {
	outDir := t.TempDir()

	out, err := run(t, "compare", "--dir", sampleDir(t), "--out", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Total CCP Securities")
	assert.Contains(t, out, "Mismatch pivot")
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, filepath.Join(outDir, WorkbookName))
}

func TestCompare_JSONWithExtras(t *testing.T) {
	outDir := t.TempDir()

	out, err := run(t, "-o", "json", "compare", "--dir", sampleDir(t), "--out", outDir, "--bundle", "--csv")
	require.NoError(t, err)

	body := decode(t, out)
	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 4, stats["total_ccp"])
	assert.EqualValues(t, 3, stats["total_at"])
	assert.EqualValues(t, 2, stats["total_common"])

	files := body["files"].([]any)
	assert.Len(t, files, 2+len(domain.Requirements))
	for _, f := range files {
		assert.FileExists(t, f.(string))
	}
	assert.FileExists(t, filepath.Join(outDir, domain.RequirementAll.FileName()))
	assert.FileExists(t, filepath.Join(outDir, "01_Securities_In_CCP_Not_In_AT.csv"))
}

func TestCompare_ExplicitFiles(t *testing.T) {
	sec, rules, at := testutil.WriteSampleInputs(t, t.TempDir())

	out, err := run(t, "-o", "json", "compare",
		"--security", sec, "--rules", rules, "--at", at,
		"--out", t.TempDir(), "--fuzzy-threshold", "0")
	require.NoError(t, err)

	body := decode(t, out)
	assert.Nil(t, body["resolutions"])
	assert.EqualValues(t, 1, body["statistics"].(map[string]any)["requirement_2_count"])
}

func TestCompare_DefaultMappingIsStatic(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteExcel(t, dir, domain.RoleCCPSecurity.CanonicalFileName(), "Sheet1",
		[]string{"Symbol", "Exchange", "Minimum Notional"},
		[]string{"AAA", "HK", "5"},
	)
	testutil.WriteExcel(t, dir, domain.RoleCCPRules.CanonicalFileName(), "Sheet1",
		[]string{"Exchange"},
		[]string{"HK"},
	)
	testutil.WriteExcel(t, dir, domain.RoleATWhitelist.CanonicalFileName(), "Sheet1",
		[]string{"Symbol", "Exchange", "Max Notional"},
		[]string{"AAA", "HK", testutil.Nil},
	)

	out, err := run(t, "-o", "json", "compare", "--dir", dir, "--out", t.TempDir(), "--fuzzy-threshold", "0.85")
	require.NoError(t, err)

	body := decode(t, out)
	assert.Nil(t, body["resolutions"])
	assert.EqualValues(t, 0, body["statistics"].(map[string]any)["requirement_3_count"])
}

func TestCompare_MissingInputs(t *testing.T) {
	sec, _, _ := testutil.WriteSampleInputs(t, t.TempDir())

	_, err := run(t, "compare", "--security", sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing inputs")
	assert.Contains(t, err.Error(), "AT_Whitelist")
}

func TestAudit(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		out, err := run(t, "-o", "json", "audit", "--dir", sampleDir(t))
		require.NoError(t, err)

		body := decode(t, out)
		assert.EqualValues(t, 4, body["ccp_keys"])
		assert.EqualValues(t, 2, body["common_keys"])
		assert.NotEmpty(t, body["checks"])
	})

	t.Run("duplicate rule exchanges", func(t *testing.T) {
		dir := sampleDir(t)
		testutil.WriteExcel(t, dir, domain.RoleCCPRules.CanonicalFileName(), "Sheet1",
			[]string{"Exchange"},
			[]string{"HKEX"},
			[]string{" hkex "},
		)

		out, err := run(t, "audit", "--dir", dir)
		assert.ErrorIs(t, err, ErrUnhealthy)
		assert.Contains(t, out, "Fail")
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		out, err := run(t, "validate", "--dir", sampleDir(t))
		require.NoError(t, err)
		assert.Contains(t, out, "Valid")
	})

	t.Run("missing column and file", func(t *testing.T) {
		dir := t.TempDir()
		sec, _, _ := testutil.WriteSampleInputs(t, t.TempDir())
		at := testutil.WriteExcel(t, dir, "AT_Whitelist.xlsx", "Sheet1",
			[]string{"Ticker", "Exchange"},
			[]string{"AAA", "HKEX"},
		)

		out, err := run(t, "-o", "json", "validate", "--security", sec, "--at", at)
		assert.ErrorIs(t, err, ErrUnhealthy)

		body := decode(t, out)
		assert.Equal(t, false, body["success"])
		files := body["files_status"].(map[string]any)
		assert.Equal(t, "missing", files[string(domain.RoleCCPRules)].(map[string]any)["status"])
		assert.Len(t, body["errors"], 2)
	})
}

func TestMapping(t *testing.T) {
	out, err := run(t, "-o", "json", "mapping")
	require.NoError(t, err)

	body := decode(t, out)
	assert.NotEmpty(t, body["entries"])
	assert.Contains(t, body["excluded"], "composite_key")

	dir := t.TempDir()
	testutil.WriteExcel(t, dir, "Column_Mapping.xlsx", "Sheet1",
		[]string{"CCP Column", "AT Column"},
		[]string{"Minimum Order Value", "Min Order"},
	)
	out, err = run(t, "mapping", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "minimum order value")
	assert.Contains(t, out, "min order")
}

func TestRoot(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "wlrecon "+contracts.Version+"\n", out)

	_, err = run(t, "-o", "xml", "mapping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())
	assert.Contains(t, out, "commit: ")

	out, err = run(t, "-o", "json", "version")
	require.NoError(t, err)
	body := decode(t, out)
	assert.Equal(t, contracts.Version, body["version"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
}
