package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/shared/testutil"
	"wlrecon/pkg/contracts/domain"
)

func validTables(t *testing.T) map[domain.Role]domain.Table {
	return map[domain.Role]domain.Table{
		domain.RoleCCPSecurity: testutil.BuildTable(t, "sec", []string{"Symbol", "Exchange"}, []string{"AAA", "HK"}),
		domain.RoleCCPRules:    testutil.BuildTable(t, "rules", []string{"Exchange"}, []string{"HK"}),
		domain.RoleATWhitelist: testutil.BuildTable(t, "at", []string{"Symbol", "Exchange"}, []string{"AAA", "HK"}),
	}
}

func TestInputValidator_Valid(t *testing.T) {
	report := NewInputValidator(nil).Validate(validTables(t), nil, nil)

	assert.True(t, report.Success)
	assert.Empty(t, report.Errors)
	require.Contains(t, report.Files, domain.RoleCCPSecurity)
	assert.Equal(t, StatusValid, report.Files[domain.RoleCCPSecurity].Status)
	assert.Equal(t, 1, report.Files[domain.RoleCCPSecurity].Rows)
	assert.NotContains(t, report.Files, domain.RoleColumnMapping, "mapping is optional")
}

func TestInputValidator_Problems(t *testing.T) {
	tables := validTables(t)
	tables[domain.RoleCCPSecurity] = testutil.BuildTable(t, "sec", []string{"Symbol", "Exchange"},
		[]string{testutil.Nil, "HK"},
	)
	tables[domain.RoleCCPRules] = testutil.BuildTable(t, "rules", []string{"Market"})
	delete(tables, domain.RoleATWhitelist)
	tables[domain.RoleColumnMapping] = testutil.BuildTable(t, "map", []string{"CCP Column"})

	files := map[domain.Role]string{domain.RoleCCPRules: "my_rules.xlsx"}
	report := NewInputValidator(nil).Validate(tables, nil, files)

	assert.False(t, report.Success)
	assert.Contains(t, report.Errors, "File 'CCP_Security_Whitelist.xlsx': Symbol column is empty")
	assert.Contains(t, report.Errors, "File 'my_rules.xlsx' is missing required columns: exchange")
	assert.Contains(t, report.Errors, "Required file missing: AT_Whitelist.xlsx")
	assert.Contains(t, report.Errors, "File 'Column_Mapping.xlsx' is missing required columns: at_column")
	assert.Contains(t, report.Warnings, "File 'my_rules.xlsx' is empty (no data rows)")
	assert.Equal(t, StatusMissing, report.Files[domain.RoleATWhitelist].Status)
}

func TestInputValidator_LoadError(t *testing.T) {
	tables := validTables(t)
	delete(tables, domain.RoleCCPRules)
	loadErrs := map[domain.Role]error{domain.RoleCCPRules: errors.New("zip: not a valid zip file")}

	report := NewInputValidator(nil).Validate(tables, loadErrs, nil)

	assert.False(t, report.Success)
	assert.Equal(t, StatusError, report.Files[domain.RoleCCPRules].Status)
	assert.Contains(t, report.Errors[0], "zip: not a valid zip file")
}
