package domain

import "strings"

// Role identifies what an input table represents
type Role string

const (
	RoleCCPSecurity   Role = "ccp_security"
	RoleCCPRules      Role = "ccp_market_rules"
	RoleATWhitelist   Role = "at_whitelist"
	RoleColumnMapping Role = "column_mapping"
)

// RequiredRoles must all be supplied for a run. The column mapping is optional.
var RequiredRoles = []Role{RoleCCPSecurity, RoleCCPRules, RoleATWhitelist}

// CanonicalFileName is the upload name expected for the role
func (r Role) CanonicalFileName() string {
	switch r {
	case RoleCCPSecurity:
		return "CCP_Security_Whitelist.xlsx"
	case RoleCCPRules:
		return "CCP_Market_Rules.xlsx"
	case RoleATWhitelist:
		return "AT_Whitelist.xlsx"
	case RoleColumnMapping:
		return "Column_Mapping.xlsx"
	}
	return string(r)
}

// RequiredColumns lists the normalized columns a role's table must have
func (r Role) RequiredColumns() []string {
	switch r {
	case RoleCCPSecurity, RoleATWhitelist:
		return []string{"symbol", "exchange"}
	case RoleCCPRules:
		return []string{"exchange"}
	case RoleColumnMapping:
		return []string{"ccp_column", "at_column"}
	}
	return nil
}

// roleMarkers are matched case-insensitively against file names
var roleMarkers = []struct {
	marker string
	role   Role
}{
	{"ccp_security", RoleCCPSecurity},
	{"ccp_market", RoleCCPRules},
	{"at_whitelist", RoleATWhitelist},
	{"column_mapping", RoleColumnMapping},
}

// DetectRole infers a role from a file name such as "CCP_Market_Rules_2024.xlsx".
func DetectRole(fileName string) (Role, bool) {
	name := strings.ToLower(fileName)
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	for _, m := range roleMarkers {
		if strings.Contains(name, m.marker) {
			return m.role, true
		}
	}
	return "", false
}
