package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wlrecon/internal/fieldmap"
	"wlrecon/internal/loader"
	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// inputFlags selects the input tables of a command. Explicit files win over
// files discovered in --dir; --sheet-id reads every role from one spreadsheet.
type inputFlags struct {
	security string
	rules    string
	at       string
	mapping  string
	dir      string
	sheetID  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.security, "security", "", "CCP security whitelist file")
	flags.StringVar(&f.rules, "rules", "", "CCP market rules file")
	flags.StringVar(&f.at, "at", "", "AT whitelist file")
	flags.StringVar(&f.mapping, "mapping", "", "column mapping file (.yaml, .xlsx or .csv)")
	flags.StringVar(&f.dir, "dir", "", "directory whose files are assigned roles by name")
	flags.StringVar(&f.sheetID, "sheet-id", "", "Google spreadsheet holding one tab per input")
}

// discovered returns the roles found by name in --dir, if set
func (f *inputFlags) discovered() (loader.RoleSet, error) {
	if f.dir == "" {
		return loader.RoleSet{}, nil
	}
	return loader.DiscoverRoles(f.dir)
}

// available merges discovered and explicit files without requiring any.
// The column mapping is only included when it is a spreadsheet; YAML
// mappings are read by mappingFor.
func (f *inputFlags) available() (loader.RoleSet, error) {
	roles, err := f.discovered()
	if err != nil {
		return nil, err
	}

	explicit := map[domain.Role]string{
		domain.RoleCCPSecurity: f.security,
		domain.RoleCCPRules:    f.rules,
		domain.RoleATWhitelist: f.at,
	}
	for role, path := range explicit {
		if path != "" {
			roles[role] = path
		}
	}
	if f.mapping != "" {
		delete(roles, domain.RoleColumnMapping)
		if loader.IsSupported(f.mapping) {
			roles[domain.RoleColumnMapping] = f.mapping
		}
	}
	return roles, nil
}

// roles resolves the files to load and requires every core input
func (f *inputFlags) roles() (loader.RoleSet, error) {
	roles, err := f.available()
	if err != nil {
		return nil, err
	}
	if missing := roles.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, r := range missing {
			names[i] = r.CanonicalFileName()
		}
		return nil, fmt.Errorf("missing inputs: %s (use --security/--rules/--at or --dir)", strings.Join(names, ", "))
	}
	return roles, nil
}

// load reads every input table
func (c *CLI) load(ctx context.Context, f *inputFlags) (*loader.Inputs, error) {
	if f.sheetID != "" {
		return c.loadSheets(ctx, f.sheetID)
	}
	roles, err := f.roles()
	if err != nil {
		return nil, err
	}
	return loader.New(c.logger).LoadInputs(ctx, roles)
}

// loadSheets fetches each required role from the tab named after its
// canonical file name, for example "AT_Whitelist".
func (c *CLI) loadSheets(ctx context.Context, spreadsheetID string) (*loader.Inputs, error) {
	if !c.cfg.Sheets.Enabled() {
		return nil, fmt.Errorf("--sheet-id needs sheets.credentials_file or sheets.api_key")
	}

	var credentials []byte
	if c.cfg.Sheets.CredentialsFile != "" {
		data, err := os.ReadFile(c.cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
		}
		credentials = data
	}
	source, err := loader.NewSheetsSource(ctx, credentials, c.cfg.Sheets.APIKey, c.logger)
	if err != nil {
		return nil, err
	}

	in := &loader.Inputs{
		Tables:       make(map[domain.Role]domain.Table, len(domain.RequiredRoles)),
		Fingerprints: map[domain.Role]string{},
	}
	for _, role := range domain.RequiredRoles {
		tab := strings.TrimSuffix(role.CanonicalFileName(), filepath.Ext(role.CanonicalFileName()))
		t, err := source.Fetch(ctx, spreadsheetID, tab)
		if err != nil {
			return nil, err
		}
		in.Tables[role] = t
	}
	return in, nil
}

// mappingFor picks, in order, the --mapping file, a discovered mapping
// table, the configured mapping file and the built-in mapping. custom
// reports whether the mapping came from a file.
func (c *CLI) mappingFor(f *inputFlags, in *loader.Inputs) (m reconcile.FieldMapping, custom bool, err error) {
	if f.mapping != "" {
		m, err = fieldmap.LoadFile(f.mapping)
		return m, true, err
	}
	if in != nil {
		if t, ok := in.Table(domain.RoleColumnMapping); ok {
			m, err = fieldmap.FromTable(t)
			return m, true, err
		}
	}
	if c.cfg.Reconcile.MappingFile != "" {
		m, err = fieldmap.LoadFile(c.cfg.Reconcile.MappingFile)
		return m, true, err
	}
	return reconcile.DefaultMapping(), false, nil
}
