package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

type mappingOutput struct {
	Entries  []reconcile.FieldPair `json:"entries"`
	Excluded []string              `json:"excluded"`
}

func (c *CLI) mappingCommand() *cobra.Command {
	inputs := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Print the effective CCP to AT column mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputs.dir != "" && inputs.mapping == "" {
				roles, err := inputs.discovered()
				if err != nil {
					return err
				}
				if path, ok := roles[domain.RoleColumnMapping]; ok {
					inputs.mapping = path
				}
			}

			mapping, _, err := c.mappingFor(inputs, nil)
			if err != nil {
				return fmt.Errorf("invalid column mapping: %w", err)
			}
			out := mappingOutput{Entries: mapping.Entries(), Excluded: []string{}}
			if t, ok := mapping.(*reconcile.MappingTable); ok {
				out.Excluded = t.ExcludedFields()
			}

			if c.format == FormatJSON {
				return writeJSON(c.out, out)
			}
			entries := tableData{Title: "Mapping", Headers: []string{"CCP field", "AT field"}}
			for _, e := range out.Entries {
				at := e.AT
				if e.CCPOnly() {
					at = "(ccp only)"
				}
				entries.Rows = append(entries.Rows, []string{e.CCP, at})
			}
			excluded := tableData{Title: "Excluded", Headers: []string{"Field"}}
			for _, f := range out.Excluded {
				excluded.Rows = append(excluded.Rows, []string{f})
			}
			return writeTables(c.out, entries, excluded)
		},
	}
	cmd.Flags().StringVar(&inputs.mapping, "mapping", "", "column mapping file (.yaml, .xlsx or .csv)")
	cmd.Flags().StringVar(&inputs.dir, "dir", "", "directory searched for a Column_Mapping file")
	return cmd
}
