package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wlrecon/internal/audit"
)

func (c *CLI) auditCommand() *cobra.Command {
	inputs := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check the inputs for problems that would skew a comparison",
		Long: `audit loads the inputs and runs the data-quality checks: load counts,
empty rows, null keys, duplicate rule exchanges, key accounting and
mapping coverage. It exits with status 1 when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := c.load(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			in, err := loaded.ReconcileInput()
			if err != nil {
				return err
			}
			mapping, _, err := c.mappingFor(inputs, loaded)
			if err != nil {
				return fmt.Errorf("invalid column mapping: %w", err)
			}

			report := audit.Run(in, mapping)
			if err := c.printAudit(report); err != nil {
				return err
			}
			if !report.Healthy() {
				c.logger.Warn("Audit found failures")
				return ErrUnhealthy
			}
			return nil
		},
	}
	inputs.register(cmd)
	return cmd
}

func (c *CLI) printAudit(report *audit.Report) error {
	if c.format == FormatJSON {
		return writeJSON(c.out, report)
	}

	checks := tableData{Title: "Audit", Headers: []string{"Check", "Status", "Detail"}}
	for _, check := range report.Checks {
		checks.Rows = append(checks.Rows, []string{check.Name, statusLabel(string(check.Status)), check.Detail})
	}
	keys := tableData{
		Title:   "Keys",
		Headers: []string{"CCP", "AT", "Common"},
		Rows: [][]string{{
			strconv.Itoa(report.CCPKeys),
			strconv.Itoa(report.ATKeys),
			strconv.Itoa(report.CommonKeys),
		}},
	}
	return writeTables(c.out, checks, keys)
}
