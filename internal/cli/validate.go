package cli

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"wlrecon/internal/loader"
	"wlrecon/internal/validation"
	"wlrecon/pkg/contracts/domain"
)

func (c *CLI) validateCommand() *cobra.Command {
	inputs := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Pre-validate the input files without comparing",
		Long: `validate reads every input it can find and reports unreadable files,
missing files and missing required columns. Unlike compare it keeps going
after a failure so every problem is listed at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := inputs.available()
			if err != nil {
				return err
			}

			tables := make(map[domain.Role]domain.Table, len(files))
			loadErrs := make(map[domain.Role]error)
			names := make(map[domain.Role]string, len(files))
			for role, path := range files {
				names[role] = filepath.Base(path)
				t, err := loader.ReadFile(path)
				if err != nil {
					loadErrs[role] = err
					continue
				}
				tables[role] = t
			}

			report := validation.NewInputValidator(c.logger).Validate(tables, loadErrs, names)
			if err := c.printValidation(report); err != nil {
				return err
			}
			if !report.Success {
				return ErrUnhealthy
			}
			return nil
		},
	}
	inputs.register(cmd)
	return cmd
}

func (c *CLI) printValidation(report *validation.Report) error {
	if c.format == FormatJSON {
		return writeJSON(c.out, report)
	}

	roles := make([]domain.Role, 0, len(report.Files))
	for role := range report.Files {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	files := tableData{Title: "Files", Headers: []string{"Role", "File", "Status", "Rows", "Columns"}}
	for _, role := range roles {
		fs := report.Files[role]
		files.Rows = append(files.Rows, []string{
			string(role), fs.File, statusLabel(fs.Status), strconv.Itoa(fs.Rows), strconv.Itoa(fs.Columns),
		})
	}
	tables := []tableData{files}

	if len(report.Errors) > 0 || len(report.Warnings) > 0 {
		issues := tableData{Title: "Issues", Headers: []string{"Level", "Message"}}
		for _, e := range report.Errors {
			issues.Rows = append(issues.Rows, []string{"Error", e})
		}
		for _, w := range report.Warnings {
			issues.Rows = append(issues.Rows, []string{"Warning", w})
		}
		tables = append(tables, issues)
	}
	return writeTables(c.out, tables...)
}
