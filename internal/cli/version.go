package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wlrecon/pkg/contracts"
)

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.format == FormatJSON {
				return writeJSON(c.out, contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(c.out, contracts.GetFullVersionString())
			return err
		},
	}
}
