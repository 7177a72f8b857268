package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wlrecon/internal/app"
	"wlrecon/internal/infrastructure"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP reconciliation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				c.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}

			// The server logs to stdout and the configured log file
			logger, err := infrastructure.InitializeLogger(c.cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			application, err := app.New(c.cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			return application.Run()
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default server.port)")
	return cmd
}
