package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"wlrecon/internal/config"
	"wlrecon/internal/infrastructure"
	"wlrecon/pkg/contracts"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnhealthy is returned when an audit or validation reports failures.
// The process exits non-zero without printing it again.
var ErrUnhealthy = errors.New("inputs failed checks")

// CLI holds the state shared by every command
type CLI struct {
	configPath string
	envFile    string
	verbose    bool
	format     string

	cfg    *config.Config
	logger *slog.Logger

	out    io.Writer
	errOut io.Writer
}

// New creates a CLI writing results to out and diagnostics to errOut
func New(out, errOut io.Writer) *CLI {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &CLI{out: out, errOut: errOut}
}

// Execute runs the command line with args
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	return root.ExecuteContext(ctx)
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wlrecon",
		Short: "Reconcile the CCP securities whitelist against the AT whitelist",
		Long: `wlrecon compares the CCP security whitelist, enriched with the CCP
market rules, against the AT whitelist and reports:

  Requirement 1  securities in CCP but not in AT
  Requirement 2  securities in AT but not in CCP
  Requirement 3  securities in both whose mapped configuration differs

Inputs are matched by file name (CCP_Security*, CCP_Market*, AT_Whitelist*,
Column_Mapping*) or passed explicitly.`,
		Version:           contracts.Version,
		PersistentPreRunE: c.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default is ./config.yaml when present)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	flags.StringVarP(&c.format, "format", "o", FormatText, "output format: text, json")

	root.SetVersionTemplate("wlrecon {{.Version}}\n")

	root.AddCommand(
		c.compareCommand(),
		c.auditCommand(),
		c.validateCommand(),
		c.mappingCommand(),
		c.serveCommand(),
		c.versionCommand(),
	)
	return root
}

// setup loads the environment, configuration and logger before any command
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.format != FormatText && c.format != FormatJSON {
		return fmt.Errorf("unsupported format %q (use %s or %s)", c.format, FormatText, FormatJSON)
	}

	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	c.cfg = cfg

	// Logs go to stderr so --format json output stays parseable
	logger, err := infrastructure.NewLogger(cfg.Logging, c.errOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = infrastructure.WithComponent(logger, "cli").With(slog.String("command", cmd.Name()))

	// Every log line of one invocation shares a trace ID
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}
