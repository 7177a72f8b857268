package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wlrecon/internal/exporter"
	"wlrecon/internal/fieldmap"
	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// WorkbookName is the combined output workbook written by compare
const WorkbookName = "Whitelist_Comparison.xlsx"

type compareOptions struct {
	inputs inputFlags
	outDir string
	bundle bool
	csv    bool
	fuzzy  float64
}

// compareResult is the JSON output of compare
type compareResult struct {
	Statistics   domain.Statistics      `json:"statistics"`
	Pivot        reconcile.PivotSummary `json:"pivot"`
	Resolutions  []fieldmap.Resolution  `json:"resolutions,omitempty"`
	Fingerprints map[domain.Role]string `json:"fingerprints,omitempty"`
	Files        []string               `json:"files"`
}

func (c *CLI) compareCommand() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the reconciliation and write the result workbooks",
		Example: `  wlrecon compare --dir ./inputs
  wlrecon compare --security CCP_Security_Whitelist.xlsx --rules CCP_Market_Rules.xlsx --at AT_Whitelist.xlsx --bundle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runCompare(cmd, opts)
		},
	}
	opts.inputs.register(cmd)
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (default reconcile.output_dir)")
	cmd.Flags().BoolVar(&opts.bundle, "bundle", false, "also write the ZIP of per-requirement workbooks")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write each requirement as CSV")
	cmd.Flags().Float64Var(&opts.fuzzy, "fuzzy-threshold", -1, "similarity for resolving renamed columns of a mapping file, 0 disables (default reconcile.fuzzy_threshold)")
	return cmd
}

func (c *CLI) runCompare(cmd *cobra.Command, opts *compareOptions) error {
	ctx := cmd.Context()

	inputs, err := c.load(ctx, &opts.inputs)
	if err != nil {
		return err
	}
	in, err := inputs.ReconcileInput()
	if err != nil {
		return err
	}
	mapping, custom, err := c.mappingFor(&opts.inputs, inputs)
	if err != nil {
		return fmt.Errorf("invalid column mapping: %w", err)
	}

	threshold := c.cfg.Reconcile.FuzzyThreshold
	if opts.fuzzy >= 0 {
		threshold = opts.fuzzy
	}
	// the built-in mapping keeps the same semantics whatever the columns
	var resolutions []fieldmap.Resolution
	if custom && threshold > 0 {
		mapping, resolutions = fieldmap.ResolveInput(mapping, in, threshold, c.logger)
	}

	result, err := reconcile.NewEngine(
		reconcile.WithMapping(mapping),
		reconcile.WithLogger(c.logger),
	).Run(ctx, in)
	if err != nil {
		return err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = c.cfg.Reconcile.OutputDir
	}
	files, err := c.writeOutputs(result, outDir, opts)
	if err != nil {
		return err
	}

	if c.format == FormatJSON {
		return writeJSON(c.out, compareResult{
			Statistics:   result.Statistics,
			Pivot:        result.Analysis.Pivot,
			Resolutions:  resolutions,
			Fingerprints: inputs.Fingerprints,
			Files:        files,
		})
	}

	tables := []tableData{statisticsTable(result.Statistics)}
	if len(result.Analysis.Pivot.Rows) > 0 {
		tables = append(tables, domainTable("Mismatch pivot", result.Analysis.Pivot.Table(), 0))
	}
	if len(resolutions) > 0 {
		res := tableData{Title: "Resolved mapping columns", Headers: []string{"Mapped", "Resolved", "Similarity"}}
		for _, r := range resolutions {
			res.Rows = append(res.Rows, []string{r.Declared, r.Resolved, fmt.Sprintf("%.2f", r.Similarity)})
		}
		tables = append(tables, res)
	}
	if err := writeTables(c.out, tables...); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nWrote %s\n", strings.Join(files, ", "))
	return nil
}

// writeOutputs writes the combined workbook and the requested extras
func (c *CLI) writeOutputs(result *reconcile.Result, outDir string, opts *compareOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workbook := filepath.Join(outDir, WorkbookName)
	if err := writeFile(workbook, func(f *os.File) error {
		return exporter.WriteWorkbook(f, exporter.FullWorkbook(result)...)
	}); err != nil {
		return nil, err
	}
	files := []string{workbook}

	if opts.bundle {
		bundle := filepath.Join(outDir, domain.RequirementAll.FileName())
		if err := writeFile(bundle, func(f *os.File) error {
			return exporter.WriteBundle(f, result)
		}); err != nil {
			return nil, err
		}
		files = append(files, bundle)
	}

	if opts.csv {
		csvWriter := exporter.NewCSVWriter(outDir, c.logger)
		for _, req := range domain.Requirements {
			t, err := exporter.RequirementTable(result, req)
			if err != nil {
				return nil, err
			}
			name := strings.TrimSuffix(req.FileName(), filepath.Ext(req.FileName())) + ".csv"
			path, err := csvWriter.WriteFile(name, t)
			if err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}

	c.logger.Info("Comparison written",
		slog.String("output_dir", outDir),
		slog.Int("files", len(files)),
		slog.String("generated", time.Now().Format(domain.TimestampLayout)))
	return files, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
