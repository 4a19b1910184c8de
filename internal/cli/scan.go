package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mvp-joe/jacbridge/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	scanQuiet bool
	scanJSON  bool
	scanGraph bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Annotate every Python file in the workspace",
	Long: `Discover Python files under a directory (the workspace root by default), find
every import that resolves to a Jac module, and summarize which Jac modules are
referenced from where.

Examples:
  jacbridge scan
  jacbridge scan --graph | dot -Tsvg > refs.svg
  jacbridge scan --json src`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "suppress progress output")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the full report as JSON")
	scanCmd.Flags().BoolVar(&scanGraph, "graph", false, "print the host file -> Jac module graph in DOT format")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	dir := b.Roots()[0]
	if len(args) == 1 {
		dir = args[0]
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	// Machine-readable output keeps stdout clean; progress goes to stderr.
	quiet := scanQuiet
	if scanJSON || scanGraph {
		quiet = true
	}
	progress := NewCLIProgressReporter(cmd.ErrOrStderr(), quiet)

	report, err := b.Scan(ctx, dir, progress)
	if err != nil {
		return err
	}

	switch {
	case scanGraph:
		return report.WriteDOT(out)
	case scanJSON:
		return writeJSON(out, report)
	}

	printModuleSummary(out, report)
	return nil
}

func printModuleSummary(w io.Writer, report *workspace.Report) {
	for _, module := range report.Modules() {
		dependents := report.Dependents(module)
		fmt.Fprintf(w, "%s (%d)\n", foundColor.Sprint(module), len(dependents))
		for _, dep := range dependents {
			fmt.Fprintf(w, "  %s\n", dimColor.Sprint(dep))
		}
	}
}
