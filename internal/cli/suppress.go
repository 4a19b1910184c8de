package cli

import (
	"fmt"
	"sort"

	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/spf13/cobra"
)

var suppressJSON bool

// suppressCmd represents the suppress command
var suppressCmd = &cobra.Command{
	Use:   "suppress <pyright-report.json>",
	Short: "Show which analyzer diagnostics refer to Jac modules",
	Long: `Read a pyright JSON report (pyright --outputjson) and print the informational
override for every unresolved-import diagnostic whose module is actually a Jac module.

Relative file paths in the report are resolved against the workspace root.

Example:
  pyright --outputjson > report.json
  jacbridge suppress report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSuppress,
}

func init() {
	suppressCmd.Flags().BoolVar(&suppressJSON, "json", false, "print JSON")
	rootCmd.AddCommand(suppressCmd)
}

type suppressOutput struct {
	URI       string                  `json:"uri"`
	Overrides []diagnostic.Diagnostic `json:"overrides"`
}

func runSuppress(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}

	report, err := diagnostic.LoadPyrightReport(args[0], b.Roots()[0])
	if err != nil {
		return err
	}

	uris := make([]string, 0, len(report))
	for uri := range report {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	var results []suppressOutput
	total := 0
	for _, uri := range uris {
		overrides := b.Suppress(document.Document{URI: uri}, report[uri])
		if len(overrides) == 0 {
			continue
		}
		results = append(results, suppressOutput{URI: uri, Overrides: overrides})
		total += len(overrides)
	}

	out := cmd.OutOrStdout()
	if suppressJSON {
		if results == nil {
			results = []suppressOutput{}
		}
		return writeJSON(out, results)
	}

	for _, r := range results {
		printOverrides(out, document.URIToPath(r.URI), r.Overrides)
	}
	fmt.Fprintf(out, "%s %s of %s diagnostics refer to Jac modules\n",
		headingColor.Sprint("✓"), formatNumber(total), formatNumber(countDiagnostics(report)))
	return nil
}

func countDiagnostics(report map[string][]diagnostic.Diagnostic) int {
	n := 0
	for _, diags := range report {
		n += len(diags)
	}
	return n
}
