package cli

import (
	"context"
	"fmt"

	"github.com/mvp-joe/jacbridge/internal/annotate"
	"github.com/spf13/cobra"
)

var (
	annotateJSON   bool
	annotateTokens bool
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <file>...",
	Short: "List import references that resolve to Jac modules",
	Long: `Scan Python files for import statements and report each referenced name that
resolves to a Jac module, with its position and target file.

Examples:
  jacbridge annotate main.py
  jacbridge annotate --json pkg/*.py
  jacbridge annotate --tokens main.py   # LSP semantic-token encoding`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().BoolVar(&annotateJSON, "json", false, "print JSON")
	annotateCmd.Flags().BoolVar(&annotateTokens, "tokens", false, "include LSP semantic-token data in JSON output")
	rootCmd.AddCommand(annotateCmd)
}

type annotateOutput struct {
	Path        string                `json:"path"`
	Annotations []annotate.Annotation `json:"annotations"`
	Tokens      []uint32              `json:"tokens,omitempty"`
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	legend := annotate.DefaultLegend()
	results := make([]annotateOutput, 0, len(args))
	for _, path := range args {
		doc, err := b.OpenFile(path)
		if err != nil {
			return err
		}
		anns, err := b.Annotate(ctx, doc.URI)
		if err != nil {
			return err
		}
		b.CloseDocument(doc.URI)

		result := annotateOutput{Path: doc.Path(), Annotations: anns}
		if result.Annotations == nil {
			result.Annotations = []annotate.Annotation{}
		}
		if annotateTokens {
			result.Tokens = annotate.Encode(anns, legend)
		}
		results = append(results, result)
	}

	out := cmd.OutOrStdout()
	if annotateJSON || annotateTokens {
		return writeJSON(out, results)
	}

	total := 0
	for _, r := range results {
		printAnnotations(out, r.Path, r.Annotations)
		total += len(r.Annotations)
	}
	fmt.Fprintf(out, "%s %s Jac module references in %s files\n",
		headingColor.Sprint("✓"), formatNumber(total), formatNumber(len(results)))
	return nil
}
