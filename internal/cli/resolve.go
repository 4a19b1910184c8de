package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	resolveFrom    string
	resolveExplain bool
	resolveJSON    bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <module>",
	Short: "Check whether an import name resolves to a Jac module",
	Long: `Resolve a dotted import name against the Jac search path.

Only the first segment of the name is looked up. Candidates are probed in order:
next to the importing file, at the workspace root, then in the conventional
source directories (src, lib by default).

Examples:
  jacbridge resolve agents.planner
  jacbridge resolve util --from pkg/app.py --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "importing file (default is a file at the workspace root)")
	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "show every search-path candidate and its probe status")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print JSON")
	rootCmd.AddCommand(resolveCmd)
}

type resolveOutput struct {
	Module     string      `json:"module"`
	From       string      `json:"from"`
	Resolved   bool        `json:"resolved"`
	Target     string      `json:"target,omitempty"`
	Candidates interface{} `json:"candidates,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	module := args[0]

	from := resolveFrom
	if from == "" {
		from = filepath.Join(b.Roots()[0], "__init__.py")
	}
	from, err = filepath.Abs(from)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", resolveFrom, err)
	}

	target, ok := b.Resolve(from, module)
	explain := resolveExplain || b.Config().Verbose

	out := cmd.OutOrStdout()
	if resolveJSON {
		result := resolveOutput{Module: module, From: from, Resolved: ok, Target: target}
		if explain {
			result.Candidates = b.Explain(from, module)
		}
		return writeJSON(out, result)
	}

	if ok {
		fmt.Fprintf(out, "%s %s -> %s\n", foundColor.Sprint("found"), module, target)
	} else {
		fmt.Fprintf(out, "%s %s is not a Jac module\n", missColor.Sprint("missing"), module)
	}
	if explain {
		printCandidates(out, b.Explain(from, module))
	}
	return nil
}
