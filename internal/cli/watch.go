package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/mvp-joe/jacbridge/internal/bridge"
	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <pyright-report.json>",
	Short: "Keep overrides current while Jac modules change",
	Long: `Open every document in a pyright JSON report, then watch the workspace for Jac
modules being created or deleted. Each time the overrides for a document change,
the new set is printed. Stop with Ctrl-C.

Example:
  jacbridge watch report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// overridePrinter serializes listener output from the suppression pass goroutines.
type overridePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *overridePrinter) print(uri string, overrides []diagnostic.Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	path := document.URIToPath(uri)
	if len(overrides) == 0 {
		fmt.Fprintf(p.out, "%s %s\n", dimColor.Sprint("cleared"), path)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", headingColor.Sprint("updated"), path)
	printOverrides(p.out, path, overrides)
}

func runWatch(cmd *cobra.Command, args []string) error {
	printer := &overridePrinter{out: cmd.OutOrStdout()}
	b, err := newBridge(bridge.WithModuleWatcher(true), bridge.WithOverrideListener(printer.print))
	if err != nil {
		return err
	}

	report, err := diagnostic.LoadPyrightReport(args[0], b.Roots()[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Stop()

	uris := make([]string, 0, len(report))
	for uri := range report {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		b.OpenDocument(document.Document{URI: uri})
		b.PublishDiagnostics(uri, report[uri])
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for Jac module changes (%d documents)...\n",
		b.Roots()[0], len(uris))
	<-ctx.Done()
	return nil
}
