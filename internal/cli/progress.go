package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mvp-joe/jacbridge/internal/workspace"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements workspace.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

var _ workspace.ProgressReporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, out: out}
}

func (c *CLIProgressReporter) OnScanStart(totalFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Scanning %s Python files...", formatNumber(totalFiles))

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Annotating files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileScanned is called concurrently; progressbar guards its own state.
func (c *CLIProgressReporter) OnFileScanned(path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnScanComplete(report *workspace.Report) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "%s Scan complete: %s files in %.1fs\n",
		headingColor.Sprint("✓"), formatNumber(len(report.Files)), report.Duration.Seconds())
	fmt.Fprintf(c.out, "  Jac references: %s\n", formatNumber(report.AnnotationCount()))
	fmt.Fprintf(c.out, "  Jac modules:    %s\n", formatNumber(len(report.Modules())))
	if len(report.Failed) > 0 {
		fmt.Fprintf(c.out, "  Unreadable:     %s\n", errorColor.Sprint(formatNumber(len(report.Failed))))
	}
}
