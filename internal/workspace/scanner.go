package workspace

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/mvp-joe/jacbridge/internal/annotate"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many documents are annotated at once.
const DefaultConcurrency = 8

// ProgressReporter receives scan progress. Implementations must be safe for concurrent use
// of OnFileScanned.
type ProgressReporter interface {
	OnScanStart(totalFiles int)
	OnFileScanned(path string)
	OnScanComplete(report *Report)
}

// NoOpProgressReporter discards progress events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnScanStart(int)        {}
func (NoOpProgressReporter) OnFileScanned(string)   {}
func (NoOpProgressReporter) OnScanComplete(*Report) {}

// Annotator annotates one document. *annotate.Annotator satisfies it.
type Annotator interface {
	Annotate(ctx context.Context, doc document.Document) []annotate.Annotation
}

// ScannerOptions configures a Scanner.
type ScannerOptions struct {
	Include     []string
	Ignore      []string
	Concurrency int
	Progress    ProgressReporter
}

// Scanner annotates every host file under a workspace root.
type Scanner struct {
	fs        afero.Fs
	annotator Annotator
	opts      ScannerOptions
}

// NewScanner creates a scanner reading files through fsys.
func NewScanner(fsys afero.Fs, annotator Annotator, opts ScannerOptions) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	return &Scanner{fs: fsys, annotator: annotator, opts: opts}
}

// Scan discovers host files under root and annotates them concurrently. Each document is
// annotated independently. Files that cannot be read are recorded in Report.Failed and do
// not abort the scan; cancellation of ctx does.
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	discovery, err := NewDiscovery(s.fs, abs, s.opts.Include, s.opts.Ignore)
	if err != nil {
		return nil, err
	}
	files, err := discovery.Discover()
	if err != nil {
		return nil, err
	}

	s.opts.Progress.OnScanStart(len(files))

	results := make([]FileResult, len(files))
	var (
		failedMu sync.Mutex
		failed   = map[string]string{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer s.opts.Progress.OnFileScanned(path)

			doc, err := document.Load(s.fs, path, []string{abs})
			if err != nil {
				log.Printf("[workspace] skipping %s: %v", path, err)
				failedMu.Lock()
				failed[path] = err.Error()
				failedMu.Unlock()
				return nil
			}
			results[i] = FileResult{Path: path, Annotations: s.annotator.Annotate(gctx, doc)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan of %s cancelled: %w", abs, err)
	}
	// In-flight documents stop at a line boundary without error, so a cancellation that
	// lands after the last file started only shows up here.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan of %s cancelled: %w", abs, err)
	}

	report, err := newReport(abs, results, failed)
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)

	s.opts.Progress.OnScanComplete(report)
	return report, nil
}
