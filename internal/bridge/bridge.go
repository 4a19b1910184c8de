// Package bridge wires the resolver, the suppression pass, the annotation pass and the
// module watcher into one object owned by the host editor integration.
//
// A Bridge is created per activation with an already loaded configuration. Nothing in
// it is global: Start and Stop bound its lifetime, and Stop clears every override it
// published.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mvp-joe/jacbridge/internal/annotate"
	"github.com/mvp-joe/jacbridge/internal/config"
	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/mvp-joe/jacbridge/internal/resolver"
	"github.com/mvp-joe/jacbridge/internal/suppress"
	"github.com/mvp-joe/jacbridge/internal/watcher"
	"github.com/mvp-joe/jacbridge/internal/workspace"
	"github.com/spf13/afero"
)

// ErrUnknownDocument is returned for operations on a URI that is not open.
var ErrUnknownDocument = errors.New("document is not open")

// OverrideListener observes every override batch change. An empty batch means the
// overrides for uri were cleared.
type OverrideListener func(uri string, overrides []diagnostic.Diagnostic)

// Option configures a Bridge.
type Option func(*Bridge)

// WithFs sets the filesystem used for module resolution and document loading.
func WithFs(fsys afero.Fs) Option {
	return func(b *Bridge) { b.fs = fsys }
}

// WithModuleWatcher enables re-reconciling open documents when Jac modules change on disk.
func WithModuleWatcher(enabled bool) Option {
	return func(b *Bridge) { b.watch = enabled }
}

// WithOverrideListener registers a callback for override batch changes.
func WithOverrideListener(fn OverrideListener) Option {
	return func(b *Bridge) { b.listener = fn }
}

// Bridge is the composition root for one activation.
type Bridge struct {
	cfg      *config.Config
	roots    []string
	fs       afero.Fs
	watch    bool
	listener OverrideListener

	resolver  *resolver.Resolver
	docs      *document.Store
	diags     *diagnostic.Store
	overrides *suppress.Collection
	pass      *suppress.Pass
	annotator *annotate.Annotator

	mu      sync.Mutex
	watcher watcher.ModuleWatcher
}

// New validates cfg and builds a Bridge over the given workspace roots. The suppression
// pass and the annotator are only created when enabled.
func New(cfg *config.Config, roots []string, opts ...Option) (*Bridge, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		a, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace root %s: %w", root, err)
		}
		abs = append(abs, a)
	}

	b := &Bridge{
		cfg:       cfg,
		roots:     abs,
		fs:        afero.NewOsFs(),
		docs:      document.NewStore(),
		diags:     diagnostic.NewStore(),
		overrides: suppress.NewCollection(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.resolver = resolver.New(append(cfg.ResolverOptions(), resolver.WithFs(b.fs))...)

	if cfg.Suppression.Enabled {
		b.pass = suppress.New(b.resolver, b.diags, b.docs, &publisher{b: b}, suppress.Options{
			HostLanguage: cfg.HostLanguage,
			SettleDelay:  cfg.Suppression.SettleDelay,
			Analyzers:    cfg.Suppression.Analyzers,
			Verbose:      cfg.Verbose,
		})
	}
	if cfg.Annotation.Enabled {
		b.annotator = annotate.New(b.resolver, cfg.HostLanguage, cfg.Verbose)
	}
	return b, nil
}

// Config returns the configuration the bridge was built with.
func (b *Bridge) Config() *config.Config { return b.cfg }

// Roots returns the absolute workspace roots.
func (b *Bridge) Roots() []string { return append([]string(nil), b.roots...) }

// Start starts the suppression pass and, when enabled, the module watcher.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass != nil {
		if err := b.pass.Start(ctx); err != nil {
			return err
		}
	}

	if b.watch && len(b.roots) > 0 {
		w, err := watcher.New(b.roots, watcher.Options{
			Extensions: []string{b.cfg.Resolver.Extension},
			Debounce:   b.cfg.Suppression.SettleDelay,
			SkipDirs:   skipDirs(b.cfg.Workspace.Ignore),
			Verbose:    b.cfg.Verbose,
		})
		if err != nil {
			if b.pass != nil {
				b.pass.Stop()
			}
			return fmt.Errorf("failed to start module watcher: %w", err)
		}
		if err := w.Start(ctx, b.onModulesChanged); err != nil {
			w.Stop()
			if b.pass != nil {
				b.pass.Stop()
			}
			return fmt.Errorf("failed to start module watcher: %w", err)
		}
		b.watcher = w
	}

	if b.cfg.Verbose {
		log.Printf("[bridge] started: %d workspace roots, suppression=%t, annotation=%t, watcher=%t",
			len(b.roots), b.pass != nil, b.annotator != nil, b.watcher != nil)
	}
	return nil
}

// Stop stops the watcher and the suppression pass. Published overrides are cleared.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.watcher != nil {
		if err := b.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop module watcher: %w", err))
		}
		b.watcher = nil
	}
	if b.pass != nil {
		if err := b.pass.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop suppression pass: %w", err))
		}
	}
	return errors.Join(errs...)
}

// onModulesChanged re-reconciles every open document. Creating or deleting a module can
// flip any document's resolution results, so there is no narrower set to pick.
func (b *Bridge) onModulesChanged(changes []watcher.Change) {
	if b.pass == nil {
		return
	}
	if b.cfg.Verbose {
		for _, c := range changes {
			log.Printf("[bridge] module %s %s", c.Path, c.Kind)
		}
	}
	b.pass.Notify(b.docs.URIs()...)
}

// OpenDocument registers doc as open. A missing workspace root is filled in from the
// bridge's roots.
func (b *Bridge) OpenDocument(doc document.Document) document.Document {
	doc = b.complete(doc)
	b.docs.Put(doc)
	if b.pass != nil {
		b.pass.Notify(doc.URI)
	}
	return doc
}

func (b *Bridge) complete(doc document.Document) document.Document {
	if doc.WorkspaceRoot == "" {
		doc.WorkspaceRoot = document.WorkspaceFor(b.roots, doc.Path())
	}
	if doc.LanguageID == "" {
		doc.LanguageID = document.LanguageForPath(doc.Path())
	}
	return doc
}

// OpenFile loads path from the bridge filesystem and opens it.
func (b *Bridge) OpenFile(path string) (document.Document, error) {
	doc, err := document.Load(b.fs, path, b.roots)
	if err != nil {
		return document.Document{}, err
	}
	return b.OpenDocument(doc), nil
}

// CloseDocument forgets uri along with its analyzer diagnostics and overrides.
func (b *Bridge) CloseDocument(uri string) {
	b.docs.Remove(uri)
	b.diags.Delete(uri)
	if b.pass != nil {
		b.pass.Forget(uri)
		return
	}
	b.publish(uri, nil)
}

// PublishDiagnostics records the analyzer's current diagnostics for uri and schedules a
// reconcile once the settle delay has passed.
func (b *Bridge) PublishDiagnostics(uri string, diags []diagnostic.Diagnostic) {
	b.diags.Set(uri, diags)
	if b.pass != nil {
		b.pass.Notify(uri)
	}
}

// Reconcile recomputes overrides for uri immediately and returns how many were published.
// It returns 0 when suppression is disabled.
func (b *Bridge) Reconcile(uri string) int {
	if b.pass == nil {
		return 0
	}
	return b.pass.Reconcile(uri)
}

// ReconcileAll reconciles every open document and returns the total override count.
func (b *Bridge) ReconcileAll() int {
	total := 0
	for _, uri := range b.docs.URIs() {
		total += b.Reconcile(uri)
	}
	return total
}

// Overrides returns the override batch currently published for uri.
func (b *Bridge) Overrides(uri string) []diagnostic.Diagnostic {
	diags, _ := b.overrides.Get(uri)
	return diags
}

// OverrideURIs returns every URI that currently carries overrides.
func (b *Bridge) OverrideURIs() []string {
	return b.overrides.URIs()
}

// Document returns the open document for uri.
func (b *Bridge) Document(uri string) (document.Document, bool) {
	return b.docs.Document(uri)
}

// Annotate runs the annotation pass over the open document uri. It returns nil when
// annotation is disabled.
func (b *Bridge) Annotate(ctx context.Context, uri string) ([]annotate.Annotation, error) {
	doc, ok := b.docs.Document(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return b.AnnotateDocument(ctx, doc), nil
}

// AnnotateDocument annotates doc without opening it. Missing workspace root and language
// are filled in the same way OpenDocument does.
func (b *Bridge) AnnotateDocument(ctx context.Context, doc document.Document) []annotate.Annotation {
	if b.annotator == nil {
		return nil
	}
	return b.annotator.Annotate(ctx, b.complete(doc))
}

// Suppress computes the overrides diags would produce for doc without opening it or
// publishing anything. It returns nil when suppression is disabled.
func (b *Bridge) Suppress(doc document.Document, diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	if b.pass == nil {
		return nil
	}
	return b.pass.Compute(b.complete(doc), diags)
}

// Resolve reports the Jac file moduleName resolves to from documentPath, using the
// deepest workspace root containing the document.
func (b *Bridge) Resolve(documentPath, moduleName string) (string, bool) {
	abs, err := filepath.Abs(documentPath)
	if err != nil {
		return "", false
	}
	return b.resolver.Lookup(abs, document.WorkspaceFor(b.roots, abs), moduleName)
}

// Explain returns every search-path candidate for moduleName with its probe result.
func (b *Bridge) Explain(documentPath, moduleName string) []resolver.Candidate {
	abs, err := filepath.Abs(documentPath)
	if err != nil {
		return nil
	}
	return b.resolver.Explain(abs, document.WorkspaceFor(b.roots, abs), moduleName)
}

// Scan annotates every host file under root. progress may be nil.
func (b *Bridge) Scan(ctx context.Context, root string, progress workspace.ProgressReporter) (*workspace.Report, error) {
	if b.annotator == nil {
		return nil, errors.New("annotation is disabled")
	}
	scanner := workspace.NewScanner(b.fs, b.annotator, workspace.ScannerOptions{
		Include:     b.cfg.Workspace.Include,
		Ignore:      b.cfg.Workspace.Ignore,
		Concurrency: b.cfg.Workspace.Concurrency,
		Progress:    progress,
	})
	return scanner.Scan(ctx, root)
}

func (b *Bridge) publish(uri string, diags []diagnostic.Diagnostic) {
	if len(diags) == 0 {
		b.overrides.Delete(uri)
	} else {
		b.overrides.Set(uri, diags)
	}
	if b.listener != nil {
		b.listener(uri, diags)
	}
}

// publisher routes suppression pass output through the bridge.
type publisher struct {
	b *Bridge
}

func (p *publisher) Set(uri string, diags []diagnostic.Diagnostic) { p.b.publish(uri, diags) }
func (p *publisher) Delete(uri string)                             { p.b.publish(uri, nil) }

// skipDirs turns directory ignore globs such as "node_modules/**" into base-name patterns
// for the module watcher. Patterns that are not whole-directory rules are dropped.
func skipDirs(ignore []string) []string {
	var out []string
	for _, pattern := range ignore {
		dir, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		dir = strings.TrimPrefix(dir, "**/")
		if dir == "" || strings.Contains(dir, "/") {
			continue
		}
		out = append(out, dir)
	}
	return out
}
