// Package suppress replaces analyzer "unresolved import" diagnostics that actually refer
// to Jac modules with informational overrides.
package suppress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/document"
)

// OverrideSource tags every override so it is distinguishable from analyzer output.
const OverrideSource = "jacbridge"

// ErrAlreadyStarted is returned by Start on a running pass.
var ErrAlreadyStarted = errors.New("suppression pass already started")

// DiagnosticSource supplies the analyzer's current diagnostics for a document.
type DiagnosticSource interface {
	Diagnostics(uri string) []diagnostic.Diagnostic
}

// DocumentSource supplies the current snapshot of an open document.
type DocumentSource interface {
	Document(uri string) (document.Document, bool)
}

// Publisher receives override batches. Set replaces the batch for a URI; Delete clears it.
type Publisher interface {
	Set(uri string, diags []diagnostic.Diagnostic)
	Delete(uri string)
}

// ModuleResolver decides whether a module name resolves to a Jac file.
type ModuleResolver interface {
	Resolve(documentPath, workspaceRoot, moduleName string) bool
}

// Options configures a Pass.
type Options struct {
	HostLanguage string
	SettleDelay  time.Duration
	Analyzers    []string
	Verbose      bool
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// Pass is the diagnostic suppression pass. It is driven by Notify and owns the
// override batches it publishes until Stop.
type Pass struct {
	resolver   ModuleResolver
	classifier *diagnostic.Classifier
	diags      DiagnosticSource
	docs       DocumentSource
	out        Publisher
	opts       Options

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	timers map[string]pendingTimer
	gen    uint64
	wg     sync.WaitGroup

	// publishMu serializes writes to the publisher with Forget, so a batch computed for a
	// document that has since been closed is never published.
	publishMu sync.Mutex
	published map[string]struct{}
}

// New creates a suppression pass. Call Start before Notify.
func New(r ModuleResolver, diags DiagnosticSource, docs DocumentSource, out Publisher, opts Options) *Pass {
	if opts.HostLanguage == "" {
		opts.HostLanguage = document.LanguagePython
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	return &Pass{
		resolver:   r,
		classifier: diagnostic.NewClassifier(opts.Analyzers),
		diags:      diags,
		docs:       docs,
		out:        out,
		opts:       opts,
		timers:     make(map[string]pendingTimer),
		published:  make(map[string]struct{}),
	}
}

// Start enables scheduling. The pass stops scheduling when ctx is cancelled or Stop is called.
func (p *Pass) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx != nil && p.ctx.Err() == nil {
		return ErrAlreadyStarted
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	return nil
}

// Stop cancels pending reconciliations, waits for running ones, and clears every
// override batch this pass published.
func (p *Pass) Stop() error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	for uri, pending := range p.timers {
		pending.timer.Stop()
		delete(p.timers, uri)
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	for uri := range p.published {
		p.out.Delete(uri)
	}
	p.published = make(map[string]struct{})
	return nil
}

// Forget cancels any pending reconcile for uri and clears its overrides. Call it after
// the document has been removed from the DocumentSource: a reconcile still running for
// uri then clears the batch instead of publishing it.
func (p *Pass) Forget(uri string) {
	p.mu.Lock()
	if pending, ok := p.timers[uri]; ok {
		pending.timer.Stop()
		delete(p.timers, uri)
	}
	p.mu.Unlock()

	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	delete(p.published, uri)
	p.out.Delete(uri)
}

// Notify schedules a reconcile of each URI once the settle delay has passed.
// Repeated notifications for the same URI restart its timer.
func (p *Pass) Notify(uris ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil || p.ctx.Err() != nil {
		return
	}
	for _, uri := range uris {
		if pending, ok := p.timers[uri]; ok {
			pending.timer.Stop()
		}
		p.gen++
		gen := p.gen
		uri := uri
		p.timers[uri] = pendingTimer{
			timer: time.AfterFunc(p.opts.SettleDelay, func() { p.fire(uri, gen) }),
			gen:   gen,
		}
	}
}

func (p *Pass) fire(uri string, gen uint64) {
	p.mu.Lock()
	if p.ctx == nil || p.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	if pending, ok := p.timers[uri]; ok && pending.gen == gen {
		delete(p.timers, uri)
	}
	p.wg.Add(1)
	p.mu.Unlock()

	defer p.wg.Done()
	p.Reconcile(uri)
}

// Reconcile recomputes the overrides for uri from the current diagnostics and publishes
// them as one batch, or clears the batch when none remain. It returns the number of
// overrides published. Documents that are not open or not host-language are skipped.
func (p *Pass) Reconcile(uri string) (count int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[suppress] reconcile of %s aborted: %v", uri, r)
			count = 0
		}
	}()

	doc, ok := p.docs.Document(uri)
	if !ok || doc.LanguageID != p.opts.HostLanguage {
		return 0
	}

	count = p.publish(uri, p.overrides(doc, p.diags.Diagnostics(uri)))
	if p.opts.Verbose {
		log.Printf("[suppress] %s: %d overrides", uri, count)
	}
	return count
}

// publish writes the batch for uri. Resolution may block on the filesystem, so the
// document is looked up again here: if it was closed or changed language meanwhile the
// batch is cleared instead.
func (p *Pass) publish(uri string, overrides []diagnostic.Diagnostic) int {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	if doc, ok := p.docs.Document(uri); !ok || doc.LanguageID != p.opts.HostLanguage {
		overrides = nil
	}
	if len(overrides) == 0 {
		delete(p.published, uri)
		p.out.Delete(uri)
		return 0
	}
	p.published[uri] = struct{}{}
	p.out.Set(uri, overrides)
	return len(overrides)
}

// Compute returns the overrides for doc given diags without publishing anything.
func (p *Pass) Compute(doc document.Document, diags []diagnostic.Diagnostic) (out []diagnostic.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[suppress] compute for %s aborted: %v", doc.URI, r)
			out = nil
		}
	}()
	if doc.LanguageID != p.opts.HostLanguage {
		return nil
	}
	return p.overrides(doc, diags)
}

func (p *Pass) overrides(doc document.Document, diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	path := doc.Path()
	var out []diagnostic.Diagnostic
	for _, d := range diags {
		name, ok := p.classifier.Classify(d)
		if !ok {
			continue
		}
		if !p.resolver.Resolve(path, doc.WorkspaceRoot, name) {
			continue
		}
		out = append(out, Override(d, name))
	}
	return out
}

// Override builds the informational diagnostic that replaces d.
func Override(d diagnostic.Diagnostic, moduleName string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Range:    d.Range,
		Severity: diagnostic.SeverityInformation,
		Source:   OverrideSource,
		Message:  fmt.Sprintf(`Jac module "%s" found`, moduleName),
	}
}
