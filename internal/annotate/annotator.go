// Package annotate scans host documents for import statements and marks every
// reference that resolves to a Jac module.
package annotate

import (
	"context"
	"log"

	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/mvp-joe/jacbridge/internal/imports"
	"github.com/mvp-joe/jacbridge/internal/resolver"
)

const (
	// TokenModuleReference is the single token type in the legend.
	TokenModuleReference = "moduleReference"
	// ModifierResolved is the single token modifier in the legend.
	ModifierResolved = "resolved"
)

// Legend declares the token types and modifiers the renderer binds to.
type Legend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// DefaultLegend returns the legend with exactly one type and one modifier.
func DefaultLegend() Legend {
	return Legend{
		TokenTypes:     []string{TokenModuleReference},
		TokenModifiers: []string{ModifierResolved},
	}
}

// Annotation is a positioned marker over a resolved module reference.
type Annotation struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Length    int    `json:"length"`
	Name      string `json:"name"`
	Target    string `json:"target"`
	TokenType string `json:"tokenType"`
	Modifier  string `json:"modifier"`
}

// ModuleResolver is the part of the resolver the annotator needs.
type ModuleResolver interface {
	Lookup(documentPath, workspaceRoot, moduleName string) (string, bool)
}

var _ ModuleResolver = (*resolver.Resolver)(nil)

// Annotator runs the annotation pass.
type Annotator struct {
	resolver     ModuleResolver
	hostLanguage string
	verbose      bool
}

// New creates an annotator for documents of hostLanguage.
func New(r ModuleResolver, hostLanguage string, verbose bool) *Annotator {
	if hostLanguage == "" {
		hostLanguage = document.LanguagePython
	}
	return &Annotator{
		resolver:     r,
		hostLanguage: hostLanguage,
		verbose:      verbose,
	}
}

// Annotate scans doc line by line and returns annotations for every reference that
// resolves. Cancellation is observed at each line boundary; whatever was collected so far
// is returned. Non-host documents and scans that panic yield nil.
func (a *Annotator) Annotate(ctx context.Context, doc document.Document) (out []Annotation) {
	if doc.LanguageID != a.hostLanguage {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[annotate] scan of %s aborted: %v", doc.URI, r)
			out = nil
		}
	}()

	if a.verbose {
		log.Printf("[annotate] processing %s", doc.URI)
	}

	path := doc.Path()
	for lineIndex, line := range doc.Lines() {
		if ctx.Err() != nil {
			if a.verbose {
				log.Printf("[annotate] cancelled %s at line %d", doc.URI, lineIndex)
			}
			break
		}

		for _, ref := range imports.ScanLine(line) {
			target, ok := a.resolver.Lookup(path, doc.WorkspaceRoot, ref.Name)
			if !ok {
				continue
			}
			out = append(out, Annotation{
				Line:      lineIndex,
				Column:    ref.Column,
				Length:    ref.Length,
				Name:      ref.Name,
				Target:    target,
				TokenType: TokenModuleReference,
				Modifier:  ModifierResolved,
			})
		}
	}

	if a.verbose && len(out) > 0 {
		log.Printf("[annotate] %d annotations in %s", len(out), doc.URI)
	}
	return out
}
