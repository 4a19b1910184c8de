// Package document holds the host-editor view of a source buffer: its URI, language,
// text, and the workspace root that owns it.
package document

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	// LanguagePython is the host language identifier.
	LanguagePython = "python"
	// LanguageJac is the embedded language identifier.
	LanguageJac = "jac"
)

// Document is a snapshot of an editor buffer.
type Document struct {
	URI           string `json:"uri"`
	LanguageID    string `json:"languageId"`
	Text          string `json:"-"`
	WorkspaceRoot string `json:"workspaceRoot,omitempty"`
}

// Path returns the filesystem path of the document, or "" for non-file URIs.
func (d Document) Path() string {
	return URIToPath(d.URI)
}

// Lines splits the text on newlines, dropping carriage returns.
func (d Document) Lines() []string {
	lines := strings.Split(d.Text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// LanguageForPath infers a language identifier from the file extension.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return LanguagePython
	case ".jac":
		return LanguageJac
	default:
		return ""
	}
}

// Load reads path from fsys into a Document owned by the deepest matching root.
func Load(fsys afero.Fs, path string, roots []string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	data, err := afero.ReadFile(fsys, abs)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	return Document{
		URI:           PathToURI(abs),
		LanguageID:    LanguageForPath(abs),
		Text:          string(data),
		WorkspaceRoot: WorkspaceFor(roots, abs),
	}, nil
}

// Store is the set of open documents keyed by URI.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Put adds or replaces a document.
func (s *Store) Put(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URI] = doc
}

// Remove drops a document.
func (s *Store) Remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Document returns the current snapshot for uri.
func (s *Store) Document(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// URIs returns the open document URIs, sorted.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
