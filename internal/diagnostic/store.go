package diagnostic

import (
	"sort"
	"sync"
)

// Store is a per-URI diagnostic collection. It holds the analyzer's latest
// diagnostics, which are replaced wholesale on every publish.
type Store struct {
	mu    sync.RWMutex
	items map[string][]Diagnostic
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string][]Diagnostic)}
}

// Set replaces the diagnostics for uri. An empty list removes the entry.
func (s *Store) Set(uri string, diags []Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(diags) == 0 {
		delete(s.items, uri)
		return
	}
	s.items[uri] = append([]Diagnostic(nil), diags...)
}

// Delete removes the diagnostics for uri.
func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, uri)
}

// Diagnostics returns a copy of the diagnostics for uri.
func (s *Store) Diagnostics(uri string) []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Diagnostic(nil), s.items[uri]...)
}

// URIs returns the URIs with diagnostics, sorted.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.items))
	for uri := range s.items {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Clear removes everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]Diagnostic)
}
