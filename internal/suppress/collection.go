package suppress

import (
	"sort"
	"sync"

	"github.com/mvp-joe/jacbridge/internal/diagnostic"
)

// Collection holds the override batch for each document URI.
// Every Set replaces the previous batch wholesale.
type Collection struct {
	mu      sync.RWMutex
	records map[string][]diagnostic.Diagnostic
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{records: make(map[string][]diagnostic.Diagnostic)}
}

// Set replaces the override batch for uri.
func (c *Collection) Set(uri string, diags []diagnostic.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[uri] = append([]diagnostic.Diagnostic(nil), diags...)
}

// Delete removes the override batch for uri.
func (c *Collection) Delete(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, uri)
}

// Get returns a copy of the batch for uri and whether one exists.
func (c *Collection) Get(uri string) ([]diagnostic.Diagnostic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	diags, ok := c.records[uri]
	if !ok {
		return nil, false
	}
	return append([]diagnostic.Diagnostic(nil), diags...), true
}

// URIs returns the URIs that currently carry overrides, sorted.
func (c *Collection) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uris := make([]string, 0, len(c.records))
	for uri := range c.records {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

