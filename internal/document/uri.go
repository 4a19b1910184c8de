package document

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath converts a file URI (or a bare path) to an absolute filesystem path.
// Non-file schemes return "".
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI converts a filesystem path to a file URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// WithinRoot reports whether path is root or lies beneath it.
func WithinRoot(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	root = filepath.Clean(filepath.FromSlash(root))
	path = filepath.Clean(filepath.FromSlash(path))
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// WorkspaceFor returns the deepest root containing path, or "" when the path is
// outside every workspace root.
func WorkspaceFor(roots []string, path string) string {
	best := ""
	for _, root := range roots {
		if !WithinRoot(root, path) {
			continue
		}
		if clean := filepath.Clean(root); len(clean) > len(best) {
			best = clean
		}
	}
	return best
}
