package resolver

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultExtension is the file extension of Jac modules.
	DefaultExtension = ".jac"
)

// DefaultSourceDirs are the conventional source directories searched under the workspace root.
var DefaultSourceDirs = []string{"src", "lib"}

// Resolver decides whether a module reference denotes an existing Jac file.
//
// Nothing is cached: every call re-walks the search path, so results always reflect the
// current filesystem state.
type Resolver struct {
	fs         afero.Fs
	extension  string
	sourceDirs []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem probed by the resolver. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(r *Resolver) {
		if fsys != nil {
			r.fs = fsys
		}
	}
}

// WithExtension sets the module file extension (with or without the leading dot).
func WithExtension(ext string) Option {
	return func(r *Resolver) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.extension = ext
	}
}

// WithSourceDirs sets the conventional source directories searched under the workspace root.
func WithSourceDirs(dirs []string) Option {
	return func(r *Resolver) {
		r.sourceDirs = append([]string(nil), dirs...)
	}
}

// New creates a resolver with the default search conventions.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		fs:         afero.NewOsFs(),
		extension:  DefaultExtension,
		sourceDirs: append([]string(nil), DefaultSourceDirs...),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extension returns the module file extension, including the leading dot.
func (r *Resolver) Extension() string {
	return r.extension
}

// ModuleRoot returns the first dotted segment of name, which is the only part ever resolved.
func ModuleRoot(name string) string {
	root, _, _ := strings.Cut(strings.TrimSpace(name), ".")
	return root
}

// SearchPath returns the ordered candidate paths for moduleName referenced from the document
// at documentPath inside workspaceRoot. It returns nil when resolution must fail closed:
// no workspace root, no document path, or a module root that is empty or contains a path
// separator.
func (r *Resolver) SearchPath(documentPath, workspaceRoot, moduleName string) []string {
	if workspaceRoot == "" || documentPath == "" {
		return nil
	}
	name := ModuleRoot(moduleName)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}

	docDir := filepath.Dir(documentPath)
	file := name + r.extension
	candidates := make([]string, 0, 6+len(r.sourceDirs))

	for _, base := range []string{docDir, workspaceRoot} {
		candidates = append(candidates,
			filepath.Join(base, file),
			filepath.Join(base, name, "index"+r.extension),
			filepath.Join(base, name, "__init__"+r.extension),
		)
	}
	for _, dir := range r.sourceDirs {
		candidates = append(candidates, filepath.Join(workspaceRoot, dir, file))
	}
	return candidates
}

// Candidate is one probed search-path entry.
type Candidate struct {
	Path   string      `json:"path"`
	Result ProbeResult `json:"-"`
	Status string      `json:"status"`
	Err    error       `json:"-"`
}

// Explain probes every candidate (without short-circuiting) and reports each outcome.
// It is meant for diagnostics output, not for the hot path.
func (r *Resolver) Explain(documentPath, workspaceRoot, moduleName string) []Candidate {
	paths := r.SearchPath(documentPath, workspaceRoot, moduleName)
	out := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		res, err := r.Probe(p)
		out = append(out, Candidate{Path: p, Result: res, Status: res.String(), Err: err})
	}
	return out
}

// Probe checks a single candidate path on the resolver's filesystem.
func (r *Resolver) Probe(path string) (ProbeResult, error) {
	return probe(r.fs, path)
}

// Lookup returns the first candidate that exists as a regular file.
// Probe errors count as "not found" for that candidate and the scan continues.
func (r *Resolver) Lookup(documentPath, workspaceRoot, moduleName string) (string, bool) {
	for _, p := range r.SearchPath(documentPath, workspaceRoot, moduleName) {
		if res, _ := r.Probe(p); res == Found {
			return p, true
		}
	}
	return "", false
}

// Resolve reports whether moduleName resolves to a Jac file.
func (r *Resolver) Resolve(documentPath, workspaceRoot, moduleName string) bool {
	_, ok := r.Lookup(documentPath, workspaceRoot, moduleName)
	return ok
}
