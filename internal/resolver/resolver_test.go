package resolver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Resolver:
// - SearchPath returns the 8 default candidates in fixed order
// - Each single candidate on disk resolves, whichever one it is
// - Empty workspace has no hits
// - Only the first dotted segment is resolved
// - Missing workspace root / document path fail closed
// - Directories named like a module file do not count
// - Probe distinguishes found, not-found and stat errors
// - Probe errors are folded into "not found" and the scan continues
// - Resolution is idempotent and reflects deletions (no caching)
// - Extra source dirs and extension are configurable
// - Works against the real OS filesystem

const (
	ws  = "/ws"
	doc = "/ws/pkg/main.py"
)

func writeFile(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte("walker w {}\n"), 0644))
}

func TestSearchPath_DefaultOrder(t *testing.T) {
	t.Parallel()

	r := New(WithFs(afero.NewMemMapFs()))
	got := r.SearchPath(doc, ws, "util.helpers")

	want := []string{
		filepath.Join("/ws/pkg", "util.jac"),
		filepath.Join("/ws/pkg", "util", "index.jac"),
		filepath.Join("/ws/pkg", "util", "__init__.jac"),
		filepath.Join("/ws", "util.jac"),
		filepath.Join("/ws", "util", "index.jac"),
		filepath.Join("/ws", "util", "__init__.jac"),
		filepath.Join("/ws", "src", "util.jac"),
		filepath.Join("/ws", "lib", "util.jac"),
	}
	assert.Equal(t, want, got)
}

func TestResolve_AnySingleCandidate(t *testing.T) {
	t.Parallel()

	candidates := New().SearchPath(doc, ws, "util")
	require.Len(t, candidates, 8)

	for i, candidate := range candidates {
		candidate := candidate
		t.Run(filepath.ToSlash(candidate), func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, candidate)
			r := New(WithFs(fsys))

			path, ok := r.Lookup(doc, ws, "util")
			assert.True(t, ok, "candidate %d should resolve", i)
			assert.Equal(t, candidate, path)
			assert.True(t, r.Resolve(doc, ws, "util"))
		})
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/other.jac")
	writeFile(t, fsys, "/ws/util.py")
	writeFile(t, fsys, "/elsewhere/util.jac")

	r := New(WithFs(fsys))
	assert.False(t, r.Resolve(doc, ws, "util"))
}

func TestResolve_OnlyFirstSegmentMatters(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/graph.jac")
	r := New(WithFs(fsys))

	assert.True(t, r.Resolve(doc, ws, "graph.nodes.walker"))
	assert.True(t, r.Resolve(doc, ws, "graph"))
	assert.False(t, r.Resolve(doc, ws, "nodes.graph"))
}

func TestResolve_FailsClosed(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/pkg/util.jac")
	r := New(WithFs(fsys))

	tests := []struct {
		name   string
		doc    string
		root   string
		module string
	}{
		{"no workspace root", doc, "", "util"},
		{"no document", "", ws, "util"},
		{"empty module", doc, ws, ""},
		{"relative import", doc, ws, ".util"},
		{"path separator", doc, ws, "../util"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, r.SearchPath(tt.doc, tt.root, tt.module))
			assert.False(t, r.Resolve(tt.doc, tt.root, tt.module))
		})
	}
}

func TestResolve_DirectoryIsNotAModule(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/ws/util.jac", 0755))
	r := New(WithFs(fsys))

	assert.False(t, r.Resolve(doc, ws, "util"))
}

func TestProbe(t *testing.T) {
	t.Parallel()

	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/ws/util.jac")
	require.NoError(t, mem.MkdirAll("/ws/pkg.jac", 0755))
	r := New(WithFs(&failingFs{Fs: mem, fail: map[string]bool{"/ws/secret.jac": true}}))

	res, err := r.Probe("/ws/util.jac")
	require.NoError(t, err)
	assert.Equal(t, Found, res)

	res, err = r.Probe("/ws/pkg.jac")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)

	res, err = r.Probe("/ws/missing.jac")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)

	res, err = r.Probe("/ws/secret.jac")
	assert.Equal(t, ProbeError, res)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, "error", res.String())
	assert.Equal(t, "not-found", NotFound.String())
}

// failingFs returns a permission error for selected paths.
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func (f *failingFs) Stat(name string) (os.FileInfo, error) {
	if f.fail[name] {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
	}
	return f.Fs.Stat(name)
}

func TestResolve_ProbeErrorContinuesScan(t *testing.T) {
	t.Parallel()

	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/ws/lib/util.jac")

	fsys := &failingFs{Fs: mem, fail: map[string]bool{
		filepath.Join("/ws/pkg", "util.jac"): true,
		filepath.Join("/ws", "util.jac"):     true,
	}}
	r := New(WithFs(fsys))

	path, ok := r.Lookup(doc, ws, "util")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/ws", "lib", "util.jac"), path)

	explained := r.Explain(doc, ws, "util")
	require.Len(t, explained, 8)
	assert.Equal(t, ProbeError, explained[0].Result)
	assert.True(t, errors.Is(explained[0].Err, fs.ErrPermission))
	assert.Equal(t, NotFound, explained[1].Result)
	assert.Equal(t, Found, explained[7].Result)
	assert.Equal(t, "found", explained[7].Status)
}

func TestResolve_IdempotentAndUncached(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/util.jac")
	r := New(WithFs(fsys))

	first := r.Resolve(doc, ws, "util")
	second := r.Resolve(doc, ws, "util")
	assert.True(t, first)
	assert.Equal(t, first, second)

	require.NoError(t, fsys.Remove("/ws/util.jac"))
	assert.False(t, r.Resolve(doc, ws, "util"), "deletion must be observed on the next call")
}

func TestResolve_CustomConventions(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/modules/util.jacx")
	r := New(WithFs(fsys), WithExtension("jacx"), WithSourceDirs([]string{"src", "lib", "modules"}))

	assert.Equal(t, ".jacx", r.Extension())
	assert.Len(t, r.SearchPath(doc, ws, "util"), 9)
	assert.True(t, r.Resolve(doc, ws, "util"))
}

func TestResolve_OsFilesystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	document := filepath.Join(root, "main.py")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "agents"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "agents", "__init__.jac"), []byte(""), 0644))

	r := New()
	path, ok := r.Lookup(document, root, "agents.planner")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "agents", "__init__.jac"), path)
	assert.False(t, r.Resolve(document, root, "missing"))
}

func TestModuleRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "foo", ModuleRoot("foo.bar.baz"))
	assert.Equal(t, "foo", ModuleRoot(" foo "))
	assert.Equal(t, "", ModuleRoot(".foo"))
	assert.Equal(t, "", ModuleRoot(""))
}
