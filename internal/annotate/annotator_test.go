package annotate

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mvp-joe/jacbridge/internal/document"
	"github.com/mvp-joe/jacbridge/internal/resolver"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Annotator:
// - import of a workspace Jac module yields one annotation at the name's column
// - unresolved imports yield nothing
// - multi-imports annotate only resolving names, each at its own column
// - non-host documents are rejected
// - documents outside any workspace yield nothing
// - cancellation after N lines returns only annotations from the first N lines
// - a panicking resolver is contained at the pass boundary and discards earlier lines
// - Encode produces relative LSP token data

func newWorkspace(t *testing.T, files ...string) *resolver.Resolver {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, f, []byte("node N {}\n"), 0644))
	}
	return resolver.New(resolver.WithFs(fsys))
}

func pyDoc(text string) document.Document {
	return document.Document{
		URI:           "file:///ws/main.py",
		LanguageID:    document.LanguagePython,
		Text:          text,
		WorkspaceRoot: "/ws",
	}
}

func TestAnnotate_SingleImport(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/util.jac"), "python", false)
	got := a.Annotate(context.Background(), pyDoc("import os\nimport util\n"))

	require.Len(t, got, 1)
	assert.Equal(t, Annotation{
		Line:      1,
		Column:    7,
		Length:    4,
		Name:      "util",
		Target:    "/ws/util.jac",
		TokenType: TokenModuleReference,
		Modifier:  ModifierResolved,
	}, got[0])
}

func TestAnnotate_MixedShapes(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/graph/__init__.jac", "/ws/src/walkers.jac"), "python", false)
	text := strings.Join([]string{
		"from graph.nodes import Person",
		"    import json, walkers, graph",
		"import numpy as np",
	}, "\n")

	got := a.Annotate(context.Background(), pyDoc(text))
	require.Len(t, got, 3)

	assert.Equal(t, "graph.nodes", got[0].Name)
	assert.Equal(t, 0, got[0].Line)
	assert.Equal(t, 5, got[0].Column)

	assert.Equal(t, "walkers", got[1].Name)
	assert.Equal(t, 1, got[1].Line)
	assert.Equal(t, 17, got[1].Column)

	assert.Equal(t, "graph", got[2].Name)
	assert.Equal(t, 1, got[2].Line)
	assert.Equal(t, 26, got[2].Column)
}

func TestAnnotate_RejectsNonHostDocuments(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/util.jac"), "python", false)
	doc := pyDoc("import util\n")
	doc.LanguageID = document.LanguageJac

	assert.Nil(t, a.Annotate(context.Background(), doc))
}

func TestAnnotate_NoWorkspace(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/util.jac"), "python", false)
	doc := pyDoc("import util\n")
	doc.WorkspaceRoot = ""

	assert.Empty(t, a.Annotate(context.Background(), doc))
}

// cancelAfter reports cancellation once Err has been called more than n times.
type cancelAfter struct {
	context.Context
	n     int64
	calls atomic.Int64
}

func (c *cancelAfter) Err() error {
	if c.calls.Add(1) > c.n {
		return context.Canceled
	}
	return nil
}

func TestAnnotate_CancellationReturnsPartialResults(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/util.jac"), "python", false)
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "import util"
	}
	doc := pyDoc(strings.Join(lines, "\n"))

	const scanned = 4
	ctx := &cancelAfter{Context: context.Background(), n: scanned}

	var got []Annotation
	require.NotPanics(t, func() {
		got = a.Annotate(ctx, doc)
	})
	require.Len(t, got, scanned)
	for _, ann := range got {
		assert.Less(t, ann.Line, scanned)
	}
}

func TestAnnotate_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	a := New(newWorkspace(t, "/ws/util.jac"), "python", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, a.Annotate(ctx, pyDoc("import util\n")))
}

// panicResolver resolves every module except "broken", which panics.
type panicResolver struct{}

func (panicResolver) Lookup(_, _, name string) (string, bool) {
	if name == "broken" {
		panic("boom")
	}
	return "/ws/" + name + ".jac", true
}

func TestAnnotate_PanicIsContained(t *testing.T) {
	t.Parallel()

	a := New(panicResolver{}, "python", false)
	var got []Annotation
	require.NotPanics(t, func() {
		got = a.Annotate(context.Background(), pyDoc("import util\nimport os\nimport broken\n"))
	})
	assert.Nil(t, got)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	legend := DefaultLegend()
	anns := []Annotation{
		{Line: 1, Column: 7, Length: 4, TokenType: TokenModuleReference, Modifier: ModifierResolved},
		{Line: 1, Column: 13, Length: 2, TokenType: TokenModuleReference, Modifier: ModifierResolved},
		{Line: 4, Column: 5, Length: 3, TokenType: TokenModuleReference, Modifier: ModifierResolved},
		{Line: 5, Column: 0, Length: 1, TokenType: "unknown"},
	}

	assert.Equal(t, []uint32{
		1, 7, 4, 0, 1,
		0, 6, 2, 0, 1,
		3, 5, 3, 0, 1,
	}, Encode(anns, legend))
	assert.Empty(t, Encode(nil, legend))
}
