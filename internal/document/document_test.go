package document

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIRoundTrip(t *testing.T) {
	t.Parallel()

	uri := PathToURI("/ws/my project/main.py")
	assert.Equal(t, "file:///ws/my%20project/main.py", uri)
	assert.Equal(t, filepath.FromSlash("/ws/my project/main.py"), URIToPath(uri))

	assert.Equal(t, "", URIToPath("untitled:Untitled-1"))
	assert.Equal(t, "", URIToPath(""))
	assert.Equal(t, "", PathToURI(""))
}

func TestWorkspaceFor(t *testing.T) {
	t.Parallel()

	roots := []string{"/ws", "/ws/nested", "/other"}

	assert.Equal(t, "/ws", WorkspaceFor(roots, "/ws/main.py"))
	assert.Equal(t, "/ws/nested", WorkspaceFor(roots, "/ws/nested/pkg/a.py"))
	assert.Equal(t, "/other", WorkspaceFor(roots, "/other/x.py"))
	assert.Equal(t, "", WorkspaceFor(roots, "/wsx/main.py"))
	assert.Equal(t, "", WorkspaceFor(nil, "/ws/main.py"))
}

func TestLanguageForPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LanguagePython, LanguageForPath("a/b.py"))
	assert.Equal(t, LanguagePython, LanguageForPath("stubs.PYI"))
	assert.Equal(t, LanguageJac, LanguageForPath("walker.jac"))
	assert.Equal(t, "", LanguageForPath("README.md"))
}

func TestDocument_Lines(t *testing.T) {
	t.Parallel()

	doc := Document{Text: "import a\r\nimport b\n"}
	assert.Equal(t, []string{"import a", "import b", ""}, doc.Lines())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/ws/main.py", []byte("import util\n"), 0644))

	doc, err := Load(fsys, "/ws/main.py", []string{"/ws"})
	require.NoError(t, err)
	assert.Equal(t, "file:///ws/main.py", doc.URI)
	assert.Equal(t, LanguagePython, doc.LanguageID)
	assert.Equal(t, "/ws", doc.WorkspaceRoot)
	assert.Equal(t, "import util\n", doc.Text)
	assert.Equal(t, filepath.FromSlash("/ws/main.py"), doc.Path())

	_, err = Load(fsys, "/ws/missing.py", nil)
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Put(Document{URI: "file:///b.py"})
	s.Put(Document{URI: "file:///a.py", Text: "v1"})
	s.Put(Document{URI: "file:///a.py", Text: "v2"})

	assert.Equal(t, []string{"file:///a.py", "file:///b.py"}, s.URIs())
	doc, ok := s.Document("file:///a.py")
	require.True(t, ok)
	assert.Equal(t, "v2", doc.Text)

	s.Remove("file:///a.py")
	_, ok = s.Document("file:///a.py")
	assert.False(t, ok)
}
