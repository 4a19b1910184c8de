package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for Classifier:
// - Known analyzer + "could not be resolved" extracts the module name
// - "is not defined" extracts the name
// - "No module named" extracts with either quote style
// - Unknown source is never eligible
// - Source and message matching are case-insensitive
// - Eligible message without a recognisable pattern is not extracted (fail open)
// - Unrelated analyzer messages are not eligible
// - reportMissingImports in message or code makes a diagnostic eligible
// - Pattern order: the import pattern wins over the not-defined pattern

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)

	tests := []struct {
		name     string
		diag     Diagnostic
		want     string
		eligible bool
		ok       bool
	}{
		{
			name:     "pylance unresolved import",
			diag:     Diagnostic{Source: "Pylance", Message: `Import "mypkg" could not be resolved`},
			want:     "mypkg",
			eligible: true,
			ok:       true,
		},
		{
			name:     "dotted unresolved import",
			diag:     Diagnostic{Source: "Pylance", Message: `Import "graph.nodes" could not be resolved`},
			want:     "graph.nodes",
			eligible: true,
			ok:       true,
		},
		{
			name:     "not defined",
			diag:     Diagnostic{Source: "pyright", Message: `"foo" is not defined`},
			want:     "foo",
			eligible: true,
			ok:       true,
		},
		{
			name:     "no module named single quotes",
			diag:     Diagnostic{Source: "Pyright", Message: `Import could not be loaded: No module named 'walkers'`},
			want:     "walkers",
			eligible: true,
			ok:       true,
		},
		{
			name:     "no module named double quotes",
			diag:     Diagnostic{Source: "Pyright", Message: `import failed, could not find: No module named "walkers"`},
			want:     "walkers",
			eligible: true,
			ok:       true,
		},
		{
			name:     "case insensitive source and message",
			diag:     Diagnostic{Source: "PYLANCE (reportMissingImports)", Message: `IMPORT "Util" COULD NOT BE RESOLVED`},
			want:     "Util",
			eligible: true,
			ok:       true,
		},
		{
			name:     "eligible but unextractable",
			diag:     Diagnostic{Source: "Pylance", Message: "Import could not be resolved from source"},
			eligible: true,
		},
		{
			name: "unknown analyzer",
			diag: Diagnostic{Source: "mypy", Message: `Import "mypkg" could not be resolved`},
		},
		{
			name: "unrelated message",
			diag: Diagnostic{Source: "Pylance", Message: `Argument of type "int" cannot be assigned`},
		},
		{
			name:     "rule token in message",
			diag:     Diagnostic{Source: "Pylance", Message: `Stub file not found (reportMissingImports)`},
			eligible: true,
		},
		{
			name:     "rule in code",
			diag:     Diagnostic{Source: "Pylance", Code: "reportMissingImports", Message: `Stub for "mypkg" missing`},
			eligible: true,
		},
		{
			name:     "import pattern wins",
			diag:     Diagnostic{Source: "Pylance", Message: `Import "first" could not be resolved; "second" is not defined`},
			want:     "first",
			eligible: true,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eligible, c.Eligible(tt.diag))
			got, ok := c.Classify(tt.diag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_CustomAnalyzers(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]string{" BasedPyright ", ""})

	_, ok := c.Classify(Diagnostic{Source: "Pylance", Message: `Import "x" could not be resolved`})
	assert.False(t, ok)

	name, ok := c.Classify(Diagnostic{Source: "basedpyright", Message: `Import "x" could not be resolved`})
	assert.True(t, ok)
	assert.Equal(t, "x", name)
}
