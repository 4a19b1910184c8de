package workspace

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/mvp-joe/jacbridge/internal/annotate"
)

// Vertex kinds stored as the "kind" vertex attribute.
const (
	KindHost   = "host"
	KindModule = "module"
)

// FileResult holds the annotations produced for one host file.
type FileResult struct {
	Path        string                `json:"path"`
	Annotations []annotate.Annotation `json:"annotations"`
}

// Report is the outcome of a workspace scan.
type Report struct {
	Root     string            `json:"root"`
	Files    []FileResult      `json:"files"`
	Failed   map[string]string `json:"failed,omitempty"`
	Duration time.Duration     `json:"duration"`

	refs graph.Graph[string, string]
}

func newReport(root string, results []FileResult, failed map[string]string) (*Report, error) {
	r := &Report{
		Root:   root,
		Failed: failed,
		refs:   graph.New(graph.StringHash, graph.Directed()),
	}

	for _, res := range results {
		if res.Path == "" {
			continue
		}
		r.Files = append(r.Files, res)

		if err := addVertex(r.refs, res.Path, KindHost); err != nil {
			return nil, err
		}
		for _, ann := range res.Annotations {
			if err := addVertex(r.refs, ann.Target, KindModule); err != nil {
				return nil, err
			}
			if err := r.refs.AddEdge(res.Path, ann.Target); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add reference %s -> %s: %w", res.Path, ann.Target, err)
			}
		}
	}
	return r, nil
}

func addVertex(g graph.Graph[string, string], path, kind string) error {
	err := g.AddVertex(path, graph.VertexAttribute("kind", kind), graph.VertexAttribute("label", path))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add vertex %s: %w", path, err)
	}
	return nil
}

// AnnotationCount is the total number of annotations across all files.
func (r *Report) AnnotationCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Annotations)
	}
	return n
}

// Modules returns every Jac module file referenced by at least one host file, sorted.
func (r *Report) Modules() []string {
	var modules []string
	adj, err := r.refs.AdjacencyMap()
	if err != nil {
		return nil
	}
	for path := range adj {
		_, props, err := r.refs.VertexWithProperties(path)
		if err == nil && props.Attributes["kind"] == KindModule {
			modules = append(modules, path)
		}
	}
	sort.Strings(modules)
	return modules
}

// Dependents returns the host files that reference the Jac module at jacPath, sorted.
func (r *Report) Dependents(jacPath string) []string {
	pred, err := r.refs.PredecessorMap()
	if err != nil {
		return nil
	}
	var out []string
	for src := range pred[jacPath] {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// References returns the Jac module files referenced by hostPath, sorted.
func (r *Report) References(hostPath string) []string {
	adj, err := r.refs.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []string
	for dst := range adj[hostPath] {
		out = append(out, dst)
	}
	sort.Strings(out)
	return out
}

// WriteDOT renders the reference graph in Graphviz DOT format.
func (r *Report) WriteDOT(w io.Writer) error {
	return draw.DOT(r.refs, w)
}
