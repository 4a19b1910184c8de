package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mvp-joe/jacbridge/internal/annotate"
	"github.com/mvp-joe/jacbridge/internal/diagnostic"
	"github.com/mvp-joe/jacbridge/internal/resolver"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	foundColor   = color.New(color.FgGreen, color.Bold)
	missColor    = color.New(color.FgRed)
	errorColor   = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCandidates prints each probed search-path entry with its status.
func printCandidates(w io.Writer, candidates []resolver.Candidate) {
	for _, c := range candidates {
		var status string
		switch c.Result {
		case resolver.Found:
			status = foundColor.Sprint(c.Status)
		case resolver.ProbeError:
			status = errorColor.Sprintf("%s (%v)", c.Status, c.Err)
		default:
			status = dimColor.Sprint(c.Status)
		}
		fmt.Fprintf(w, "  %-10s %s\n", status, c.Path)
	}
}

// printAnnotations prints annotations as path:line:col lines (one-based, editor style).
func printAnnotations(w io.Writer, path string, annotations []annotate.Annotation) {
	for _, a := range annotations {
		fmt.Fprintf(w, "%s:%d:%d: %s -> %s\n",
			path, a.Line+1, a.Column+1, foundColor.Sprint(a.Name), a.Target)
	}
}

// printOverrides prints override diagnostics for one document.
func printOverrides(w io.Writer, path string, overrides []diagnostic.Diagnostic) {
	for _, d := range overrides {
		fmt.Fprintf(w, "%s:%d:%d: %s %s\n",
			path, d.Range.Start.Line+1, d.Range.Start.Character+1,
			dimColor.Sprint(d.Severity.String()), d.Message)
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
