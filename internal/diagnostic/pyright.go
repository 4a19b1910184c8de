package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mvp-joe/jacbridge/internal/document"
)

// PyrightSource is the source tag given to diagnostics read from a pyright report.
const PyrightSource = "Pyright"

// pyrightReport mirrors the subset of `pyright --outputjson` we consume.
type pyrightReport struct {
	Version            string              `json:"version"`
	GeneralDiagnostics []pyrightDiagnostic `json:"generalDiagnostics"`
}

type pyrightDiagnostic struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Rule     string `json:"rule"`
	Range    *Range `json:"range"`
}

// ReadPyrightReport decodes a pyright JSON report into diagnostics grouped by document URI.
// Relative file paths are resolved against baseDir.
func ReadPyrightReport(r io.Reader, baseDir string) (map[string][]Diagnostic, error) {
	var report pyrightReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode pyright report: %w", err)
	}

	grouped := make(map[string][]Diagnostic)
	for _, pd := range report.GeneralDiagnostics {
		if pd.File == "" {
			continue
		}
		path := pd.File
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		uri := document.PathToURI(path)
		if uri == "" {
			continue
		}

		d := Diagnostic{
			Severity: pyrightSeverity(pd.Severity),
			Code:     pd.Rule,
			Source:   PyrightSource,
			Message:  pd.Message,
		}
		if pd.Range != nil {
			d.Range = *pd.Range
		}
		grouped[uri] = append(grouped[uri], d)
	}
	return grouped, nil
}

// LoadPyrightReport reads a pyright JSON report from disk.
func LoadPyrightReport(path, baseDir string) (map[string][]Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pyright report: %w", err)
	}
	defer f.Close()
	return ReadPyrightReport(f, baseDir)
}

func pyrightSeverity(s string) Severity {
	switch s {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	case "information":
		return SeverityInformation
	default:
		return SeverityHint
	}
}
