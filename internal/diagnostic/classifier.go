// Package diagnostic models analyzer diagnostics and decides which of them are missing-import
// errors that name a module.
package diagnostic

import (
	"regexp"
	"strings"
)

// DefaultAnalyzers are the analyzer source tags whose diagnostics are considered.
var DefaultAnalyzers = []string{"pylance", "pyright"}

// MissingImportsCode is the analyzer rule name for unresolved imports.
const MissingImportsCode = "reportMissingImports"

// messageRule decides eligibility from a lowercased message.
type messageRule func(msg string) bool

// eligibleMessages: any match makes a diagnostic from a known analyzer eligible.
var eligibleMessages = []messageRule{
	func(msg string) bool { return strings.Contains(msg, "could not be resolved") },
	func(msg string) bool { return strings.Contains(msg, strings.ToLower(MissingImportsCode)) },
	func(msg string) bool { return strings.Contains(msg, "import") && strings.Contains(msg, "could not") },
	func(msg string) bool { return strings.Contains(msg, "is not defined") },
}

// extractors are tried in order; the first non-empty capture wins.
var extractors = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Import\s+"([^"]+)"\s+could\s+not\s+be\s+resolved`),
	regexp.MustCompile(`(?i)"([^"]+)"\s+is\s+not\s+defined`),
	regexp.MustCompile(`(?i)No\s+module\s+named\s+['"]([^'"]+)['"]`),
}

// Classifier recognises missing-import diagnostics from known analyzers.
type Classifier struct {
	analyzers []string
}

// NewClassifier creates a classifier for the given analyzer source names.
// An empty list falls back to DefaultAnalyzers.
func NewClassifier(analyzers []string) *Classifier {
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers
	}
	lowered := make([]string, 0, len(analyzers))
	for _, a := range analyzers {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			lowered = append(lowered, a)
		}
	}
	return &Classifier{analyzers: lowered}
}

// Eligible reports whether d comes from a known analyzer and looks like a
// missing-import or undefined-name error.
func (c *Classifier) Eligible(d Diagnostic) bool {
	if !c.knownSource(d.Source) {
		return false
	}
	if strings.EqualFold(d.Code, MissingImportsCode) {
		return true
	}
	msg := strings.ToLower(d.Message)
	for _, rule := range eligibleMessages {
		if rule(msg) {
			return true
		}
	}
	return false
}

// Extract returns the module name mentioned in the diagnostic message.
func (c *Classifier) Extract(d Diagnostic) (string, bool) {
	for _, re := range extractors {
		m := re.FindStringSubmatch(d.Message)
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// Classify returns the referenced module name for an eligible, extractable diagnostic.
// Anything else returns false and must be left untouched.
func (c *Classifier) Classify(d Diagnostic) (string, bool) {
	if !c.Eligible(d) {
		return "", false
	}
	return c.Extract(d)
}

func (c *Classifier) knownSource(source string) bool {
	source = strings.ToLower(source)
	for _, a := range c.analyzers {
		if strings.Contains(source, a) {
			return true
		}
	}
	return false
}
