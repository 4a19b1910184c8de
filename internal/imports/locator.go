// Package imports recognises host-language import statements on a single line of text.
//
// Recognition is line-local and pattern based. Statements spanning multiple physical lines
// are not supported.
package imports

import (
	"regexp"
	"strings"
)

// ModuleReference is a module name found on a line, with its position.
// Column and Length are byte offsets into the line; everything before a recognised
// name is ASCII, so they are also valid UTF-16 offsets.
type ModuleReference struct {
	Name   string `json:"name"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"`
}

// End returns the column just past the reference.
func (m ModuleReference) End() int {
	return m.Column + m.Length
}

// Shape identifies which statement form matched.
type Shape string

const (
	ShapeImport     Shape = "import"
	ShapeFromImport Shape = "from-import"
	ShapeImportList Shape = "import-list"
)

type extractor func(line string, loc []int) []ModuleReference

type shape struct {
	kind    Shape
	re      *regexp.Regexp
	extract extractor
}

// shapes is evaluated in order and the first match wins.
// A bare "import a" is matched by the single-name shape before the list shape.
var shapes = []shape{
	{
		kind:    ShapeImport,
		re:      regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+as\s+\w+)?\s*(?:[;#].*)?$`),
		extract: extractSingle,
	},
	{
		kind:    ShapeFromImport,
		re:      regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`),
		extract: extractSingle,
	},
	{
		kind:    ShapeImportList,
		re:      regexp.MustCompile(`^\s*import\s+([\w.\s,]+)`),
		extract: extractList,
	},
}

// ScanLine returns the module references on one line. Lines that are not import
// statements yield nil.
func ScanLine(line string) []ModuleReference {
	refs, _ := Match(line)
	return refs
}

// Match is ScanLine that also reports which shape matched.
func Match(line string) ([]ModuleReference, Shape) {
	line = strings.TrimSuffix(line, "\r")
	for _, s := range shapes {
		loc := s.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		return s.extract(line, loc), s.kind
	}
	return nil, ""
}

// ScanText scans every line of text and fills in line numbers (zero-based).
func ScanText(text string) []ModuleReference {
	var out []ModuleReference
	for i, line := range strings.Split(text, "\n") {
		for _, ref := range ScanLine(line) {
			ref.Line = i
			out = append(out, ref)
		}
	}
	return out
}

func extractSingle(line string, loc []int) []ModuleReference {
	start, end := loc[2], loc[3]
	if start < 0 || end <= start {
		return nil
	}
	return []ModuleReference{{
		Name:   line[start:end],
		Column: start,
		Length: end - start,
	}}
}

// extractList splits the captured list on commas. Each name is searched for at or after
// the end of the previous segment so repeated names get distinct, increasing columns.
func extractList(line string, loc []int) []ModuleReference {
	start, end := loc[2], loc[3]
	if start < 0 {
		return nil
	}

	var refs []ModuleReference
	cursor := start
	for _, segment := range strings.Split(line[start:end], ",") {
		segEnd := cursor + len(segment)
		fields := strings.Fields(segment)
		if len(fields) > 0 {
			// "name as alias" keeps only the module name.
			name := fields[0]
			if idx := strings.Index(line[cursor:segEnd], name); idx >= 0 {
				refs = append(refs, ModuleReference{
					Name:   name,
					Column: cursor + idx,
					Length: len(name),
				})
			}
		}
		// Skip past the comma.
		cursor = segEnd + 1
	}
	return refs
}
