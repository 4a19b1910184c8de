package annotate

// Encode converts annotations into the LSP semantic-token integer stream:
// five integers per token (deltaLine, deltaStart, length, tokenType, modifierBitset),
// with positions relative to the previous token. Annotations must be in document order,
// which is how Annotate produces them. Tokens whose type is not in the legend are skipped.
func Encode(annotations []Annotation, legend Legend) []uint32 {
	out := make([]uint32, 0, len(annotations)*5)
	prevLine, prevCol := 0, 0
	for _, a := range annotations {
		typeIndex := indexOf(legend.TokenTypes, a.TokenType)
		if typeIndex < 0 {
			continue
		}
		var modifiers uint32
		if i := indexOf(legend.TokenModifiers, a.Modifier); i >= 0 {
			modifiers = 1 << uint(i)
		}

		deltaLine := a.Line - prevLine
		deltaStart := a.Column
		if deltaLine == 0 {
			deltaStart = a.Column - prevCol
		}
		out = append(out,
			uint32(deltaLine),
			uint32(deltaStart),
			uint32(a.Length),
			uint32(typeIndex),
			modifiers,
		)
		prevLine, prevCol = a.Line, a.Column
	}
	return out
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}
