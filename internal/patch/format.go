package patch

import "strings"

// formatIndent is the presentation indent for payload lines in canonical
// form. Parse strips it back out as the baseline, so Format and Parse
// round-trip.
const formatIndent = "  "

// Format renders a document in canonical patch text form: markers at
// column zero, payload lines at a fixed two-space indent, operations
// separated by `---` lines. Separators are only recognized at column
// zero, so an indented payload `---` reads back as content and parsing
// the result yields an equivalent document.
func Format(doc *Document) string {
	var b strings.Builder
	for i, op := range doc.Ops {
		if i > 0 {
			b.WriteString(blockSeparator)
			b.WriteString("\n")
		}
		formatOperation(&b, op)
	}
	return b.String()
}

func formatOperation(b *strings.Builder, op Operation) {
	switch op.Type {
	case OpCreate:
		b.WriteString(headerCreate + " " + op.Path + "\n")
		b.WriteString(markerContent + "\n")
		writePayload(b, op.Content)

	case OpDelete:
		b.WriteString(headerDelete + " " + op.Path + "\n")

	case OpRename:
		b.WriteString(headerRename + " " + op.SrcPath + renameSeparator + op.DstPath + "\n")

	case OpUpdate:
		b.WriteString(headerUpdate + " " + op.Path + "\n")
		for _, h := range op.Hunks {
			b.WriteString(markerHunk + "\n")
			b.WriteString(markerBefore + "\n")
			writePayload(b, h.Before)
			if len(h.Remove) > 0 {
				b.WriteString(markerRemove + "\n")
				writePayload(b, h.Remove)
			}
			if len(h.Add) > 0 {
				b.WriteString(markerAdd + "\n")
				writePayload(b, h.Add)
			}
			if len(h.After) > 0 {
				b.WriteString(markerAfter + "\n")
				writePayload(b, h.After)
			}
		}
	}
}

// writePayload emits payload lines at the presentation indent. Empty lines
// stay empty so they read back as blank content lines.
func writePayload(b *strings.Builder, lines []string) {
	for _, line := range lines {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(formatIndent + line + "\n")
	}
}
