package patch

import "strings"

// Header and marker keywords. Keywords are case-sensitive and must match
// exactly; only whitespace around the line is tolerated.
const (
	headerCreate = "CREATE-FILE:"
	headerDelete = "DELETE-FILE:"
	headerUpdate = "UPDATE-FILE:"
	headerRename = "RENAME-FILE:"

	markerContent = "CONTENT:"
	markerHunk    = "HUNK:"
	markerBefore  = "BEFORE:"
	markerRemove  = "REMOVE:"
	markerAdd     = "ADD:"
	markerAfter   = "AFTER:"

	renameSeparator = " TO "
	blockSeparator  = "---"
)

// IsHeaderLine reports whether line, after trimming surrounding
// whitespace, begins with one of the four operation headers. Input
// acquisition uses it to tell bare patch text from text that needs
// unwrapping first.
func IsHeaderLine(line string) bool {
	text := strings.TrimSpace(line)
	return strings.HasPrefix(text, headerCreate) ||
		strings.HasPrefix(text, headerDelete) ||
		strings.HasPrefix(text, headerUpdate) ||
		strings.HasPrefix(text, headerRename)
}

// rawLine pairs a line of input with its 1-based document line number, so
// errors deep inside a block can point at the exact offending line.
type rawLine struct {
	text string
	num  int
}

// Parse converts raw patch text into a Document. It is a pure function of
// the input: no filesystem access, no side effects. The input is split into
// blocks on `---` lines at column zero; payload lines sit at the hunk or
// content baseline indent, so an indented `---` is ordinary content and a
// patch can carry YAML front matter.
func Parse(input string) (*Document, error) {
	doc := &Document{}
	for _, block := range splitBlocks(input) {
		op, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		doc.AddOperation(op)
	}
	if len(doc.Ops) == 0 {
		return nil, &ParseError{Line: 1, Reason: "document contains no file operations"}
	}
	return doc, nil
}

// splitBlocks splits the input into operation blocks, dropping separator
// lines and blocks that contain nothing but blank lines.
func splitBlocks(input string) [][]rawLine {
	var blocks [][]rawLine
	var current []rawLine
	hasContent := false

	flush := func() {
		if hasContent {
			blocks = append(blocks, current)
		}
		current = nil
		hasContent = false
	}

	for i, text := range strings.Split(input, "\n") {
		text = strings.TrimSuffix(text, "\r")
		if isSeparator(text) {
			flush()
			continue
		}
		current = append(current, rawLine{text: text, num: i + 1})
		if !isBlank(text) {
			hasContent = true
		}
	}
	flush()
	return blocks
}

// parseBlock parses one operation block. The first non-blank line must be
// an operation header.
func parseBlock(block []rawLine) (Operation, error) {
	i := 0
	for i < len(block) && isBlank(block[i].text) {
		i++
	}
	header := block[i]
	text := strings.TrimSpace(header.text)
	body := block[i+1:]

	switch {
	case strings.HasPrefix(text, headerCreate):
		path := strings.TrimSpace(strings.TrimPrefix(text, headerCreate))
		if path == "" {
			return Operation{}, parseErrorf(header.num, "%s header missing path", headerCreate)
		}
		return parseCreate(header, path, body)

	case strings.HasPrefix(text, headerDelete):
		path := strings.TrimSpace(strings.TrimPrefix(text, headerDelete))
		if path == "" {
			return Operation{}, parseErrorf(header.num, "%s header missing path", headerDelete)
		}
		if err := requireBlank(body, OpDelete); err != nil {
			return Operation{}, err
		}
		return Operation{Type: OpDelete, Path: path, Line: header.num}, nil

	case strings.HasPrefix(text, headerUpdate):
		path := strings.TrimSpace(strings.TrimPrefix(text, headerUpdate))
		if path == "" {
			return Operation{}, parseErrorf(header.num, "%s header missing path", headerUpdate)
		}
		return parseUpdate(header, path, body)

	case strings.HasPrefix(text, headerRename):
		rest := strings.TrimPrefix(text, headerRename)
		if !strings.Contains(rest, renameSeparator) {
			return Operation{}, parseErrorf(header.num, "%s header missing %q separator", headerRename, renameSeparator)
		}
		parts := strings.SplitN(rest, renameSeparator, 2)
		src := strings.TrimSpace(parts[0])
		dst := strings.TrimSpace(parts[1])
		if src == "" || dst == "" {
			return Operation{}, parseErrorf(header.num, "%s header must name both a source and a destination", headerRename)
		}
		if err := requireBlank(body, OpRename); err != nil {
			return Operation{}, err
		}
		return Operation{Type: OpRename, SrcPath: src, DstPath: dst, Line: header.num}, nil

	default:
		return Operation{}, parseErrorf(header.num, "unrecognized block header %q", text)
	}
}

// parseCreate parses the body of a CREATE-FILE block: a CONTENT: marker
// followed by the new file's lines. The indentation of the first content
// line sets a baseline that is stripped from every line, preserving the
// relative indentation of nested code.
func parseCreate(header rawLine, path string, body []rawLine) (Operation, error) {
	i := 0
	for i < len(body) && isBlank(body[i].text) {
		i++
	}
	if i >= len(body) || strings.TrimSpace(body[i].text) != markerContent {
		line := header.num
		if i < len(body) {
			line = body[i].num
		}
		return Operation{}, parseErrorf(line, "%s block requires a %s marker", headerCreate, markerContent)
	}

	payload := trimBlankEnds(body[i+1:])
	content := dedent(payload, baselineOf(payload))
	return Operation{Type: OpCreate, Path: path, Content: content, Line: header.num}, nil
}

// parseUpdate parses the body of an UPDATE-FILE block: one or more HUNK:
// sub-blocks, each holding a mandatory BEFORE: section and optional
// REMOVE:, ADD:, and AFTER: sections in that order. All sections of one
// hunk share a single indentation baseline, set by the hunk's first
// payload line, so relative indentation across sections survives intact.
func parseUpdate(header rawLine, path string, body []rawLine) (Operation, error) {
	op := Operation{Type: OpUpdate, Path: path, Line: header.num}

	i := 0
	for i < len(body) {
		if isBlank(body[i].text) {
			i++
			continue
		}
		if strings.TrimSpace(body[i].text) != markerHunk {
			return Operation{}, parseErrorf(body[i].num, "expected %s in %s block, got %q", markerHunk, headerUpdate, strings.TrimSpace(body[i].text))
		}
		hunk, next, err := parseHunk(body, i)
		if err != nil {
			return Operation{}, err
		}
		op.Hunks = append(op.Hunks, hunk)
		i = next
	}

	if len(op.Hunks) == 0 {
		return Operation{}, parseErrorf(header.num, "%s block has no hunks", headerUpdate)
	}
	return op, nil
}

// sectionOrder gives each hunk section its required position. Sections
// must appear in ascending order, each at most once.
var sectionOrder = map[string]int{
	markerBefore: 0,
	markerRemove: 1,
	markerAdd:    2,
	markerAfter:  3,
}

// parseHunk parses one HUNK: sub-block starting at body[start] and returns
// the hunk along with the index of the line following it.
func parseHunk(body []rawLine, start int) (Hunk, int, error) {
	hunkLine := body[start].num
	i := start + 1

	for i < len(body) && isBlank(body[i].text) {
		i++
	}
	if i >= len(body) || strings.TrimSpace(body[i].text) != markerBefore {
		return Hunk{}, 0, parseErrorf(hunkLine, "hunk must begin with a %s section", markerBefore)
	}
	beforeLine := body[i].num

	sections := make(map[string][]rawLine)
	current := markerBefore
	sections[current] = nil
	i++

	for i < len(body) {
		trimmed := strings.TrimSpace(body[i].text)
		if trimmed == markerHunk {
			break
		}
		if pos, ok := sectionOrder[trimmed]; ok {
			if pos <= sectionOrder[current] {
				return Hunk{}, 0, parseErrorf(body[i].num, "unexpected %s section: sections must appear once each, in %s %s %s %s order", trimmed, markerBefore, markerRemove, markerAdd, markerAfter)
			}
			current = trimmed
			sections[current] = nil
			i++
			continue
		}
		sections[current] = append(sections[current], body[i])
		i++
	}

	for name := range sections {
		sections[name] = trimBlankEnds(sections[name])
	}

	// One baseline per hunk: the first payload line in section order sets
	// the column stripped from every section, keeping before/remove/add
	// lines aligned relative to each other.
	baseline := -1
	for _, name := range []string{markerBefore, markerRemove, markerAdd, markerAfter} {
		if b := baselineOf(sections[name]); baseline < 0 && b >= 0 {
			baseline = b
		}
	}

	hunk := Hunk{
		Before: dedent(sections[markerBefore], baseline),
		Remove: dedent(sections[markerRemove], baseline),
		Add:    dedent(sections[markerAdd], baseline),
		After:  dedent(sections[markerAfter], baseline),
		Line:   hunkLine,
	}

	if len(hunk.Before) == 0 {
		return Hunk{}, 0, parseErrorf(beforeLine, "hunk %s section has no lines", markerBefore)
	}
	if len(hunk.Remove) == 0 && len(hunk.Add) == 0 {
		return Hunk{}, 0, parseErrorf(hunkLine, "hunk must have at least one %s or %s line", markerRemove, markerAdd)
	}
	return hunk, i, nil
}

// requireBlank rejects any non-blank line in the body of a block whose
// header carries the whole operation.
func requireBlank(body []rawLine, opType OpType) error {
	for _, line := range body {
		if !isBlank(line.text) {
			return parseErrorf(line.num, "unexpected line %q in %s block", strings.TrimSpace(line.text), opType)
		}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isSeparator matches a block separator: `---` starting at column zero,
// trailing whitespace tolerated. Leading whitespace makes the line payload,
// never a separator.
func isSeparator(s string) bool {
	return strings.TrimRight(s, " \t") == blockSeparator
}

// trimBlankEnds drops leading and trailing blank lines from a payload.
// Interior blank lines are real content and stay.
func trimBlankEnds(lines []rawLine) []rawLine {
	start := 0
	for start < len(lines) && isBlank(lines[start].text) {
		start++
	}
	end := len(lines)
	for end > start && isBlank(lines[end-1].text) {
		end--
	}
	return lines[start:end]
}

// baselineOf returns the indentation width of the first line of a trimmed
// payload, or -1 for an empty payload.
func baselineOf(lines []rawLine) int {
	if len(lines) == 0 {
		return -1
	}
	return indentWidth(lines[0].text)
}

// indentWidth counts leading whitespace characters.
func indentWidth(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// dedent strips up to baseline leading whitespace characters from every
// payload line. Whitespace is never stripped past the first non-whitespace
// character, so a line indented shallower than the baseline keeps its
// text. Whitespace-only lines become empty lines.
func dedent(lines []rawLine, baseline int) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if isBlank(line.text) {
			out = append(out, "")
			continue
		}
		strip := indentWidth(line.text)
		if baseline >= 0 && strip > baseline {
			strip = baseline
		}
		out = append(out, line.text[strip:])
	}
	return out
}
