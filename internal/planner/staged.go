package planner

import (
	"bytes"
	"strings"

	"github.com/llmpatch/llmps/internal/patch"
)

// utf8BOM is the UTF-8 byte order mark some editors prepend to files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StagedChange is the verified, not-yet-committed result of one operation.
// For creates and updates it carries the final content; for deletes and
// renames the operation itself is the whole change. Staged changes are
// held in memory between verification and commit and consumed exactly
// once by the committer.
type StagedChange struct {
	// Op is the source operation, kept for reporting.
	Op patch.Operation

	// Lines is the final content for create and update changes.
	Lines []string

	// OldData is the exact original bytes of update and delete targets,
	// read once during verification. Diff rendering and the history
	// journal's pre-image blobs both come from here, so the committer
	// never re-reads a target.
	OldData []byte

	// Newline is the line ending detected in the original file ("\n" or
	// "\r\n"). Empty for creates; the committer substitutes its configured
	// default.
	Newline string

	// TrailingNewline records whether the original file ended with a
	// newline. Creates always get a single trailing newline.
	TrailingNewline bool

	// HasBOM records whether the original file began with a UTF-8 BOM.
	HasBOM bool

	// BaselineHash is the SHA-256 of the pre-image the verifier read: the
	// target of an update or delete, or the source of a rename. It ties
	// the staged result to the exact bytes it was planned against.
	BaselineHash string
}

// OriginalLines returns OldData split into newline-free lines.
func (c *StagedChange) OriginalLines() []string {
	lines, _, _, _ := splitContent(c.OldData)
	return lines
}

// Render produces the final bytes for a create or update change. Updates
// keep the original file's newline style, trailing-newline state, and BOM;
// creates use defaultNewline and end with a single trailing newline unless
// the content is empty.
func (c *StagedChange) Render(defaultNewline string) []byte {
	newline := c.Newline
	if newline == "" {
		newline = defaultNewline
	}
	trailing := c.TrailingNewline
	if c.Op.Type == patch.OpCreate {
		trailing = len(c.Lines) > 0
	}

	var b bytes.Buffer
	if c.HasBOM {
		b.Write(utf8BOM)
	}
	for i, line := range c.Lines {
		b.WriteString(line)
		if i < len(c.Lines)-1 {
			b.WriteString(newline)
		}
	}
	if trailing && len(c.Lines) > 0 {
		b.WriteString(newline)
	}
	return b.Bytes()
}

// splitContent breaks file bytes into lines plus the style facts Render
// needs to reassemble them: detected newline, trailing-newline state, and
// BOM presence. Lines are newline-free so hunk matching is insensitive to
// line-ending style.
func splitContent(data []byte) (lines []string, newline string, trailing bool, hasBOM bool) {
	if bytes.HasPrefix(data, utf8BOM) {
		hasBOM = true
		data = data[len(utf8BOM):]
	}

	newline = "\n"
	if bytes.Contains(data, []byte("\r\n")) {
		newline = "\r\n"
	}

	text := string(data)
	if text == "" {
		return nil, newline, false, hasBOM
	}

	trailing = strings.HasSuffix(text, "\n")
	raw := strings.Split(text, "\n")
	if trailing {
		raw = raw[:len(raw)-1]
	}
	lines = make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, newline, trailing, hasBOM
}
