// Package render turns staged changes into git-style terminal diffs.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// zeroHash marks the missing side of a create or delete index line.
const zeroHash = "00000000"

var (
	fileColor = color.New(color.FgBlue, color.Bold)
	metaColor = color.New(color.FgHiBlack)
	hunkColor = color.New(color.FgCyan)
	addColor  = color.New(color.FgGreen)
	delColor  = color.New(color.FgRed)
)

// FileDiff is one rendered file change.
type FileDiff struct {
	// Path is the primary path of the operation.
	Path string

	// Text is the rendered diff, colored unless color output is disabled.
	Text string

	// Additions and Deletions count the changed lines.
	Additions int
	Deletions int
}

// Renderer builds file diffs from staged changes.
type Renderer struct {
	hasher  hash.Hasher
	newline string
}

// New creates a Renderer. newline is the line ending configured for
// created files, needed to hash their final bytes for index lines.
func New(hasher hash.Hasher, newline string) *Renderer {
	return &Renderer{hasher: hasher, newline: newline}
}

// Document renders every staged change in order.
func (r *Renderer) Document(changes []planner.StagedChange) []FileDiff {
	diffs := make([]FileDiff, 0, len(changes))
	for _, c := range changes {
		diffs = append(diffs, r.File(c))
	}
	return diffs
}

// File renders one staged change: an operation header, a git-style index
// line tying the diff to the exact bytes it was planned against, and the
// unified hunks.
func (r *Renderer) File(c planner.StagedChange) FileDiff {
	var b strings.Builder
	fmt.Fprintln(&b, fileColor.Sprint(c.Op.Describe()))

	var body string
	switch c.Op.Type {
	case patch.OpCreate:
		post := r.hasher.HashBytes(c.Render(r.newline))
		fmt.Fprintln(&b, metaColor.Sprintf("index %s..%s", zeroHash, shortHash(post)))
		body = unified(nil, c.Lines)
	case patch.OpUpdate:
		post := r.hasher.HashBytes(c.Render(r.newline))
		fmt.Fprintln(&b, metaColor.Sprintf("index %s..%s", shortHash(c.BaselineHash), shortHash(post)))
		body = unified(c.OriginalLines(), c.Lines)
	case patch.OpDelete:
		fmt.Fprintln(&b, metaColor.Sprintf("index %s..%s", shortHash(c.BaselineHash), zeroHash))
		body = unified(c.OriginalLines(), nil)
	}

	diff := FileDiff{Path: c.Op.Path}
	if c.Op.Type == patch.OpRename {
		diff.Path = c.Op.SrcPath
	}
	diff.Additions, diff.Deletions = writeBody(&b, body)
	diff.Text = b.String()
	return diff
}

// unified produces the hunk body between two line sets. The file header is
// rendered by the caller, so FromFile and ToFile stay empty and difflib
// emits hunks only.
func unified(from, to []string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       withNewlines(from),
		B:       withNewlines(to),
		Context: contextLines,
	})
	if err != nil {
		return ""
	}
	return text
}

// withNewlines converts newline-free lines into the terminated form
// difflib expects. Empty content stays nil so it diffs as zero lines, not
// as one blank line.
func withNewlines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line + "\n"
	}
	return out
}

// writeBody colors the hunk body line by line and tallies the changed
// lines.
func writeBody(b *strings.Builder, body string) (additions, deletions int) {
	if body == "" {
		return 0, 0
	}
	for _, line := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(b, hunkColor.Sprint(line))
		case strings.HasPrefix(line, "+"):
			additions++
			fmt.Fprintln(b, addColor.Sprint(line))
		case strings.HasPrefix(line, "-"):
			deletions++
			fmt.Fprintln(b, delColor.Sprint(line))
		default:
			fmt.Fprintln(b, line)
		}
	}
	return additions, deletions
}

func shortHash(sum string) string {
	if len(sum) > 8 {
		return sum[:8]
	}
	return sum
}
