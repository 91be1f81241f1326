package source

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/llmpatch/llmps/internal/patch"
)

// Unwrap strips generator noise from raw text. Bare patch text passes
// through untouched. Text containing markdown fences is parsed as
// markdown and the fenced code blocks holding patch headers are extracted
// and rejoined into one document, dropping surrounding prose. When no
// fenced block holds a header the original text is returned so the parser
// can report a precise error against it.
func Unwrap(raw string) string {
	if looksBare(raw) || !strings.Contains(raw, "```") {
		return raw
	}

	blocks := fencedBlocks([]byte(raw))
	var kept []string
	for _, block := range blocks {
		if containsHeader(block) {
			kept = append(kept, strings.TrimRight(block, "\n"))
		}
	}
	if len(kept) == 0 {
		return raw
	}
	return strings.Join(kept, "\n---\n") + "\n"
}

// looksBare reports whether the text already starts with patch syntax. A
// document whose create content happens to contain fence characters must
// not be re-parsed as markdown.
func looksBare(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		return text == "---" || patch.IsHeaderLine(text)
	}
	return false
}

// fencedBlocks returns the content of every fenced code block in the
// markdown source, in document order.
func fencedBlocks(src []byte) []string {
	var blocks []string
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(src))
		}
		blocks = append(blocks, content.String())
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil
	}
	return blocks
}

func containsHeader(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		if patch.IsHeaderLine(line) {
			return true
		}
	}
	return false
}
