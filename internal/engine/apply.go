package engine

import (
	"context"

	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
)

// Verify checks every operation in doc against the current working tree
// and returns the staged changes a commit would publish. It reads files
// but never writes; on the first failed check it returns the planner
// error and no changes.
//
// A nil error means every operation is applicable to the tree as it is
// right now. The guarantee is only as fresh as the tree: files modified
// between Verify and Commit surface as commit failures, not corruption,
// because Commit writes whole staged files rather than re-applying hunks.
func (e *Engine) Verify(ctx context.Context, doc *patch.Document) ([]planner.StagedChange, error) {
	return planner.Verify(doc, e.paths.Root, e.fs, e.hasher)
}
