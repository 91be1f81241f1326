// Package engine orchestrates patch transactions against the filesystem.
//
// The engine is the API surface called by the CLI. It verifies a parsed
// patch document into staged changes, commits staged changes with a
// two-phase temp-file-and-rename discipline, and journals committed
// transactions so they can be undone and redone.
//
// Key components:
//   - Verify: builds staged changes without touching the filesystem
//   - Commit: stages temp files, then publishes them by atomic rename
//   - Undo/Redo: hash-guarded inverse transactions from the journal
package engine

import (
	"github.com/llmpatch/llmps/internal/clock"
	"github.com/llmpatch/llmps/internal/config"
	"github.com/llmpatch/llmps/internal/fsops"
	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/history"
)

// Engine runs patch transactions. Control deliberately returns to the
// caller between Verify and Commit so a confirmation step can sit in
// between; once Commit's publish phase has begun, the transaction runs to
// completion or to an explicit partial result.
type Engine struct {
	fs      fsops.FS
	hasher  hash.Hasher
	clock   clock.Clock
	journal history.Store
	blobs   *history.BlobStore
	cfg     *config.Config
	paths   *config.Paths
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	journal history.Store,
	blobs *history.BlobStore,
	cfg *config.Config,
	paths *config.Paths,
) *Engine {
	return &Engine{
		fs:      fs,
		hasher:  hasher,
		clock:   clk,
		journal: journal,
		blobs:   blobs,
		cfg:     cfg,
		paths:   paths,
	}
}

// Root returns the patch root all document paths resolve against.
func (e *Engine) Root() string {
	return e.paths.Root
}
