// Package config manages llmps configuration and filesystem paths.
//
// Llmps keeps per-project state in a .llmps directory at the patch root:
// the transaction journal and the content blobs backing undo/redo. User
// settings live in an optional .llmps.yaml next to the state directory.
// Nothing is stored outside the project tree.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/llmpatch/llmps/internal/fsops"
)

// StateDirName is the per-project state directory created at the patch root.
const StateDirName = ".llmps"

// ConfigFileName is the optional per-project config file at the patch root.
const ConfigFileName = ".llmps.yaml"

// Paths contains all the filesystem paths used by llmps for one project.
type Paths struct {
	// Root is the patch root all document paths resolve against (absolute)
	Root string

	// StateDir is the per-project state directory
	StateDir string

	// Journal is the transaction journal file
	Journal string

	// Blobs is the directory holding content blobs for undo/redo
	Blobs string

	// Config is the path to the project config file
	Config string
}

// NewPaths returns the paths for a project rooted at root.
func NewPaths(root string) *Paths {
	stateDir := filepath.Join(root, StateDirName)
	return &Paths{
		Root:     root,
		StateDir: stateDir,
		Journal:  filepath.Join(stateDir, "journal.json"),
		Blobs:    filepath.Join(stateDir, "blobs"),
		Config:   filepath.Join(root, ConfigFileName),
	}
}

// EnsureDirectories creates the state directories if they don't exist.
// Nothing calls this before a transaction is journaled, so a read-only run
// leaves the tree free of state directories.
func (p *Paths) EnsureDirectories(fs fsops.FS) error {
	dirs := []string{
		p.StateDir,
		p.Blobs,
	}

	for _, dir := range dirs {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
