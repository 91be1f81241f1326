// Package gitx locates the enclosing git repository for default-root
// discovery. Llmps is not git-aware beyond this: the repository root is
// simply the most useful default for resolving patch paths.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRepository is returned when no enclosing git repository exists.
var ErrNotRepository = errors.New("not in a git repository")

// Discover finds the git repository root by walking up from cwd looking
// for a .git entry. A .git regular file also counts, so worktrees and
// submodules resolve to their own checkout root.
func Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotRepository
		}
		current = parent
	}
}
