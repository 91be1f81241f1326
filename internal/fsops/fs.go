// Package fsops provides filesystem operations with safety guarantees.
//
// All filesystem mutations in llmps go through the FS interface, which
// provides abstractions for common operations along with path validation
// to prevent directory traversal out of the patch root.
//
// Key features:
//   - Atomic replacement using temp file + rename
//   - Staged sibling writes for multi-file transactions
//   - Path validation for relative paths
//   - Testable via the FS interface
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TempPattern is the name pattern for staged temp files. Temp files are
// always created in the target's own directory so the final rename never
// crosses a filesystem boundary.
const TempPattern = ".llmps-tmp-*"

// FS provides an abstraction for filesystem operations.
// All filesystem mutations in llmps must go through this interface.
type FS interface {
	// Lstat returns file info without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// ReadDirNames returns the names of the entries in a directory.
	// A missing directory yields an empty list, not an error.
	ReadDirNames(dir string) ([]string, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Rename atomically replaces newpath with oldpath on the same volume.
	Rename(oldpath, newpath string) error

	// WriteSibling writes data to a fresh temp file in the target's own
	// directory and returns the temp path. The caller owns the temp file:
	// rename it over the target to publish, or remove it to discard.
	WriteSibling(target string, data []byte, perm os.FileMode) (string, error)

	// AtomicReplace writes data to path atomically using temp file + rename.
	AtomicReplace(path string, data []byte, perm os.FileMode) error

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// ValidateRelPath validates a relative path for safety.
	ValidateRelPath(relPath string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Lstat returns file info without following symlinks.
func (fs *RealFS) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDirNames returns the names of the entries in a directory.
func (fs *RealFS) ReadDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes a file or empty directory.
func (fs *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// Rename atomically replaces newpath with oldpath on the same volume.
func (fs *RealFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// WriteSibling writes data to a temp file next to target and returns the
// temp path. The data is synced to disk and the file closed before return,
// so a later rename publishes complete content.
func (fs *RealFS) WriteSibling(target string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(target)

	tmpFile, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}

	// Success - don't clean up temp file
	tmpFile = nil
	return tmpPath, nil
}

// AtomicReplace writes data to path atomically using temp file + rename.
func (fs *RealFS) AtomicReplace(path string, data []byte, perm os.FileMode) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpPath, err := fs.WriteSibling(path, data, perm)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Exists checks if a path exists.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidateRelPath validates a relative path for safety.
// Returns an error if the path is invalid or unsafe.
func (fs *RealFS) ValidateRelPath(relPath string) error {
	return validateRelPath(relPath)
}

// validateRelPath is the shared implementation behind FS.ValidateRelPath.
// It is pure, so real and fake filesystems validate identically.
func validateRelPath(relPath string) error {
	// Clean the path first
	cleaned := filepath.Clean(relPath)

	// Reject empty or current directory
	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("invalid path: empty or current directory")
	}

	// Reject absolute paths
	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid path: must be relative, got absolute path %q", cleaned)
	}

	// Reject path traversal attempts
	if strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, string(filepath.Separator)+"..") {
		return fmt.Errorf("invalid path: path traversal not allowed in %q", cleaned)
	}

	return nil
}
