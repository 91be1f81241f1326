package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FakeFS is an in-memory FS implementation for tests. It tracks files and
// directories in maps and supports targeted failure injection so commit
// phases can be failed mid-transaction.
//
// Directory tracking is strict: WriteSibling and Rename require the target
// directory to exist, and Remove refuses non-empty directories, so tests
// catch missing MkdirAll calls and wrong cleanup ordering.
type FakeFS struct {
	// Files maps absolute paths to file content.
	Files map[string][]byte

	// Modes maps file paths to permission bits. Missing entries read as 0644.
	Modes map[string]os.FileMode

	// Dirs is the set of existing directories.
	Dirs map[string]bool

	// FailReads fails ReadFile for the given paths.
	FailReads map[string]bool

	// FailWrites fails WriteSibling for the given target paths.
	FailWrites map[string]bool

	// FailRenames fails Rename for the given destination paths.
	FailRenames map[string]bool

	// FailRemoves fails Remove for the given paths.
	FailRemoves map[string]bool

	tempSeq int
}

// NewFakeFS creates an empty FakeFS.
func NewFakeFS() *FakeFS {
	return &FakeFS{
		Files:       make(map[string][]byte),
		Modes:       make(map[string]os.FileMode),
		Dirs:        make(map[string]bool),
		FailReads:   make(map[string]bool),
		FailWrites:  make(map[string]bool),
		FailRenames: make(map[string]bool),
		FailRemoves: make(map[string]bool),
	}
}

// AddFile stores a file and creates its parent directories.
func (fs *FakeFS) AddFile(path string, data []byte) {
	fs.Files[path] = append([]byte(nil), data...)
	fs.addDirChain(filepath.Dir(path))
}

// AddDir creates a directory and its parents.
func (fs *FakeFS) AddDir(path string) {
	fs.addDirChain(path)
}

func (fs *FakeFS) addDirChain(dir string) {
	for dir != "" && dir != "." && dir != string(filepath.Separator) && !fs.Dirs[dir] {
		fs.Dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// SortedFiles returns all file paths in sorted order.
func (fs *FakeFS) SortedFiles() []string {
	paths := make([]string, 0, len(fs.Files))
	for p := range fs.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Lstat returns file info without following symlinks.
func (fs *FakeFS) Lstat(path string) (os.FileInfo, error) {
	if data, ok := fs.Files[path]; ok {
		return &fakeFileInfo{name: filepath.Base(path), size: int64(len(data)), mode: fs.mode(path)}, nil
	}
	if fs.Dirs[path] {
		return &fakeFileInfo{name: filepath.Base(path), mode: os.ModeDir | 0755, isDir: true}, nil
	}
	return nil, &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
}

// ReadFile reads the entire contents of a file.
func (fs *FakeFS) ReadFile(path string) ([]byte, error) {
	if fs.FailReads[path] {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrPermission}
	}
	data, ok := fs.Files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// ReadDirNames returns the names of the entries in a directory.
func (fs *FakeFS) ReadDirNames(dir string) ([]string, error) {
	prefix := dir + string(filepath.Separator)
	seen := make(map[string]bool)
	var names []string
	add := func(p string) {
		rest := strings.TrimPrefix(p, prefix)
		if rest == p {
			return
		}
		name := rest
		if i := strings.IndexRune(rest, filepath.Separator); i >= 0 {
			name = rest[:i]
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for p := range fs.Files {
		add(p)
	}
	for d := range fs.Dirs {
		add(d)
	}
	sort.Strings(names)
	return names, nil
}

// MkdirAll creates a directory and all parent directories.
func (fs *FakeFS) MkdirAll(path string, perm os.FileMode) error {
	if _, ok := fs.Files[path]; ok {
		return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrExist}
	}
	fs.addDirChain(path)
	return nil
}

// Remove removes a file or empty directory.
func (fs *FakeFS) Remove(path string) error {
	if fs.FailRemoves[path] {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
	}
	if _, ok := fs.Files[path]; ok {
		delete(fs.Files, path)
		delete(fs.Modes, path)
		return nil
	}
	if fs.Dirs[path] {
		prefix := path + string(filepath.Separator)
		for p := range fs.Files {
			if strings.HasPrefix(p, prefix) {
				return &os.PathError{Op: "remove", Path: path, Err: fmt.Errorf("directory not empty")}
			}
		}
		for d := range fs.Dirs {
			if strings.HasPrefix(d, prefix) {
				return &os.PathError{Op: "remove", Path: path, Err: fmt.Errorf("directory not empty")}
			}
		}
		delete(fs.Dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

// Rename atomically replaces newpath with oldpath.
func (fs *FakeFS) Rename(oldpath, newpath string) error {
	if fs.FailRenames[newpath] {
		return &os.PathError{Op: "rename", Path: newpath, Err: os.ErrPermission}
	}
	data, ok := fs.Files[oldpath]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldpath, Err: os.ErrNotExist}
	}
	if !fs.Dirs[filepath.Dir(newpath)] {
		return &os.PathError{Op: "rename", Path: newpath, Err: os.ErrNotExist}
	}
	fs.Files[newpath] = data
	fs.Modes[newpath] = fs.mode(oldpath)
	delete(fs.Files, oldpath)
	delete(fs.Modes, oldpath)
	return nil
}

// WriteSibling writes data to a fresh temp file in the target's directory.
func (fs *FakeFS) WriteSibling(target string, data []byte, perm os.FileMode) (string, error) {
	if fs.FailWrites[target] {
		return "", &os.PathError{Op: "write", Path: target, Err: os.ErrPermission}
	}
	dir := filepath.Dir(target)
	if !fs.Dirs[dir] {
		return "", &os.PathError{Op: "createtemp", Path: dir, Err: os.ErrNotExist}
	}
	fs.tempSeq++
	tmpPath := filepath.Join(dir, fmt.Sprintf(".llmps-tmp-%d", fs.tempSeq))
	fs.Files[tmpPath] = append([]byte(nil), data...)
	fs.Modes[tmpPath] = perm
	return tmpPath, nil
}

// AtomicReplace writes data to path atomically using temp file + rename.
func (fs *FakeFS) AtomicReplace(path string, data []byte, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath, err := fs.WriteSibling(path, data, perm)
	if err != nil {
		return err
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		delete(fs.Files, tmpPath)
		delete(fs.Modes, tmpPath)
		return err
	}
	return nil
}

// Exists checks if a path exists.
func (fs *FakeFS) Exists(path string) (bool, error) {
	if _, ok := fs.Files[path]; ok {
		return true, nil
	}
	return fs.Dirs[path], nil
}

// ValidateRelPath validates a relative path for safety.
func (fs *FakeFS) ValidateRelPath(relPath string) error {
	return validateRelPath(relPath)
}

func (fs *FakeFS) mode(path string) os.FileMode {
	if m, ok := fs.Modes[path]; ok {
		return m
	}
	return 0644
}

// fakeFileInfo implements os.FileInfo for FakeFS entries.
type fakeFileInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	isDir bool
}

func (f *fakeFileInfo) Name() string       { return f.name }
func (f *fakeFileInfo) Size() int64        { return f.size }
func (f *fakeFileInfo) Mode() os.FileMode  { return f.mode }
func (f *fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f *fakeFileInfo) IsDir() bool        { return f.isDir }
func (f *fakeFileInfo) Sys() interface{}   { return nil }
