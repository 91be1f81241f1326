package history

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"path/filepath"

	"github.com/llmpatch/llmps/internal/fsops"
	"github.com/llmpatch/llmps/internal/hash"
)

// BlobStore holds pre- and post-image file content, zlib-compressed and
// named by the SHA-256 of the uncompressed bytes. Content addressing makes
// writes idempotent: the same content journaled twice is stored once.
type BlobStore struct {
	fs     fsops.FS
	hasher hash.Hasher
	dir    string
}

// NewBlobStore creates a BlobStore rooted at dir.
func NewBlobStore(fs fsops.FS, hasher hash.Hasher, dir string) *BlobStore {
	return &BlobStore{fs: fs, hasher: hasher, dir: dir}
}

// Write stores content and returns its hash.
func (b *BlobStore) Write(content []byte) (string, error) {
	sum := b.hasher.HashBytes(content)

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(content); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}

	if err := b.fs.AtomicReplace(filepath.Join(b.dir, sum), buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", sum, err)
	}
	return sum, nil
}

// Read returns the content stored under hash.
func (b *BlobStore) Read(sum string) ([]byte, error) {
	data, err := b.fs.ReadFile(filepath.Join(b.dir, sum))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", sum, err)
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("blob %s is not zlib data: %w", sum, err)
	}
	defer func() {
		_ = r.Close()
	}()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blob %s: %w", sum, err)
	}
	return content, nil
}

// GC removes every blob whose hash is not in keep. Temp files left behind
// by interrupted writes are also swept.
func (b *BlobStore) GC(keep map[string]bool) error {
	names, err := b.fs.ReadDirNames(b.dir)
	if err != nil {
		return fmt.Errorf("failed to list blobs: %w", err)
	}
	for _, name := range names {
		if keep[name] {
			continue
		}
		if err := b.fs.Remove(filepath.Join(b.dir, name)); err != nil {
			return fmt.Errorf("failed to remove blob %s: %w", name, err)
		}
	}
	return nil
}
