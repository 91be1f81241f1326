// Package integration exercises the full patch pipeline against a real
// filesystem: parse, verify, commit, undo, redo.
package integration

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/llmpatch/llmps/internal/clock"
	"github.com/llmpatch/llmps/internal/config"
	"github.com/llmpatch/llmps/internal/engine"
	"github.com/llmpatch/llmps/internal/fsops"
	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/history"
	"github.com/llmpatch/llmps/internal/patch"
)

// setupEngine builds an engine over a fresh temp root with real
// dependencies and a deterministic clock.
func setupEngine(t *testing.T) (*engine.Engine, string) {
	t.Helper()
	root := t.TempDir()

	fs := fsops.NewRealFS()
	hasher := hash.NewSHA256Hasher()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	paths := config.NewPaths(root)
	cfg := config.Default()
	journal := history.NewFileStore(fs, paths.Journal)
	blobs := history.NewBlobStore(fs, hasher, paths.Blobs)

	return engine.New(fs, hasher, clk, journal, blobs, cfg, paths), root
}

// mustParse parses patch text or fails the test.
func mustParse(t *testing.T, text string) *patch.Document {
	t.Helper()
	doc, err := patch.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

// writeFile seeds a file under root, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// readFile reads a file under root or fails the test.
func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// exists reports whether rel exists under root.
func exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, rel))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", rel, err)
	return false
}

// snapshotTree captures every regular file under root (excluding the
// state dir) as path -> content, for byte-identical comparisons.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	snap := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == config.StateDirName || strings.HasPrefix(rel, config.StateDirName+string(filepath.Separator)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			snap[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to snapshot tree: %v", err)
	}
	return snap
}

// requireSameTree fails the test unless both snapshots are identical.
func requireSameTree(t *testing.T, want, got map[string]string) {
	t.Helper()
	var wantPaths, gotPaths []string
	for p := range want {
		wantPaths = append(wantPaths, p)
	}
	for p := range got {
		gotPaths = append(gotPaths, p)
	}
	sort.Strings(wantPaths)
	sort.Strings(gotPaths)

	if len(wantPaths) != len(gotPaths) {
		t.Fatalf("tree changed: had %v, now %v", wantPaths, gotPaths)
	}
	for _, p := range wantPaths {
		if want[p] != got[p] {
			t.Errorf("file %s changed:\nbefore: %q\nafter:  %q", p, want[p], got[p])
		}
	}
}
