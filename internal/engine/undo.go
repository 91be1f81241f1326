package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llmpatch/llmps/internal/history"
)

// restoreLog collects per-path outcomes while an undo or redo walks the
// records of a journal entry.
type restoreLog struct {
	restored []string
	skipped  []SkippedPath
	warnings []string
}

func (l *restoreLog) done(path string) {
	l.restored = append(l.restored, path)
}

func (l *restoreLog) skip(path, reason string) {
	l.skipped = append(l.skipped, SkippedPath{Path: path, Reason: reason})
}

func (l *restoreLog) warn(path string, err error) {
	l.warnings = append(l.warnings, fmt.Sprintf("%s: %v", path, err))
}

// Undo reverts the most recent journaled transaction. Every path is
// guarded: a file whose content no longer matches the journaled
// post-state was changed by someone else and is skipped, not clobbered.
// Records are unwound in reverse order. The journal cursor moves back one
// entry even when every path was skipped, so repeated undos keep walking
// the history.
func (e *Engine) Undo(ctx context.Context) (*UndoResult, error) {
	journal, err := e.journal.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	entry, ok := journal.UndoTarget()
	if !ok {
		return nil, ErrNothingToUndo
	}

	var log restoreLog
	for i := len(entry.Records) - 1; i >= 0; i-- {
		e.undoRecord(entry.Records[i], &log)
	}

	journal.MarkUndone()
	if err := e.journal.Save(journal); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	return &UndoResult{
		ID:       entry.ID,
		Restored: log.restored,
		Skipped:  log.skipped,
		Warnings: log.warnings,
	}, nil
}

// Redo reapplies the most recently undone transaction, with the same
// per-path guards as Undo running in the opposite direction. Records are
// replayed in their original order.
func (e *Engine) Redo(ctx context.Context) (*RedoResult, error) {
	journal, err := e.journal.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	entry, ok := journal.RedoTarget()
	if !ok {
		return nil, ErrNothingToRedo
	}

	var log restoreLog
	for _, rec := range entry.Records {
		e.redoRecord(rec, &log)
	}

	journal.MarkRedone()
	if err := e.journal.Save(journal); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	return &RedoResult{
		ID:       entry.ID,
		Restored: log.restored,
		Skipped:  log.skipped,
		Warnings: log.warnings,
	}, nil
}

// undoRecord restores one path to its pre-transaction state.
func (e *Engine) undoRecord(rec history.Record, log *restoreLog) {
	abs := filepath.Join(e.paths.Root, rec.Path)

	switch rec.Action {
	case history.ActionCreate:
		if !e.guardContent(abs, rec.Path, rec.PostHash, log) {
			return
		}
		if err := e.fs.Remove(abs); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionUpdate:
		if !e.guardContent(abs, rec.Path, rec.PostHash, log) {
			return
		}
		if err := e.restoreBlob(abs, rec.PreHash); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionDelete:
		if !e.guardAbsent(abs, rec.Path, log) {
			return
		}
		if err := e.restoreBlob(abs, rec.PreHash); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionRename:
		dstAbs := filepath.Join(e.paths.Root, rec.NewPath)
		if !e.guardContent(dstAbs, rec.NewPath, rec.PostHash, log) {
			return
		}
		if !e.guardAbsent(abs, rec.Path, log) {
			return
		}
		if err := e.moveBack(dstAbs, abs); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)
	}
}

// redoRecord returns one path to its post-transaction state.
func (e *Engine) redoRecord(rec history.Record, log *restoreLog) {
	abs := filepath.Join(e.paths.Root, rec.Path)

	switch rec.Action {
	case history.ActionCreate:
		if !e.guardAbsent(abs, rec.Path, log) {
			return
		}
		if err := e.restoreBlob(abs, rec.PostHash); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionUpdate:
		if !e.guardContent(abs, rec.Path, rec.PreHash, log) {
			return
		}
		if err := e.restoreBlob(abs, rec.PostHash); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionDelete:
		if !e.guardContent(abs, rec.Path, rec.PreHash, log) {
			return
		}
		if err := e.fs.Remove(abs); err != nil {
			log.warn(rec.Path, err)
			return
		}
		log.done(rec.Path)

	case history.ActionRename:
		dstAbs := filepath.Join(e.paths.Root, rec.NewPath)
		if !e.guardContent(abs, rec.Path, rec.PreHash, log) {
			return
		}
		if !e.guardAbsent(dstAbs, rec.NewPath, log) {
			return
		}
		if err := e.moveBack(abs, dstAbs); err != nil {
			log.warn(rec.NewPath, err)
			return
		}
		log.done(rec.NewPath)
	}
}

// guardContent checks that abs currently holds content hashing to want.
// Mismatches and missing files are recorded as skips against rel.
func (e *Engine) guardContent(abs, rel, want string, log *restoreLog) bool {
	cur, err := e.currentHash(abs)
	if err != nil {
		log.warn(rel, err)
		return false
	}
	if cur == "" {
		log.skip(rel, "file no longer exists")
		return false
	}
	if cur != want {
		log.skip(rel, "content changed since the transaction")
		return false
	}
	return true
}

// guardAbsent checks that nothing occupies abs. An occupied path is
// recorded as a skip against rel.
func (e *Engine) guardAbsent(abs, rel string, log *restoreLog) bool {
	exists, err := e.fs.Exists(abs)
	if err != nil {
		log.warn(rel, err)
		return false
	}
	if exists {
		log.skip(rel, "path is occupied")
		return false
	}
	return true
}

// currentHash returns the content hash of abs, or "" when no file exists
// there.
func (e *Engine) currentHash(abs string) (string, error) {
	data, err := e.fs.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return e.hasher.HashBytes(data), nil
}

// restoreBlob writes the blob stored under sum to abs, keeping the mode of
// any file already there.
func (e *Engine) restoreBlob(abs, sum string) error {
	content, err := e.blobs.Read(sum)
	if err != nil {
		return err
	}
	perm := createPerm
	if info, err := e.fs.Lstat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	return e.fs.AtomicReplace(abs, content, perm)
}

// moveBack renames from onto to, recreating to's directory if it has been
// removed since the transaction.
func (e *Engine) moveBack(from, to string) error {
	if err := e.fs.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return err
	}
	return e.fs.Rename(from, to)
}
