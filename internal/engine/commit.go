package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/llmpatch/llmps/internal/history"
	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
)

// createPerm is the mode for files a transaction creates. Updated files
// keep the mode they already have.
const createPerm os.FileMode = 0644

// stagedWrite is one temp file produced by the staging phase, waiting to
// be renamed over its target.
type stagedWrite struct {
	index   int
	target  string
	tmpPath string
}

// Commit publishes staged changes in two phases.
//
// Phase one writes the full new content of every create and update to a
// temp file next to its target and pre-creates missing directories. Any
// failure there removes the temps and the new directories and returns
// ErrAborted with the working tree untouched.
//
// Phase two publishes: every temp is renamed onto its target, then deletes
// run, then renames, each group in document order. Replace-by-rename
// cannot half-write a file, so a failure mid-phase leaves every remaining
// target intact. What was already published stays published; the result
// reports StatusPartiallyApplied with per-operation outcomes and no
// rollback is attempted.
//
// A transaction that changed at least one path is journaled so it can be
// undone. Journal problems do not fail the commit; they come back as
// warnings on the result.
func (e *Engine) Commit(ctx context.Context, changes []planner.StagedChange) (*TransactionResult, error) {
	result := &TransactionResult{
		ID:       uuid.New().String(),
		Status:   StatusFullyApplied,
		Outcomes: make([]OperationOutcome, len(changes)),
	}
	for i, c := range changes {
		out := OperationOutcome{Type: c.Op.Type, Path: c.Op.Path, Status: StatusNotAttempted}
		if c.Op.Type == patch.OpRename {
			out.Path = c.Op.SrcPath
			out.NewPath = c.Op.DstPath
		}
		result.Outcomes[i] = out
	}
	if len(changes) == 0 {
		return result, nil
	}

	writes, createdDirs, failedAt, err := e.stage(changes)
	if err != nil {
		e.removeTemps(writes)
		e.removeDirs(createdDirs)
		result.Status = StatusAborted
		result.Outcomes[failedAt].Status = StatusFailed
		result.Outcomes[failedAt].Reason = err.Error()
		return result, fmt.Errorf("%w: %v", ErrAborted, err)
	}

	// Publish staged content first, then deletes, then renames, each
	// group in document order.
	failedAt, err = e.publishWrites(writes, changes, result)
	if err == nil {
		failedAt, err = e.publishDeletes(changes, result)
	}
	if err == nil {
		failedAt, err = e.publishRenames(changes, result)
	}

	if err != nil {
		result.Outcomes[failedAt].Status = StatusFailed
		result.Outcomes[failedAt].Reason = err.Error()
		e.discardUnpublished(writes, result, createdDirs)

		if result.Applied == 0 {
			result.Status = StatusAborted
			return result, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		result.Status = StatusPartiallyApplied
		e.record(result, changes)
		return result, fmt.Errorf("%w: %d of %d operations applied: %v",
			ErrPartialApply, result.Applied, len(changes), err)
	}

	e.record(result, changes)
	return result, nil
}

// stage writes the temp files and pre-creates missing directories for both
// create targets and rename destinations. It returns the staged writes,
// the directories it created, and on failure the index of the operation
// that could not be staged.
func (e *Engine) stage(changes []planner.StagedChange) ([]stagedWrite, []string, int, error) {
	var writes []stagedWrite
	var createdDirs []string

	for i, c := range changes {
		switch c.Op.Type {
		case patch.OpCreate:
			target := filepath.Join(e.paths.Root, c.Op.Path)
			dirs, err := e.ensureDir(filepath.Dir(target))
			createdDirs = append(createdDirs, dirs...)
			if err != nil {
				return writes, createdDirs, i, fmt.Errorf("failed to create directory for %s: %w", c.Op.Path, err)
			}
			tmp, err := e.fs.WriteSibling(target, c.Render(e.cfg.Newline()), createPerm)
			if err != nil {
				return writes, createdDirs, i, fmt.Errorf("failed to stage %s: %w", c.Op.Path, err)
			}
			writes = append(writes, stagedWrite{index: i, target: target, tmpPath: tmp})

		case patch.OpUpdate:
			target := filepath.Join(e.paths.Root, c.Op.Path)
			perm := createPerm
			if info, err := e.fs.Lstat(target); err == nil {
				perm = info.Mode().Perm()
			}
			tmp, err := e.fs.WriteSibling(target, c.Render(e.cfg.Newline()), perm)
			if err != nil {
				return writes, createdDirs, i, fmt.Errorf("failed to stage %s: %w", c.Op.Path, err)
			}
			writes = append(writes, stagedWrite{index: i, target: target, tmpPath: tmp})

		case patch.OpRename:
			dst := filepath.Join(e.paths.Root, c.Op.DstPath)
			dirs, err := e.ensureDir(filepath.Dir(dst))
			createdDirs = append(createdDirs, dirs...)
			if err != nil {
				return writes, createdDirs, i, fmt.Errorf("failed to create directory for %s: %w", c.Op.DstPath, err)
			}
		}
	}
	return writes, createdDirs, -1, nil
}

func (e *Engine) publishWrites(writes []stagedWrite, changes []planner.StagedChange, result *TransactionResult) (int, error) {
	for _, w := range writes {
		if err := e.fs.Rename(w.tmpPath, w.target); err != nil {
			return w.index, fmt.Errorf("failed to publish %s: %w", changes[w.index].Op.Path, err)
		}
		result.Outcomes[w.index].Status = StatusApplied
		result.Applied++
	}
	return -1, nil
}

func (e *Engine) publishDeletes(changes []planner.StagedChange, result *TransactionResult) (int, error) {
	for i, c := range changes {
		if c.Op.Type != patch.OpDelete {
			continue
		}
		if err := e.fs.Remove(filepath.Join(e.paths.Root, c.Op.Path)); err != nil {
			return i, fmt.Errorf("failed to delete %s: %w", c.Op.Path, err)
		}
		result.Outcomes[i].Status = StatusApplied
		result.Applied++
	}
	return -1, nil
}

func (e *Engine) publishRenames(changes []planner.StagedChange, result *TransactionResult) (int, error) {
	for i, c := range changes {
		if c.Op.Type != patch.OpRename {
			continue
		}
		src := filepath.Join(e.paths.Root, c.Op.SrcPath)
		dst := filepath.Join(e.paths.Root, c.Op.DstPath)
		if err := e.fs.Rename(src, dst); err != nil {
			return i, fmt.Errorf("failed to rename %s to %s: %w", c.Op.SrcPath, c.Op.DstPath, err)
		}
		result.Outcomes[i].Status = StatusApplied
		result.Applied++
	}
	return -1, nil
}

// ensureDir creates dir and any missing ancestors, returning the paths it
// created so an abort can remove them again.
func (e *Engine) ensureDir(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; {
		exists, err := e.fs.Exists(d)
		if err != nil {
			return nil, err
		}
		if exists {
			break
		}
		missing = append(missing, d)
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return missing, err
	}
	return missing, nil
}

// removeTemps deletes staged temp files that were never published.
func (e *Engine) removeTemps(writes []stagedWrite) {
	for _, w := range writes {
		_ = e.fs.Remove(w.tmpPath)
	}
}

// removeDirs removes directories the staging phase created, deepest first.
// Removal is best-effort: a directory that gained a published file simply
// stays.
func (e *Engine) removeDirs(dirs []string) {
	sorted := append([]string(nil), dirs...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	for _, dir := range sorted {
		_ = e.fs.Remove(dir)
	}
}

// discardUnpublished cleans up after a phase-two failure: temps whose
// rename never ran (or failed) are removed, and staging-phase directories
// not claimed by a published file are removed.
func (e *Engine) discardUnpublished(writes []stagedWrite, result *TransactionResult, createdDirs []string) {
	var leftover []stagedWrite
	for _, w := range writes {
		if result.Outcomes[w.index].Status != StatusApplied {
			leftover = append(leftover, w)
		}
	}
	e.removeTemps(leftover)
	e.removeDirs(createdDirs)
}

// record journals a transaction that changed at least one path, writing
// pre- and post-image blobs so it can be undone and redone. Failures here
// never fail the commit; they become warnings on the result.
func (e *Engine) record(result *TransactionResult, changes []planner.StagedChange) {
	warn := func(err error) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("history not recorded: %v", err))
	}

	if err := e.paths.EnsureDirectories(e.fs); err != nil {
		warn(err)
		return
	}

	records := make([]history.Record, 0, len(changes))
	for i, c := range changes {
		if result.Outcomes[i].Status != StatusApplied {
			continue
		}
		rec, err := e.buildRecord(c)
		if err != nil {
			warn(err)
			return
		}
		records = append(records, rec)
	}

	journal, err := e.journal.Load()
	if err != nil {
		warn(err)
		return
	}
	journal.Append(history.Entry{
		ID:        result.ID,
		Timestamp: e.clock.Now(),
		Status:    string(result.Status),
		Records:   records,
	})
	journal.Prune(e.cfg.HistoryLimit)
	if err := e.journal.Save(journal); err != nil {
		warn(err)
		return
	}
	if err := e.blobs.GC(journal.ReferencedHashes()); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("blob cleanup failed: %v", err))
	}
}

// buildRecord converts one applied change into its journal record, storing
// whatever blobs undo and redo will need. Renames store no blobs, only the
// content hash that guards moving the file back.
func (e *Engine) buildRecord(c planner.StagedChange) (history.Record, error) {
	switch c.Op.Type {
	case patch.OpCreate:
		post, err := e.blobs.Write(c.Render(e.cfg.Newline()))
		if err != nil {
			return history.Record{}, err
		}
		return history.Record{Action: history.ActionCreate, Path: c.Op.Path, PostHash: post}, nil

	case patch.OpUpdate:
		pre, err := e.blobs.Write(c.OldData)
		if err != nil {
			return history.Record{}, err
		}
		post, err := e.blobs.Write(c.Render(e.cfg.Newline()))
		if err != nil {
			return history.Record{}, err
		}
		return history.Record{Action: history.ActionUpdate, Path: c.Op.Path, PreHash: pre, PostHash: post}, nil

	case patch.OpDelete:
		pre, err := e.blobs.Write(c.OldData)
		if err != nil {
			return history.Record{}, err
		}
		return history.Record{Action: history.ActionDelete, Path: c.Op.Path, PreHash: pre}, nil

	case patch.OpRename:
		return history.Record{
			Action:   history.ActionRename,
			Path:     c.Op.SrcPath,
			NewPath:  c.Op.DstPath,
			PreHash:  c.BaselineHash,
			PostHash: c.BaselineHash,
		}, nil
	}
	return history.Record{}, fmt.Errorf("unknown operation type: %s", c.Op.Type)
}
