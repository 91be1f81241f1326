// Package planner verifies patch documents against the filesystem and
// builds the staged changes the committer will execute.
//
// Verification is deliberately fail-fast with zero side effects: every
// operation is checked in document order, the first failure aborts the
// whole run, and nothing is written. "Verification failed" therefore
// always means "nothing happened". The planner is also where hunks are
// located and applied in memory, so by the time a document reaches the
// committer every byte of every target is already decided.
package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/llmpatch/llmps/internal/config"
	"github.com/llmpatch/llmps/internal/fsops"
	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/patch"
)

// Verify checks every operation in doc against the filesystem under root
// and returns one StagedChange per operation, in document order. Update
// targets are read once; their hunks apply in order against the in-memory
// buffer, so a later hunk matches the result of earlier ones.
//
// Preconditions run against the on-disk state, which means one document
// cannot both create and then update the same path: the update would be
// verified against a file that does not exist yet.
func Verify(doc *patch.Document, root string, fs fsops.FS, hasher hash.Hasher) ([]StagedChange, error) {
	changes := make([]StagedChange, 0, len(doc.Ops))
	for _, op := range doc.Ops {
		change, err := verifyOperation(op, root, fs, hasher)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// verifyOperation checks one operation and stages its outcome. Path safety
// comes first, before any filesystem access.
func verifyOperation(op patch.Operation, root string, fs fsops.FS, hasher hash.Hasher) (StagedChange, error) {
	for _, p := range op.Paths() {
		if err := fs.ValidateRelPath(p); err != nil {
			return StagedChange{}, &PathSafetyError{Path: p, Reason: err.Error()}
		}
		if underStateDir(p) {
			return StagedChange{}, &PathSafetyError{Path: p, Reason: fmt.Sprintf("path is inside the %s state directory", config.StateDirName)}
		}
	}

	switch op.Type {
	case patch.OpCreate:
		return verifyCreate(op, root, fs)
	case patch.OpDelete:
		return verifyDelete(op, root, fs, hasher)
	case patch.OpRename:
		return verifyRename(op, root, fs, hasher)
	case patch.OpUpdate:
		return verifyUpdate(op, root, fs, hasher)
	default:
		return StagedChange{}, fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func verifyCreate(op patch.Operation, root string, fs fsops.FS) (StagedChange, error) {
	exists, err := fs.Exists(filepath.Join(root, op.Path))
	if err != nil {
		return StagedChange{}, &IOError{Path: op.Path, Err: err}
	}
	if exists {
		return StagedChange{}, &PreconditionError{OpType: op.Type, Path: op.Path, Reason: "path already exists"}
	}
	return StagedChange{Op: op, Lines: op.Content}, nil
}

// verifyDelete confirms the target and captures its content, so the diff
// view can show what goes away and the journal can restore it on undo.
func verifyDelete(op patch.Operation, root string, fs fsops.FS, hasher hash.Hasher) (StagedChange, error) {
	abs := filepath.Join(root, op.Path)
	if err := requireRegularFile(fs, op.Type, op.Path, abs); err != nil {
		return StagedChange{}, err
	}
	data, err := fs.ReadFile(abs)
	if err != nil {
		return StagedChange{}, &IOError{Path: op.Path, Err: err}
	}
	return StagedChange{Op: op, OldData: data, BaselineHash: hasher.HashBytes(data)}, nil
}

// verifyRename confirms both endpoints and hashes the source content. The
// hash goes into the journal record so undo and redo can tell whether the
// renamed file changed afterwards.
func verifyRename(op patch.Operation, root string, fs fsops.FS, hasher hash.Hasher) (StagedChange, error) {
	srcAbs := filepath.Join(root, op.SrcPath)
	if err := requireRegularFile(fs, op.Type, op.SrcPath, srcAbs); err != nil {
		return StagedChange{}, err
	}
	exists, err := fs.Exists(filepath.Join(root, op.DstPath))
	if err != nil {
		return StagedChange{}, &IOError{Path: op.DstPath, Err: err}
	}
	if exists {
		return StagedChange{}, &PreconditionError{OpType: op.Type, Path: op.DstPath, Reason: "destination already exists"}
	}
	data, err := fs.ReadFile(srcAbs)
	if err != nil {
		return StagedChange{}, &IOError{Path: op.SrcPath, Err: err}
	}
	return StagedChange{Op: op, BaselineHash: hasher.HashBytes(data)}, nil
}

func verifyUpdate(op patch.Operation, root string, fs fsops.FS, hasher hash.Hasher) (StagedChange, error) {
	abs := filepath.Join(root, op.Path)
	if err := requireRegularFile(fs, op.Type, op.Path, abs); err != nil {
		return StagedChange{}, err
	}

	data, err := fs.ReadFile(abs)
	if err != nil {
		return StagedChange{}, &IOError{Path: op.Path, Err: err}
	}

	lines, newline, trailing, hasBOM := splitContent(data)
	buffer := lines
	for i, h := range op.Hunks {
		buffer, err = applyHunk(buffer, h)
		if err != nil {
			var anchorErr *AnchorError
			if errors.As(err, &anchorErr) {
				anchorErr.File = op.Path
				anchorErr.HunkIndex = i + 1
			}
			return StagedChange{}, err
		}
	}

	return StagedChange{
		Op:              op,
		Lines:           buffer,
		OldData:         data,
		Newline:         newline,
		TrailingNewline: trailing,
		HasBOM:          hasBOM,
		BaselineHash:    hasher.HashBytes(data),
	}, nil
}

// requireRegularFile fails with a PreconditionError unless abs names an
// existing regular file. Symlinks are not followed, so a symlink target
// does not count as regular.
func requireRegularFile(fs fsops.FS, opType patch.OpType, rel, abs string) error {
	info, err := fs.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{OpType: opType, Path: rel, Reason: "file does not exist"}
		}
		return &IOError{Path: rel, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &PreconditionError{OpType: opType, Path: rel, Reason: "not a regular file"}
	}
	return nil
}

// underStateDir reports whether a document path points into the tool's
// own state directory. Patches are never allowed to touch the journal.
func underStateDir(rel string) bool {
	clean := filepath.ToSlash(filepath.Clean(rel))
	return clean == config.StateDirName || strings.HasPrefix(clean, config.StateDirName+"/")
}
