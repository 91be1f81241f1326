package planner

import (
	"fmt"
	"strings"

	"github.com/llmpatch/llmps/internal/patch"
)

// PathSafetyError reports an operation path that is absolute, empty, or
// escapes the patch root. Path safety is checked before any filesystem
// access, so this error always means nothing was touched.
type PathSafetyError struct {
	// Path is the offending path as written in the document.
	Path string

	// Reason describes why the path was rejected.
	Reason string
}

func (e *PathSafetyError) Error() string {
	return fmt.Sprintf("unsafe path %q: %s", e.Path, e.Reason)
}

// PreconditionError reports an existence or file-type mismatch for an
// operation target: creating a file that exists, deleting or updating one
// that doesn't, or renaming onto an occupied destination.
type PreconditionError struct {
	// OpType is the operation kind that failed.
	OpType patch.OpType

	// Path is the target path that failed the check.
	Path string

	// Reason describes the mismatch.
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.OpType, e.Path, e.Reason)
}

// IOError reports a filesystem stat or read failure during verification.
// Verification only reads, so an IOError still means nothing was touched.
type IOError struct {
	// Path is the document path whose target could not be accessed.
	Path string

	// Err is the underlying filesystem error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to access %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AnchorError reports a hunk whose context could not be located in its
// target file, or whose AFTER context did not match at the located edit.
type AnchorError struct {
	// File is the update target the hunk belongs to.
	File string

	// HunkIndex is the 1-based position of the hunk within its operation.
	HunkIndex int

	// NearestContext is a snippet from the closest partial match in the
	// buffer, to help fix the patch.
	NearestContext []string

	// Reason describes the failure.
	Reason string
}

func (e *AnchorError) Error() string {
	msg := fmt.Sprintf("hunk %d of %s: %s", e.HunkIndex, e.File, e.Reason)
	if len(e.NearestContext) > 0 {
		msg += fmt.Sprintf(" (nearest context: %q)", strings.Join(e.NearestContext, " / "))
	}
	return msg
}
