package engine

import "errors"

var (
	// ErrAborted is returned when a commit fails before publishing any
	// operation and the working tree is untouched.
	ErrAborted = errors.New("transaction aborted, no changes were made")

	// ErrPartialApply is returned when a commit fails after publishing
	// some operations.
	ErrPartialApply = errors.New("transaction partially applied")

	// ErrNothingToUndo is returned when the journal has no transaction
	// behind the cursor.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the journal has no transaction
	// ahead of the cursor.
	ErrNothingToRedo = errors.New("nothing to redo")
)
