package engine

import "github.com/llmpatch/llmps/internal/patch"

// OutcomeStatus describes what happened to a single operation during commit.
type OutcomeStatus string

const (
	// StatusApplied means the operation reached the filesystem.
	StatusApplied OutcomeStatus = "applied"
	// StatusFailed means the operation was attempted and failed.
	StatusFailed OutcomeStatus = "failed"
	// StatusNotAttempted means the commit stopped before this operation.
	StatusNotAttempted OutcomeStatus = "not-attempted"
)

// TransactionStatus describes the overall result of a commit.
type TransactionStatus string

const (
	// StatusFullyApplied means every operation reached the filesystem.
	StatusFullyApplied TransactionStatus = "fully-applied"
	// StatusAborted means the commit failed before any operation was
	// published and the working tree is untouched.
	StatusAborted TransactionStatus = "aborted"
	// StatusPartiallyApplied means the commit failed after publishing
	// some operations. The working tree holds a mix of old and new state.
	StatusPartiallyApplied TransactionStatus = "partially-applied"
)

// OperationOutcome reports the fate of one operation in a transaction.
type OperationOutcome struct {
	// Type is the operation kind, e.g. patch.OpUpdate.
	Type patch.OpType `json:"type"`
	// Path is the primary path of the operation.
	Path string `json:"path"`
	// NewPath is the destination of a rename, empty otherwise.
	NewPath string `json:"new_path,omitempty"`
	// Status reports whether the operation was applied.
	Status OutcomeStatus `json:"status"`
	// Reason explains a failed outcome.
	Reason string `json:"reason,omitempty"`
}

// TransactionResult is the full report of one commit.
type TransactionResult struct {
	// ID is the transaction identifier recorded in the journal.
	ID string `json:"id"`
	// Status is the overall transaction status.
	Status TransactionStatus `json:"status"`
	// Outcomes lists per-operation results in document order.
	Outcomes []OperationOutcome `json:"outcomes"`
	// Applied is the number of operations that reached the filesystem.
	Applied int `json:"applied"`
	// Warnings lists non-fatal problems, such as journal write failures.
	Warnings []string `json:"warnings,omitempty"`
}

// Total returns the number of operations in the transaction.
func (r *TransactionResult) Total() int {
	return len(r.Outcomes)
}

// SkippedPath reports a path an undo or redo left alone and why.
type SkippedPath struct {
	// Path is the affected path relative to the root.
	Path string `json:"path"`
	// Reason explains why the path was skipped.
	Reason string `json:"reason"`
}

// UndoResult reports which paths an undo restored and which it skipped.
type UndoResult struct {
	// ID is the identifier of the transaction that was undone.
	ID string `json:"id"`
	// Restored lists paths returned to their pre-transaction state.
	Restored []string `json:"restored"`
	// Skipped lists paths left alone because they changed since the
	// transaction, along with the reason.
	Skipped []SkippedPath `json:"skipped,omitempty"`
	// Warnings lists non-fatal problems encountered while restoring.
	Warnings []string `json:"warnings,omitempty"`
}

// RedoResult reports which paths a redo reapplied and which it skipped.
type RedoResult struct {
	// ID is the identifier of the transaction that was redone.
	ID string `json:"id"`
	// Restored lists paths returned to their post-transaction state.
	Restored []string `json:"restored"`
	// Skipped lists paths left alone because they changed since the
	// transaction, along with the reason.
	Skipped []SkippedPath `json:"skipped,omitempty"`
	// Warnings lists non-fatal problems encountered while restoring.
	Warnings []string `json:"warnings,omitempty"`
}
