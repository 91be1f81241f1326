// Package history persists the transaction journal that backs undo and
// redo.
//
// Every commit that applied at least one change appends a journal entry
// recording the transaction ID, timestamp, and a per-path record with
// pre- and post-image hashes. The images themselves live in a
// content-addressed blob store next to the journal. Undo walks the cursor
// backwards, redo forwards; both are user-initiated inverse transactions,
// not a rollback mechanism — a partially applied commit is journaled with
// exactly the paths it changed.
package history

import "time"

// Record actions. They mirror the patch operation kinds.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionRename = "rename"
)

// Record is one path changed by a transaction.
type Record struct {
	// Action is what happened to the path: create, update, delete, or rename.
	Action string `json:"action"`

	// Path is the root-relative path the transaction changed. For renames
	// it is the source path.
	Path string `json:"path"`

	// NewPath is the rename destination; empty for other actions.
	NewPath string `json:"newPath,omitempty"`

	// PreHash is the content hash before the transaction. Empty for
	// creates. For update and delete the pre-image blob is stored under
	// this hash.
	PreHash string `json:"preHash,omitempty"`

	// PostHash is the content hash after the transaction. Empty for
	// deletes. For create and update the post-image blob is stored under
	// this hash.
	PostHash string `json:"postHash,omitempty"`
}

// Entry is one journaled transaction.
type Entry struct {
	// ID is the transaction UUID.
	ID string `json:"id"`

	// Timestamp is when the transaction committed.
	Timestamp time.Time `json:"timestamp"`

	// Status is the transaction's overall status string.
	Status string `json:"status"`

	// Records lists every path the transaction actually changed, in
	// document order. Operations that were not applied have no record.
	Records []Record `json:"records"`
}

// Journal is the persisted undo/redo stack. Entries[0] is the oldest.
// Cursor indexes the most recent applied entry; -1 means everything has
// been undone (or the journal is empty). Entries after the cursor are the
// redo tail.
type Journal struct {
	Cursor  int     `json:"cursor"`
	Entries []Entry `json:"entries"`
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{Cursor: -1, Entries: []Entry{}}
}

// Append records a new transaction: any redo tail is discarded, the entry
// becomes the newest, and the cursor moves onto it.
func (j *Journal) Append(e Entry) {
	j.Entries = append(j.Entries[:j.Cursor+1], e)
	j.Cursor = len(j.Entries) - 1
}

// Prune drops the oldest entries until at most limit remain. A limit of
// zero or less leaves the journal unchanged.
func (j *Journal) Prune(limit int) {
	if limit <= 0 || len(j.Entries) <= limit {
		return
	}
	drop := len(j.Entries) - limit
	j.Entries = append([]Entry{}, j.Entries[drop:]...)
	j.Cursor -= drop
	if j.Cursor < -1 {
		j.Cursor = -1
	}
}

// UndoTarget returns the entry an undo would revert.
func (j *Journal) UndoTarget() (*Entry, bool) {
	if j.Cursor < 0 || j.Cursor >= len(j.Entries) {
		return nil, false
	}
	return &j.Entries[j.Cursor], true
}

// RedoTarget returns the entry a redo would reapply.
func (j *Journal) RedoTarget() (*Entry, bool) {
	next := j.Cursor + 1
	if next >= len(j.Entries) {
		return nil, false
	}
	return &j.Entries[next], true
}

// MarkUndone moves the cursor back one entry.
func (j *Journal) MarkUndone() {
	if j.Cursor >= 0 {
		j.Cursor--
	}
}

// MarkRedone moves the cursor forward one entry.
func (j *Journal) MarkRedone() {
	if j.Cursor < len(j.Entries)-1 {
		j.Cursor++
	}
}

// ReferencedHashes returns every blob hash any surviving entry refers to.
// The blob store uses this to drop orphans after pruning.
func (j *Journal) ReferencedHashes() map[string]bool {
	refs := make(map[string]bool)
	for _, e := range j.Entries {
		for _, r := range e.Records {
			if r.PreHash != "" {
				refs[r.PreHash] = true
			}
			if r.PostHash != "" {
				refs[r.PostHash] = true
			}
		}
	}
	return refs
}
