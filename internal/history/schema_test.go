package history

import (
	"testing"
	"time"
)

func entry(id string) Entry {
	return Entry{
		ID:        id,
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:    "fully-applied",
		Records: []Record{
			{Action: ActionUpdate, Path: "main.py", PreHash: "pre-" + id, PostHash: "post-" + id},
		},
	}
}

func TestJournal_AppendAdvancesCursor(t *testing.T) {
	j := NewJournal()
	if _, ok := j.UndoTarget(); ok {
		t.Error("empty journal should have no undo target")
	}

	j.Append(entry("a"))
	j.Append(entry("b"))

	if j.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", j.Cursor)
	}
	target, ok := j.UndoTarget()
	if !ok || target.ID != "b" {
		t.Errorf("UndoTarget() = %v, want entry b", target)
	}
}

func TestJournal_AppendTruncatesRedoTail(t *testing.T) {
	j := NewJournal()
	j.Append(entry("a"))
	j.Append(entry("b"))
	j.MarkUndone()

	if target, ok := j.RedoTarget(); !ok || target.ID != "b" {
		t.Fatalf("RedoTarget() = %v, want entry b", target)
	}

	j.Append(entry("c"))

	if len(j.Entries) != 2 {
		t.Fatalf("expected 2 entries after truncation, got %d", len(j.Entries))
	}
	if j.Entries[1].ID != "c" {
		t.Errorf("newest entry = %s, want c", j.Entries[1].ID)
	}
	if _, ok := j.RedoTarget(); ok {
		t.Error("redo tail should be gone after a new transaction")
	}
}

func TestJournal_UndoRedoWalk(t *testing.T) {
	j := NewJournal()
	j.Append(entry("a"))
	j.Append(entry("b"))

	j.MarkUndone()
	if target, ok := j.UndoTarget(); !ok || target.ID != "a" {
		t.Errorf("after one undo, UndoTarget() = %v, want a", target)
	}

	j.MarkUndone()
	if _, ok := j.UndoTarget(); ok {
		t.Error("after undoing everything, UndoTarget() should be empty")
	}
	if target, ok := j.RedoTarget(); !ok || target.ID != "a" {
		t.Errorf("RedoTarget() = %v, want a", target)
	}

	j.MarkRedone()
	j.MarkRedone()
	if _, ok := j.RedoTarget(); ok {
		t.Error("after redoing everything, RedoTarget() should be empty")
	}
	if target, ok := j.UndoTarget(); !ok || target.ID != "b" {
		t.Errorf("UndoTarget() = %v, want b", target)
	}
}

func TestJournal_Prune(t *testing.T) {
	j := NewJournal()
	for _, id := range []string{"a", "b", "c", "d"} {
		j.Append(entry(id))
	}

	j.Prune(2)

	if len(j.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(j.Entries))
	}
	if j.Entries[0].ID != "c" || j.Entries[1].ID != "d" {
		t.Errorf("entries = [%s %s], want [c d]", j.Entries[0].ID, j.Entries[1].ID)
	}
	if j.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", j.Cursor)
	}
}

func TestJournal_PruneClampsCursor(t *testing.T) {
	j := NewJournal()
	j.Append(entry("a"))
	j.Append(entry("b"))
	j.Append(entry("c"))
	j.MarkUndone()
	j.MarkUndone()
	j.MarkUndone() // cursor -1, all three entries are redo tail

	j.Prune(1)

	if j.Cursor != -1 {
		t.Errorf("Cursor = %d, want -1", j.Cursor)
	}
	if len(j.Entries) != 1 || j.Entries[0].ID != "c" {
		t.Errorf("entries = %v, want just c", j.Entries)
	}
}

func TestJournal_PruneZeroKeepsAll(t *testing.T) {
	j := NewJournal()
	j.Append(entry("a"))
	j.Append(entry("b"))

	j.Prune(0)

	if len(j.Entries) != 2 {
		t.Errorf("Prune(0) dropped entries: %d left", len(j.Entries))
	}
}

func TestJournal_ReferencedHashes(t *testing.T) {
	j := NewJournal()
	j.Append(Entry{ID: "a", Records: []Record{
		{Action: ActionCreate, Path: "new.txt", PostHash: "h1"},
		{Action: ActionDelete, Path: "old.txt", PreHash: "h2"},
		{Action: ActionRename, Path: "x.txt", NewPath: "y.txt", PreHash: "h3", PostHash: "h3"},
	}})

	refs := j.ReferencedHashes()
	for _, h := range []string{"h1", "h2", "h3"} {
		if !refs[h] {
			t.Errorf("hash %s not referenced", h)
		}
	}
	if len(refs) != 3 {
		t.Errorf("expected 3 referenced hashes, got %d", len(refs))
	}
}
