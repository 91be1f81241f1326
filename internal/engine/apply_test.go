package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
)

func TestVerify_SurfacesPlannerErrors(t *testing.T) {
	e, _ := newTestEngine(t)

	doc := &patch.Document{Ops: []patch.Operation{
		{Type: patch.OpUpdate, Path: "missing.py", Hunks: []patch.Hunk{
			{Before: []string{"x"}, Add: []string{"y"}},
		}},
	}}

	_, err := e.Verify(context.Background(), doc)
	var precondition *planner.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("Verify() error = %v, want PreconditionError", err)
	}
	if precondition.Path != "missing.py" {
		t.Errorf("Path = %q, want missing.py", precondition.Path)
	}
}

func TestVerify_LeavesTreeUntouched(t *testing.T) {
	e, fs := newTestEngine(t)
	fs.AddFile("/repo/main.py", []byte("x = 1\n"))
	before := snapshot(fs)

	doc := &patch.Document{Ops: []patch.Operation{
		{Type: patch.OpUpdate, Path: "main.py", Hunks: []patch.Hunk{
			{Before: []string{"x = 1"}, Add: []string{"y = 2"}},
		}},
		{Type: patch.OpCreate, Path: "new/file.py", Content: []string{"pass"}},
	}}

	changes, err := e.Verify(context.Background(), doc)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("expected 2 staged changes, got %d", len(changes))
	}
	if !reflect.DeepEqual(snapshot(fs), before) {
		t.Error("verification touched the tree")
	}
}
