package source

import (
	"strings"
	"testing"

	"github.com/llmpatch/llmps/internal/patch"
)

func TestUnwrap_BarePassesThrough(t *testing.T) {
	raw := "UPDATE-FILE: main.py\nHUNK:\n  BEFORE:\n    x = 1\n  ADD:\n    y = 2\n"
	if got := Unwrap(raw); got != raw {
		t.Errorf("Unwrap() changed bare text:\n%q", got)
	}
}

func TestUnwrap_BareWithFenceInContent(t *testing.T) {
	// A create body containing markdown fences is still bare patch text.
	raw := "CREATE-FILE: README.md\nCONTENT:\n  # Title\n  ```sh\n  make test\n  ```\n"
	if got := Unwrap(raw); got != raw {
		t.Errorf("Unwrap() must not re-parse bare text with fences:\n%q", got)
	}
}

func TestUnwrap_ExtractsFencedPatch(t *testing.T) {
	raw := "Here is the change you asked for:\n\n" +
		"```\nDELETE-FILE: old.txt\n```\n\n" +
		"Let me know if you need anything else!\n"

	got := Unwrap(raw)
	doc, err := patch.Parse(got)
	if err != nil {
		t.Fatalf("Parse(Unwrap()) error = %v", err)
	}
	if len(doc.Ops) != 1 || doc.Ops[0].Type != patch.OpDelete || doc.Ops[0].Path != "old.txt" {
		t.Errorf("unexpected document: %+v", doc.Ops)
	}
}

func TestUnwrap_JoinsMultipleBlocks(t *testing.T) {
	raw := "First the new module:\n\n" +
		"```\nCREATE-FILE: a.txt\nCONTENT:\n  hello\n```\n\n" +
		"And this one prints it:\n\n" +
		"```text\nDELETE-FILE: b.txt\n```\n"

	got := Unwrap(raw)
	doc, err := patch.Parse(got)
	if err != nil {
		t.Fatalf("Parse(Unwrap()) error = %v", err)
	}
	if len(doc.Ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(doc.Ops))
	}
	if doc.Ops[0].Type != patch.OpCreate || doc.Ops[1].Type != patch.OpDelete {
		t.Errorf("unexpected operation order: %+v", doc.Ops)
	}
}

func TestUnwrap_DropsNonPatchBlocks(t *testing.T) {
	raw := "Run this first:\n\n" +
		"```sh\ngo test ./...\n```\n\n" +
		"Then apply:\n\n" +
		"```\nDELETE-FILE: stale.txt\n```\n"

	got := Unwrap(raw)
	if strings.Contains(got, "go test") {
		t.Errorf("Unwrap() kept a non-patch block:\n%q", got)
	}
	if !strings.Contains(got, "DELETE-FILE: stale.txt") {
		t.Errorf("Unwrap() dropped the patch block:\n%q", got)
	}
}

func TestUnwrap_NoPatchBlocksReturnsOriginal(t *testing.T) {
	raw := "Some prose with a code sample.\n\n```sh\nls -la\n```\n"
	if got := Unwrap(raw); got != raw {
		t.Errorf("Unwrap() = %q, want original text back", got)
	}
}
