package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/llmpatch/llmps/internal/patch"
)

func TestLocate(t *testing.T) {
	buffer := []string{
		"import os",
		"",
		"def main():",
		"    message = \"Hello, World!\"",
		"    print(message)",
		"",
		"main()",
	}

	tests := []struct {
		name      string
		hunk      patch.Hunk
		wantStart int
		wantError bool
	}{
		{
			name: "before plus remove anchor",
			hunk: patch.Hunk{
				Before: []string{"def main():"},
				Remove: []string{"    message = \"Hello, World!\""},
				Add:    []string{"    message = \"Greetings!\""},
			},
			wantStart: 2,
		},
		{
			name: "insertion matches before only",
			hunk: patch.Hunk{
				Before: []string{"import os"},
				Add:    []string{"import sys"},
			},
			wantStart: 0,
		},
		{
			name: "after context validates",
			hunk: patch.Hunk{
				Before: []string{"def main():"},
				Remove: []string{"    message = \"Hello, World!\""},
				Add:    []string{"    message = \"Greetings!\""},
				After:  []string{"    print(message)"},
			},
			wantStart: 2,
		},
		{
			name: "after mismatch fails even though anchor matched",
			hunk: patch.Hunk{
				Before: []string{"def main():"},
				Remove: []string{"    message = \"Hello, World!\""},
				Add:    []string{"    message = \"Greetings!\""},
				After:  []string{"    log(message)"},
			},
			wantError: true,
		},
		{
			name: "context not found",
			hunk: patch.Hunk{
				Before: []string{"def missing():"},
				Add:    []string{"    pass"},
			},
			wantError: true,
		},
		{
			name: "multi-line before context",
			hunk: patch.Hunk{
				Before: []string{"    message = \"Hello, World!\"", "    print(message)"},
				Add:    []string{"    return 0"},
			},
			wantStart: 3,
		},
		{
			name: "anchor longer than buffer",
			hunk: patch.Hunk{
				Before: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
				Remove: []string{"i"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := Locate(buffer, tt.hunk)
			if tt.wantError {
				if err == nil {
					t.Fatal("Locate should have failed")
				}
				var anchorErr *AnchorError
				if !errors.As(err, &anchorErr) {
					t.Fatalf("error is %T, want *AnchorError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate failed: %v", err)
			}
			if start != tt.wantStart {
				t.Errorf("start = %d, want %d", start, tt.wantStart)
			}
		})
	}
}

func TestLocate_FirstOccurrenceWins(t *testing.T) {
	// The same anchor appears twice; the first occurrence is always chosen,
	// deterministically across repeated runs.
	buffer := []string{
		"setup()",
		"value = 1",
		"teardown()",
		"other()",
		"setup()",
		"value = 1",
		"teardown()",
	}
	hunk := patch.Hunk{
		Before: []string{"setup()"},
		Remove: []string{"value = 1"},
		Add:    []string{"value = 2"},
	}

	for i := 0; i < 10; i++ {
		start, err := Locate(buffer, hunk)
		if err != nil {
			t.Fatalf("Locate failed: %v", err)
		}
		if start != 0 {
			t.Fatalf("run %d: start = %d, want 0", i, start)
		}
	}
}

func TestLocate_AfterDisambiguationFailure(t *testing.T) {
	// The AFTER context belongs to the second occurrence, but matching is
	// first-occurrence: the mismatch surfaces as an error rather than a
	// silent edit at the wrong site.
	buffer := []string{
		"setup()",
		"value = 1",
		"first()",
		"setup()",
		"value = 1",
		"second()",
	}
	hunk := patch.Hunk{
		Before: []string{"setup()"},
		Remove: []string{"value = 1"},
		Add:    []string{"value = 2"},
		After:  []string{"second()"},
	}

	_, err := Locate(buffer, hunk)
	var anchorErr *AnchorError
	if !errors.As(err, &anchorErr) {
		t.Fatalf("error is %T, want *AnchorError", err)
	}
	if len(anchorErr.NearestContext) == 0 {
		t.Error("AnchorError should carry nearest context")
	}
}

func TestLocate_NearestContext(t *testing.T) {
	buffer := []string{
		"alpha",
		"beta",
		"gamma",
		"delta",
	}
	hunk := patch.Hunk{
		Before: []string{"beta", "gamma"},
		Remove: []string{"epsilon"},
	}

	_, err := Locate(buffer, hunk)
	var anchorErr *AnchorError
	if !errors.As(err, &anchorErr) {
		t.Fatalf("error is %T, want *AnchorError", err)
	}
	// The best partial match starts at "beta".
	if !reflect.DeepEqual(anchorErr.NearestContext, []string{"beta", "gamma", "delta"}) {
		t.Errorf("NearestContext = %q", anchorErr.NearestContext)
	}
}

func TestApplyHunk(t *testing.T) {
	t.Run("replace in place", func(t *testing.T) {
		buffer := []string{"a", "b", "c"}
		out, err := applyHunk(buffer, patch.Hunk{
			Before: []string{"a"},
			Remove: []string{"b"},
			Add:    []string{"B"},
		})
		if err != nil {
			t.Fatalf("applyHunk failed: %v", err)
		}
		if !reflect.DeepEqual(out, []string{"a", "B", "c"}) {
			t.Errorf("out = %q", out)
		}
		if !reflect.DeepEqual(buffer, []string{"a", "b", "c"}) {
			t.Error("input buffer was modified")
		}
	})

	t.Run("pure insertion", func(t *testing.T) {
		out, err := applyHunk([]string{"a", "c"}, patch.Hunk{
			Before: []string{"a"},
			Add:    []string{"b"},
		})
		if err != nil {
			t.Fatalf("applyHunk failed: %v", err)
		}
		if !reflect.DeepEqual(out, []string{"a", "b", "c"}) {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("pure deletion", func(t *testing.T) {
		out, err := applyHunk([]string{"a", "b", "c"}, patch.Hunk{
			Before: []string{"a"},
			Remove: []string{"b"},
		})
		if err != nil {
			t.Fatalf("applyHunk failed: %v", err)
		}
		if !reflect.DeepEqual(out, []string{"a", "c"}) {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("multi-line add grows buffer", func(t *testing.T) {
		out, err := applyHunk([]string{"start", "end"}, patch.Hunk{
			Before: []string{"start"},
			Add:    []string{"one", "two", "three"},
		})
		if err != nil {
			t.Fatalf("applyHunk failed: %v", err)
		}
		if !reflect.DeepEqual(out, []string{"start", "one", "two", "three", "end"}) {
			t.Errorf("out = %q", out)
		}
	})
}

func TestApplyHunk_Sequential(t *testing.T) {
	// Applying two hunks one at a time equals applying them in sequence:
	// the second hunk matches against the result of the first.
	buffer := []string{
		"DEBUG = True",
		"HOST = \"localhost\"",
		"PORT = 8080",
	}

	h1 := patch.Hunk{
		Before: []string{"DEBUG = True"},
		Remove: []string{"HOST = \"localhost\""},
		Add:    []string{"HOST = \"0.0.0.0\"", "EXTRA = 1"},
	}
	h2 := patch.Hunk{
		Before: []string{"EXTRA = 1"},
		Remove: []string{"PORT = 8080"},
		Add:    []string{"PORT = 9090"},
	}

	step1, err := applyHunk(buffer, h1)
	if err != nil {
		t.Fatalf("first hunk failed: %v", err)
	}
	step2, err := applyHunk(step1, h2)
	if err != nil {
		t.Fatalf("second hunk failed: %v", err)
	}

	want := []string{
		"DEBUG = True",
		"HOST = \"0.0.0.0\"",
		"EXTRA = 1",
		"PORT = 9090",
	}
	if !reflect.DeepEqual(step2, want) {
		t.Errorf("result = %q, want %q", step2, want)
	}
}
