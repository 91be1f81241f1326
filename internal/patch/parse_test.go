package patch

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_SingleOperations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Operation
	}{
		{
			name:  "create with dedented content",
			input: "CREATE-FILE: src/utils.py\nCONTENT:\n  def helper():\n      return 1\n",
			want: Operation{
				Type:    OpCreate,
				Path:    "src/utils.py",
				Content: []string{"def helper():", "    return 1"},
				Line:    1,
			},
		},
		{
			name:  "create with empty content",
			input: "CREATE-FILE: empty.txt\nCONTENT:\n",
			want: Operation{
				Type: OpCreate,
				Path: "empty.txt",
				Line: 1,
			},
		},
		{
			name:  "create preserves interior blank lines",
			input: "CREATE-FILE: a.py\nCONTENT:\n  x = 1\n\n  y = 2\n",
			want: Operation{
				Type:    OpCreate,
				Path:    "a.py",
				Content: []string{"x = 1", "", "y = 2"},
				Line:    1,
			},
		},
		{
			name:  "delete",
			input: "DELETE-FILE: scratch.txt\n",
			want: Operation{
				Type: OpDelete,
				Path: "scratch.txt",
				Line: 1,
			},
		},
		{
			name:  "rename",
			input: "RENAME-FILE: app/config.yml TO app/settings.yml\n",
			want: Operation{
				Type:    OpRename,
				SrcPath: "app/config.yml",
				DstPath: "app/settings.yml",
				Line:    1,
			},
		},
		{
			name:  "update with one hunk",
			input: "UPDATE-FILE: main.py\nHUNK:\nBEFORE:\n  def main():\nREMOVE:\n      print(\"a\")\nADD:\n      print(\"b\")\n",
			want: Operation{
				Type: OpUpdate,
				Path: "main.py",
				Hunks: []Hunk{
					{
						Before: []string{"def main():"},
						Remove: []string{"    print(\"a\")"},
						Add:    []string{"    print(\"b\")"},
						Line:   2,
					},
				},
				Line: 1,
			},
		},
		{
			name:  "update hunk with after context",
			input: "UPDATE-FILE: config.py\nHUNK:\nBEFORE:\n  PORT = 8080\nADD:\n  TIMEOUT = 30\nAFTER:\n  DEBUG = False\n",
			want: Operation{
				Type: OpUpdate,
				Path: "config.py",
				Hunks: []Hunk{
					{
						Before: []string{"PORT = 8080"},
						Add:    []string{"TIMEOUT = 30"},
						After:  []string{"DEBUG = False"},
						Line:   2,
					},
				},
				Line: 1,
			},
		},
		{
			name:  "update with two hunks",
			input: "UPDATE-FILE: config.py\nHUNK:\nBEFORE:\n  DEBUG = True\nREMOVE:\n  DEBUG = True\nADD:\n  DEBUG = False\nHUNK:\nBEFORE:\n  PORT = 8080\nREMOVE:\n  PORT = 8080\nADD:\n  PORT = 9090\n",
			want: Operation{
				Type: OpUpdate,
				Path: "config.py",
				Hunks: []Hunk{
					{
						Before: []string{"DEBUG = True"},
						Remove: []string{"DEBUG = True"},
						Add:    []string{"DEBUG = False"},
						Line:   2,
					},
					{
						Before: []string{"PORT = 8080"},
						Remove: []string{"PORT = 8080"},
						Add:    []string{"PORT = 9090"},
						Line:   9,
					},
				},
				Line: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(doc.Ops) != 1 {
				t.Fatalf("got %d operations, want 1", len(doc.Ops))
			}
			if !reflect.DeepEqual(doc.Ops[0], tt.want) {
				t.Errorf("operation mismatch\n got: %#v\nwant: %#v", doc.Ops[0], tt.want)
			}
		})
	}
}

func TestParse_MultiBlockDocument(t *testing.T) {
	input := strings.Join([]string{
		"",
		"CREATE-FILE: a.txt",
		"CONTENT:",
		"  hi",
		"",
		"---",
		"",
		"DELETE-FILE: b.txt",
		"",
		"---",
		"RENAME-FILE: c.txt TO d.txt",
		"",
	}, "\n")

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Ops) != 3 {
		t.Fatalf("got %d operations, want 3", len(doc.Ops))
	}

	wantTypes := []OpType{OpCreate, OpDelete, OpRename}
	wantLines := []int{2, 8, 11}
	for i, op := range doc.Ops {
		if op.Type != wantTypes[i] {
			t.Errorf("op %d type = %s, want %s", i, op.Type, wantTypes[i])
		}
		if op.Line != wantLines[i] {
			t.Errorf("op %d line = %d, want %d", i, op.Line, wantLines[i])
		}
	}

	if got := doc.Files(); !reflect.DeepEqual(got, []string{"a.txt", "b.txt", "c.txt", "d.txt"}) {
		t.Errorf("Files() = %v", got)
	}
}

func TestParse_Leniency(t *testing.T) {
	t.Run("whitespace around headers and markers", func(t *testing.T) {
		input := "  CREATE-FILE: x.txt  \n CONTENT: \n   hi\n"
		doc, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		op := doc.Ops[0]
		if op.Path != "x.txt" {
			t.Errorf("path = %q, want %q", op.Path, "x.txt")
		}
		if !reflect.DeepEqual(op.Content, []string{"hi"}) {
			t.Errorf("content = %v, want [hi]", op.Content)
		}
	})

	t.Run("crlf input", func(t *testing.T) {
		input := "CREATE-FILE: x.txt\r\nCONTENT:\r\n  hi\r\n"
		doc, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(doc.Ops[0].Content, []string{"hi"}) {
			t.Errorf("content = %v, want [hi]", doc.Ops[0].Content)
		}
	})

	t.Run("no space after header colon", func(t *testing.T) {
		doc, err := Parse("DELETE-FILE:scratch.txt\n")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Ops[0].Path != "scratch.txt" {
			t.Errorf("path = %q, want %q", doc.Ops[0].Path, "scratch.txt")
		}
	})

	t.Run("separator tolerates trailing whitespace", func(t *testing.T) {
		doc, err := Parse("DELETE-FILE: a.txt\n---  \nDELETE-FILE: b.txt\n")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(doc.Ops) != 2 {
			t.Fatalf("got %d operations, want 2", len(doc.Ops))
		}
	})
}

func TestParse_IndentedSeparatorIsContent(t *testing.T) {
	// Separators are only recognized at column zero. An indented `---`
	// is payload, so a patch can create a file with YAML front matter.
	input := strings.Join([]string{
		"CREATE-FILE: post.md",
		"CONTENT:",
		"  ---",
		"  title: hello",
		"  ---",
		"  body",
	}, "\n")

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(doc.Ops))
	}
	want := []string{"---", "title: hello", "---", "body"}
	if !reflect.DeepEqual(doc.Ops[0].Content, want) {
		t.Errorf("content = %q, want %q", doc.Ops[0].Content, want)
	}
}

func TestParse_IndentedSeparatorInHunk(t *testing.T) {
	input := strings.Join([]string{
		"UPDATE-FILE: post.md",
		"HUNK:",
		"BEFORE:",
		"  title: hello",
		"ADD:",
		"  ---",
	}, "\n")

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h := doc.Ops[0].Hunks[0]
	if !reflect.DeepEqual(h.Add, []string{"---"}) {
		t.Errorf("Add = %q, want [---]", h.Add)
	}
}

func TestParse_HunkBaseline(t *testing.T) {
	// All sections of a hunk share one baseline, set by the first payload
	// line, so deeper indentation in REMOVE/ADD survives relative to BEFORE.
	input := strings.Join([]string{
		"UPDATE-FILE: calc.py",
		"HUNK:",
		"BEFORE:",
		"    def compute(x):",
		"REMOVE:",
		"        return x + 1",
		"ADD:",
		"        return x + 2",
	}, "\n")

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	h := doc.Ops[0].Hunks[0]
	if !reflect.DeepEqual(h.Before, []string{"def compute(x):"}) {
		t.Errorf("Before = %q", h.Before)
	}
	if !reflect.DeepEqual(h.Remove, []string{"    return x + 1"}) {
		t.Errorf("Remove = %q", h.Remove)
	}
	if !reflect.DeepEqual(h.Add, []string{"    return x + 2"}) {
		t.Errorf("Add = %q", h.Add)
	}
}

func TestParse_ShallowLineKeepsText(t *testing.T) {
	// A payload line indented shallower than the baseline loses only the
	// whitespace it has; its text is never truncated.
	input := "CREATE-FILE: x.txt\nCONTENT:\n    deep\n  shallow\n"
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(doc.Ops[0].Content, []string{"deep", "shallow"}) {
		t.Errorf("content = %q", doc.Ops[0].Content)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLine   int
		wantReason string
	}{
		{
			name:       "empty document",
			input:      "",
			wantLine:   1,
			wantReason: "no file operations",
		},
		{
			name:       "separator only document",
			input:      "\n---\n\n",
			wantLine:   1,
			wantReason: "no file operations",
		},
		{
			name:       "unknown header",
			input:      "PATCH-FILE: x.txt\n",
			wantLine:   1,
			wantReason: "unrecognized block header",
		},
		{
			name:       "lowercase header keyword",
			input:      "create-file: x.txt\n",
			wantLine:   1,
			wantReason: "unrecognized block header",
		},
		{
			name:       "create missing path",
			input:      "CREATE-FILE:\nCONTENT:\n  hi\n",
			wantLine:   1,
			wantReason: "missing path",
		},
		{
			name:       "create missing content marker",
			input:      "CREATE-FILE: x.txt\n  body\n",
			wantLine:   2,
			wantReason: "CONTENT: marker",
		},
		{
			name:       "delete with trailing junk",
			input:      "DELETE-FILE: a.txt\nstray\n",
			wantLine:   2,
			wantReason: "unexpected line",
		},
		{
			name:       "rename missing separator",
			input:      "RENAME-FILE: a.txt\n",
			wantLine:   1,
			wantReason: "missing \" TO \" separator",
		},
		{
			name:       "rename missing source",
			input:      "RENAME-FILE:  TO b.txt\n",
			wantLine:   1,
			wantReason: "both a source and a destination",
		},
		{
			name:       "update with zero hunks",
			input:      "UPDATE-FILE: f.py\n",
			wantLine:   1,
			wantReason: "no hunks",
		},
		{
			name:       "update with junk instead of hunk",
			input:      "UPDATE-FILE: f.py\nhunk:\nBEFORE:\n  x\n",
			wantLine:   2,
			wantReason: "expected HUNK:",
		},
		{
			name:       "hunk missing before section",
			input:      "UPDATE-FILE: f.py\nHUNK:\nREMOVE:\n  x\n",
			wantLine:   2,
			wantReason: "must begin with a BEFORE:",
		},
		{
			name:       "hunk with empty before section",
			input:      "UPDATE-FILE: f.py\nHUNK:\nBEFORE:\nREMOVE:\n  x\n",
			wantLine:   3,
			wantReason: "BEFORE: section has no lines",
		},
		{
			name:       "hunk with neither remove nor add",
			input:      "UPDATE-FILE: f.py\nHUNK:\nBEFORE:\n  x\n",
			wantLine:   2,
			wantReason: "at least one REMOVE: or ADD:",
		},
		{
			name:       "hunk sections out of order",
			input:      "UPDATE-FILE: f.py\nHUNK:\nBEFORE:\n  a\nADD:\n  b\nREMOVE:\n  c\n",
			wantLine:   7,
			wantReason: "unexpected REMOVE: section",
		},
		{
			name:       "duplicate section",
			input:      "UPDATE-FILE: f.py\nHUNK:\nBEFORE:\n  a\nADD:\n  b\nADD:\n  c\n",
			wantLine:   7,
			wantReason: "unexpected ADD: section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("Parse should have failed")
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error is %T, want *ParseError", err)
			}
			if parseErr.Line != tt.wantLine {
				t.Errorf("error line = %d, want %d (reason: %s)", parseErr.Line, tt.wantLine, parseErr.Reason)
			}
			if !strings.Contains(parseErr.Reason, tt.wantReason) {
				t.Errorf("error reason %q does not contain %q", parseErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Line: 7, Reason: "unrecognized block header \"NOPE\""}
	want := "parse error at line 7: unrecognized block header \"NOPE\""
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
