package patch

import "testing"

func TestOperationKinds(t *testing.T) {
	tests := []struct {
		name         string
		op           Operation
		wantPaths    []string
		wantDescribe string
	}{
		{
			name:         "create",
			op:           Operation{Type: OpCreate, Path: "a.txt"},
			wantPaths:    []string{"a.txt"},
			wantDescribe: "create-file a.txt",
		},
		{
			name:         "rename touches both endpoints",
			op:           Operation{Type: OpRename, SrcPath: "old.txt", DstPath: "new.txt"},
			wantPaths:    []string{"old.txt", "new.txt"},
			wantDescribe: "rename-file old.txt -> new.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op.Paths()
			if len(got) != len(tt.wantPaths) {
				t.Fatalf("Paths() = %v, want %v", got, tt.wantPaths)
			}
			for i := range got {
				if got[i] != tt.wantPaths[i] {
					t.Errorf("Paths()[%d] = %q, want %q", i, got[i], tt.wantPaths[i])
				}
			}
			if d := tt.op.Describe(); d != tt.wantDescribe {
				t.Errorf("Describe() = %q, want %q", d, tt.wantDescribe)
			}
		})
	}
}

// The operation kind is a defined type, not a bare string, so a kind can
// only reach an Operation through the four constants or an explicit
// conversion.
func TestOpTypeIsDefined(t *testing.T) {
	var k OpType = OpUpdate
	if string(k) != "update-file" {
		t.Errorf("OpUpdate = %q, want %q", string(k), "update-file")
	}
	op := Operation{Type: k, Path: "x.go"}
	if op.Type != OpUpdate {
		t.Errorf("Type = %v, want OpUpdate", op.Type)
	}
}
