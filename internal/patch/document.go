// Package patch defines the patch document model and its parser.
//
// A patch document is a line-oriented plain-text format describing an
// ordered set of file operations. Operation blocks are separated by lines
// containing only `---`, each block starts with an operation header, and
// update blocks carry one or more context-anchored hunks. Positioning is
// always by textual context, never by line numbers, so documents stay
// valid as surrounding code drifts.
//
// Key features:
//   - Four operation kinds: create, delete, update, rename
//   - Hunks with before/remove/add/after context sections
//   - Baseline indentation stripping for embedded file content
//   - Exact case-sensitive keywords, lenient surrounding whitespace
package patch

// OpType identifies the kind of a file operation. It is a closed set: the
// parser only ever produces the four constants below, and consumers switch
// on them exhaustively.
type OpType string

// Operation kinds.
const (
	OpCreate OpType = "create-file"
	OpDelete OpType = "delete-file"
	OpUpdate OpType = "update-file"
	OpRename OpType = "rename-file"
)

// Hunk is one localized edit within an update operation. The edit point is
// found by matching Before (and Remove, when present) against the target
// buffer; Remove lines are deleted there, Add lines inserted, and After
// lines validate what follows the edit.
type Hunk struct {
	// Before is the anchor context preceding the edit point (at least one line).
	Before []string

	// Remove is the lines deleted at the edit point (possibly empty).
	Remove []string

	// Add is the lines inserted at the edit point (possibly empty).
	Add []string

	// After is optional context validated immediately after the edit.
	After []string

	// Line is the 1-based document line of the HUNK: marker.
	Line int
}

// Operation is a single file operation in a patch document.
type Operation struct {
	// Type is the operation kind.
	Type OpType

	// Path is the target path for create, delete, and update operations.
	Path string

	// SrcPath and DstPath are the endpoints of a rename operation.
	SrcPath string
	DstPath string

	// Content is the full file body for create operations.
	Content []string

	// Hunks is the ordered edit list for update operations.
	Hunks []Hunk

	// Line is the 1-based document line of the operation header.
	Line int
}

// Paths returns every path the operation touches, in source order.
func (op Operation) Paths() []string {
	if op.Type == OpRename {
		return []string{op.SrcPath, op.DstPath}
	}
	return []string{op.Path}
}

// Describe returns a short human-readable summary of the operation.
func (op Operation) Describe() string {
	if op.Type == OpRename {
		return string(op.Type) + " " + op.SrcPath + " -> " + op.DstPath
	}
	return string(op.Type) + " " + op.Path
}

// Document is an ordered sequence of file operations parsed from one
// patch text. Order is significant: operations verify and commit in
// document order.
type Document struct {
	// Ops is the ordered list of file operations
	Ops []Operation
}

// AddOperation adds an operation to the document.
func (d *Document) AddOperation(op Operation) {
	d.Ops = append(d.Ops, op)
}

// Files returns the distinct paths touched by the document, in first-use order.
func (d *Document) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, op := range d.Ops {
		for _, p := range op.Paths() {
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}
	return files
}
