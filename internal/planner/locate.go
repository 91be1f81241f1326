package planner

import (
	"github.com/llmpatch/llmps/internal/patch"
)

// nearestContextLines caps the snippet reported with a failed anchor.
const nearestContextLines = 3

// Locate finds the index at which a hunk's BEFORE context starts in the
// buffer. Matching is exact, contiguous, and first-occurrence: the anchor
// is Before immediately followed by Remove, and the first position where
// both match wins. When the hunk carries AFTER context, the lines
// immediately following the edit must also match at that first position;
// a mismatch there fails the whole location rather than resuming the
// search, since it usually means the anchor hit the wrong repeated
// occurrence.
func Locate(buffer []string, h patch.Hunk) (int, error) {
	anchor := make([]string, 0, len(h.Before)+len(h.Remove))
	anchor = append(anchor, h.Before...)
	anchor = append(anchor, h.Remove...)

	for start := 0; start+len(anchor) <= len(buffer); start++ {
		if !matchAt(buffer, start, anchor) {
			continue
		}
		if len(h.After) > 0 {
			afterStart := start + len(anchor)
			if !matchAt(buffer, afterStart, h.After) {
				return 0, &AnchorError{
					Reason:         "context matched but AFTER lines differ",
					NearestContext: snippet(buffer, afterStart),
				}
			}
		}
		return start, nil
	}

	return 0, &AnchorError{
		Reason:         "context not found",
		NearestContext: snippet(buffer, bestPartialMatch(buffer, anchor)),
	}
}

// applyHunk locates a hunk and splices its edit into the buffer, returning
// the new buffer. The input buffer is not modified.
func applyHunk(buffer []string, h patch.Hunk) ([]string, error) {
	start, err := Locate(buffer, h)
	if err != nil {
		return nil, err
	}

	editPoint := start + len(h.Before)
	out := make([]string, 0, len(buffer)-len(h.Remove)+len(h.Add))
	out = append(out, buffer[:editPoint]...)
	out = append(out, h.Add...)
	out = append(out, buffer[editPoint+len(h.Remove):]...)
	return out, nil
}

// matchAt reports whether want appears in buffer starting at start.
func matchAt(buffer []string, start int, want []string) bool {
	if start < 0 || start+len(want) > len(buffer) {
		return false
	}
	for i, line := range want {
		if buffer[start+i] != line {
			return false
		}
	}
	return true
}

// bestPartialMatch returns the position where the longest prefix of the
// anchor matches, preferring the earliest such position.
func bestPartialMatch(buffer []string, anchor []string) int {
	best, bestLen := 0, 0
	for start := 0; start < len(buffer); start++ {
		n := 0
		for n < len(anchor) && start+n < len(buffer) && buffer[start+n] == anchor[n] {
			n++
		}
		if n > bestLen {
			best, bestLen = start, n
		}
	}
	return best
}

// snippet returns up to nearestContextLines lines of buffer starting at pos.
func snippet(buffer []string, pos int) []string {
	if pos < 0 || pos >= len(buffer) {
		return nil
	}
	end := pos + nearestContextLines
	if end > len(buffer) {
		end = len(buffer)
	}
	out := make([]string, end-pos)
	copy(out, buffer[pos:end])
	return out
}
