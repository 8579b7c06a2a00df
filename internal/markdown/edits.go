package markdown

import (
	"fmt"
	"slices"
	"strings"
)

// Edit replaces src[Start:End] with Replacement. End is exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ApplyEdits applies non-overlapping edits, given as offsets into the original
// src, and returns the result.
func ApplyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int { return a.Start - b.Start })

	var sb strings.Builder
	sb.Grow(len(src))
	pos := 0
	for i, e := range sorted {
		if e.Start < pos || e.End < e.Start || e.End > len(src) {
			return "", fmt.Errorf("invalid edit[%d] [%d,%d): overlapping or out of range", i, e.Start, e.End)
		}
		sb.WriteString(src[pos:e.Start])
		sb.WriteString(e.Replacement)
		pos = e.End
	}
	sb.WriteString(src[pos:])
	return sb.String(), nil
}
