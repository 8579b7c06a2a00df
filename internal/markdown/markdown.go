package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseBody parses a markdown body (front matter already removed) into a goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(body))
}

// CodeRanges returns the byte ranges [start, end) of fenced and indented code
// blocks in body, fence lines included.
func CodeRanges(body []byte) [][2]int {
	root := ParseBody(body)
	var out [][2]int
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			if r, ok := fencedRange(body, node); ok {
				out = append(out, r)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeBlock:
			lines := node.Lines()
			if lines.Len() > 0 {
				out = append(out, [2]int{lines.At(0).Start, lines.At(lines.Len() - 1).Stop})
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return out
}

// fencedRange widens the content lines of a fenced block to its fence lines.
func fencedRange(body []byte, node *gmast.FencedCodeBlock) ([2]int, bool) {
	lines := node.Lines()
	var start, stop int
	switch {
	case lines.Len() > 0:
		start, stop = lines.At(0).Start, lines.At(lines.Len()-1).Stop
	case node.Info != nil:
		start = node.Info.Segment.Stop
		stop = start
	default:
		return [2]int{}, false
	}
	// opening fence: the line before the first content line
	openEnd := start
	if openEnd > 0 && body[openEnd-1] == '\n' {
		openEnd--
	}
	open := bytes.LastIndexByte(body[:openEnd], '\n') + 1
	// closing fence: the line after the last content line
	end := stop
	if end < len(body) && end > 0 && body[end-1] != '\n' {
		if nl := bytes.IndexByte(body[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(body)
		}
	}
	if nl := bytes.IndexByte(body[end:], '\n'); nl >= 0 {
		end += nl
	} else {
		end = len(body)
	}
	return [2]int{open, end}, true
}
