package markdown

// InlineLink is one "[label](destination)" occurrence in a markdown string.
// Start and End are byte offsets of the whole construct, End exclusive; for
// images Start points at the '['.
type InlineLink struct {
	Start       int
	End         int
	Label       string
	Destination string
	Image       bool
}

// Text returns the link as written.
func (l InlineLink) Text(src string) string { return src[l.Start:l.End] }

// FindInlineLinks scans content for inline links without regular expressions.
// Labels may not span a blank line; destinations may not contain spaces or newlines.
func FindInlineLinks(content string) []InlineLink {
	var out []InlineLink
	i := 0
	for i < len(content) {
		if content[i] != '[' {
			i++
			continue
		}
		closeBracket := findClosingBracket(content, i+1)
		if closeBracket == -1 {
			i++
			continue
		}
		if closeBracket+1 >= len(content) || content[closeBracket+1] != '(' {
			i++
			continue
		}
		closeParen := findClosingParen(content, closeBracket+2)
		if closeParen == -1 {
			i = closeBracket + 1
			continue
		}
		out = append(out, InlineLink{
			Start:       i,
			End:         closeParen + 1,
			Label:       content[i+1 : closeBracket],
			Destination: content[closeBracket+2 : closeParen],
			Image:       i > 0 && content[i-1] == '!',
		})
		i = closeParen + 1
	}
	return out
}

// findClosingBracket finds the first ']' after start, giving up at a blank line
// or a nested '['.
func findClosingBracket(content string, start int) int {
	for i := start; i < len(content); i++ {
		switch content[i] {
		case ']':
			return i
		case '[':
			return -1
		case '\n':
			if i+1 < len(content) && content[i+1] == '\n' {
				return -1
			}
		}
	}
	return -1
}

// findClosingParen finds the next ')' on the same line.
func findClosingParen(content string, start int) int {
	for i := start; i < len(content); i++ {
		switch content[i] {
		case ')':
			return i
		case '\n', ' ':
			return -1
		}
	}
	return -1
}
