package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindInlineLinks(t *testing.T) {
	src := "See [intro](/abc123#part) and ![pic](img.png), [bookmark](https://x.io/a_b).\n[not a link] (x)"
	links := FindInlineLinks(src)
	require.Len(t, links, 3)

	assert.Equal(t, "intro", links[0].Label)
	assert.Equal(t, "/abc123#part", links[0].Destination)
	assert.Equal(t, "[intro](/abc123#part)", links[0].Text(src))
	assert.False(t, links[0].Image)

	assert.True(t, links[1].Image)
	assert.Equal(t, "img.png", links[1].Destination)

	assert.Equal(t, "bookmark", links[2].Label)
	assert.Equal(t, "https://x.io/a_b", links[2].Destination)
}

func TestFindInlineLinks_EmptyLabelAndBlankLine(t *testing.T) {
	links := FindInlineLinks("[](/x) [a\n\nb](/y)")
	require.Len(t, links, 1)
	assert.Equal(t, "", links[0].Label)
	assert.Equal(t, "/x", links[0].Destination)
}

func TestApplyEdits(t *testing.T) {
	src := "hello brave new world"
	out, err := ApplyEdits(src, []Edit{
		{Start: 16, End: 21, Replacement: "gophers"},
		{Start: 0, End: 5, Replacement: "goodbye"},
	})
	require.NoError(t, err)
	assert.Equal(t, "goodbye brave new gophers", out)

	_, err = ApplyEdits(src, []Edit{{Start: 0, End: 6}, {Start: 5, End: 8}})
	require.Error(t, err)
	_, err = ApplyEdits(src, []Edit{{Start: 0, End: 100}})
	require.Error(t, err)
}

func TestCodeRanges(t *testing.T) {
	src := "before [a](b)\n\n```go\n[x](y)\n```\n\nafter\n"
	ranges := CodeRanges([]byte(src))
	require.Len(t, ranges, 1)
	block := src[ranges[0][0]:ranges[0][1]]
	assert.Equal(t, "```go\n[x](y)\n```", block)
}

func TestCodeRanges_NoCode(t *testing.T) {
	assert.Empty(t, CodeRanges([]byte("plain *text*\n")))
}
