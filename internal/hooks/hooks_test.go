package hooks

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/notion"
)

func TestRegisterRejectsIncompleteHooks(t *testing.T) {
	s := NewSet()
	require.Error(t, s.Register(BlockModifier{Name: "x"}))
	require.Error(t, s.Register(BlockTransform{Name: "x", BlockType: "code"}))
	require.Error(t, s.Register(LinkModifier{Name: "x"}))
	require.Error(t, s.Register(RegexModification{Name: "x"}))
}

func TestTransformFirstRegisteredWins(t *testing.T) {
	s := NewSet()
	render := func(name string) func(context.Context, BlockRenderer, notion.Block) (string, error) {
		return func(context.Context, BlockRenderer, notion.Block) (string, error) { return name, nil }
	}
	require.NoError(t, s.Register(
		BlockTransform{Name: "first", BlockType: "code", Render: render("first")},
		BlockTransform{Name: "second", BlockType: "code", Render: render("second")},
	))
	tr, ok := s.Transform("code")
	require.True(t, ok)
	assert.Equal(t, "first", tr.Name)
	_, ok = s.Transform("quote")
	assert.False(t, ok)
}

func TestApplyBlockModifiersInOrder(t *testing.T) {
	s := NewSet()
	var seen []string
	require.NoError(t, s.Register(
		BlockModifier{Name: "a", Modify: func(b *notion.Block) { seen = append(seen, "a:"+b.ID) }},
		BlockModifier{Name: "b", Modify: func(b *notion.Block) { seen = append(seen, "b:"+b.ID) }},
	))
	s.ApplyBlockModifiers([]notion.Block{{ID: "1"}, {ID: "2"}})
	assert.Equal(t, []string{"a:1", "b:1", "a:2", "b:2"}, seen)
}

func fencedRanges(body []byte) [][2]int {
	var out [][2]int
	s := string(body)
	start := 0
	for {
		i := strings.Index(s[start:], "```")
		if i < 0 {
			return out
		}
		j := strings.Index(s[start+i+3:], "```")
		if j < 0 {
			return out
		}
		out = append(out, [2]int{start + i, start + i + 3 + j + 3})
		start = start + i + 3 + j + 3
	}
}

func TestApplyRegexSkipsCodeUnlessIncluded(t *testing.T) {
	hooksFromCfg, err := RegexFromConfig([]config.RegexHookConfig{
		{Name: "yt", Pattern: `\[video\]\(([^)]+)\)`, Replacement: `<Video src="$1" />`, Imports: []string{"import Video from '@site/src/Video';"}},
	})
	require.NoError(t, err)
	s := NewSet()
	require.NoError(t, s.Register(hooksFromCfg...))

	body := "[video](a.mp4)\n\n```\n[video](b.mp4)\n```\n"
	out, imports := s.ApplyRegex(body, fencedRanges, slog.Default())
	assert.Equal(t, "<Video src=\"a.mp4\" />\n\n```\n[video](b.mp4)\n```\n", out)
	assert.Equal(t, []string{"import Video from '@site/src/Video';"}, imports)

	s2 := NewSet()
	require.NoError(t, s2.Register(RegexModification{Name: "all", Pattern: regexp.MustCompile(`b\.mp4`), Replacement: "c.mp4", IncludeCodeBlocks: true}))
	out, imports = s2.ApplyRegex(body, fencedRanges, slog.Default())
	assert.Contains(t, out, "[video](c.mp4)")
	assert.Empty(t, imports)
}

func TestApplyRegexNoMatchAddsNoImports(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Register(RegexModification{Name: "n", Pattern: regexp.MustCompile(`zzz`), Imports: []string{"x"}}))
	out, imports := s.ApplyRegex("hello", nil, slog.Default())
	assert.Equal(t, "hello", out)
	assert.Empty(t, imports)
}

func TestAnnotationSpacing(t *testing.T) {
	b := notion.Block{Type: notion.BlockParagraph, Paragraph: &notion.TextBlock{RichText: []notion.RichText{
		{Type: "text", PlainText: "see ", Text: &notion.TextContent{Content: "see "}},
		{Type: "text", PlainText: " bold ", Annotations: notion.Annotations{Bold: true}, Text: &notion.TextContent{Content: " bold "}},
		{Type: "text", PlainText: "end"},
	}}}
	AnnotationSpacing().Modify(&b)

	rt := b.Paragraph.RichText
	require.Len(t, rt, 5)
	assert.Equal(t, " ", rt[1].PlainText)
	assert.Equal(t, "bold", rt[2].PlainText)
	assert.Equal(t, "bold", rt[2].Text.Content)
	assert.True(t, rt[2].Annotations.Bold)
	assert.Equal(t, " ", rt[3].PlainText)
	assert.False(t, rt[3].Annotations.Bold)
}
