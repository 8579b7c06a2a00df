package outline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnotion/internal/layout"
	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

type fakeSource struct {
	meta          map[string]*notion.PageMetadata
	children      map[string][]notion.Block
	childrenCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{meta: map[string]*notion.PageMetadata{}, children: map[string][]notion.Block{}, childrenCalls: map[string]int{}}
}

func (f *fakeSource) page(id, parentType, title string, blocks ...notion.Block) {
	key := "title"
	if parentType == notion.ParentDatabase {
		key = "Name"
	}
	f.meta[id] = &notion.PageMetadata{ID: id, Parent: notion.Parent{Type: parentType}, Properties: map[string]notion.Property{
		key: {Type: "title", Title: []notion.RichText{{Type: "text", PlainText: title}}},
	}}
	f.children[id] = blocks
}

// FetchMetadata accepts ids with or without dashes, like the remote API.
func (f *fakeSource) FetchMetadata(_ context.Context, id string) (*notion.PageMetadata, error) {
	if m, ok := f.meta[id]; ok {
		return m, nil
	}
	for key, m := range f.meta {
		if page.CompactID(key) == page.CompactID(id) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no page %s", id)
}

func (f *fakeSource) FetchChildren(_ context.Context, id string) ([]notion.Block, error) {
	f.childrenCalls[id]++
	return f.children[id], nil
}

func textBlock(s string) notion.Block {
	return notion.Block{ID: "t-" + s, Type: notion.BlockParagraph, Paragraph: &notion.TextBlock{RichText: []notion.RichText{{Type: "text", PlainText: s}}}}
}

func childBlock(id string) notion.Block {
	return notion.Block{ID: id, Type: notion.BlockChildPage, ChildPage: &notion.ChildPage{Title: id}}
}

func linkBlock(target string) notion.Block {
	return notion.Block{ID: "l-" + target, Type: notion.BlockParagraph, Paragraph: &notion.TextBlock{RichText: []notion.RichText{
		{Type: "text", PlainText: " "},
		{Type: "mention", PlainText: target, Mention: &notion.Mention{Type: "page", Page: &notion.ObjectRef{ID: target}}},
	}}}
}

func emptyParagraph() notion.Block {
	return notion.Block{ID: "empty", Type: notion.BlockParagraph, Paragraph: &notion.TextBlock{}}
}

func newWalker(src *fakeSource) (*Walker, *page.Registry, *layout.Strategy) {
	reg := page.NewRegistry()
	strat := layout.New(filepath.FromSlash("/out"), nil)
	return NewWalker(src, reg, strat, "root"), reg, strat
}

func TestContentInfo(t *testing.T) {
	info := ContentInfo([]notion.Block{childBlock("c1"), emptyParagraph(), linkBlock("l1"), childBlock("c2")})
	assert.Equal(t, []Ref{{"c1", 0}, {"c2", 3}}, info.Children)
	assert.Equal(t, []Ref{{"l1", 2}}, info.Links)
	assert.False(t, info.HasContent)

	two := notion.Block{Type: notion.BlockParagraph, Paragraph: &notion.TextBlock{RichText: []notion.RichText{
		{Type: "mention", Mention: &notion.Mention{Type: "page", Page: &notion.ObjectRef{ID: "a"}}},
		{Type: "mention", Mention: &notion.Mention{Type: "page", Page: &notion.ObjectRef{ID: "b"}}},
	}}}
	info = ContentInfo([]notion.Block{two})
	assert.Empty(t, info.Links)
	assert.False(t, info.HasContent)

	withText := linkBlock("x")
	withText.Paragraph.RichText = append(withText.Paragraph.RichText, notion.RichText{Type: "text", PlainText: "see this"})
	info = ContentInfo([]notion.Block{withText})
	assert.Empty(t, info.Links)
	assert.True(t, info.HasContent)

	info = ContentInfo([]notion.Block{{Type: notion.BlockDivider}})
	assert.True(t, info.HasContent)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		facts Facts
		want  Rule
	}{
		{Facts{IsRoot: true, IsTopLevelCustom: true, HasContent: true, ChildCount: 1}, RuleRoot},
		{Facts{IsTopLevelCustom: true, HasContent: true, ChildCount: 2, LinkCount: 1}, RuleCustom},
		{Facts{HasContent: true, LinkCount: 1}, RuleCategoryIndex},
		{Facts{HasContent: true}, RuleContent},
		{Facts{ChildCount: 2}, RuleLevel},
		{Facts{}, RuleEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.facts))
			assert.Equal(t, Classify(tt.facts), Classify(tt.facts))
		})
	}
}

func TestWalk_SingleContentChild(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("a"))
	src.page("a", notion.ParentPage, "A", textBlock("hello"))

	w, reg, strat := newWalker(src)
	require.NoError(t, w.Run(context.Background()))

	require.Equal(t, 1, reg.Len())
	a := reg.All()[0]
	assert.Equal(t, page.Content, a.Subtype())
	assert.Equal(t, "", a.LayoutContext)
	assert.Empty(t, strat.Levels(), "outline container must not open a level")
	assert.True(t, reg.Frozen())
	assert.Equal(t, 1, src.childrenCalls["a"])
}

func TestWalk_LevelWithoutIndex(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("b"))
	src.page("b", notion.ParentPage, "B", emptyParagraph(), childBlock("b1"), childBlock("b2"))
	src.page("b1", notion.ParentPage, "B1", textBlock("one"))
	src.page("b2", notion.ParentPage, "B2", textBlock("two"))

	w, reg, strat := newWalker(src)
	require.NoError(t, w.Run(context.Background()))

	pages := reg.All()
	require.Len(t, pages, 2)
	assert.Equal(t, "b1", pages[0].ID)
	assert.Equal(t, "b2", pages[1].ID)
	levels := strat.Levels()
	require.Len(t, levels, 1)
	assert.Equal(t, "/000-B", levels[0].Context)
	for _, p := range pages {
		assert.Equal(t, "/000-B", p.LayoutContext)
	}
	assert.NotEqual(t, pages[0].Order, pages[1].Order)
}

func TestWalk_CategoryIndexWithLink(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("c"))
	src.page("c", notion.ParentPage, "C", textBlock("intro"), linkBlock("db1"))
	src.page("db1", notion.ParentDatabase, "Linked", textBlock("never fetched"))

	w, reg, _ := newWalker(src)
	require.NoError(t, w.Run(context.Background()))

	pages := reg.All()
	require.Len(t, pages, 2)
	c, linked := pages[0], pages[1]
	assert.Equal(t, page.CategoryIndex, c.Subtype())
	assert.Equal(t, "/000-C", c.LayoutContext)
	assert.Equal(t, page.Content, linked.Subtype())
	assert.Equal(t, "/000-C", linked.LayoutContext)
	assert.False(t, linked.FoundDirectlyInOutline)
	assert.Equal(t, 1, linked.Order)
	assert.Zero(t, src.childrenCalls["db1"], "link targets are not recursed")
}

func TestWalk_TopLevelCustomWinsOverIndex(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"), childBlock("about"), linkBlock("contact"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("x"))
	src.page("x", notion.ParentPage, "X", textBlock("body"))
	src.page("about", notion.ParentPage, "About", textBlock("body"), childBlock("team"))
	src.page("team", notion.ParentPage, "Team", textBlock("never visited"))
	src.page("contact", notion.ParentDatabase, "Contact")

	w, reg, strat := newWalker(src)
	require.NoError(t, w.Run(context.Background()))

	about, ok := reg.Find("about")
	require.True(t, ok)
	assert.Equal(t, page.Custom, about.Subtype())
	_, visited := reg.Find("team")
	assert.False(t, visited)
	contact, ok := reg.Find("contact")
	require.True(t, ok)
	assert.Equal(t, page.Custom, contact.Subtype())
	assert.Equal(t, filepath.Join("/out", layout.CustomDir, "Contact.md"), strat.PathForPage(contact, ".md"))
}

func TestWalk_CompactRootIDStillFindsCustomPages(t *testing.T) {
	const rootID = "4a6de8c0-b90b-444b-8a7b-d534d6ec71a4"
	src := newFakeSource()
	src.page(rootID, notion.ParentWorkspace, "Root", childBlock("outline"), childBlock("about"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("x"))
	src.page("x", notion.ParentPage, "X", textBlock("body"))
	src.page("about", notion.ParentPage, "About", textBlock("body"))

	reg := page.NewRegistry()
	strat := layout.New(filepath.FromSlash("/out"), nil)
	w := NewWalker(src, reg, strat, page.CompactID(rootID))
	require.NoError(t, w.Run(context.Background()))

	about, ok := reg.Find("about")
	require.True(t, ok)
	assert.Equal(t, page.Custom, about.Subtype())
	x, ok := reg.Find("x")
	require.True(t, ok)
	assert.Equal(t, page.Content, x.Subtype())
	_, rootEmitted := reg.Find(rootID)
	assert.False(t, rootEmitted)
}

func TestWalk_EmptyPageIsCounted(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"))
	src.page("outline", notion.ParentPage, "Outline", childBlock("e"), childBlock("f"))
	src.page("e", notion.ParentPage, "E", emptyParagraph())
	src.page("f", notion.ParentPage, "F", textBlock("ok"))

	w, reg, _ := newWalker(src)
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, Stats{Emitted: 1, SkippedEmpty: 1}, w.Stats())
}

func TestWalk_DuplicateLinkKeepsFirstPlacement(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("outline"))
	src.page("outline", notion.ParentPage, "Outline", linkBlock("db"), childBlock("g"))
	src.page("g", notion.ParentPage, "G", linkBlock("db"))
	src.page("db", notion.ParentDatabase, "Shared")

	w, reg, _ := newWalker(src)
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, w.Stats().Duplicates)
}

func TestWalk_FetchErrorAborts(t *testing.T) {
	src := newFakeSource()
	src.page("root", notion.ParentWorkspace, "Root", childBlock("missing"))

	w, reg, _ := newWalker(src)
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.False(t, reg.Frozen())
}
