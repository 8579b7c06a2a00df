package render

import (
	"context"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/docnotion/internal/hooks"
	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

const (
	NameHeadingIDs = "heading-ids"
	NameTabs       = "tabs"

	importTabs    = "import Tabs from '@theme/Tabs';"
	importTabItem = "import TabItem from '@theme/TabItem';"
	defaultTab    = "Tab"
)

// HeadingIDs demotes headings by one level (the page title is the only h1),
// sentence-cases their text and appends an explicit anchor built from the
// block id so links to a heading survive edits to its wording.
func HeadingIDs() []hooks.Hook {
	mk := func(blockType, prefix string) hooks.Hook {
		return hooks.BlockTransform{
			Name:      NameHeadingIDs,
			BlockType: blockType,
			Render: func(_ context.Context, r hooks.BlockRenderer, b notion.Block) (string, error) {
				text := sentenceCase(r.RenderRichText(b.RichText()))
				return prefix + " " + text + " {#" + page.CompactID(b.ID) + "}", nil
			},
		}
	}
	return []hooks.Hook{
		mk(notion.BlockHeading1, "##"),
		mk(notion.BlockHeading2, "###"),
		mk(notion.BlockHeading3, "####"),
	}
}

// Tabs renders a column list as a Docusaurus <Tabs> element, one TabItem per column.
func Tabs() hooks.BlockTransform {
	return hooks.BlockTransform{
		Name:      NameTabs,
		BlockType: notion.BlockColumnList,
		Imports:   []string{importTabs, importTabItem},
		Render:    renderTabs,
	}
}

func renderTabs(ctx context.Context, r hooks.BlockRenderer, b notion.Block) (string, error) {
	columns, err := r.Children(ctx, b)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("<Tabs>")
	for _, col := range columns {
		kids, err := r.Children(ctx, col)
		if err != nil {
			return "", err
		}
		label := tabLabel(kids)
		content, err := r.RenderBlocks(ctx, kids)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n<TabItem value=\"" + strings.ToLower(label) + "\" label=\"" + label + "\">\n\n")
		sb.WriteString(content)
		sb.WriteString("\n\n</TabItem>")
	}
	sb.WriteString("\n</Tabs>")
	return sb.String(), nil
}

// tabLabel uses the text of the first top-level heading in a column.
func tabLabel(blocks []notion.Block) string {
	for _, b := range blocks {
		if b.Type == notion.BlockHeading1 {
			if t := strings.TrimSpace(plainText(b.RichText())); t != "" {
				return t
			}
		}
	}
	return defaultTab
}

// sentenceCase strips emphasis markers, capitalizes the first word and lowercases the rest.
func sentenceCase(s string) string {
	s = strings.NewReplacer("*", "", "_", "").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		w = strings.ToLower(w)
		if i == 0 {
			rs := []rune(w)
			rs[0] = unicode.ToUpper(rs[0])
			w = string(rs)
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}
