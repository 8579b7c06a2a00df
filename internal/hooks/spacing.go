package hooks

import (
	"strings"
	"unicode"

	"git.home.luguber.info/inful/docnotion/internal/notion"
)

// NameAnnotationSpacing is the built-in block modifier that moves whitespace
// out of bold, italic, strikethrough and code runs. "**word **" does not parse
// as emphasis in markdown.
const NameAnnotationSpacing = "annotation-spacing"

// AnnotationSpacing returns the built-in whitespace modifier.
func AnnotationSpacing() BlockModifier {
	return BlockModifier{Name: NameAnnotationSpacing, Modify: fixAnnotationSpacing}
}

func fixAnnotationSpacing(b *notion.Block) {
	runs := b.RichText()
	if len(runs) == 0 {
		return
	}
	fixed := make([]notion.RichText, 0, len(runs))
	for _, rt := range runs {
		a := rt.Annotations
		if rt.Type != "text" || !(a.Bold || a.Italic || a.Strikethrough || a.Code) {
			fixed = append(fixed, rt)
			continue
		}
		trimmed := strings.TrimFunc(rt.PlainText, unicode.IsSpace)
		if trimmed == rt.PlainText || trimmed == "" {
			fixed = append(fixed, rt)
			continue
		}
		start := strings.Index(rt.PlainText, trimmed)
		lead, tail := rt.PlainText[:start], rt.PlainText[start+len(trimmed):]
		if lead != "" {
			fixed = append(fixed, plainRun(lead))
		}
		core := rt
		core.PlainText = trimmed
		if core.Text != nil {
			t := *core.Text
			t.Content = trimmed
			core.Text = &t
		}
		fixed = append(fixed, core)
		if tail != "" {
			fixed = append(fixed, plainRun(tail))
		}
	}
	setRichText(b, fixed)
}

func plainRun(s string) notion.RichText {
	return notion.RichText{Type: "text", PlainText: s, Text: &notion.TextContent{Content: s}}
}

func setRichText(b *notion.Block, rt []notion.RichText) {
	switch {
	case b.Paragraph != nil && b.Type == notion.BlockParagraph:
		b.Paragraph.RichText = rt
	case b.Heading1 != nil && b.Type == notion.BlockHeading1:
		b.Heading1.RichText = rt
	case b.Heading2 != nil && b.Type == notion.BlockHeading2:
		b.Heading2.RichText = rt
	case b.Heading3 != nil && b.Type == notion.BlockHeading3:
		b.Heading3.RichText = rt
	case b.BulletedListItem != nil && b.Type == notion.BlockBulletedListItem:
		b.BulletedListItem.RichText = rt
	case b.NumberedListItem != nil && b.Type == notion.BlockNumberedListItem:
		b.NumberedListItem.RichText = rt
	case b.Toggle != nil && b.Type == notion.BlockToggle:
		b.Toggle.RichText = rt
	case b.Quote != nil && b.Type == notion.BlockQuote:
		b.Quote.RichText = rt
	case b.ToDo != nil && b.Type == notion.BlockToDo:
		b.ToDo.RichText = rt
	case b.Callout != nil && b.Type == notion.BlockCallout:
		b.Callout.RichText = rt
	}
}
