// Package render turns content blocks into Docusaurus-flavoured markdown.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docnotion/internal/hooks"
	"git.home.luguber.info/inful/docnotion/internal/notion"
)

// ChildSource fetches the children of container blocks.
type ChildSource interface {
	FetchChildren(ctx context.Context, id string) ([]notion.Block, error)
}

// Document is the result of rendering one page body.
type Document struct {
	Markdown string
	Imports  []string
}

// Renderer renders block lists. It is not safe for concurrent use; imports are
// collected per Render call.
type Renderer struct {
	children ChildSource
	hooks    *hooks.Set
	logger   *slog.Logger
	imports  []string
}

func New(children ChildSource, set *hooks.Set, logger *slog.Logger) *Renderer {
	if set == nil {
		set = hooks.NewSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{children: children, hooks: set, logger: logger}
}

// Render converts blocks to markdown. blocks may be modified; callers that
// need to retry must pass a fresh copy each time.
func (r *Renderer) Render(ctx context.Context, blocks []notion.Block) (Document, error) {
	r.imports = nil
	body, err := r.RenderBlocks(ctx, blocks)
	if err != nil {
		return Document{}, err
	}
	return Document{Markdown: body, Imports: dedupe(r.imports)}, nil
}

// FilterBlocks drops child page blocks and link-only paragraphs, which exist
// only to shape the outline.
func FilterBlocks(blocks []notion.Block) []notion.Block {
	out := make([]notion.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == notion.BlockChildPage {
			continue
		}
		if _, ok := b.LinkOnlyTarget(); ok {
			continue
		}
		out = append(out, b)
	}
	return out
}

// RenderBlocks renders a sibling list. Consecutive items of the same list type
// are separated by a single newline, everything else by a blank line.
func (r *Renderer) RenderBlocks(ctx context.Context, blocks []notion.Block) (string, error) {
	r.hooks.ApplyBlockModifiers(blocks)
	var sb strings.Builder
	prevType := ""
	for _, b := range blocks {
		md, err := r.renderBlock(ctx, b)
		if err != nil {
			return "", err
		}
		if md == "" {
			continue
		}
		if sb.Len() > 0 {
			if isListItem(b.Type) && b.Type == prevType {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(md)
		prevType = b.Type
	}
	return sb.String(), nil
}

// Children returns b's children, fetching them when the block has not been expanded.
func (r *Renderer) Children(ctx context.Context, b notion.Block) ([]notion.Block, error) {
	if len(b.Children) > 0 || !b.HasChildren {
		return b.Children, nil
	}
	if r.children == nil {
		return nil, fmt.Errorf("block %s has children but no child source is configured", b.ID)
	}
	return r.children.FetchChildren(ctx, b.ID)
}

func (r *Renderer) renderBlock(ctx context.Context, b notion.Block) (string, error) {
	if t, ok := r.hooks.Transform(b.Type); ok {
		md, err := t.Render(ctx, r, b)
		if err != nil {
			return "", fmt.Errorf("%s transform for block %s: %w", t.Name, b.ID, err)
		}
		r.imports = append(r.imports, t.Imports...)
		return md, nil
	}

	switch b.Type {
	case notion.BlockParagraph:
		return r.withChildren(ctx, b, r.RenderRichText(b.RichText()), "")
	case notion.BlockHeading1:
		return "# " + r.RenderRichText(b.RichText()), nil
	case notion.BlockHeading2:
		return "## " + r.RenderRichText(b.RichText()), nil
	case notion.BlockHeading3:
		return "### " + r.RenderRichText(b.RichText()), nil
	case notion.BlockBulletedListItem:
		return r.withChildren(ctx, b, "- "+r.RenderRichText(b.RichText()), "  ")
	case notion.BlockNumberedListItem:
		n := b.Number
		if n < 1 {
			n = 1
		}
		prefix := fmt.Sprintf("%d. ", n)
		return r.withChildren(ctx, b, prefix+r.RenderRichText(b.RichText()), strings.Repeat(" ", len(prefix)))
	case notion.BlockToDo:
		box := "- [ ] "
		if b.ToDo != nil && b.ToDo.Checked {
			box = "- [x] "
		}
		return r.withChildren(ctx, b, box+r.RenderRichText(b.RichText()), "  ")
	case notion.BlockQuote:
		inner, err := r.withChildren(ctx, b, r.RenderRichText(b.RichText()), "")
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> "), nil
	case notion.BlockToggle:
		return r.renderToggle(ctx, b)
	case notion.BlockCallout:
		return r.renderCallout(ctx, b)
	case notion.BlockCode:
		return renderCode(b), nil
	case notion.BlockDivider:
		return "---", nil
	case notion.BlockImage:
		return "![" + html.EscapeString(plainText(captionOf(b))) + "](" + b.Image.URL() + ")", nil
	case notion.BlockBookmark:
		if b.Bookmark == nil {
			return "", nil
		}
		return "[bookmark](" + b.Bookmark.URL + ")", nil
	case notion.BlockEmbed:
		if b.Embed == nil {
			return "", nil
		}
		return "[embed](" + b.Embed.URL + ")", nil
	case notion.BlockEquation:
		if b.Equation == nil {
			return "", nil
		}
		return "$$\n" + b.Equation.Expression + "\n$$", nil
	case notion.BlockLinkToPage:
		if b.LinkToPage == nil || b.LinkToPage.PageID == "" {
			return "", nil
		}
		return "[mention](/" + b.LinkToPage.PageID + ")", nil
	case notion.BlockColumnList, notion.BlockColumn:
		kids, err := r.Children(ctx, b)
		if err != nil {
			return "", err
		}
		return r.RenderBlocks(ctx, kids)
	case notion.BlockTable:
		return r.renderTable(ctx, b)
	case notion.BlockChildPage, notion.BlockChildDatabase:
		return "", nil
	default:
		r.logger.Debug("Skipping unsupported block", "type", b.Type, "block_id", b.ID)
		return "", nil
	}
}

// withChildren appends b's rendered children below text, indented by indent.
func (r *Renderer) withChildren(ctx context.Context, b notion.Block, text, indent string) (string, error) {
	kids, err := r.Children(ctx, b)
	if err != nil || len(kids) == 0 {
		return text, err
	}
	inner, err := r.RenderBlocks(ctx, kids)
	if err != nil {
		return "", err
	}
	if inner == "" {
		return text, nil
	}
	return text + "\n\n" + prefixLines(inner, indent), nil
}

func (r *Renderer) renderToggle(ctx context.Context, b notion.Block) (string, error) {
	kids, err := r.Children(ctx, b)
	if err != nil {
		return "", err
	}
	inner, err := r.RenderBlocks(ctx, kids)
	if err != nil {
		return "", err
	}
	return "<details>\n<summary>" + html.EscapeString(plainText(b.RichText())) + "</summary>\n\n" + inner + "\n\n</details>", nil
}

func (r *Renderer) renderCallout(ctx context.Context, b notion.Block) (string, error) {
	text := r.RenderRichText(b.RichText())
	if b.Callout != nil && b.Callout.Icon != nil && b.Callout.Icon.Emoji != "" {
		text = b.Callout.Icon.Emoji + " " + text
	}
	body, err := r.withChildren(ctx, b, text, "")
	if err != nil {
		return "", err
	}
	return ":::note\n\n" + body + "\n\n:::", nil
}

func (r *Renderer) renderTable(ctx context.Context, b notion.Block) (string, error) {
	rows, err := r.Children(ctx, b)
	if err != nil {
		return "", err
	}
	var lines []string
	for i, row := range rows {
		if row.TableRow == nil {
			continue
		}
		cells := make([]string, len(row.TableRow.Cells))
		for j, c := range row.TableRow.Cells {
			cells[j] = strings.ReplaceAll(r.RenderRichText(c), "|", `\|`)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			sep := make([]string, len(cells))
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n"), nil
}

func renderCode(b notion.Block) string {
	if b.Code == nil {
		return ""
	}
	lang := b.Code.Language
	if lang == "plain text" {
		lang = ""
	}
	return "```" + lang + "\n" + plainText(b.Code.RichText) + "\n```"
}

// RenderRichText renders styled runs as inline markdown.
func (r *Renderer) RenderRichText(runs []notion.RichText) string {
	var sb strings.Builder
	for _, rt := range runs {
		switch rt.Type {
		case "equation":
			if rt.Equation != nil {
				sb.WriteString("$" + rt.Equation.Expression + "$")
			}
			continue
		case "mention":
			if rt.Mention != nil && rt.Mention.Page != nil {
				sb.WriteString("[mention](/" + rt.Mention.Page.ID + ")")
				continue
			}
		}
		sb.WriteString(annotate(rt))
	}
	return sb.String()
}

func annotate(rt notion.RichText) string {
	s := rt.PlainText
	if s == "" {
		return ""
	}
	a := rt.Annotations
	if a.Code {
		s = "`" + s + "`"
	}
	if a.Bold {
		s = "**" + s + "**"
	}
	if a.Italic {
		s = "_" + s + "_"
	}
	if a.Strikethrough {
		s = "~~" + s + "~~"
	}
	href := rt.Href
	if rt.Text != nil && rt.Text.Link != nil {
		href = rt.Text.Link.URL
	}
	if href != "" {
		s = "[" + s + "](" + href + ")"
	}
	return s
}

func plainText(runs []notion.RichText) string {
	var sb strings.Builder
	for _, rt := range runs {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

func captionOf(b notion.Block) []notion.RichText {
	if b.Image == nil {
		return nil
	}
	return b.Image.Caption
}

func isListItem(t string) bool {
	return t == notion.BlockBulletedListItem || t == notion.BlockNumberedListItem || t == notion.BlockToDo
}

func prefixLines(s, prefix string) string {
	if prefix == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" && prefix != "> " {
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func dedupe(in []string) []string {
	var out []string
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
