package outline

import (
	"git.home.luguber.info/inful/docnotion/internal/notion"
)

// Ref is a child or linked page together with its block position.
type Ref struct {
	ID    string
	Order int
}

// Info holds the classification inputs derived from a page's child blocks.
type Info struct {
	Children   []Ref
	Links      []Ref
	HasContent bool
}

// ContentInfo derives child pages, link-only paragraphs and whether any real
// content remains. Order is the block's index in blocks.
func ContentInfo(blocks []notion.Block) Info {
	var info Info
	for i, b := range blocks {
		if b.Type == notion.BlockChildPage {
			info.Children = append(info.Children, Ref{ID: b.ID, Order: i})
			continue
		}
		if id, ok := b.LinkOnlyTarget(); ok {
			info.Links = append(info.Links, Ref{ID: id, Order: i})
		}
		if b.IsBlankParagraph() {
			continue
		}
		info.HasContent = true
	}
	return info
}
