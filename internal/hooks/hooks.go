// Package hooks defines the extension points applied while turning a page into
// markdown. There are four kinds; each kind keeps its hooks in registration
// order and is dispatched in that order.
package hooks

import (
	"context"
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

// Kind tags a hook variant.
type Kind int

const (
	KindBlockModifier Kind = iota
	KindBlockTransform
	KindLinkModifier
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindBlockModifier:
		return "block_modifier"
	case KindBlockTransform:
		return "block_transform"
	case KindLinkModifier:
		return "link_modifier"
	default:
		return "regex"
	}
}

// Hook is implemented only by the variants in this package.
type Hook interface {
	HookName() string
	Kind() Kind
}

// BlockModifier edits a block in place before rendering.
type BlockModifier struct {
	Name   string
	Modify func(b *notion.Block)
}

// BlockRenderer is what a BlockTransform may call back into.
type BlockRenderer interface {
	RenderBlocks(ctx context.Context, blocks []notion.Block) (string, error)
	RenderRichText(rt []notion.RichText) string
	Children(ctx context.Context, b notion.Block) ([]notion.Block, error)
}

// BlockTransform replaces the default rendering of one block type.
type BlockTransform struct {
	Name      string
	BlockType string
	Imports   []string
	Render    func(ctx context.Context, r BlockRenderer, b notion.Block) (string, error)
}

// Pages gives link modifiers read access to the completed page set.
type Pages interface {
	FindPage(linkID string) (*page.Page, bool)
	LinkPathForPage(p *page.Page) string
	ConvertInternalURL(url string) string
}

// LinkModifier rewrites a whole markdown link ("[label](href)") it matches.
type LinkModifier struct {
	Name    string
	Match   *regexp.Regexp
	Convert func(pages Pages, link string) string
}

// RegexModification is a text substitution over the final markdown body.
type RegexModification struct {
	Name              string
	Pattern           *regexp.Regexp
	Replacement       string
	IncludeCodeBlocks bool
	Imports           []string
}

func (h BlockModifier) HookName() string     { return h.Name }
func (h BlockModifier) Kind() Kind           { return KindBlockModifier }
func (h BlockTransform) HookName() string    { return h.Name }
func (h BlockTransform) Kind() Kind          { return KindBlockTransform }
func (h LinkModifier) HookName() string      { return h.Name }
func (h LinkModifier) Kind() Kind            { return KindLinkModifier }
func (h RegexModification) HookName() string { return h.Name }
func (h RegexModification) Kind() Kind       { return KindRegex }

// Set holds the registered hooks of every kind.
type Set struct {
	modifiers  []BlockModifier
	transforms []BlockTransform
	links      []LinkModifier
	regex      []RegexModification
}

func NewSet() *Set { return &Set{} }

// Register appends hooks to the registry of their kind.
func (s *Set) Register(hs ...Hook) error {
	for _, h := range hs {
		switch v := h.(type) {
		case BlockModifier:
			if v.Modify == nil {
				return fmt.Errorf("block modifier %q has no Modify func", v.Name)
			}
			s.modifiers = append(s.modifiers, v)
		case BlockTransform:
			if v.Render == nil || v.BlockType == "" {
				return fmt.Errorf("block transform %q needs a block type and Render func", v.Name)
			}
			s.transforms = append(s.transforms, v)
		case LinkModifier:
			if v.Match == nil || v.Convert == nil {
				return fmt.Errorf("link modifier %q needs Match and Convert", v.Name)
			}
			s.links = append(s.links, v)
		case RegexModification:
			if v.Pattern == nil {
				return fmt.Errorf("regex modification %q has no pattern", v.Name)
			}
			s.regex = append(s.regex, v)
		default:
			return fmt.Errorf("unsupported hook type %T", h)
		}
	}
	return nil
}

func (s *Set) BlockModifiers() []BlockModifier         { return s.modifiers }
func (s *Set) LinkModifiers() []LinkModifier           { return s.links }
func (s *Set) RegexModifications() []RegexModification { return s.regex }

// Transform returns the first transform registered for blockType.
func (s *Set) Transform(blockType string) (BlockTransform, bool) {
	for _, t := range s.transforms {
		if t.BlockType == blockType {
			return t, true
		}
	}
	return BlockTransform{}, false
}

// ApplyBlockModifiers runs every block modifier over blocks, in order.
func (s *Set) ApplyBlockModifiers(blocks []notion.Block) {
	for i := range blocks {
		for _, m := range s.modifiers {
			m.Modify(&blocks[i])
		}
	}
}
