package page

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docnotion/internal/notion"
)

// Kind is fixed at creation from the page's parent linkage.
type Kind int

const (
	SimpleDocument Kind = iota
	CollectionEntry
)

func (k Kind) String() string {
	if k == CollectionEntry {
		return "collection_entry"
	}
	return "simple_document"
}

// Subtype is the structural role assigned during classification.
type Subtype int

const (
	Content Subtype = iota
	CategoryIndex
	Custom
)

func (s Subtype) String() string {
	switch s {
	case CategoryIndex:
		return "category_index"
	case Custom:
		return "custom"
	default:
		return "content"
	}
}

// Page is one discovered page record.
type Page struct {
	ID                     string
	ParentID               string
	Order                  int
	LayoutContext          string
	FoundDirectlyInOutline bool

	metadata   notion.PageMetadata
	props      Properties
	kind       Kind
	subtype    Subtype
	subtypeSet bool
}

// New builds a record from fetched metadata. The metadata is copied.
func New(meta *notion.PageMetadata, parentID string, order int, layoutContext string, foundDirectlyInOutline bool) *Page {
	p := &Page{
		ID:                     meta.ID,
		ParentID:               parentID,
		Order:                  order,
		LayoutContext:          layoutContext,
		FoundDirectlyInOutline: foundDirectlyInOutline,
		metadata:               *meta,
		props:                  ParseProperties(meta),
	}
	if meta.Parent.Type == notion.ParentDatabase {
		p.kind = CollectionEntry
	}
	return p
}

func (p *Page) Kind() Kind                    { return p.kind }
func (p *Page) Subtype() Subtype              { return p.subtype }
func (p *Page) Properties() Properties        { return p.props }
func (p *Page) Metadata() notion.PageMetadata { return p.metadata }

// SetSubtype records the classification result. It may be called once.
func (p *Page) SetSubtype(s Subtype) error {
	if p.subtypeSet {
		return fmt.Errorf("subtype of page %s already set to %s", p.ID, p.subtype)
	}
	p.subtype = s
	p.subtypeSet = true
	return nil
}

// NameOrTitle is the display name: Name for collection entries, title otherwise.
func (p *Page) NameOrTitle() string {
	if p.kind == CollectionEntry {
		return p.props.Name
	}
	return p.props.Title
}

// HasExplicitSlug reports whether the page carries a non-empty Slug property.
func (p *Page) HasExplicitSlug() bool { return p.props.Slug != "" }

// Slug is the sanitized explicit slug, or "/" + ID when none is set.
func (p *Page) Slug() string {
	if p.HasExplicitSlug() {
		return SanitizeSlug(p.props.Slug)
	}
	return "/" + p.ID
}

// NameForFile is the unsanitized base file name: "index" for category index
// pages, the explicit slug (or name) for collection entries, the title otherwise.
func (p *Page) NameForFile() string {
	if p.subtype == CategoryIndex {
		return "index"
	}
	if p.kind == SimpleDocument {
		return p.props.Title
	}
	if p.HasExplicitSlug() {
		s := strings.TrimPrefix(p.Slug(), "/")
		if s == "" {
			return "index"
		}
		return s
	}
	return p.props.Name
}

// Keywords returns the Keywords property, empty when absent.
func (p *Page) Keywords() string { return p.props.Keywords }

// MatchesLinkID reports whether a link id (with or without fragment, dashed or
// not) refers to this page.
func (p *Page) MatchesLinkID(id string) bool {
	base, _ := splitFragment(id)
	return base == p.ID || base == CompactID(p.ID)
}

func splitFragment(id string) (string, string) {
	if i := strings.Index(id, "#"); i >= 0 {
		return id[:i], id[i:]
	}
	return id, ""
}
