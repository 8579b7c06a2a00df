package notion

import (
	"encoding/json"
	"strings"
)

// Parent types as reported by the API.
const (
	ParentPage      = "page_id"
	ParentDatabase  = "database_id"
	ParentBlock     = "block_id"
	ParentWorkspace = "workspace"
)

// PageMetadata is the page object returned by GET /pages/{id}.
type PageMetadata struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	Archived       bool                `json:"archived,omitempty"`
	URL            string              `json:"url,omitempty"`
	Parent         Parent              `json:"parent"`
	Properties     map[string]Property `json:"properties"`
}

type Parent struct {
	Type       string `json:"type"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	BlockID    string `json:"block_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// Property is a loosely-typed page property. Only the field matching Type is set.
type Property struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Title       []RichText      `json:"title,omitempty"`
	RichText    []RichText      `json:"rich_text,omitempty"`
	Select      *SelectOption   `json:"select,omitempty"`
	Status      *SelectOption   `json:"status,omitempty"`
	MultiSelect []SelectOption  `json:"multi_select,omitempty"`
	Date        *DateValue      `json:"date,omitempty"`
	Number      *float64        `json:"number,omitempty"`
	Checkbox    *bool           `json:"checkbox,omitempty"`
	URL         *string         `json:"url,omitempty"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// RichText is one run of styled text.
type RichText struct {
	Type        string       `json:"type"`
	PlainText   string       `json:"plain_text"`
	Href        string       `json:"href,omitempty"`
	Annotations Annotations  `json:"annotations"`
	Text        *TextContent `json:"text,omitempty"`
	Mention     *Mention     `json:"mention,omitempty"`
	Equation    *Expression  `json:"equation,omitempty"`
}

type Annotations struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

// Mention is an inline reference. Page mentions carry the target id.
type Mention struct {
	Type string     `json:"type"`
	Page *ObjectRef `json:"page,omitempty"`
	Date *DateValue `json:"date,omitempty"`
}

type ObjectRef struct {
	ID string `json:"id"`
}

type Expression struct {
	Expression string `json:"expression"`
}

// Block types handled by the walker and renderer.
const (
	BlockParagraph        = "paragraph"
	BlockHeading1         = "heading_1"
	BlockHeading2         = "heading_2"
	BlockHeading3         = "heading_3"
	BlockBulletedListItem = "bulleted_list_item"
	BlockNumberedListItem = "numbered_list_item"
	BlockToDo             = "to_do"
	BlockToggle           = "toggle"
	BlockQuote            = "quote"
	BlockCallout          = "callout"
	BlockCode             = "code"
	BlockDivider          = "divider"
	BlockImage            = "image"
	BlockBookmark         = "bookmark"
	BlockEmbed            = "embed"
	BlockEquation         = "equation"
	BlockLinkToPage       = "link_to_page"
	BlockChildPage        = "child_page"
	BlockChildDatabase    = "child_database"
	BlockColumnList       = "column_list"
	BlockColumn           = "column"
	BlockTable            = "table"
	BlockTableRow         = "table_row"
)

// Block is a content block. An empty Type marks a partial object.
type Block struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children,omitempty"`
	Archived    bool   `json:"archived,omitempty"`

	Paragraph        *TextBlock     `json:"paragraph,omitempty"`
	Heading1         *TextBlock     `json:"heading_1,omitempty"`
	Heading2         *TextBlock     `json:"heading_2,omitempty"`
	Heading3         *TextBlock     `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock     `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoBlock     `json:"to_do,omitempty"`
	Toggle           *TextBlock     `json:"toggle,omitempty"`
	Quote            *TextBlock     `json:"quote,omitempty"`
	Callout          *CalloutBlock  `json:"callout,omitempty"`
	Code             *CodeBlock     `json:"code,omitempty"`
	Image            *FileBlock     `json:"image,omitempty"`
	Bookmark         *URLBlock      `json:"bookmark,omitempty"`
	Embed            *URLBlock      `json:"embed,omitempty"`
	Equation         *Expression    `json:"equation,omitempty"`
	LinkToPage       *LinkToPage    `json:"link_to_page,omitempty"`
	ChildPage        *ChildPage     `json:"child_page,omitempty"`
	Table            *TableBlock    `json:"table,omitempty"`
	TableRow         *TableRowBlock `json:"table_row,omitempty"`

	// Number is filled by the client for numbered list items (1-based run index).
	Number int `json:"number,omitempty"`

	// Children is populated by consumers that descend into HasChildren blocks.
	Children []Block `json:"children,omitempty"`
}

type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type CalloutBlock struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

type FileBlock struct {
	Type     string     `json:"type"`
	File     *FileRef   `json:"file,omitempty"`
	External *FileRef   `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// URL returns whichever of the hosted or external locations is set.
func (f *FileBlock) URL() string {
	if f == nil {
		return ""
	}
	if f.File != nil {
		return f.File.URL
	}
	if f.External != nil {
		return f.External.URL
	}
	return ""
}

type FileRef struct {
	URL string `json:"url"`
}

type URLBlock struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type LinkToPage struct {
	Type   string `json:"type"`
	PageID string `json:"page_id,omitempty"`
}

type ChildPage struct {
	Title string `json:"title"`
}

type TableBlock struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

type TableRowBlock struct {
	Cells [][]RichText `json:"cells"`
}

// IsPartial reports whether the API returned a block without its type payload.
func (b Block) IsPartial() bool { return b.Type == "" }

// RichText returns the text runs of text-bearing blocks, nil otherwise.
func (b Block) RichText() []RichText {
	switch b.Type {
	case BlockParagraph:
		return textOf(b.Paragraph)
	case BlockHeading1:
		return textOf(b.Heading1)
	case BlockHeading2:
		return textOf(b.Heading2)
	case BlockHeading3:
		return textOf(b.Heading3)
	case BlockBulletedListItem:
		return textOf(b.BulletedListItem)
	case BlockNumberedListItem:
		return textOf(b.NumberedListItem)
	case BlockToggle:
		return textOf(b.Toggle)
	case BlockQuote:
		return textOf(b.Quote)
	case BlockToDo:
		if b.ToDo != nil {
			return b.ToDo.RichText
		}
	case BlockCallout:
		if b.Callout != nil {
			return b.Callout.RichText
		}
	case BlockCode:
		if b.Code != nil {
			return b.Code.RichText
		}
	}
	return nil
}

func textOf(t *TextBlock) []RichText {
	if t == nil {
		return nil
	}
	return t.RichText
}

// CloneBlocks returns a deep copy of blocks.
func CloneBlocks(blocks []Block) ([]Block, error) {
	data, err := json.Marshal(blocks)
	if err != nil {
		return nil, err
	}
	var out []Block
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LinkOnlyTarget returns the mentioned page id when b is a paragraph holding
// exactly one page mention and otherwise only whitespace text.
func (b Block) LinkOnlyTarget() (string, bool) {
	if b.Type != BlockParagraph {
		return "", false
	}
	var target string
	mentions := 0
	for _, rt := range b.RichText() {
		switch {
		case rt.Type == "mention":
			mentions++
			if rt.Mention != nil && rt.Mention.Page != nil {
				target = rt.Mention.Page.ID
			}
		case rt.Type == "text" && strings.TrimSpace(rt.PlainText) == "":
		default:
			return "", false
		}
	}
	if mentions != 1 || target == "" {
		return "", false
	}
	return target, true
}

// IsBlankParagraph reports whether b is a paragraph with nothing but mentions
// and whitespace.
func (b Block) IsBlankParagraph() bool {
	if b.Type != BlockParagraph {
		return false
	}
	for _, rt := range b.RichText() {
		if rt.Type == "mention" || (rt.Type == "text" && strings.TrimSpace(rt.PlainText) == "") {
			continue
		}
		return false
	}
	return true
}
