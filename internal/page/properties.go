package page

import (
	"strings"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/notion"
)

// Defaults used when a text property is absent or empty.
const (
	DefaultTitle = "title missing"
	DefaultName  = "name missing"
)

// DateRange is a parsed date property. Either end may be empty.
type DateRange struct {
	Start string
	End   string
}

// Select is a parsed select (or status) property. Name is empty when nothing is selected.
type Select struct {
	Name string
}

// Properties is the typed view of a page's loosely-typed property map.
type Properties struct {
	Title    string
	Name     string
	Slug     string
	Keywords string
	Status   *Select
	Dates    map[string]DateRange
}

// ParseProperties extracts the properties the outline machinery relies on.
func ParseProperties(meta *notion.PageMetadata) Properties {
	p := Properties{
		Title: plainText(meta, "title", DefaultTitle),
		Name:  plainText(meta, "Name", DefaultName),
		Slug:  plainText(meta, "Slug", ""),
		Dates: map[string]DateRange{},
	}
	p.Keywords = plainText(meta, "Keywords", "")
	if kw, ok := meta.Properties["Keywords"]; ok && len(kw.MultiSelect) > 0 {
		names := make([]string, 0, len(kw.MultiSelect))
		for _, o := range kw.MultiSelect {
			names = append(names, o.Name)
		}
		p.Keywords = strings.Join(names, ", ")
	}
	if prop, ok := meta.Properties["Status"]; ok {
		s := &Select{}
		switch {
		case prop.Select != nil:
			s.Name = prop.Select.Name
		case prop.Status != nil:
			s.Name = prop.Status.Name
		}
		p.Status = s
	}
	for key, prop := range meta.Properties {
		if prop.Type == "date" && prop.Date != nil {
			p.Dates[key] = DateRange{Start: prop.Date.Start, End: prop.Date.End}
		}
	}
	return p
}

// StatusOrFail returns the selected status name. A missing Status property is fatal.
func (p Properties) StatusOrFail(pageID string) (string, error) {
	if p.Status == nil {
		return "", errors.ValidationError("page is missing the Status property").
			Fatal().
			WithContext("page_id", pageID).
			Build()
	}
	return p.Status.Name, nil
}

// plainText concatenates the plain text of a title or rich_text property.
func plainText(meta *notion.PageMetadata, key, def string) string {
	if meta == nil {
		return def
	}
	prop, ok := meta.Properties[key]
	if !ok {
		return def
	}
	runs := prop.RichText
	if prop.Type == "title" || len(runs) == 0 {
		runs = prop.Title
	}
	if len(runs) == 0 {
		return def
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}
	return sb.String()
}
