package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/notion"
)

func text(key, typ, value string) (string, notion.Property) {
	rt := []notion.RichText{{Type: "text", PlainText: value}}
	if typ == "title" {
		return key, notion.Property{Type: "title", Title: rt}
	}
	return key, notion.Property{Type: "rich_text", RichText: rt}
}

func meta(id, parentType string, props ...any) *notion.PageMetadata {
	m := &notion.PageMetadata{Object: "page", ID: id, Parent: notion.Parent{Type: parentType}, Properties: map[string]notion.Property{}}
	for i := 0; i+1 < len(props); i += 2 {
		m.Properties[props[i].(string)] = props[i+1].(notion.Property)
	}
	return m
}

func TestSanitizeSlug(t *testing.T) {
	tests := map[string]string{
		"/foo bar?baz": "/foo-bar-baz",
		"foo":          "/foo",
		"/":            "/",
		"a--b":         "/a-b",
		"a & b":        "/a-b",
		"x#y/z":        "/x-y-z",
		"50%off":       "/50-off",
		"café":         "/caf%C3%A9",
	}
	for in, want := range tests {
		got := SanitizeSlug(in)
		assert.Equal(t, want, got, "sanitize(%q)", in)
		assert.Equal(t, got, SanitizeSlug(got), "sanitize must be idempotent for %q", in)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "4a5c2f0e-1b2c-4d3e-8f90-123456789abc", NormalizeID("4a5c2f0e1b2c4d3e8f90123456789abc"))
	assert.Equal(t, "not-a-uuid", NormalizeID("not-a-uuid"))
}

func TestPageKindAndNames(t *testing.T) {
	k1, v1 := text("title", "title", "Getting Started")
	simple := New(meta("aaaa-1111", notion.ParentPage, k1, v1), "root", 0, "", true)
	assert.Equal(t, SimpleDocument, simple.Kind())
	assert.Equal(t, "Getting Started", simple.NameOrTitle())
	assert.Equal(t, "Getting Started", simple.NameForFile())
	assert.Equal(t, "/aaaa-1111", simple.Slug())
	assert.False(t, simple.HasExplicitSlug())

	k2, v2 := text("Name", "title", "Install")
	k3, v3 := text("Slug", "rich_text", "/how to install")
	entry := New(meta("bbbb-2222", notion.ParentDatabase, k2, v2, k3, v3), "root", 1, "", false)
	assert.Equal(t, CollectionEntry, entry.Kind())
	assert.Equal(t, "Install", entry.NameOrTitle())
	assert.Equal(t, "/how-to-install", entry.Slug())
	assert.Equal(t, "how-to-install", entry.NameForFile())

	missing := New(meta("cccc", notion.ParentDatabase), "root", 2, "", false)
	assert.Equal(t, DefaultName, missing.NameOrTitle())
}

func TestSetSubtypeIsWriteOnce(t *testing.T) {
	p := New(meta("id", notion.ParentPage), "root", 0, "", true)
	assert.Equal(t, Content, p.Subtype())
	require.NoError(t, p.SetSubtype(CategoryIndex))
	assert.Equal(t, "index", p.NameForFile())
	require.Error(t, p.SetSubtype(Content))
	assert.Equal(t, CategoryIndex, p.Subtype())
}

func TestStatusOrFail(t *testing.T) {
	withStatus := meta("id", notion.ParentDatabase)
	withStatus.Properties["Status"] = notion.Property{Type: "select", Select: &notion.SelectOption{Name: "Publish"}}
	status, err := ParseProperties(withStatus).StatusOrFail("id")
	require.NoError(t, err)
	assert.Equal(t, "Publish", status)

	_, err = ParseProperties(meta("id", notion.ParentDatabase)).StatusOrFail("id")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, ce.IsFatal())
}

func TestParseProperties_DatesAndKeywords(t *testing.T) {
	m := meta("id", notion.ParentDatabase)
	m.Properties["Published"] = notion.Property{Type: "date", Date: &notion.DateValue{Start: "2024-01-02"}}
	m.Properties["Keywords"] = notion.Property{Type: "multi_select", MultiSelect: []notion.SelectOption{{Name: "go"}, {Name: "docs"}}}

	props := ParseProperties(m)
	assert.Equal(t, DateRange{Start: "2024-01-02"}, props.Dates["Published"])
	assert.Equal(t, "go, docs", props.Keywords)
	assert.Equal(t, DefaultTitle, props.Title)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := New(meta("abcd-1234", notion.ParentPage), "root", 0, "", true)
	require.NoError(t, r.Add(a))
	require.Error(t, r.Add(New(meta("abcd-1234", notion.ParentPage), "root", 1, "", true)))

	for _, id := range []string{"abcd-1234", "abcd1234", "abcd1234#section"} {
		got, ok := r.Find(id)
		require.True(t, ok, id)
		assert.Same(t, a, got)
	}
	_, ok := r.Find("ffff")
	assert.False(t, ok)

	all := r.All()
	all[0] = nil
	assert.Equal(t, 1, r.Len())
	assert.NotNil(t, r.All()[0])

	r.Freeze()
	require.Error(t, r.Add(New(meta("new", notion.ParentPage), "root", 2, "", true)))
	assert.True(t, a.MatchesLinkID("abcd1234#x"))
}
