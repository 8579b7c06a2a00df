// Package links rewrites references between pages once every page is known.
package links

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnotion/internal/hooks"
	"git.home.luguber.info/inful/docnotion/internal/layout"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/markdown"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

// Built-in link modifier names.
const (
	NameInternalLinks = "internal-links"
	NameExternalLinks = "external-links"
)

// UnresolvedPlaceholder replaces internal links whose target is not part of the site.
const UnresolvedPlaceholder = "**[Problem Internal Link]**"

// MentionLabel is the label the renderer gives links that carry no text of their own.
const MentionLabel = "mention"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// ParseLinkID splits a link id into its base and its fragment ("#..." or "").
func ParseLinkID(s string) (base, fragment string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// extractID pulls the page id out of an href such as
// "https://www.notion.so/Some-Title-4a6de8c0b90b444b8a7bd534d6ec71a4#frag" or
// "/4a6de8c0-b90b-444b-8a7b-d534d6ec71a4". The fragment is returned separately.
func extractID(href string) (id, fragment string) {
	base, fragment := ParseLinkID(href)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, "/")
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if _, err := uuid.Parse(base); err == nil {
		return base, fragment
	}
	if len(base) > 32 && isHex(base[len(base)-32:]) {
		return base[len(base)-32:], fragment
	}
	return base, fragment
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// Resolver rewrites the links of rendered pages against the completed registry.
type Resolver struct {
	registry *page.Registry
	layout   *layout.Strategy
	hooks    *hooks.Set
	logger   *slog.Logger
}

func NewResolver(registry *page.Registry, strategy *layout.Strategy, set *hooks.Set, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, layout: strategy, hooks: set, logger: logger}
}

// FindPage implements hooks.Pages.
func (r *Resolver) FindPage(linkID string) (*page.Page, bool) { return r.registry.Find(linkID) }

// LinkPathForPage implements hooks.Pages.
func (r *Resolver) LinkPathForPage(p *page.Page) string { return r.layout.LinkPathForPage(p) }

// Fix rewrites every markdown link using the first link modifier that both
// matches it and changes it. Links no modifier changes are left as they are.
func (r *Resolver) Fix(md string) string {
	var edits []markdown.Edit
	for _, l := range markdown.FindInlineLinks(md) {
		if l.Image {
			continue
		}
		original := l.Text(md)
		for _, mod := range r.hooks.LinkModifiers() {
			if !mod.Match.MatchString(original) {
				continue
			}
			converted := mod.Convert(r, original)
			if converted == original {
				continue
			}
			r.logger.Debug("Link converted", logfields.Hook(mod.Name),
				slog.String("from", original), slog.String("to", converted))
			edits = append(edits, markdown.Edit{Start: l.Start, End: l.End, Replacement: converted})
			break
		}
	}
	out, err := markdown.ApplyEdits(md, edits)
	if err != nil {
		r.logger.Error("Failed to apply link edits", logfields.Error(err))
		return md
	}
	return out
}

// ConvertInternalURL maps a workspace URL to the site path of its page, or ""
// when the URL does not point at a known page.
func (r *Resolver) ConvertInternalURL(url string) string {
	if !notionURL.MatchString(url) {
		r.logger.Warn("Could not parse link as a workspace URL", slog.String("url", url))
		return ""
	}
	id, fragment := extractID(url)
	target, ok := r.registry.Find(id)
	if !ok {
		r.logger.Warn("Could not find the target of link", slog.String("url", url))
		return ""
	}
	return r.layout.LinkPathForPage(target) + fragment
}

var (
	notionURL        = regexp.MustCompile(`^https://www\.notion\.so/[A-Za-z0-9]`)
	internalLinkExpr = regexp.MustCompile(`^\[([^\]]*)\]\((https://www\.notion\.so/[^)]+|/[^),]+)\)$`)
	externalLinkExpr = regexp.MustCompile(`^\[([^\]]*)\]\((https?://[^)]*)\)$`)
)

// InternalLinks returns the built-in modifier that resolves links to other pages.
func InternalLinks(logger *slog.Logger) hooks.LinkModifier {
	return hooks.LinkModifier{
		Name:  NameInternalLinks,
		Match: internalLinkExpr,
		Convert: func(pages hooks.Pages, link string) string {
			m := internalLinkExpr.FindStringSubmatch(link)
			if m == nil {
				return link
			}
			label, href := m[1], m[2]
			for _, ext := range imageExtensions {
				if strings.HasSuffix(strings.ToLower(href), ext) {
					return link
				}
			}
			id, fragment := extractID(href)
			target, ok := pages.FindPage(id)
			if !ok {
				logger.Warn("Could not find a local target for link; links to pages outside the site are not supported",
					slog.String("href", href))
				return UnresolvedPlaceholder
			}
			if label == MentionLabel {
				label = target.NameOrTitle()
			}
			return "[" + label + "](" + pages.LinkPathForPage(target) + fragment + ")"
		},
	}
}

// ExternalLinks returns the built-in modifier for http(s) links. Bookmark
// links get the URL as their label.
func ExternalLinks(logger *slog.Logger) hooks.LinkModifier {
	return hooks.LinkModifier{
		Name:  NameExternalLinks,
		Match: externalLinkExpr,
		Convert: func(_ hooks.Pages, link string) string {
			m := externalLinkExpr.FindStringSubmatch(link)
			if m == nil || m[1] != "bookmark" {
				return link
			}
			replacement := "[" + m[2] + "](" + m[2] + ")"
			logger.Warn("Bookmark link replaced by its URL", slog.String("link", replacement))
			return replacement
		},
	}
}
