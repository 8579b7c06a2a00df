package page

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

var slugReplacer = strings.NewReplacer(" ", "-", "?", "-", "/", "-", "#", "-", "&", "-", "%", "-")

// SanitizeSlug turns a user-entered slug into a URL path segment rooted at "/".
// "/" is kept as is. The result is stable under repeated application.
func SanitizeSlug(raw string) string {
	if raw == "/" {
		return raw
	}
	s := strings.TrimPrefix(raw, "/")
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	s = slugReplacer.Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return "/" + url.PathEscape(s)
}

// NormalizeID returns the canonical dashed form of a page id, or the input
// unchanged when it is not a uuid.
func NormalizeID(id string) string {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return id
	}
	return u.String()
}

// CompactID strips dashes from an id.
func CompactID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
