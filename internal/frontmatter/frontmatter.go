// Package frontmatter builds and reads the YAML header written at the top of
// every generated page.
package frontmatter

import (
	"bytes"
	"errors"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnotion/internal/page"
)

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

const delimiter = "---\n"

// Fields are the front matter keys the site generator reads. Field order is
// the order they are written in.
type Fields struct {
	Title           string   `yaml:"title"`
	SidebarPosition int      `yaml:"sidebar_position"`
	Slug            string   `yaml:"slug"`
	Keywords        []string `yaml:"keywords,flow,omitempty"`
	Fingerprint     string   `yaml:"fingerprint,omitempty"`
}

// ForPage returns the front matter of p. slug is the page's link path.
func ForPage(p *page.Page, slug string) Fields {
	return Fields{
		Title:           strings.ReplaceAll(p.NameOrTitle(), ":", "-"),
		SidebarPosition: p.Order,
		Slug:            slug,
		Keywords:        splitKeywords(p.Keywords()),
	}
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Marshal serializes f without delimiters.
func (f Fields) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Content is the part of a page below the front matter: the import lines
// followed by the markdown body.
func Content(imports []string, body string) string {
	body = strings.TrimRight(body, "\n") + "\n"
	if len(imports) == 0 {
		return body
	}
	return strings.Join(imports, "\n") + "\n\n" + body
}

// Fingerprint hashes the front matter (ignoring any existing fingerprint) together with content.
func Fingerprint(f Fields, content string) (string, error) {
	f.Fingerprint = ""
	raw, err := f.Marshal()
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(raw), "\n"), content), nil
}

// Compose assembles a complete page. With withFingerprint set, the returned
// fingerprint is also embedded in the front matter.
func Compose(f Fields, imports []string, body string, withFingerprint bool) (doc []byte, fingerprint string, err error) {
	content := Content(imports, body)
	if withFingerprint {
		fingerprint, err = Fingerprint(f, content)
		if err != nil {
			return nil, "", err
		}
		f.Fingerprint = fingerprint
	}
	raw, err := f.Marshal()
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	buf.Grow(len(raw) + len(content) + 2*len(delimiter) + 1)
	buf.WriteString(delimiter)
	buf.Write(raw)
	buf.WriteString(delimiter)
	buf.WriteString("\n")
	buf.WriteString(content)
	return buf.Bytes(), fingerprint, nil
}

// Split separates front matter from the rest of a document. had is false when
// the document does not start with a delimiter.
func Split(doc []byte) (raw, rest []byte, had bool, err error) {
	doc = bytes.ReplaceAll(doc, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(doc, []byte(delimiter)) {
		return nil, doc, false, nil
	}
	start := len(delimiter)
	if bytes.HasPrefix(doc[start:], []byte(delimiter)) {
		return []byte{}, doc[start+len(delimiter):], true, nil
	}
	idx := bytes.Index(doc[start:], []byte("\n"+delimiter))
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	end := start + idx + 1
	return doc[start:end], doc[end+len(delimiter):], true, nil
}

// Parse reads the front matter of a generated page.
func Parse(doc []byte) (Fields, []byte, error) {
	raw, rest, had, err := Split(doc)
	if err != nil || !had {
		return Fields{}, rest, err
	}
	var f Fields
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fields{}, nil, err
	}
	return f, rest, nil
}

// Unchanged reports whether existing already carries fingerprint, meaning a
// rewrite would produce the same page.
func Unchanged(existing []byte, fingerprint string) bool {
	if fingerprint == "" || len(existing) == 0 {
		return false
	}
	f, _, err := Parse(existing)
	if err != nil {
		return false
	}
	return f.Fingerprint == fingerprint
}
