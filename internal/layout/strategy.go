package layout

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

// CustomDir is the staging directory (under the root) for custom pages.
const CustomDir = "tmp"

// CategoryFile is the per-level sidebar metadata file.
const CategoryFile = "_category_.json"

// Sink is the output boundary: full overwrite and delete.
type Sink interface {
	WriteFile(path string, content []byte) error
	DeleteFile(path string) error
}

// Level is one directory in the generated hierarchy.
type Level struct {
	Context string
	Dir     string
	Label   string
	Order   int
	Parent  string
	live    map[string]struct{}
}

// Live returns the paths marked live in this level, sorted.
func (l *Level) Live() []string {
	out := make([]string, 0, len(l.live))
	for p := range l.live {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Strategy assigns hierarchical output paths and tracks liveness for one run.
// It is mutated during traversal and output, then consulted read-only by cleanup.
type Strategy struct {
	root     string
	levels   map[string]*Level
	ordered  []*Level
	memo     map[string]string     // page id -> relative path
	owners   map[string]*page.Page // relative path -> page
	clashes  []Collision
	live     map[string]struct{}
	existing []string
	logger   *slog.Logger
}

func New(root string, logger *slog.Logger) *Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Strategy{
		root:   filepath.Clean(root),
		levels: map[string]*Level{"": {Context: "", Dir: filepath.Clean(root), live: map[string]struct{}{}}},
		memo:   map[string]string{},
		owners: map[string]*page.Page{},
		live:   map[string]struct{}{},
		logger: logger,
	}
}

func (s *Strategy) Root() string { return s.root }

// SetRootDirectory snapshots the markdown and category files already present
// under dir so stale ones can be removed after the run.
func (s *Strategy) SetRootDirectory(dir string) error {
	s.root = filepath.Clean(dir)
	s.levels[""].Dir = s.root
	s.existing = nil
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == s.root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".mdx") || name == CategoryFile {
			s.existing = append(s.existing, p)
		}
		return nil
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to scan output directory").
			Fatal().
			WithContext("path", s.root).
			Build()
	}
	return nil
}

// Existing returns the snapshot taken by SetRootDirectory.
func (s *Strategy) Existing() []string { return slices.Clone(s.existing) }

// NewLevel opens a level below parentContext and returns its context. The
// zero-padded order prefix makes directory order match sibling order.
func (s *Strategy) NewLevel(basePath string, order int, parentContext, name string) string {
	ctx := strings.TrimSuffix(parentContext, "/") + "/" + fmt.Sprintf("%03d", order) + "-" + sanitizeName(name)
	if _, ok := s.levels[ctx]; !ok {
		lvl := &Level{
			Context: ctx,
			Dir:     filepath.Join(basePath, filepath.FromSlash(ctx)),
			Label:   name,
			Order:   order,
			Parent:  parentContext,
			live:    map[string]struct{}{},
		}
		s.levels[ctx] = lvl
		s.ordered = append(s.ordered, lvl)
	}
	s.logger.Debug("Opened layout level", logfields.LayoutContext(ctx), logfields.Order(order))
	return ctx
}

// Levels returns the opened levels in creation order.
func (s *Strategy) Levels() []*Level { return slices.Clone(s.ordered) }

func (s *Strategy) fileName(p *page.Page) string {
	if p.Subtype() == page.CategoryIndex {
		return "index"
	}
	name := p.NameForFile()
	if name == "index" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return sanitizeName(name)
}

// relPath computes the slash-separated path below the root, without extension,
// resolving collisions with a page id suffix. The result is memoized.
func (s *Strategy) relPath(p *page.Page) string {
	if rel, ok := s.memo[p.ID]; ok {
		return rel
	}
	file := s.fileName(p)
	dir := strings.TrimPrefix(p.LayoutContext, "/")
	if p.Subtype() == page.Custom {
		dir = CustomDir
	}
	rel := path.Join(dir, file)
	if owner, taken := s.owners[rel]; taken && owner.ID != p.ID {
		s.clashes = append(s.clashes, Collision{
			Path:     rel,
			Owner:    owner.ID,
			PageID:   p.ID,
			Explicit: explicitName(owner) && explicitName(p),
		})
		s.logger.Warn("Output path already used by another page, adding page id",
			logfields.PageID(p.ID), logfields.Path(rel), slog.String("owner", owner.ID))
		rel = path.Join(dir, file+"-"+p.ID)
	}
	s.owners[rel] = p
	s.memo[p.ID] = rel
	return rel
}

// Collision records two pages whose file names mapped to the same path. The
// later page was moved to a path carrying its id.
type Collision struct {
	Path     string
	Owner    string
	PageID   string
	Explicit bool // both names came from explicit Slug properties
}

// explicitName reports whether p's file name comes from its Slug property.
func explicitName(p *page.Page) bool {
	return p.Subtype() != page.CategoryIndex && p.Kind() == page.CollectionEntry && p.HasExplicitSlug()
}

// Collisions returns the path collisions seen so far, in discovery order.
func (s *Strategy) Collisions() []Collision { return slices.Clone(s.clashes) }

// AssignPaths computes the path of every page in order. Two explicit slugs that
// map to the same path are a validation error naming both pages; other
// collisions stay resolved by suffix and are reported through Collisions.
func (s *Strategy) AssignPaths(pages []*page.Page) error {
	for _, p := range pages {
		s.relPath(p)
	}
	for _, c := range s.clashes {
		if c.Explicit {
			return errors.ValidationError("two pages use the same slug").
				WithContext("path", c.Path).
				WithContext("page_id", c.PageID).
				WithContext("other_page_id", c.Owner).
				WithContext("hint", "give one of the pages a different Slug property").
				Build()
		}
	}
	return nil
}

// PathForPage returns the filesystem path of p's output file.
func (s *Strategy) PathForPage(p *page.Page, ext string) string {
	return filepath.Join(s.root, filepath.FromSlash(s.relPath(p))) + ext
}

// LinkPathForPage returns the site URL path of p. Custom pages live at the site root.
func (s *Strategy) LinkPathForPage(p *page.Page) string {
	rel := s.relPath(p)
	if p.Subtype() == page.Custom {
		return "/" + path.Base(rel)
	}
	return "/" + rel
}

// PageWasSeen marks p's markdown output as live for this run.
func (s *Strategy) PageWasSeen(p *page.Page) {
	out := s.PathForPage(p, ".md")
	s.live[out] = struct{}{}
	ctx := p.LayoutContext
	if p.Subtype() == page.Custom {
		ctx = ""
	}
	if lvl, ok := s.levels[ctx]; ok {
		lvl.live[out] = struct{}{}
	}
}

// MarkLive marks an arbitrary output file as live.
func (s *Strategy) MarkLive(p string) { s.live[filepath.Clean(p)] = struct{}{} }

// IsLive reports whether p was marked live this run.
func (s *Strategy) IsLive(p string) bool {
	_, ok := s.live[filepath.Clean(p)]
	return ok
}

type categoryFile struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
}

// WriteCategoryFiles writes a _category_.json for every opened level.
func (s *Strategy) WriteCategoryFiles(sink Sink) error {
	for _, lvl := range s.ordered {
		data, err := json.MarshalIndent(categoryFile{Position: lvl.Order, Label: lvl.Label}, "", "  ")
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to encode category file").Build()
		}
		out := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(lvl.Context, "/")), CategoryFile)
		if err := sink.WriteFile(out, append(data, '\n')); err != nil {
			return err
		}
		s.live[out] = struct{}{}
		lvl.live[out] = struct{}{}
	}
	return nil
}

// CleanupOldFiles deletes every snapshotted file that was not marked live and
// returns how many were removed.
func (s *Strategy) CleanupOldFiles(sink Sink) (int, error) {
	removed := 0
	for _, p := range s.existing {
		if s.IsLive(p) {
			continue
		}
		s.logger.Info("Removing stale output file", logfields.Path(p))
		if err := sink.DeleteFile(p); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
