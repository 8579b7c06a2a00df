package page

import (
	"fmt"
	"slices"
)

// Registry is the append-only, ordered set of pages discovered in one run.
// It is written only during traversal and read-only after Freeze.
type Registry struct {
	pages  []*Page
	byID   map[string]*Page
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Page)}
}

// Add appends p. Duplicate ids and additions after Freeze are rejected.
func (r *Registry) Add(p *Page) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot add page %s", p.ID)
	}
	if _, dup := r.byID[p.ID]; dup {
		return fmt.Errorf("page %s already registered", p.ID)
	}
	r.pages = append(r.pages, p)
	r.byID[p.ID] = p
	r.byID[CompactID(p.ID)] = p
	return nil
}

// Freeze marks the end of traversal.
func (r *Registry) Freeze() { r.frozen = true }

func (r *Registry) Frozen() bool { return r.frozen }

// Find resolves a link id in dashed or undashed form, ignoring any fragment.
func (r *Registry) Find(linkID string) (*Page, bool) {
	base, _ := splitFragment(linkID)
	if p, ok := r.byID[base]; ok {
		return p, true
	}
	if p, ok := r.byID[CompactID(base)]; ok {
		return p, true
	}
	return nil, false
}

// All returns the pages in discovery order. The slice is a copy.
func (r *Registry) All() []*Page { return slices.Clone(r.pages) }

func (r *Registry) Len() int { return len(r.pages) }
