package outline

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docnotion/internal/layout"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

// DefaultOutlineTitle names the container whose subtree becomes the sidebar.
const DefaultOutlineTitle = "Outline"

// Source is the remote content the walker reads.
type Source interface {
	FetchMetadata(ctx context.Context, id string) (*notion.PageMetadata, error)
	FetchChildren(ctx context.Context, id string) ([]notion.Block, error)
}

// Stats counts what the walk did.
type Stats struct {
	Emitted      int
	SkippedEmpty int
	Duplicates   int
}

// Walker discovers and classifies pages. One Walker serves one run; it owns
// no global state beyond the registry and layout it was given.
type Walker struct {
	source       Source
	registry     *page.Registry
	layout       *layout.Strategy
	rootID       string
	outlineTitle string
	logger       *slog.Logger
	stats        Stats
}

// Option configures a Walker.
type Option func(*Walker)

func WithOutlineTitle(title string) Option {
	return func(w *Walker) {
		if title != "" {
			w.outlineTitle = title
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(w *Walker) { w.logger = l } }

func NewWalker(source Source, registry *page.Registry, strategy *layout.Strategy, rootID string, opts ...Option) *Walker {
	w := &Walker{
		source:       source,
		registry:     registry,
		layout:       strategy,
		rootID:       page.NormalizeID(rootID),
		outlineTitle: DefaultOutlineTitle,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Walker) Stats() Stats { return w.stats }

// Run walks the whole tree from the root page and freezes the registry.
func (w *Walker) Run(ctx context.Context) error {
	if err := w.Walk(ctx, "", w.rootID, w.rootID, 0, true); err != nil {
		return err
	}
	w.registry.Freeze()
	return nil
}

// Walk visits nodeID, found under parentID at position order, in layout
// context layoutContext. Siblings are visited strictly one after another.
func (w *Walker) Walk(ctx context.Context, layoutContext, parentID, nodeID string, order int, isRoot bool) error {
	meta, err := w.source.FetchMetadata(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("fetch page %s: %w", nodeID, err)
	}
	current := page.New(meta, parentID, order, layoutContext, true)

	blocks, err := w.source.FetchChildren(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("fetch children of %s: %w", nodeID, err)
	}
	info := ContentInfo(blocks)

	rule := Classify(Facts{
		IsRoot:           isRoot || page.CompactID(nodeID) == page.CompactID(parentID),
		IsTopLevelCustom: w.isTopLevelCustom(current, parentID, nodeID),
		HasContent:       info.HasContent,
		ChildCount:       len(info.Children),
		LinkCount:        len(info.Links),
	})
	w.logger.Info("Scanned page",
		logfields.PageID(current.ID),
		logfields.PageTitle(current.NameOrTitle()),
		logfields.LayoutContext(layoutContext),
		logfields.Rule(rule.String()),
		slog.Int("children", len(info.Children)),
		slog.Int("links", len(info.Links)))

	switch rule {
	case RuleRoot:
		return w.descend(ctx, layoutContext, current.ID, info)

	case RuleCustom:
		return w.emit(current, page.Custom)

	case RuleCategoryIndex:
		levelContext := w.layout.NewLevel(w.layout.Root(), current.Order, layoutContext, current.NameOrTitle())
		current.LayoutContext = levelContext
		if err := w.emit(current, page.CategoryIndex); err != nil {
			return err
		}
		return w.descend(ctx, levelContext, current.ID, info)

	case RuleContent:
		return w.emit(current, page.Content)

	case RuleLevel:
		levelContext := layoutContext
		if current.NameOrTitle() != w.outlineTitle {
			levelContext = w.layout.NewLevel(w.layout.Root(), current.Order, layoutContext, current.NameOrTitle())
		}
		return w.descend(ctx, levelContext, current.ID, info)

	default:
		w.logger.Warn("Page has no content, links or child pages; skipping",
			logfields.PageID(current.ID), logfields.PageTitle(current.NameOrTitle()))
		w.stats.SkippedEmpty++
		return nil
	}
}

func (w *Walker) isTopLevelCustom(p *page.Page, parentID, nodeID string) bool {
	return p.NameOrTitle() != w.outlineTitle && w.isRootID(parentID) && !w.isRootID(nodeID)
}

// isRootID compares ids with dashes removed.
func (w *Walker) isRootID(id string) bool {
	return page.CompactID(id) == page.CompactID(w.rootID)
}

// descend visits child pages, then link targets, in the given context.
func (w *Walker) descend(ctx context.Context, layoutContext, parentID string, info Info) error {
	for _, child := range info.Children {
		if err := w.Walk(ctx, layoutContext, parentID, child.ID, child.Order, false); err != nil {
			return err
		}
	}
	for _, link := range info.Links {
		if err := w.visitLink(ctx, layoutContext, parentID, link); err != nil {
			return err
		}
	}
	return nil
}

// visitLink records a link target as a leaf. Its children are never fetched.
func (w *Walker) visitLink(ctx context.Context, layoutContext, parentID string, link Ref) error {
	meta, err := w.source.FetchMetadata(ctx, link.ID)
	if err != nil {
		return fmt.Errorf("fetch linked page %s: %w", link.ID, err)
	}
	target := page.New(meta, parentID, link.Order, layoutContext, false)
	rule := Classify(Facts{
		IsTopLevelCustom: w.isTopLevelCustom(target, parentID, target.ID),
		HasContent:       true,
	})
	w.logger.Info("Scanned linked page",
		logfields.PageID(target.ID),
		logfields.PageTitle(target.NameOrTitle()),
		logfields.LayoutContext(layoutContext),
		logfields.Rule(rule.String()))

	if rule == RuleCustom {
		return w.emit(target, page.Custom)
	}
	return w.emit(target, page.Content)
}

// emit classifies p and appends it to the registry. A page reached a second
// time keeps its first placement.
func (w *Walker) emit(p *page.Page, subtype page.Subtype) error {
	if _, seen := w.registry.Find(p.ID); seen {
		w.logger.Warn("Page reached more than once; keeping the first placement",
			logfields.PageID(p.ID), logfields.PageTitle(p.NameOrTitle()))
		w.stats.Duplicates++
		return nil
	}
	if err := p.SetSubtype(subtype); err != nil {
		return err
	}
	if err := w.registry.Add(p); err != nil {
		return err
	}
	w.stats.Emitted++
	return nil
}
