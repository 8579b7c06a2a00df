// Package pull runs one complete mirror of the remote outline into markdown.
//
// A run has three stages. Stage 1 walks the outline and registers every page.
// Stage 2 renders and writes each registered page. Stage 3 deletes files a
// previous run produced that this run did not, then moves custom pages out of
// their staging directory. Every run recomputes everything from scratch.
package pull

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/frontmatter"
	"git.home.luguber.info/inful/docnotion/internal/hooks"
	"git.home.luguber.info/inful/docnotion/internal/layout"
	"git.home.luguber.info/inful/docnotion/internal/links"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/markdown"
	"git.home.luguber.info/inful/docnotion/internal/metrics"
	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/outline"
	"git.home.luguber.info/inful/docnotion/internal/output"
	"git.home.luguber.info/inful/docnotion/internal/page"
	"git.home.luguber.info/inful/docnotion/internal/render"
	"git.home.luguber.info/inful/docnotion/internal/retry"
)

// StatusAny disables the status filter.
const StatusAny = "*"

// Source is the remote content a run reads.
type Source interface {
	outline.Source
	Ping(ctx context.Context, rootID string) error
}

// Sink is where a run writes. ReadFile returns nil for a missing file.
type Sink interface {
	layout.Sink
	ReadFile(path string) ([]byte, error)
}

// Options are the per-run settings.
type Options struct {
	RootPage        string
	MarkdownPath    string
	CustomPagesPath string
	StatusTag       string
	OutlineTitle    string
	Fingerprint     bool
	// Confirm decides whether an existing custom page may be overwritten.
	Confirm output.Confirm
}

// Counts are the per-run page tallies.
type Counts struct {
	OutputNormally       int `json:"output_normally"`
	SkippedBecauseEmpty  int `json:"skipped_because_empty"`
	SkippedBecauseStatus int `json:"skipped_because_status"`
	Unchanged            int `json:"unchanged"`
}

// Result summarizes a completed run.
type Result struct {
	Counts       Counts
	Pages        int
	Duplicates   int
	Collisions   int
	FilesRemoved int
	CustomPages  output.MoveResult
	Duration     time.Duration
}

// Puller runs pulls. A Puller may run many times; no state survives between runs.
type Puller struct {
	source   Source
	sink     Sink
	hooks    *hooks.Set
	retry    *retry.Executor
	recorder metrics.Recorder
	logger   *slog.Logger
	opts     Options
}

// Option configures a Puller.
type Option func(*Puller)

func WithRetry(e *retry.Executor) Option     { return func(p *Puller) { p.retry = e } }
func WithRecorder(r metrics.Recorder) Option { return func(p *Puller) { p.recorder = r } }
func WithLogger(l *slog.Logger) Option       { return func(p *Puller) { p.logger = l } }
func WithHooks(set *hooks.Set) Option        { return func(p *Puller) { p.hooks = set } }

func New(source Source, sink Sink, opts Options, options ...Option) *Puller {
	p := &Puller{
		source:   source,
		sink:     sink,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		opts:     opts,
	}
	for _, o := range options {
		o(p)
	}
	if p.hooks == nil {
		p.hooks = hooks.NewSet()
	}
	if p.retry == nil {
		p.retry = retry.NewExecutor(retry.DefaultPolicy(), retry.WithLogger(p.logger))
	}
	if p.opts.StatusTag == "" {
		p.opts.StatusTag = StatusAny
	}
	p.opts.RootPage = page.NormalizeID(p.opts.RootPage)
	return p
}

// run holds the state of one pull.
type run struct {
	*Puller
	registry *page.Registry
	layout   *layout.Strategy
	resolver *links.Resolver
	renderer *render.Renderer

	walkStats outline.Stats
	counts    Counts
}

// Run performs one complete pull.
func (p *Puller) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	res, err := p.run(ctx)
	res.Duration = time.Since(started)
	p.recorder.ObserveRunDuration(res.Duration)
	switch {
	case err == nil:
		p.recorder.IncRunOutcome(metrics.RunSuccess)
	case ctx.Err() != nil:
		p.recorder.IncRunOutcome(metrics.RunCanceled)
	default:
		p.recorder.IncRunOutcome(metrics.RunFailed)
	}
	return res, err
}

func (p *Puller) run(ctx context.Context) (Result, error) {
	r := &run{Puller: p, registry: page.NewRegistry()}
	r.layout = layout.New(p.opts.MarkdownPath, p.logger)
	r.resolver = links.NewResolver(r.registry, r.layout, p.hooks, p.logger)
	r.renderer = render.New(p.source, p.hooks, p.logger)

	var res Result
	if err := r.layout.SetRootDirectory(p.opts.MarkdownPath); err != nil {
		return res, err
	}

	p.logger.Info("Connecting to the workspace", logfields.PageID(p.opts.RootPage))
	if err := p.source.Ping(ctx, p.opts.RootPage); err != nil {
		return res, err
	}

	if err := r.stage(ctx, "walk", "Stage 1: walk children of the outline page, looking for pages", r.walk); err != nil {
		return res, err
	}
	res.Pages = r.registry.Len()
	res.Duplicates = r.walkStats.Duplicates
	res.Collisions = len(r.layout.Collisions())
	r.counts.SkippedBecauseEmpty = r.walkStats.SkippedEmpty
	p.recorder.SetPagesDiscovered(res.Pages)
	p.logger.Info("Found pages", slog.Int("count", res.Pages), slog.Int("path_collisions", res.Collisions))

	if err := r.stage(ctx, "output", "Stage 2: convert pages to markdown and save locally", r.outputPages); err != nil {
		return res, err
	}

	if err := r.stage(ctx, "cleanup", "Stage 3: clean up old files", func(context.Context) error {
		removed, err := r.layout.CleanupOldFiles(p.sink)
		res.FilesRemoved = removed
		p.recorder.SetFilesRemoved(removed)
		if err != nil {
			return err
		}
		res.CustomPages, err = r.moveCustomPages()
		return err
	}); err != nil {
		return res, err
	}

	res.Counts = r.counts
	p.recorder.AddPageOutcome(metrics.OutcomeOutputNormally, r.counts.OutputNormally)
	p.recorder.AddPageOutcome(metrics.OutcomeSkippedBecauseEmpty, r.counts.SkippedBecauseEmpty)
	p.recorder.AddPageOutcome(metrics.OutcomeSkippedBecauseStatus, r.counts.SkippedBecauseStatus)
	p.recorder.AddPageOutcome(metrics.OutcomeUnchanged, r.counts.Unchanged)
	p.logger.Info("Pull complete",
		slog.Int("output_normally", r.counts.OutputNormally),
		slog.Int("skipped_because_empty", r.counts.SkippedBecauseEmpty),
		slog.Int("skipped_because_status", r.counts.SkippedBecauseStatus),
		slog.Int("unchanged", r.counts.Unchanged),
		slog.Int("files_removed", res.FilesRemoved))
	return res, nil
}

func (r *run) stage(ctx context.Context, name, banner string, fn func(context.Context) error) error {
	r.logger.Info(banner, logfields.Stage(name))
	started := time.Now()
	err := fn(ctx)
	r.recorder.ObserveStageDuration(name, time.Since(started))
	if err != nil {
		r.logger.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
	}
	return err
}

func (r *run) walk(ctx context.Context) error {
	w := outline.NewWalker(r.source, r.registry, r.layout, r.opts.RootPage,
		outline.WithOutlineTitle(r.opts.OutlineTitle),
		outline.WithLogger(r.logger))
	err := w.Run(ctx)
	r.walkStats = w.Stats()
	if err != nil {
		return err
	}
	return r.layout.AssignPaths(r.registry.All())
}

func (r *run) outputPages(ctx context.Context) error {
	for _, pg := range r.registry.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.layout.PageWasSeen(pg)

		if pg.Kind() == page.CollectionEntry && r.opts.StatusTag != StatusAny {
			status, err := pg.Properties().StatusOrFail(pg.ID)
			if err != nil {
				return err
			}
			if status != r.opts.StatusTag {
				r.logger.Info("Skipping page because of its status",
					logfields.PageID(pg.ID),
					logfields.PageTitle(pg.NameOrTitle()),
					slog.String("status", status),
					slog.String("required", r.opts.StatusTag))
				r.counts.SkippedBecauseStatus++
				continue
			}
		}

		if err := r.outputPage(ctx, pg); err != nil {
			return errors.WrapError(err, errors.GetCategory(err), "failed to output page").
				WithContext("page_id", pg.ID).
				WithContext("title", pg.NameOrTitle()).
				Build()
		}
	}
	return r.layout.WriteCategoryFiles(r.sink)
}

func (r *run) outputPage(ctx context.Context, pg *page.Page) error {
	blocks, err := r.source.FetchChildren(ctx, pg.ID)
	if err != nil {
		return err
	}
	blocks = render.FilterBlocks(blocks)

	// Rendering mutates blocks, so each attempt works on its own copy. Only
	// transient errors get another attempt. The remote client retries its own
	// calls and reports exhaustion as fatal, so this loop covers transient
	// errors a Source hands back without retrying them itself.
	doc, err := retry.DoValue(ctx, r.retry, "render page", func(ctx context.Context) (render.Document, error) {
		clone, err := notion.CloneBlocks(blocks)
		if err != nil {
			return render.Document{}, errors.WrapError(err, errors.CategoryInternal, "failed to copy blocks").Build()
		}
		return r.renderer.Render(ctx, clone)
	})
	if err != nil {
		return err
	}

	body := r.resolver.Fix(doc.Markdown)
	body, regexImports := r.hooks.ApplyRegex(body, markdown.CodeRanges, r.logger)
	imports := dedupe(append(doc.Imports, regexImports...))

	fields := frontmatter.ForPage(pg, r.layout.LinkPathForPage(pg))
	content, fingerprint, err := frontmatter.Compose(fields, imports, body, r.opts.Fingerprint)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to build front matter").Build()
	}

	path := r.layout.PathForPage(pg, ".md")
	if r.opts.Fingerprint {
		existing, err := r.sink.ReadFile(path)
		if err != nil {
			return err
		}
		if frontmatter.Unchanged(existing, fingerprint) {
			r.logger.Debug("Page unchanged", logfields.PageID(pg.ID), logfields.Path(path))
			r.counts.Unchanged++
			return nil
		}
	}
	r.logger.Debug("Writing page", logfields.PageID(pg.ID), logfields.Path(path))
	if err := r.sink.WriteFile(path, content); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", path).
			Build()
	}
	r.counts.OutputNormally++
	return nil
}

func (r *run) moveCustomPages() (output.MoveResult, error) {
	if r.opts.CustomPagesPath == "" {
		return output.MoveResult{}, nil
	}
	staging := filepath.Join(r.layout.Root(), layout.CustomDir)
	res, err := output.MoveCustomPages(staging, r.opts.CustomPagesPath, r.opts.Confirm, r.logger)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to move custom pages").Build()
	}
	return res, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
