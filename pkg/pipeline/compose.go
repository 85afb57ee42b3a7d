package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/photobook/pkg/book"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/grouping"
	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/observability"
	"github.com/matzehuels/photobook/pkg/photo"
	"github.com/matzehuels/photobook/pkg/scoring"
)

// Compose runs sort, dedupe, group and select without caching. An empty
// photo list yields an empty book. Only configuration errors and
// cancellation abort a run; a page that cannot be scored degrades to the
// full-bleed fallback.
func Compose(ctx context.Context, photos []photo.Photo, opts Options) (*book.Book, Stats, error) {
	var stats Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}
	logger := opts.Logger
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnComposeStart(ctx, len(photos))
	b, stats, err := compose(ctx, photos, &opts)
	hooks.OnComposeComplete(ctx, stats.Groups, time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}

	logger.Info("composed book",
		"photos", stats.Photos,
		"pages", len(b.Pages),
		"fallbacks", stats.Fallbacks,
		"duration", time.Since(start).Round(time.Millisecond))
	return b, stats, nil
}

func compose(ctx context.Context, photos []photo.Photo, opts *Options) (*book.Book, Stats, error) {
	stats := Stats{Photos: len(photos)}
	logger := opts.Logger
	hooks := observability.Pipeline()

	photos = slices.Clone(photos)
	for i := range photos {
		photos[i] = photos[i].Normalize()
	}
	if opts.Sort {
		photos = photo.SortChronological(photos)
	}
	if opts.Dedupe {
		before := len(photos)
		photos = features.DedupeBursts(photos, opts.Features, opts.DedupeOptions)
		stats.Deduped = before - len(photos)
		logger.Debug("dedupe by phash", "before", before, "after", len(photos))
	}

	t := time.Now()
	gOpts := opts.Grouping
	gOpts.Logger = logger
	groups := grouping.New(gOpts).Group(photos)
	stats.GroupTime = time.Since(t)
	stats.Groups = len(groups)
	hooks.OnGrouped(ctx, len(groups), stats.GroupTime)
	logger.Debug("grouped", "groups", len(groups), "sizes", grouping.Sizes(groups))

	sel, err := newSelector(opts)
	if err != nil {
		return nil, stats, err
	}

	t = time.Now()
	pages := make([]book.Page, 0, len(groups))
	var history layout.History
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		number := i + 1

		page, next, err := choosePage(ctx, sel, g, number, opts, history)
		if err != nil {
			return nil, stats, err
		}
		history = next

		if g.Hero {
			stats.HeroPages++
		}
		if page.Fallback {
			stats.Fallbacks++
		}
		if page.Override {
			stats.Overrides++
		}
		stats.Unplaced += len(page.Unplaced)
		hooks.OnPageChosen(ctx, number, page.TemplateID, page.Score, page.Fallback)

		pages = append(pages, book.Page{Number: number, PageLayout: page, Photos: g.Photos})
	}
	stats.SelectTime = time.Since(t)

	return book.New(len(photos), pages), stats, nil
}

func newSelector(opts *Options) (*layout.Selector, error) {
	sOpts := opts.Scoring
	sOpts.Logger = opts.Logger
	if len(opts.Features) > 0 {
		sOpts.Features = opts.Features
	}
	scorer, err := scoring.New(sOpts)
	if err != nil {
		return nil, err
	}

	lOpts := opts.Layout
	lOpts.Rand = layout.NewRand(opts.Seed)
	lOpts.Bias = opts.Bias
	lOpts.Logger = opts.Logger
	lOpts.Features = nil
	if len(opts.Features) > 0 {
		lOpts.Features = opts.Features
	}
	return layout.New(opts.Catalog, scorer, lOpts)
}

// choosePage honors a page override when one is set and usable; an unknown
// or unscorable override falls back to regular selection.
func choosePage(ctx context.Context, sel *layout.Selector, g grouping.Group, number int, opts *Options, h layout.History) (layout.PageLayout, layout.History, error) {
	if id, ok := opts.Overrides[number]; ok {
		page, next, err := sel.ChooseTemplate(g.Photos, id, h)
		if err == nil {
			opts.Logger.Debug("override", "page", number, "tpl", id)
			return page, next, nil
		}
		if errors.Fatal(err) {
			return layout.PageLayout{}, h, err
		}
		opts.Logger.Warn("override ignored", "page", number, "tpl", id, "err", err)
	}
	return sel.Choose(ctx, g.Photos, h)
}
