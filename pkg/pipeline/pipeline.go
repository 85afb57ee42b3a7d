// Package pipeline composes a photobook from a photo list.
//
// It runs the stages the CLI and any embedding service share:
//
//  1. Sort: order photos by capture time (optional)
//  2. Dedupe: drop burst near-duplicates by perceptual hash (optional)
//  3. Group: split the stream into page-sized groups
//  4. Select: choose a template and a photo placement per group, threading
//     the variety history from page to page
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Features = featureMap
//	result, err := runner.Compose(ctx, photos, opts)
//	if err != nil {
//	    return err
//	}
//	err = book.Export(result.Book, "book.json")
//
// [Compose] runs the stages without caching.
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/cache"
	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/grouping"
	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/scoring"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one composition run.
type Options struct {
	Grouping grouping.Options
	Scoring  scoring.Options
	// Layout holds the variety knobs. Its Rand, Features and Bias fields are
	// ignored; the pipeline derives them from Seed, Features and Bias.
	Layout layout.Options

	// Seed drives the variety tie-break; 0 uses layout.DefaultSeed.
	Seed uint64

	Sort          bool
	Dedupe        bool
	DedupeOptions features.DedupeOptions

	// Catalog defaults to catalog.Default().
	Catalog *catalog.Catalog

	// Features are the prefetched optional signals of the photos.
	Features features.Map

	// Bias is added to template scores, see package feedback.
	Bias map[string]float64

	// Overrides pins 1-based page numbers to template ids.
	Overrides map[int]string

	// Refresh recomposes even when a cached book exists.
	Refresh bool

	Logger *log.Logger

	validated bool
}

// DefaultOptions returns the standard composition settings.
func DefaultOptions() Options {
	return Options{
		Grouping:      grouping.DefaultOptions(),
		Scoring:       scoring.DefaultOptions(),
		Layout:        layout.DefaultOptions(),
		Seed:          layout.DefaultSeed,
		Sort:          true,
		DedupeOptions: features.DefaultDedupeOptions(),
	}
}

// ValidateAndSetDefaults checks the knobs and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Seed == 0 {
		o.Seed = layout.DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := o.Scoring.Validate(); err != nil {
		return err
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	for page, id := range o.Overrides {
		if page < 1 {
			return errors.Invalid("overrides", "page numbers start at 1, got %d", page)
		}
		if err := errors.ValidateTemplateID(id); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// knobs is the canonical encoding of every option that changes a book.
type knobs struct {
	Capacity  int
	Hero      grouping.HeroOptions
	Weights   scoring.Weights
	Bonuses   scoring.Bonuses
	Variety   [7]float64
	Flags     [2]bool
	Sort      bool
	Dedupe    features.DedupeOptions
	Bias      map[string]float64
	Overrides map[int]string
}

// BookKeyOpts returns the cache key options for a composed book.
func (o *Options) BookKeyOpts() cache.BookKeyOpts {
	l := o.Layout
	k := knobs{
		Capacity: grouping.ClampCapacity(o.Grouping.Capacity),
		Hero:     o.Grouping.Hero,
		Weights:  o.Scoring.Weights,
		Bonuses:  o.Scoring.Bonuses,
		Variety: [7]float64{
			l.HistPenalty, l.RepeatPenalty, float64(l.RepeatWindow), float64(l.TopK),
			l.PickRandomness, l.SecondWithin, l.LowScoreThreshold,
		},
		Flags:     [2]bool{l.LowScoreRetry, l.FaceCheck},
		Sort:      o.Sort,
		Dedupe:    o.DedupeOptions,
		Bias:      o.Bias,
		Overrides: o.Overrides,
	}
	knobsData, _ := json.Marshal(k)
	featuresHash, _ := cache.HashJSON(o.Features)

	var catalogHash string
	if o.Catalog != nil {
		catalogHash, _ = cache.HashJSON(o.Catalog.All())
	}
	return cache.BookKeyOpts{
		CatalogHash: catalogHash,
		Capacity:    k.Capacity,
		Seed:        o.Seed,
		Dedupe:      o.Dedupe,
		Knobs:       cache.Hash(knobsData),
		Inputs:      featuresHash,
	}
}

// =============================================================================
// Result
// =============================================================================

// Stats contains composition statistics.
type Stats struct {
	Photos    int
	Deduped   int
	Groups    int
	HeroPages int
	Fallbacks int
	Overrides int
	Unplaced  int

	GroupTime  time.Duration
	SelectTime time.Duration
}

// CacheInfo tracks whether the book came from the cache.
type CacheInfo struct {
	BookHit bool
	Key     string
}
