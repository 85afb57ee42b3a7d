package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/book"
	"github.com/matzehuels/photobook/pkg/cache"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/observability"
	"github.com/matzehuels/photobook/pkg/photo"
)

const keyTypeBook = "book"

// Result contains the outputs of a composition run.
type Result struct {
	Book *book.Book

	// PhotosHash is the content hash of the input photo list.
	PhotosHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Runner composes books with caching. It holds no per-run state, so one
// Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses cache.NewDefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, TTL: cache.BookTTL, Logger: logger}
}

// Compose returns the book for photos, from the cache when an identical run
// was stored before.
func (r *Runner) Compose(ctx context.Context, photos []photo.Photo, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	photosHash, err := cache.HashJSON(photos)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.BookKey(photosHash, opts.BookKeyOpts())
	res := &Result{PhotosHash: photosHash, CacheInfo: CacheInfo{Key: key}}
	hooks := observability.Cache()

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "err", err)
		case hit:
			if b, err := book.ReadJSON(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, keyTypeBook)
				r.Logger.Info("using cached book", "pages", len(b.Pages))
				res.Book = b
				res.CacheInfo.BookHit = true
				res.Stats = Stats{Photos: len(photos), Groups: len(b.Pages)}
				return res, nil
			}
		}
		hooks.OnCacheMiss(ctx, keyTypeBook)
	}

	b, stats, err := Compose(ctx, photos, opts)
	if err != nil {
		return nil, err
	}
	res.Book, res.Stats = b, stats

	var buf bytes.Buffer
	if err := book.WriteJSON(b, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeBook, buf.Len())
		}
	}
	return res, nil
}

// LoadFeatures prefetches the features of photos from store. A failing
// store is logged and yields an empty map: scoring then omits the feature
// terms.
func (r *Runner) LoadFeatures(ctx context.Context, store features.Store, backend string, photos []photo.Photo) features.Map {
	if store == nil {
		return features.Map{}
	}
	start := time.Now()
	m, err := store.GetMany(ctx, photo.Paths(photos))
	observability.Features().OnFeaturesLoaded(ctx, backend, len(photos), len(m), time.Since(start), err)
	if err != nil {
		r.Logger.Warn("features unavailable, continuing without", "backend", backend, "err", err)
		return features.Map{}
	}
	r.Logger.Debug("features loaded", "backend", backend, "found", len(m), "of", len(photos))
	return m
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
