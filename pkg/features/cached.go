package features

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/cache"
)

// CachedStore fronts a remote Store with a Cache. Reads are served from the
// cache where possible; only the misses reach the backend. Cache failures
// are logged and never fail a lookup.
type CachedStore struct {
	Store
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCachedStore wraps store. A nil keyer uses cache.NewDefaultKeyer and a
// ttl <= 0 uses cache.FeaturesTTL.
func NewCachedStore(store Store, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.FeaturesTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedStore{Store: store, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// GetMany implements Store.
func (s *CachedStore) GetMany(ctx context.Context, paths []string) (Map, error) {
	out := make(Map, len(paths))
	var misses []string
	for _, p := range paths {
		data, ok, err := s.cache.Get(ctx, s.keyer.FeaturesKey(p))
		if err != nil {
			s.logger.Debug("features cache read failed", "path", p, "err", err)
		}
		var f Features
		if ok && json.Unmarshal(data, &f) == nil && f.Path == p {
			out[p] = f
			continue
		}
		misses = append(misses, p)
	}
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := s.Store.GetMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	for p, f := range fetched {
		out[p] = f
		s.remember(ctx, f)
	}
	return out, nil
}

// Put implements Store, refreshing the cached copy.
func (s *CachedStore) Put(ctx context.Context, f Features) error {
	if err := s.Store.Put(ctx, f); err != nil {
		return err
	}
	s.remember(ctx, f)
	return nil
}

func (s *CachedStore) remember(ctx context.Context, f Features) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.keyer.FeaturesKey(f.Path), data, s.ttl); err != nil {
		s.logger.Debug("features cache write failed", "path", f.Path, "err", err)
	}
}
