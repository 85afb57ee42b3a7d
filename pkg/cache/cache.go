// Package cache stores composed books and feature records between runs.
//
// The [Cache] interface is a byte store with per-entry TTL. Three backends
// ship with photobook: [FileCache] for the CLI, [RedisCache] for shared
// deployments and [NullCache] when caching is disabled. Keys are derived by a
// [Keyer] so the same input and knobs always map to the same entry.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	BookTTL     = 24 * time.Hour
	FeaturesTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// BookKeyOpts holds everything besides the photos that changes a composed book.
type BookKeyOpts struct {
	CatalogHash string `json:"catalog"`
	Capacity    int    `json:"capacity"`
	Seed        uint64 `json:"seed"`
	Dedupe      bool   `json:"dedupe"`
	// Knobs is a canonical encoding of the scoring and variety knobs.
	Knobs string `json:"knobs"`
	// Inputs hashes features, feedback bias and overrides.
	Inputs string `json:"inputs,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// BookKey returns the key of a composed book for the photo set hashed
	// as photosHash.
	BookKey(photosHash string, opts BookKeyOpts) string

	// FeaturesKey returns the key of the feature record of one photo.
	FeaturesKey(path string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BookKey implements Keyer.
func (DefaultKeyer) BookKey(photosHash string, opts BookKeyOpts) string {
	return hashKey("book", photosHash, opts)
}

// FeaturesKey implements Keyer.
func (DefaultKeyer) FeaturesKey(path string) string {
	return hashKey("features", path)
}
