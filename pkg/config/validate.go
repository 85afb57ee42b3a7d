package config

import (
	pberrors "github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/grouping"
)

// Validate ensures the configuration is usable. Knobs owned by the engine
// packages are checked by their own Validate so the rules live in one place.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateGrouping,
		c.ScoringOptions().Validate,
		c.LayoutOptions().Validate,
		c.validatePipeline,
		c.validateFeatures,
		c.validateCache,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateGrouping() error {
	if n := c.Grouping.Capacity; n != 0 && (n < grouping.MinCapacity || n > grouping.MaxCapacity) {
		return pberrors.Invalid("grouping.capacity", "must be within [%d, %d], got %d", grouping.MinCapacity, grouping.MaxCapacity, n)
	}
	h := c.Grouping.Hero
	if h.Frequency < 0 {
		return pberrors.Invalid("grouping.hero.frequency", "must be >= 0, got %d", h.Frequency)
	}
	if h.ExtremeARLow < 0 || h.ExtremeARHigh < 0 || (h.ExtremeARHigh > 0 && h.ExtremeARLow >= h.ExtremeARHigh) {
		return pberrors.Invalid("grouping.hero", "extreme_ar_low (%v) must be below extreme_ar_high (%v)", h.ExtremeARLow, h.ExtremeARHigh)
	}
	return pberrors.ValidateUnit("grouping.hero.quality_threshold", h.QualityThreshold)
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 0 {
		return pberrors.Invalid("pipeline.workers", "must be >= 0, got %d", c.Pipeline.Workers)
	}
	if c.Dedupe.WindowSeconds < 0 || c.Dedupe.Lookback < 0 || c.Dedupe.MaxHamming < 0 {
		return pberrors.Invalid("dedupe", "values must be >= 0")
	}
	return nil
}

func (c *Config) validateFeatures() error {
	f := c.Features
	if err := oneOf("features.backend", f.Backend, FeaturesNone, FeaturesSQLite, FeaturesMongo, FeaturesJSON); err != nil {
		return err
	}
	switch {
	case f.Backend == FeaturesSQLite && f.SQLitePath == "":
		return pberrors.Invalid("features.sqlite_path", "required for the sqlite backend")
	case f.Backend == FeaturesJSON && f.JSONPath == "":
		return pberrors.Invalid("features.json_path", "required for the json backend")
	case f.Backend == FeaturesMongo && f.MongoURI == "":
		return pberrors.Invalid("features.mongo_uri", "required for the mongo backend")
	}
	return nil
}

func (c *Config) validateCache() error {
	if err := oneOf("cache.backend", c.Cache.Backend, CacheFile, CacheRedis, CacheNone); err != nil {
		return err
	}
	if c.Cache.TTLHours < 0 {
		return pberrors.Invalid("cache.ttl_hours", "must be >= 0, got %d", c.Cache.TTLHours)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return pberrors.Invalid("cache.redis_url", "required for the redis backend")
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return pberrors.Invalid("cache.dir", "required for the file backend")
	}
	return nil
}

func (c *Config) validateLogging() error {
	return oneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error")
}
