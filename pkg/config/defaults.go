package config

import (
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/grouping"
	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/scoring"
)

const (
	defaultCacheTTLHours = 24
	defaultLogLevel      = "info"
)

// Default returns a Config populated with the engine defaults.
func Default() Config {
	g := grouping.DefaultOptions()
	s := scoring.DefaultOptions()
	v := layout.DefaultOptions()
	d := features.DefaultDedupeOptions()

	return Config{
		Grouping: Grouping{
			Capacity: g.Capacity,
			Hero: Hero{
				Frequency:        g.Hero.Frequency,
				ExtremeARHigh:    g.Hero.ExtremeARHigh,
				ExtremeARLow:     g.Hero.ExtremeARLow,
				QualityThreshold: g.Hero.QualityThreshold,
				MinMegapixels:    g.Hero.MinMegapixels,
			},
		},
		Scoring: Scoring{
			Weights: Weights{Crop: s.Weights.Crop, Orientation: s.Weights.Orient, Chronology: s.Weights.Flow},
			Bonuses: Bonuses{Hero: s.Bonuses.Hero, HeroMiss: s.Bonuses.HeroMiss, Diversity: s.Bonuses.Diversity},
		},
		Variety: Variety{
			HistPenalty:       v.HistPenalty,
			RepeatPenalty:     v.RepeatPenalty,
			RepeatWindow:      v.RepeatWindow,
			TopK:              v.TopK,
			PickRandomness:    v.PickRandomness,
			SecondWithin:      v.SecondWithin,
			LowScoreRetry:     v.LowScoreRetry,
			LowScoreThreshold: v.LowScoreThreshold,
			FaceCheck:         v.FaceCheck,
			Seed:              layout.DefaultSeed,
		},
		Pipeline: Pipeline{Sort: true},
		Dedupe: Dedupe{
			WindowSeconds: int(d.Window.Seconds()),
			Lookback:      d.Lookback,
			MaxHamming:    d.MaxHamming,
		},
		Features: Features{
			Backend:         FeaturesNone,
			MongoDatabase:   features.DefaultMongoDatabase,
			MongoCollection: features.DefaultMongoCollection,
		},
		Cache: Cache{
			Backend:     CacheFile,
			Dir:         DefaultCacheDir(),
			TTLHours:    defaultCacheTTLHours,
			RedisPrefix: "photobook:",
		},
		Logging: Logging{Level: defaultLogLevel},
	}
}
