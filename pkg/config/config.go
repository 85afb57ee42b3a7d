package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	pberrors "github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/grouping"
	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/scoring"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog selects the template catalog.
type Catalog struct {
	// Path is a YAML catalog file; empty uses the embedded default.
	Path string `toml:"path"`
}

// Hero mirrors grouping.HeroOptions.
type Hero struct {
	Frequency        int     `toml:"frequency"`
	ExtremeARHigh    float64 `toml:"extreme_ar_high"`
	ExtremeARLow     float64 `toml:"extreme_ar_low"`
	QualityThreshold float64 `toml:"quality_threshold"`
	MinMegapixels    float64 `toml:"min_megapixels"`
}

// Grouping configures page splitting.
type Grouping struct {
	Capacity int  `toml:"capacity"`
	Hero     Hero `toml:"hero"`
}

// Weights mirrors scoring.Weights.
type Weights struct {
	Crop        float64 `toml:"crop"`
	Orientation float64 `toml:"orientation"`
	Chronology  float64 `toml:"chronology"`
}

// Bonuses mirrors scoring.Bonuses.
type Bonuses struct {
	Hero      float64 `toml:"hero_bonus"`
	HeroMiss  float64 `toml:"hero_miss_penalty"`
	Diversity float64 `toml:"diversity_penalty"`
}

// Scoring configures the slot assignment cost model.
type Scoring struct {
	Weights Weights `toml:"weights"`
	Bonuses Bonuses `toml:"bonuses"`
}

// Variety configures template selection.
type Variety struct {
	HistPenalty       float64 `toml:"hist_penalty"`
	RepeatPenalty     float64 `toml:"repeat_penalty"`
	RepeatWindow      int     `toml:"repeat_window"`
	TopK              int     `toml:"top_k"`
	PickRandomness    float64 `toml:"pick_randomness"`
	SecondWithin      float64 `toml:"second_within"`
	LowScoreRetry     bool    `toml:"low_score_retry"`
	LowScoreThreshold float64 `toml:"low_score_threshold"`
	FaceCheck         bool    `toml:"face_check"`
	Seed              uint64  `toml:"seed"`
}

// Pipeline configures the composition run.
type Pipeline struct {
	Sort    bool `toml:"sort"`
	Dedupe  bool `toml:"dedupe"`
	Workers int  `toml:"workers"`
	// Folder scopes feedback and override entries.
	Folder string `toml:"folder"`
}

// Dedupe mirrors features.DedupeOptions.
type Dedupe struct {
	WindowSeconds int `toml:"window_seconds"`
	Lookback      int `toml:"lookback"`
	MaxHamming    int `toml:"max_hamming"`
}

// Feature backends.
const (
	FeaturesNone   = "none"
	FeaturesSQLite = "sqlite"
	FeaturesMongo  = "mongo"
	FeaturesJSON   = "json"
)

// Features selects the optional feature source.
type Features struct {
	Backend         string `toml:"backend"`
	SQLitePath      string `toml:"sqlite_path"`
	JSONPath        string `toml:"json_path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Feedback locates the review logs.
type Feedback struct {
	FeedbackLog  string `toml:"feedback_log"`
	OverridesLog string `toml:"overrides_log"`
	// PreviousBook maps feedback page numbers to templates.
	PreviousBook string `toml:"previous_book"`
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Cache selects the output cache.
type Cache struct {
	Backend     string `toml:"backend"`
	Dir         string `toml:"dir"`
	TTLHours    int    `toml:"ttl_hours"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`
}

// Logging configures the CLI logger.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the complete photobook configuration.
type Config struct {
	Catalog  Catalog  `toml:"catalog"`
	Grouping Grouping `toml:"grouping"`
	Scoring  Scoring  `toml:"scoring"`
	Variety  Variety  `toml:"variety"`
	Pipeline Pipeline `toml:"pipeline"`
	Dedupe   Dedupe   `toml:"dedupe"`
	Features Features `toml:"features"`
	Feedback Feedback `toml:"feedback"`
	Cache    Cache    `toml:"cache"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/photobook/config.toml, falling
// back to ~/.config/photobook/config.toml.
func DefaultConfigPath() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "photobook", "config.toml"), nil
	}
	return ExpandPath("~/.config/photobook/config.toml")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/photobook, falling back to
// ~/.cache/photobook.
func DefaultCacheDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); base != "" {
		return filepath.Join(base, "photobook")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "photobook-cache")
	}
	return filepath.Join(home, ".cache", "photobook")
}

// Load reads the configuration at path (the default location when empty),
// applies it over Default, expands paths and validates the result. It
// returns the resolved path and whether the file existed. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		md, err := toml.DecodeFile(resolved, &cfg)
		if err != nil {
			return nil, resolved, true, pberrors.Wrap(pberrors.ErrCodeConfiguration, err, "parse %s", resolved)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, resolved, true, pberrors.New(pberrors.ErrCodeConfiguration, "unknown keys in %s: %s", resolved, strings.Join(keys, ", "))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return expanded, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, pberrors.New(pberrors.ErrCodeConfiguration, "config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	c.Features.Backend = strings.ToLower(strings.TrimSpace(c.Features.Backend))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for _, p := range []*string{
		&c.Catalog.Path,
		&c.Features.SQLitePath,
		&c.Features.JSONPath,
		&c.Feedback.FeedbackLog,
		&c.Feedback.OverridesLog,
		&c.Feedback.PreviousBook,
		&c.Cache.Dir,
	} {
		expanded, err := ExpandPath(strings.TrimSpace(*p))
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// CreateSample writes the commented sample configuration to path. It
// refuses to overwrite an existing file unless force is set.
func CreateSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return pberrors.New(pberrors.ErrCodeConfiguration, "%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the sample configuration text.
func Sample() string { return sampleConfig }

// ExpandPath expands a leading ~ and makes path absolute. Empty stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

// GroupingOptions converts the grouping section.
func (c *Config) GroupingOptions() grouping.Options {
	h := c.Grouping.Hero
	return grouping.Options{
		Capacity: c.Grouping.Capacity,
		Hero: grouping.HeroOptions{
			Frequency:        h.Frequency,
			ExtremeARHigh:    h.ExtremeARHigh,
			ExtremeARLow:     h.ExtremeARLow,
			QualityThreshold: h.QualityThreshold,
			MinMegapixels:    h.MinMegapixels,
		},
	}
}

// ScoringOptions converts the scoring section.
func (c *Config) ScoringOptions() scoring.Options {
	w, b := c.Scoring.Weights, c.Scoring.Bonuses
	return scoring.Options{
		Weights: scoring.Weights{Crop: w.Crop, Orient: w.Orientation, Flow: w.Chronology},
		Bonuses: scoring.Bonuses{Hero: b.Hero, HeroMiss: b.HeroMiss, Diversity: b.Diversity},
	}
}

// LayoutOptions converts the variety section. The random source is seeded
// from Variety.Seed.
func (c *Config) LayoutOptions() layout.Options {
	v := c.Variety
	return layout.Options{
		HistPenalty:       v.HistPenalty,
		RepeatPenalty:     v.RepeatPenalty,
		RepeatWindow:      v.RepeatWindow,
		TopK:              v.TopK,
		PickRandomness:    v.PickRandomness,
		SecondWithin:      v.SecondWithin,
		LowScoreRetry:     v.LowScoreRetry,
		LowScoreThreshold: v.LowScoreThreshold,
		FaceCheck:         v.FaceCheck,
		Workers:           c.Pipeline.Workers,
		Rand:              layout.NewRand(v.Seed),
	}
}

// DedupeOptions converts the dedupe section.
func (c *Config) DedupeOptions() features.DedupeOptions {
	return features.DedupeOptions{
		Window:     time.Duration(c.Dedupe.WindowSeconds) * time.Second,
		Lookback:   c.Dedupe.Lookback,
		MaxHamming: c.Dedupe.MaxHamming,
	}
}

// CacheTTL returns the book cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func oneOf(field, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return pberrors.Invalid(field, "must be one of %s, got %q", strings.Join(allowed, ", "), v)
}
