package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photobook/pkg/buildinfo"
	"github.com/matzehuels/photobook/pkg/cache"
	"github.com/matzehuels/photobook/pkg/config"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/observability"
	"github.com/matzehuels/photobook/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "photobook"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and feature hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level <= log.DebugLevel
	if c.verbose {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetFeatureHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	buildinfo.Resolve()

	root := &cobra.Command{
		Use:          appName,
		Short:        "Photobook lays out photo collections as printable pages",
		Long:         `Photobook groups a photo collection into pages, picks a template for every page and places each photo into the slot it fits best.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/photobook/config.toml)")

	root.AddCommand(c.composeCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.featuresCommand())
	root.AddCommand(c.feedbackCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the configuration selected by --config. The file's log
// level applies unless --verbose was given.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, path, exists, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.configPath != "" && !exists {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	if !c.verbose {
		if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	if exists {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) *pipeline.Runner {
	r := pipeline.NewRunner(c.newCache(ctx, cfg, noCache), nil, c.Logger)
	if ttl := cfg.CacheTTL(); ttl > 0 {
		r.TTL = ttl
	}
	return r
}

// newCache opens the configured cache. An unreachable backend disables
// caching for the run instead of failing it.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL, Prefix: cfg.Cache.RedisPrefix})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Cache.Dir, "err", err)
			return cache.NewNullCache()
		}
		return fc
	default:
		return cache.NewNullCache()
	}
}

// openFeatures opens the configured feature backend. It returns a nil store
// when features are disabled. Remote reads go through the cache.
func (c *CLI) openFeatures(ctx context.Context, cfg *config.Config, cch cache.Cache) (features.Store, error) {
	fc := cfg.Features
	switch fc.Backend {
	case config.FeaturesSQLite:
		store, err := features.OpenSQLite(ctx, fc.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.FeaturesJSON:
		f, err := os.Open(fc.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("open features %s: %w", fc.JSONPath, err)
		}
		defer f.Close()
		fs, err := features.ReadJSON(f)
		if err != nil {
			return nil, err
		}
		return features.NewMemoryStore(fs...), nil
	case config.FeaturesMongo:
		store, err := features.OpenMongo(ctx, features.MongoConfig{
			URI:        fc.MongoURI,
			Database:   fc.MongoDatabase,
			Collection: fc.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return features.NewCachedStore(store, cch, nil, cache.FeaturesTTL, c.Logger), nil
	default:
		return nil, nil
	}
}
