package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobook/pkg/book"
	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/config"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/feedback"
	"github.com/matzehuels/photobook/pkg/grouping"
	"github.com/matzehuels/photobook/pkg/photo"
	"github.com/matzehuels/photobook/pkg/pipeline"
)

// composeFlags holds the command-line flags of the compose command. Flags
// only override the config file when they are set explicitly.
type composeFlags struct {
	output     string
	catalog    string
	capacity   int
	seed       uint64
	workers    int
	noSort     bool
	dedupe     bool
	featuresDB string
	feedback   string
	overrides  string
	previous   string
	folder     string
	noCache    bool
	refresh    bool
	summary    bool
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	var f composeFlags

	cmd := &cobra.Command{
		Use:   "compose [photos.json]",
		Short: "Compose a photobook from a photo list",
		Long: `Compose a photobook from a photo list.

The input is a JSON array of photo descriptors (path, width, height, takenAt,
qualityScore, ...). Photos are sorted by capture time, split into page groups
and every group gets the template and placement that fits it best. The result
is written to <input>.book.json.

Feedback recorded against the previous book biases template choice, and an
overrides log pins individual pages to a template.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyComposeFlags(cmd, cfg, &f)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runCompose(cmd.Context(), args[0], cfg, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.book.json)")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "template catalog YAML (default: built-in catalog)")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "target photos per page, clamped to 2..6")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for the variety tie-break")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent template scorers (0: one per candidate)")
	cmd.Flags().BoolVar(&f.noSort, "no-sort", false, "keep the input order instead of sorting by capture time")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "drop burst near-duplicates (needs pHash features)")
	cmd.Flags().StringVar(&f.featuresDB, "features-db", "", "SQLite feature database")
	cmd.Flags().StringVar(&f.feedback, "feedback", "", "feedback log (JSONL)")
	cmd.Flags().StringVar(&f.overrides, "overrides", "", "page override log (JSONL)")
	cmd.Flags().StringVar(&f.previous, "previous", "", "book the feedback refers to (default: the existing output)")
	cmd.Flags().StringVar(&f.folder, "folder", "", "folder name scoping feedback and overrides")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompose even when a cached book exists")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "print a table of all pages")

	return cmd
}

// applyComposeFlags copies explicitly set flags into cfg.
func applyComposeFlags(cmd *cobra.Command, cfg *config.Config, f *composeFlags) {
	changed := cmd.Flags().Changed
	if changed("catalog") {
		cfg.Catalog.Path = f.catalog
	}
	if changed("capacity") {
		cfg.Grouping.Capacity = grouping.ClampCapacity(f.capacity)
	}
	if changed("seed") {
		cfg.Variety.Seed = f.seed
	}
	if changed("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	if changed("no-sort") {
		cfg.Pipeline.Sort = !f.noSort
	}
	if changed("dedupe") {
		cfg.Pipeline.Dedupe = f.dedupe
	}
	if changed("features-db") {
		cfg.Features.Backend = config.FeaturesSQLite
		cfg.Features.SQLitePath = f.featuresDB
	}
	if changed("feedback") {
		cfg.Feedback.FeedbackLog = f.feedback
	}
	if changed("overrides") {
		cfg.Feedback.OverridesLog = f.overrides
	}
	if changed("previous") {
		cfg.Feedback.PreviousBook = f.previous
	}
	if changed("folder") {
		cfg.Pipeline.Folder = f.folder
	}
}

// runCompose loads the inputs, composes the book and writes it.
func (c *CLI) runCompose(ctx context.Context, input string, cfg *config.Config, f composeFlags) error {
	prog := newProgress(c.Logger)

	photos, err := photo.ImportJSON(input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %d photos from %s", len(photos), input)

	outputPath := f.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".book.json"
	}
	if err := errors.ValidateOutputPath(outputPath); err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, cfg, f.noCache)
	defer runner.Close()

	opts := pipeline.DefaultOptions()
	opts.Grouping = cfg.GroupingOptions()
	opts.Scoring = cfg.ScoringOptions()
	opts.Layout = cfg.LayoutOptions()
	opts.Seed = cfg.Variety.Seed
	opts.Sort = cfg.Pipeline.Sort
	opts.Dedupe = cfg.Pipeline.Dedupe
	opts.DedupeOptions = cfg.DedupeOptions()
	opts.Catalog = cat
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	store, err := c.openFeatures(ctx, cfg, runner.Cache)
	if err != nil {
		c.Logger.Warn("features unavailable, continuing without", "backend", cfg.Features.Backend, "err", err)
	}
	if store != nil {
		defer store.Close()
		opts.Features = runner.LoadFeatures(ctx, store, cfg.Features.Backend, photos)
	}

	if opts.Bias, err = c.loadBias(cfg, outputPath); err != nil {
		return err
	}
	if path := cfg.Feedback.OverridesLog; path != "" {
		ovs, skipped, err := feedback.LoadOverrides(path, cfg.Pipeline.Folder)
		if err != nil {
			return fmt.Errorf("read overrides %s: %w", path, err)
		}
		if skipped > 0 {
			c.Logger.Warn("skipped malformed override lines", "path", path, "lines", skipped)
		}
		opts.Overrides = ovs
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Composing %d photos...", len(photos)))
	spinner.Start()

	result, err := runner.Compose(ctx, photos, opts)
	if err != nil {
		spinner.StopWithError("Composition failed")
		return fmt.Errorf("compose: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := book.Export(result.Book, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done("Composed book")

	printSuccess("Book complete")
	printFile(outputPath)
	printBookStats(result.Book.Stats(), result.Book.PhotoCount, result.CacheInfo.BookHit)
	if f.summary {
		printNewline()
		fmt.Println(pageTable(result.Book))
	}
	printNewline()
	printNextStep("Rate a page", "photobook feedback record --page 1 --action like")

	return nil
}

// loadBias computes the template bias from the feedback log. The feedback
// refers to the previous book, which defaults to the existing output.
func (c *CLI) loadBias(cfg *config.Config, outputPath string) (map[string]float64, error) {
	logPath := cfg.Feedback.FeedbackLog
	if logPath == "" {
		return nil, nil
	}
	prevPath := cfg.Feedback.PreviousBook
	if prevPath == "" {
		prevPath = outputPath
	}
	prev, err := book.Import(prevPath)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFileNotFound) {
			c.Logger.Debug("no previous book, feedback ignored", "path", prevPath)
			return nil, nil
		}
		return nil, fmt.Errorf("read previous book %s: %w", prevPath, err)
	}

	bias, skipped, err := feedback.LoadBias(logPath, cfg.Pipeline.Folder, prev, feedback.DefaultWeights())
	if err != nil {
		return nil, fmt.Errorf("read feedback %s: %w", logPath, err)
	}
	if skipped > 0 {
		c.Logger.Warn("skipped malformed feedback lines", "path", logPath, "lines", skipped)
	}
	if len(bias) > 0 {
		c.Logger.Debug("feedback bias", "templates", len(bias))
	}
	return bias, nil
}

// loadCatalog returns the catalog at path, or the built-in one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}
