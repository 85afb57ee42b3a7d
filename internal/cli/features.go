package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobook/pkg/config"
	"github.com/matzehuels/photobook/pkg/features"
)

// featuresCommand creates the feature store management command.
func (c *CLI) featuresCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Manage the SQLite photo feature store",
		Long: `Manage the SQLite photo feature store.

Features are optional per-photo signals computed by external tools:
perceptual hash, sharpness, aesthetic score and face boxes. compose reads
them to dedupe bursts, reward sharp photos and avoid cropping faces.`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "feature database (default: features.sqlite_path from config)")

	cmd.AddCommand(c.featuresImportCommand(&dbPath))
	cmd.AddCommand(c.featuresShowCommand(&dbPath))

	return cmd
}

// featuresImportCommand creates the "features import" subcommand.
func (c *CLI) featuresImportCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <features.json>",
		Short: "Import a JSON array of photo features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openFeatureDB(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := features.ImportJSON(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Imported %d records", n)
			printDetail("Database: %s (%d photos)", store.Path(), total)
			return nil
		},
	}
}

// featuresShowCommand creates the "features show" subcommand.
func (c *CLI) featuresShowCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <photo-path>...",
		Short: "Print the stored features of photos as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openFeatureDB(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := store.GetMany(cmd.Context(), args)
			if err != nil {
				return err
			}
			found := make([]features.Features, 0, len(args))
			for _, path := range args {
				f, ok := m[path]
				if !ok {
					printWarning("No features for %s", path)
					continue
				}
				found = append(found, f)
			}
			if len(found) == 0 {
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(found)
		},
	}
}

// openFeatureDB opens the database given by --db or the config file.
func (c *CLI) openFeatureDB(ctx context.Context, dbPath string) (*features.SQLiteStore, error) {
	if dbPath == "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		dbPath = cfg.Features.SQLitePath
	}
	if dbPath == "" {
		return nil, fmt.Errorf("no feature database: pass --db or set features.sqlite_path")
	}
	path, err := config.ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}
	return features.OpenSQLite(ctx, path)
}
