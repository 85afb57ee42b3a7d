package features

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/photobook/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// sqliteBatch bounds the number of bound parameters per IN (...) query.
const sqliteBatch = 500

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and creates if needed) the feature database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "create %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "open sqlite db")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeFeatureStore, err, "apply pragma %q", pragma)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFeatureStore, err, "check schema_version table")
	}

	if exists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFeatureStore, err, "begin schema tx")
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return errors.Wrap(errors.ErrCodeFeatureStore, err, "create schema")
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return errors.Wrap(errors.ErrCodeFeatureStore, err, "record schema version")
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return errors.Wrap(errors.ErrCodeFeatureStore, err, "read schema version")
	}
	if version != schemaVersion {
		return errors.New(errors.ErrCodeFeatureStore,
			"feature database %s has schema version %d, expected %d (delete it and re-import)",
			s.path, version, schemaVersion)
	}
	return nil
}

// GetMany implements Store.
func (s *SQLiteStore) GetMany(ctx context.Context, paths []string) (Map, error) {
	out := make(Map, len(paths))
	for start := 0; start < len(paths); start += sqliteBatch {
		batch := paths[start:min(start+sqliteBatch, len(paths))]
		if err := s.getBatch(ctx, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) getBatch(ctx context.Context, paths []string, out Map) error {
	if len(paths) == 0 {
		return nil
	}
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p
	}
	query := "SELECT path, phash, sharpness, aesthetic, faces FROM photo_features WHERE path IN (" +
		strings.TrimSuffix(strings.Repeat("?,", len(paths)), ",") + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFeatureStore, err, "query features")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f         Features
			phash     sql.NullString
			sharpness sql.NullFloat64
			aesthetic sql.NullFloat64
			faces     sql.NullString
		)
		if err := rows.Scan(&f.Path, &phash, &sharpness, &aesthetic, &faces); err != nil {
			return errors.Wrap(errors.ErrCodeFeatureStore, err, "scan features")
		}
		f.PHash = phash.String
		if sharpness.Valid {
			f.Sharpness = &sharpness.Float64
		}
		if aesthetic.Valid {
			f.Aesthetic = &aesthetic.Float64
		}
		if faces.Valid && faces.String != "" {
			if err := json.Unmarshal([]byte(faces.String), &f.Faces); err != nil {
				return errors.Wrap(errors.ErrCodeFeatureStore, err, "decode faces of %s", f.Path)
			}
		}
		out[f.Path] = f
	}
	return rows.Err()
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, f Features) error {
	if err := errors.ValidatePhotoPath(f.Path); err != nil {
		return err
	}
	var faces any
	if len(f.Faces) > 0 {
		data, err := json.Marshal(f.Faces)
		if err != nil {
			return fmt.Errorf("encode faces: %w", err)
		}
		faces = string(data)
	}
	var phash any
	if f.PHash != "" {
		phash = f.PHash
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photo_features (path, phash, sharpness, aesthetic, faces, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			phash = excluded.phash,
			sharpness = excluded.sharpness,
			aesthetic = excluded.aesthetic,
			faces = excluded.faces,
			updated_at = excluded.updated_at`,
		f.Path, phash, nullable(f.Sharpness), nullable(f.Aesthetic), faces,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrap(errors.ErrCodeFeatureStore, err, "upsert features of %s", f.Path)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM photo_features").Scan(&n); err != nil {
		return 0, errors.Wrap(errors.ErrCodeFeatureStore, err, "count features")
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
