// Package cache provides an optional, on-disk cache for parsed plugin
// headers and condition-evaluation results that survives between process
// invocations (spec.md §9 "register once" design note extended to cover
// repeated CLI runs against the same installation). internal/pluginfile and
// internal/condition already carry their own in-process LRU caches for a
// single run; this package backs cmd/lootsort's ability to skip re-parsing
// plugin headers across separate invocations. The condition-result methods
// (GetCondition/SetCondition) are not used by condition evaluation.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Common errors returned by the cache.
var (
	ErrNotFound = errors.New("cache entry not found")
	ErrStale    = errors.New("cache entry is stale")
)

// Config holds configuration for the cache.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TTL bounds how long an entry is trusted before Cleanup removes it.
	TTL time.Duration
}

// Cache provides SQLite-backed caching for plugin headers and condition
// results, fingerprinted by the underlying file's mtime and size so a
// changed installation never serves stale data.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// New creates a new cache with the given configuration.
func New(cfg Config) (*Cache, error) {
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Cache{db: db, ttl: ttl}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS plugin_cache (
			path TEXT NOT NULL,
			mode INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			size INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (path, mode)
		);

		CREATE TABLE IF NOT EXISTS condition_cache (
			condition_text TEXT NOT NULL,
			stamp TEXT NOT NULL,
			result INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (condition_text, stamp)
		);

		CREATE INDEX IF NOT EXISTS idx_plugin_cache_created ON plugin_cache(created_at);
		CREATE INDEX IF NOT EXISTS idx_condition_cache_created ON condition_cache(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// GetPlugin retrieves a cached, JSON-serialised plugin header. The caller
// supplies mtime/size as the freshness fingerprint; a mismatch is reported
// as ErrStale rather than silently returning outdated data.
func (c *Cache) GetPlugin(ctx context.Context, path string, mode int, mtime, size int64, dest interface{}) error {
	var data string
	var cachedMTime, cachedSize int64

	err := c.db.QueryRowContext(ctx, `
		SELECT data, mtime, size FROM plugin_cache WHERE path = ? AND mode = ?
	`, path, mode).Scan(&data, &cachedMTime, &cachedSize)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query plugin cache: %w", err)
	}
	if cachedMTime != mtime || cachedSize != size {
		return ErrStale
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal plugin cache entry: %w", err)
	}
	return nil
}

// SetPlugin stores a plugin header, keyed by path and load mode.
func (c *Cache) SetPlugin(ctx context.Context, path string, mode int, mtime, size int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal plugin cache entry: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO plugin_cache (path, mode, mtime, size, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, path, mode, mtime, size, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert plugin cache entry: %w", err)
	}
	return nil
}

// GetCondition retrieves a cached condition-evaluation result, fingerprinted
// by a stamp string built from the paths the condition touched (mirroring
// internal/condition.Cache's in-process fingerprint).
func (c *Cache) GetCondition(ctx context.Context, conditionText, stamp string) (bool, error) {
	var result int
	err := c.db.QueryRowContext(ctx, `
		SELECT result FROM condition_cache WHERE condition_text = ? AND stamp = ?
	`, conditionText, stamp).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query condition cache: %w", err)
	}
	return result != 0, nil
}

// SetCondition stores a condition-evaluation result.
func (c *Cache) SetCondition(ctx context.Context, conditionText, stamp string, result bool) error {
	r := 0
	if result {
		r = 1
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO condition_cache (condition_text, stamp, result, created_at)
		VALUES (?, ?, ?, ?)
	`, conditionText, stamp, r, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert condition cache entry: %w", err)
	}
	return nil
}

// Cleanup removes entries older than the configured TTL.
func (c *Cache) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-c.ttl).UnixMilli()
	if _, err := c.db.ExecContext(ctx, "DELETE FROM plugin_cache WHERE created_at < ?", cutoff); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, "DELETE FROM condition_cache WHERE created_at < ?", cutoff)
	return err
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
