// Package searchcache persists search-provider results in SQLite so repeat
// audit runs against the same site do not spend API quota on identical
// queries.
package searchcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

const DefaultDBName = "latentgeo-searchcache.db"

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 24 * time.Hour

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA temp_store = MEMORY;

-- Search results cached per normalized query string
CREATE TABLE IF NOT EXISTS search_results (
    query TEXT PRIMARY KEY,
    result_json TEXT NOT NULL,
    cached_at INTEGER NOT NULL -- unix seconds
);

CREATE INDEX IF NOT EXISTS idx_search_cached_at ON search_results(cached_at);
`

type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens or creates the cache database at the given path. ":memory:"
// yields an ephemeral cache.
func Open(dbPath string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open search cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize search cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached result for a query if one exists and is fresh.
func (c *Cache) Get(ctx context.Context, query string) (*models.SearchResult, bool) {
	var resultJSON string
	var cachedAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT result_json, cached_at FROM search_results WHERE query = ?", query,
	).Scan(&resultJSON, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(cachedAt, 0)) > c.ttl {
		_, _ = c.db.ExecContext(ctx, "DELETE FROM search_results WHERE query = ?", query)
		return nil, false
	}

	var result models.SearchResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Set stores a result, replacing any previous entry for the query. Error
// results are not cached; a transient provider failure should not mask fresh
// data for a day.
func (c *Cache) Set(ctx context.Context, query string, result *models.SearchResult) error {
	if result == nil || result.Error != "" {
		return nil
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode search result: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO search_results (query, result_json, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET result_json = excluded.result_json, cached_at = excluded.cached_at
	`, query, string(resultJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cache search result: %w", err)
	}
	return nil
}

// Purge removes entries older than the TTL and reports how many were dropped.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-c.ttl).Unix()
	result, err := c.db.ExecContext(ctx, "DELETE FROM search_results WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge search cache: %w", err)
	}
	return result.RowsAffected()
}
