package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"RepoScout/internal/ports"
)

// ContentCache persists raw file contents keyed by download URL. Entries are
// content-addressed by URL and immutable once written, so the cache is safe to
// share across concurrent fetches and to retain across runs. An LRU layer in
// front keeps hot entries off the database path.
type ContentCache struct {
	db      *sql.DB
	mem     *lru.Cache[string, string]
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ContentCache = (*ContentCache)(nil)

// Open creates or opens the sqlite-backed cache at path.
func Open(path string, memoryEntries int, logger *slog.Logger) (*ContentCache, error) {
	if memoryEntries <= 0 {
		memoryEntries = 4096
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS file_contents (
        url TEXT PRIMARY KEY,
        content TEXT NOT NULL,
        fetched_at TIMESTAMP NOT NULL
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	mem, err := lru.New[string, string](memoryEntries)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	return &ContentCache{
		db:      db,
		mem:     mem,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger:  logger,
	}, nil
}

// Get returns the cached content for url, checking memory before the database.
func (c *ContentCache) Get(ctx context.Context, url string) (string, bool) {
	if content, ok := c.mem.Get(url); ok {
		return content, true
	}

	query, args, err := c.builder.
		Select("content").
		From("file_contents").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return "", false
	}

	var content string
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&content)
	if err != nil {
		if err != sql.ErrNoRows && c.logger != nil {
			c.logger.Warn("cache read failed", "url", url, "error", err)
		}
		return "", false
	}

	c.mem.Add(url, content)
	return content, true
}

// Put stores content for url. An existing entry wins: entries are immutable,
// so a concurrent duplicate write is ignored rather than overwritten.
func (c *ContentCache) Put(ctx context.Context, url, content string) error {
	c.mem.Add(url, content)

	query, args, err := c.builder.
		Insert("file_contents").
		Columns("url", "content", "fetched_at").
		Values(url, content, time.Now().UTC()).
		Suffix("ON CONFLICT(url) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cache insert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Close tears down the underlying database handle.
func (c *ContentCache) Close() error {
	return c.db.Close()
}
