// Package khan retrieves Khan Academy API data: the topic tree, per-exercise
// related videos, the knowledge-map layout, and topic icons. Responses are
// served through a time-bounded SQLite cache so repeated runs during
// iteration do not hammer the upstream API.
package khan

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS responses (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at DATETIME NOT NULL
);
`

// Cache is the on-disk response cache. Entries older than the TTL are
// treated as misses and overwritten on the next fetch.
type Cache struct {
	conn *sql.DB
	ttl  time.Duration
}

// OpenCache opens (or creates) the SQLite response cache and applies the
// schema. A non-positive ttl disables reuse entirely: every lookup misses.
func OpenCache(dsn string, ttl time.Duration) (*Cache, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("khan: open cache: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("khan: ping cache: %w", err)
	}
	if _, err := conn.Exec(cacheSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("khan: apply cache schema: %w", err)
	}
	return &Cache{conn: conn, ttl: ttl}, nil
}

// Get returns the cached body for url if it is still fresh.
func (c *Cache) Get(url string) ([]byte, bool, error) {
	var body []byte
	var fetchedAt time.Time
	err := c.conn.QueryRow(
		`SELECT body, fetched_at FROM responses WHERE url = ?`, url,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("khan: cache get: %w", err)
	}
	if c.ttl <= 0 || time.Since(fetchedAt) > c.ttl {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores (or refreshes) the body for url.
func (c *Cache) Put(url string, body []byte) error {
	_, err := c.conn.Exec(`
		INSERT INTO responses (url, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body       = excluded.body,
			fetched_at = excluded.fetched_at
	`, url, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("khan: cache put: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}
