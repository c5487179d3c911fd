// Package store persists accounts, search history and saved citations in a
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaSQL creates every table the store uses. Timestamps are Unix
// nanoseconds in UTC.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    api_token TEXT NOT NULL UNIQUE,
    generate_summaries INTEGER NOT NULL DEFAULT 1,
    summary_depth INTEGER NOT NULL DEFAULT 3,
    summary_complexity INTEGER NOT NULL DEFAULT 3,
    hide_wikipedia INTEGER NOT NULL DEFAULT 0,
    search_pages_limit INTEGER NOT NULL DEFAULT 1,
    enable_suggestions INTEGER NOT NULL DEFAULT 1,
    citation_style TEXT NOT NULL DEFAULT 'APA',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS search_queries (
    id TEXT PRIMARY KEY,
    user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    query_text TEXT NOT NULL,
    ip_address TEXT,
    depth INTEGER NOT NULL,
    complexity INTEGER NOT NULL,
    summaries INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_queries_user ON search_queries(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_search_queries_ip ON search_queries(ip_address, created_at);

CREATE TABLE IF NOT EXISTS search_results (
    id INTEGER PRIMARY KEY,
    query_id TEXT NOT NULL REFERENCES search_queries(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL,
    title TEXT NOT NULL,
    link TEXT NOT NULL,
    description TEXT,
    summary TEXT,
    citation TEXT,
    error TEXT
);
CREATE INDEX IF NOT EXISTS idx_search_results_query ON search_results(query_id, rank);

CREATE TABLE IF NOT EXISTS summary_feedback (
    id INTEGER PRIMARY KEY,
    result_id INTEGER NOT NULL REFERENCES search_results(id) ON DELETE CASCADE,
    user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    rating INTEGER NOT NULL,
    comment TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
    id INTEGER PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    style TEXT NOT NULL,
    source_type TEXT NOT NULL,
    title TEXT NOT NULL,
    formatted TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// openDB opens the database at path and applies the schema. ":memory:" is
// accepted for tests.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
