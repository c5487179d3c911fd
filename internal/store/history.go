package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/gosummarize/internal/report"
)

// trendingWindow is how far back Trending looks.
const trendingWindow = 7 * 24 * time.Hour

// HistoryEntry is one past query without its results.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	CreatedAt time.Time `json:"created_at"`
}

// TrendingQuery is a query and how often it was searched recently.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// SaveReport stores r and its items. An empty r.ID is replaced by a new
// UUID; the stored ID is returned. A zero r.UserID stores an anonymous query.
func (s *Store) SaveReport(ctx context.Context, r report.Report, ip string) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	var userID any
	if r.UserID != 0 {
		userID = r.UserID
	}
	opts := r.Options.Normalized()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO search_queries(id, user_id, query_text, ip_address,
			depth, complexity, summaries, created_at) VALUES(?,?,?,?,?,?,?,?)`,
			r.ID, userID, r.Query, ip, opts.Depth, opts.Complexity, boolInt(r.Summaries), r.CreatedAt.UTC().UnixNano())
		if err != nil {
			return fmt.Errorf("insert query: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO search_results(query_id, rank, title, link,
			description, summary, citation, error) VALUES(?,?,?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare result insert: %w", err)
		}
		defer stmt.Close()
		for _, it := range r.Items {
			if _, err := stmt.ExecContext(ctx, r.ID, it.Rank, it.Title, it.URL, it.Snippet, it.Summary, it.Citation, it.Error); err != nil {
				return fmt.Errorf("insert result %d: %w", it.Rank, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// LoadReport reads a stored report with its items in rank order.
func (s *Store) LoadReport(ctx context.Context, id string) (report.Report, error) {
	var (
		r       report.Report
		userID  sql.NullInt64
		sums    int
		created int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, query_text, depth, complexity, summaries, created_at
		FROM search_queries WHERE id = ?`, id).
		Scan(&r.ID, &userID, &r.Query, &r.Options.Depth, &r.Options.Complexity, &sums, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, ErrNotFound
	}
	if err != nil {
		return report.Report{}, fmt.Errorf("load query: %w", err)
	}
	r.UserID = userID.Int64
	r.Summaries = sums != 0
	r.CreatedAt = fromStamp(created)

	rows, err := s.db.QueryContext(ctx, `SELECT rank, title, link, COALESCE(description, ''),
		COALESCE(summary, ''), COALESCE(citation, ''), COALESCE(error, '')
		FROM search_results WHERE query_id = ? ORDER BY rank, id`, id)
	if err != nil {
		return report.Report{}, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it report.Item
		if err := rows.Scan(&it.Rank, &it.Title, &it.URL, &it.Snippet, &it.Summary, &it.Citation, &it.Error); err != nil {
			return report.Report{}, fmt.Errorf("scan result: %w", err)
		}
		r.Items = append(r.Items, it)
	}
	return r, rows.Err()
}

// History lists a user's most recent queries, newest first.
func (s *Store) History(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT q.id, q.query_text, q.created_at,
		(SELECT COUNT(*) FROM search_results r WHERE r.query_id = q.id)
		FROM search_queries q WHERE q.user_id = ? ORDER BY q.created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	var out []HistoryEntry
	for rows.Next() {
		var (
			e       HistoryEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Query, &created, &e.Results); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = fromStamp(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentQueries returns the texts of the latest queries from all users,
// newest first.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT query_text FROM search_queries
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent queries: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		if strings.TrimSpace(q) != "" {
			out = append(out, q)
		}
	}
	return out, rows.Err()
}

// Trending returns the most frequent queries of the last seven days, most
// frequent first. Ties go to the most recently searched query.
func (s *Store) Trending(ctx context.Context, limit int) ([]TrendingQuery, error) {
	if limit <= 0 {
		limit = 5
	}
	since := s.now().Add(-trendingWindow).UTC().UnixNano()
	rows, err := s.db.QueryContext(ctx, `SELECT query_text, COUNT(*) AS n, MAX(created_at) AS last
		FROM search_queries WHERE created_at >= ? AND query_text <> ''
		GROUP BY query_text ORDER BY n DESC, last DESC LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	defer rows.Close()
	var out []TrendingQuery
	for rows.Next() {
		var (
			t    TrendingQuery
			last int64
		)
		if err := rows.Scan(&t.Query, &t.Count, &last); err != nil {
			return nil, fmt.Errorf("scan trending: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountSearchesSince counts anonymous queries from ip at or after since.
func (s *Store) CountSearchesSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_queries
		WHERE ip_address = ? AND user_id IS NULL AND created_at >= ?`, ip, since.UTC().UnixNano()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count searches: %w", err)
	}
	return n, nil
}
