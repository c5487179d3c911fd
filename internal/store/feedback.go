package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/gosummarize/internal/citation"
)

// Feedback is a rating of one result's summary.
type Feedback struct {
	ReportID string `json:"report_id"`
	Rank     int    `json:"rank"`
	UserID   int64  `json:"-"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// SaveFeedback records a 1..5 rating for the result at Rank in a report.
func (s *Store) SaveFeedback(ctx context.Context, f Feedback) error {
	if f.Rating < 1 || f.Rating > 5 {
		return ErrInvalidRating
	}
	var resultID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM search_results WHERE query_id = ? AND rank = ?`,
		f.ReportID, f.Rank).Scan(&resultID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find result: %w", err)
	}
	var userID any
	if f.UserID != 0 {
		userID = f.UserID
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO summary_feedback(result_id, user_id, rating, comment, created_at)
		VALUES(?,?,?,?,?)`, resultID, userID, f.Rating, strings.TrimSpace(f.Comment), s.stamp())
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// AverageRating returns the mean rating and number of ratings for a result.
func (s *Store) AverageRating(ctx context.Context, reportID string, rank int) (float64, int, error) {
	var (
		avg sql.NullFloat64
		n   int
	)
	err := s.db.QueryRowContext(ctx, `SELECT AVG(f.rating), COUNT(f.id) FROM summary_feedback f
		JOIN search_results r ON r.id = f.result_id WHERE r.query_id = ? AND r.rank = ?`, reportID, rank).Scan(&avg, &n)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return avg.Float64, n, nil
}

// SavedCitation is a citation a user generated and kept.
type SavedCitation struct {
	ID        int64          `json:"id"`
	Style     citation.Style `json:"style"`
	Kind      citation.Kind  `json:"source_type"`
	Title     string         `json:"title"`
	Formatted string         `json:"formatted"`
	CreatedAt time.Time      `json:"created_at"`
}

// SaveCitation stores a formatted citation for the user and returns its id.
func (s *Store) SaveCitation(ctx context.Context, userID int64, c SavedCitation) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO citations(user_id, style, source_type, title, formatted, created_at)
		VALUES(?,?,?,?,?,?)`, userID, string(c.Style), string(c.Kind), c.Title, c.Formatted, s.stamp())
	if err != nil {
		return 0, fmt.Errorf("insert citation: %w", err)
	}
	return res.LastInsertId()
}

// Citations lists a user's saved citations, newest first.
func (s *Store) Citations(ctx context.Context, userID int64) ([]SavedCitation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, style, source_type, title, formatted, created_at
		FROM citations WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("citations: %w", err)
	}
	defer rows.Close()
	var out []SavedCitation
	for rows.Next() {
		var (
			c       SavedCitation
			style   string
			kind    string
			created int64
		)
		if err := rows.Scan(&c.ID, &style, &kind, &c.Title, &c.Formatted, &created); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		c.Style, c.Kind, c.CreatedAt = citation.Style(style), citation.Kind(kind), fromStamp(created)
		out = append(out, c)
	}
	return out, rows.Err()
}
