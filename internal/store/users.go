package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

const (
	minUsername = 3
	maxUsername = 64
	maxEmail    = 120
	minPassword = 8
	// bcrypt ignores input past 72 bytes.
	maxPassword = 72
	maxPages    = 10
)

// Settings are a user's search and summary preferences.
type Settings struct {
	GenerateSummaries bool           `json:"generate_summaries"`
	SummaryDepth      int            `json:"summary_depth"`
	SummaryComplexity int            `json:"summary_complexity"`
	HideWikipedia     bool           `json:"hide_wikipedia"`
	SearchPagesLimit  int            `json:"search_pages_limit"`
	EnableSuggestions bool           `json:"enable_suggestions"`
	CitationStyle     citation.Style `json:"citation_style"`
}

// DefaultSettings are applied to new accounts and anonymous callers.
func DefaultSettings() Settings {
	return Settings{
		GenerateSummaries: true,
		SummaryDepth:      summarize.DefaultLevel,
		SummaryComplexity: summarize.DefaultLevel,
		SearchPagesLimit:  1,
		EnableSuggestions: true,
		CitationStyle:     citation.APA,
	}
}

// Validate checks depth and complexity are 1..5, the page limit 1..10 and
// the citation style is known.
func (s Settings) Validate() error {
	if s.SummaryDepth < summarize.MinLevel || s.SummaryDepth > summarize.MaxLevel {
		return fmt.Errorf("%w: summary_depth %d not in 1..5", ErrInvalidSettings, s.SummaryDepth)
	}
	if s.SummaryComplexity < summarize.MinLevel || s.SummaryComplexity > summarize.MaxLevel {
		return fmt.Errorf("%w: summary_complexity %d not in 1..5", ErrInvalidSettings, s.SummaryComplexity)
	}
	if s.SearchPagesLimit < 1 || s.SearchPagesLimit > maxPages {
		return fmt.Errorf("%w: search_pages_limit %d not in 1..10", ErrInvalidSettings, s.SearchPagesLimit)
	}
	if _, err := citation.ParseStyle(string(s.CitationStyle)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// SummaryOptions converts the summary preferences to summarizer options.
func (s Settings) SummaryOptions() summarize.Options {
	return summarize.Options{Depth: s.SummaryDepth, Complexity: s.SummaryComplexity}
}

// User is a registered account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	APIToken  string    `json:"-"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser registers an account and issues its API token.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if n := utf8.RuneCountInString(username); n < minUsername || n > maxUsername {
		return User{}, ErrInvalidUsername
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email || len(email) > maxEmail {
		return User{}, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPassword {
		return User{}, ErrWeakPassword
	}
	if len(password) > maxPassword {
		return User{}, fmt.Errorf("%w: longer than %d bytes", ErrWeakPassword, maxPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		Username:  username,
		Email:     email,
		APIToken:  newToken(),
		Settings:  DefaultSettings(),
		CreatedAt: fromStamp(s.stamp()),
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE OR email = ? COLLATE NOCASE`,
			username, email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if exists > 0 {
			return ErrUserExists
		}
		st := u.Settings
		res, err := tx.ExecContext(ctx, `INSERT INTO users(username, email, password_hash, api_token,
			generate_summaries, summary_depth, summary_complexity, hide_wikipedia, search_pages_limit,
			enable_suggestions, citation_style, created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
			username, email, string(hash), u.APIToken,
			boolInt(st.GenerateSummaries), st.SummaryDepth, st.SummaryComplexity, boolInt(st.HideWikipedia),
			st.SearchPagesLimit, boolInt(st.EnableSuggestions), string(st.CitationStyle), u.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		u.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// newToken returns an opaque bearer token.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

const userColumns = `id, username, email, api_token, generate_summaries, summary_depth,
	summary_complexity, hide_wikipedia, search_pages_limit, enable_suggestions, citation_style, created_at`

func scanUser(row interface{ Scan(...any) error }, extra ...any) (User, error) {
	var (
		u                          User
		gen, hideWiki, suggestions int
		style                      string
		created                    int64
	)
	dest := append([]any{&u.ID, &u.Username, &u.Email, &u.APIToken, &gen, &u.Settings.SummaryDepth,
		&u.Settings.SummaryComplexity, &hideWiki, &u.Settings.SearchPagesLimit, &suggestions, &style, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Settings.GenerateSummaries = gen != 0
	u.Settings.HideWikipedia = hideWiki != 0
	u.Settings.EnableSuggestions = suggestions != 0
	u.Settings.CitationStyle = citation.Style(style)
	u.CreatedAt = fromStamp(created)
	return u, nil
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var hash string
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE username = ? COLLATE NOCASE`,
		strings.TrimSpace(username))
	u, err := scanUser(row, &hash)
	if errors.Is(err, ErrNotFound) {
		// Spend comparable time on unknown users.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)

// UserByToken resolves a bearer token.
func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE api_token = ?`, token))
}

// UserByID loads a user.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// UpdateSettings validates and stores st for the user.
func (s *Store) UpdateSettings(ctx context.Context, userID int64, st Settings) error {
	if st.CitationStyle == "" {
		st.CitationStyle = citation.APA
	}
	if err := st.Validate(); err != nil {
		return err
	}
	style, _ := citation.ParseStyle(string(st.CitationStyle))
	res, err := s.db.ExecContext(ctx, `UPDATE users SET generate_summaries = ?, summary_depth = ?,
		summary_complexity = ?, hide_wikipedia = ?, search_pages_limit = ?, enable_suggestions = ?,
		citation_style = ? WHERE id = ?`,
		boolInt(st.GenerateSummaries), st.SummaryDepth, st.SummaryComplexity, boolInt(st.HideWikipedia),
		st.SearchPagesLimit, boolInt(st.EnableSuggestions), string(style), userID)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
