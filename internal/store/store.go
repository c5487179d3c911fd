package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("store: not found")
	ErrUserExists         = errors.New("store: username or email already registered")
	ErrInvalidCredentials = errors.New("store: invalid username or password")
	ErrInvalidUsername    = errors.New("store: username must be 3 to 64 characters")
	ErrInvalidEmail       = errors.New("store: invalid email address")
	ErrWeakPassword       = errors.New("store: password must be at least 8 characters")
	ErrInvalidSettings    = errors.New("store: invalid settings")
	ErrInvalidRating      = errors.New("store: rating must be between 1 and 5")
)

// Store is a SQLite-backed repository. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) stamp() int64 { return s.now().UTC().UnixNano() }

func fromStamp(n int64) time.Time { return time.Unix(0, n).UTC() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// withTx runs fn in a transaction and commits when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
