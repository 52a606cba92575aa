// Package store persists refresh tokens rotated by the authorization server
// so a process restart resumes from the newest token instead of a stale
// seed. Backed by SQLite with embedded migrations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no refresh token has been persisted yet.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveRefreshToken records a rotated refresh token. IDs are ULIDs, so
// lexicographic order is rotation order.
func (s *Store) SaveRefreshToken(ctx context.Context, token string, rotatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token, rotated_at) VALUES (?, ?, ?)`,
		ulid.Make().String(), token, rotatedAt.UTC(),
	)
	return err
}

// LatestRefreshToken returns the most recently rotated refresh token, or
// ErrNotFound when none has been persisted.
func (s *Store) LatestRefreshToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM refresh_tokens ORDER BY id DESC LIMIT 1`,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// PruneRefreshTokens deletes all but the keep most recent rotations.
func (s *Store) PruneRefreshTokens(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens
		 WHERE id NOT IN (
		     SELECT id FROM refresh_tokens ORDER BY id DESC LIMIT ?
		 )`,
		keep,
	)
	return err
}
