package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// PostgresStore keeps sessions in the relational database, next to the rest
// of the application's records.
type PostgresStore struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		nowFunc: time.Now,
	}
}

func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
		INSERT INTO sessions (sid, user_id, expires_at)
		VALUES ($1, $2, $3);`

	if _, err := s.pool.Exec(ctx, query, sess.ID, sess.UserID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, id string) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
		SELECT sid, user_id, expires_at, created_at
		FROM sessions
		WHERE sid = $1;`

	var sess Session
	row := s.pool.QueryRow(ctx, query, id)
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}

	// Expired rows are reaped lazily on read.
	if sess.Expired(s.nowFunc()) {
		_ = s.Delete(ctx, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `DELETE FROM sessions WHERE sid = $1;`

	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
