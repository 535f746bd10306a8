package session

import "context"

// Store persists sessions. Lookup must return ErrSessionNotFound for unknown
// or expired IDs; any other error is an infrastructure failure.
type Store interface {
	Create(ctx context.Context, sess Session) error
	Lookup(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
