package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Authenticator resolves a request to the identity bound to its session
// cookie. A missing, tampered, unknown, or expired session is reported as
// absence, not as an error; errors are reserved for store failures.
type Authenticator struct {
	codec CookieCodec
	store Store
}

func NewAuthenticator(codec CookieCodec, store Store) *Authenticator {
	return &Authenticator{
		codec: codec,
		store: store,
	}
}

// Authenticate extracts the caller's identity, if any.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (Identity, bool, error) {
	id, ok := a.codec.Decode(r)
	if !ok {
		return Identity{}, false, nil
	}

	sess, err := a.store.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("lookup session: %w", err)
	}

	return Identity{UserID: sess.UserID}, true, nil
}
