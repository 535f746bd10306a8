package session

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

const idLength = 32

// Session binds a signed-cookie ID to an authenticated user for a bounded
// lifetime.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its lifetime at the given instant.
func (s Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}

// Identity is the opaque authenticated principal attached to a request.
type Identity struct {
	UserID uuid.UUID
}

// NewID generates a cryptographically random session identifier.
func NewID() (string, error) {
	raw := make([]byte, idLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
