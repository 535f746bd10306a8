package session

import "errors"

var (
	// ErrSessionNotFound signals the session ID has no live record in the store.
	ErrSessionNotFound = errors.New("session not found")
)
