// Package session provides server-side session storage keyed by opaque
// random tokens. The browser only ever holds the token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL matches the original deployment's 24-hour session cookie.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when a token does not resolve to a live session.
var ErrNotFound = errors.New("session not found")

// Store holds the token → user ID mapping with expiry.
type Store interface {
	// Create opens a session for the user and returns the opaque token.
	Create(ctx context.Context, userID string) (string, error)
	// Get resolves a token to a user ID, or ErrNotFound if the session is
	// missing or expired.
	Get(ctx context.Context, token string) (string, error)
	// Destroy ends the session. Destroying an unknown token is not an error.
	Destroy(ctx context.Context, token string) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// newToken generates a 256-bit URL-safe random token.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
