// Package session provides the server-side session store behind login
// cookies, with in-memory and Redis implementations.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/skufinder/skufinder/internal/model"
)

// ErrNotFound is returned for unknown, expired, or destroyed sessions.
var ErrNotFound = errors.New("session not found")

// Store holds sessions keyed by an opaque token.
type Store interface {
	// Create persists a session until its expiry.
	Create(ctx context.Context, sess *model.Session) error
	// Get retrieves a live session by token; expired sessions are
	// indistinguishable from missing ones.
	Get(ctx context.Context, token string) (*model.Session, error)
	// Delete destroys a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Counter provides fixed-window counting for rate limiting. Both store
// implementations satisfy it so the login limiter works with either
// backend.
type Counter interface {
	// IncrWindow increments the counter for key in the current window
	// and returns the new count.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// NewToken generates an opaque session token.
func NewToken() string {
	return uuid.New().String()
}

// New builds a session for a user with the given TTL.
func New(user *model.User, ttl time.Duration) *model.Session {
	now := time.Now().UTC()
	return &model.Session{
		Token:     NewToken(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
