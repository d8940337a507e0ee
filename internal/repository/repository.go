// Package repository provides the user store behind a single interface
// with in-memory, SQLite, and PostgreSQL implementations. The backend is
// selected from the database URL at process start.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skufinder/skufinder/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	// CreateUser inserts a new account. Returns ErrEmailExists when the
	// email is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail retrieves an account by its unique email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByID retrieves an account by ID.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// ListUsers returns all accounts, newest first.
	ListUsers(ctx context.Context) ([]*model.User, error)
	// SetUserActive enables or disables an account.
	SetUserActive(ctx context.Context, id string, active bool) error
	// UpdatePassword replaces an account's password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Open selects and initializes a backend from the database URL:
// empty selects the in-memory store, postgres:// (or postgresql://)
// selects PostgreSQL, anything else is treated as a SQLite file path.
func Open(ctx context.Context, databaseURL string) (UserRepository, error) {
	switch BackendName(databaseURL) {
	case "memory":
		return NewMemory(), nil
	case "postgres":
		repo, err := NewPostgres(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres user store: %w", err)
		}
		return repo, nil
	default:
		repo, err := NewSQLite(strings.TrimPrefix(databaseURL, "sqlite://"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite user store: %w", err)
		}
		return repo, nil
	}
}

// BackendName reports which backend a database URL selects. Used for
// startup logging without exposing the URL itself.
func BackendName(databaseURL string) string {
	switch {
	case databaseURL == "":
		return "memory"
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres"
	default:
		return "sqlite"
	}
}
