package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/skufinder/skufinder/internal/model"
)

// Memory is an in-process user store. It backs the single-tenant variant
// where the only account is the superadmin seeded at startup; the table
// is effectively read-only after that.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

// NewMemory creates an empty in-memory user store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// CreateUser inserts a new account.
func (m *Memory) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, ok := m.byEmail[email]; ok {
		return ErrEmailExists
	}

	stored := *user
	m.byID[user.ID] = &stored
	m.byEmail[email] = user.ID
	return nil
}

// GetUserByEmail retrieves an account by email.
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := *m.byID[id]
	return &user, nil
}

// GetUserByID retrieves an account by ID.
func (m *Memory) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := *stored
	return &user, nil
}

// ListUsers returns all accounts, newest first.
func (m *Memory) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.byID))
	for _, stored := range m.byID {
		user := *stored
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// SetUserActive enables or disables an account.
func (m *Memory) SetUserActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Active = active
	return nil
}

// UpdatePassword replaces an account's password hash.
func (m *Memory) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
