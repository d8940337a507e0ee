// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/metrics"
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/repository"
	"github.com/skufinder/skufinder/internal/session"
)

// Auth service errors.
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUnknownUser          = errors.New("user not found")
)

// AuthService handles credential verification and session lifecycle.
type AuthService struct {
	repo                repository.UserRepository
	sessions            session.Store
	sessionTTL          time.Duration
	registrationEnabled bool
	metrics             metrics.Recorder
}

// NewAuthService creates an AuthService.
func NewAuthService(
	repo repository.UserRepository,
	sessions session.Store,
	sessionTTL time.Duration,
	registrationEnabled bool,
	recorder metrics.Recorder,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:                repo,
		sessions:            sessions,
		sessionTTL:          sessionTTL,
		registrationEnabled: registrationEnabled,
		metrics:             recorder,
	}
}

// Login verifies credentials and creates a session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		s.metrics.IncLoginFailure()
		return nil, ErrAccountDisabled
	}

	sess := session.New(user, s.sessionTTL)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncLoginSuccess()
	return sess, nil
}

// Logout destroys the session; subsequent authorize calls with the same
// token fail immediately.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Register creates a regular account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if !s.registrationEnabled {
		return nil, ErrRegistrationDisabled
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newUserID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureSuperadmin seeds the admin account on first run. Returns true
// when the account was created, false when it already existed.
func (s *AuthService) EnsureSuperadmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("check superadmin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		ID:           newUserID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, admin); err != nil {
		// Another instance may have seeded it concurrently.
		if errors.Is(err, repository.ErrEmailExists) {
			return false, nil
		}
		return false, fmt.Errorf("create superadmin: %w", err)
	}
	return true, nil
}

// ListUsers returns all accounts for the admin panel.
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.ListUsers(ctx)
}

// SetUserActive enables or disables an account.
func (s *AuthService) SetUserActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetUserActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownUser
		}
		return err
	}
	return nil
}

// ResetPassword replaces an account's password.
func (s *AuthService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownUser
		}
		return err
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

// newUserID generates a lexicographically sortable unique ID.
func newUserID() string {
	return ulid.Make().String()
}
