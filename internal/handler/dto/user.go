package dto

import (
	"time"

	"github.com/skufinder/skufinder/internal/model"
)

// LoginRequest represents login credentials from JSON or form bodies.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the request body for account creation.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// SetActiveRequest represents the request body for enabling or
// disabling an account.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// ResetPasswordRequest represents the request body for an admin
// password reset.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse represents a user account in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse represents the admin account listing.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// ToUserListResponse converts a slice of User models to UserListResponse.
func ToUserListResponse(users []*model.User) *UserListResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = ToUserResponse(u)
	}
	return &UserListResponse{
		Users: responses,
		Count: len(responses),
	}
}
