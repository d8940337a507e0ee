// Package model defines domain entities for the application.
package model

import "time"

// Role determines what a user account is allowed to do.
type Role string

const (
	// RoleUser is a regular account: search, export, download.
	RoleUser Role = "user"
	// RoleAdmin can additionally manage accounts.
	RoleAdmin Role = "admin"
)

// User represents an application account.
// PasswordHash is an argon2id PHC string and never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
