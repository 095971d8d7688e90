// Package models defines the domain entities of the budget tracker and the
// request payloads accepted by the API.
package models

import (
	"time"
)

// Roles a user can hold. Authorization middleware checks the authenticated
// user's role against the set allowed for a route.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user of the budget tracker.
// The password hash and the reset token fields are never serialized.
//
// Invariant: PasswordResetTokenHash and PasswordResetExpiresAt are either
// both set or both nil.
type User struct {
	ID                     int64      `json:"id" db:"user_id"`
	Name                   string     `json:"name" db:"name" validate:"required,min=1,max=100"`
	Email                  string     `json:"email" db:"email" validate:"required,email"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	Salt                   string     `json:"-" db:"salt"`
	Role                   string     `json:"role" db:"role"`
	PasswordChangedAt      *time.Time `json:"-" db:"password_changed_at"`
	PasswordResetTokenHash *string    `json:"-" db:"password_reset_token_hash"`
	PasswordResetExpiresAt *time.Time `json:"-" db:"password_reset_expires_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User with the given name and email. Password fields
// are populated later during registration; the role defaults to "user".
func NewUser(name, email string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return "users"
}

// Sanitize removes sensitive information from the User object when sending
// to clients.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.Salt = ""
	sanitized.PasswordResetTokenHash = nil
	sanitized.PasswordResetExpiresAt = nil
	return &sanitized
}

// PasswordChangedAfter reports whether the user's password was changed
// strictly after the given time. A user who never changed their password
// has a nil PasswordChangedAt and always returns false.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(t)
}

// HasResetToken reports whether a password reset handshake is pending. Both
// fields must be set together; either one alone is treated as no token.
func (u *User) HasResetToken() bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetExpiresAt != nil
}

// UserRegistration represents the data required for signup.
type UserRegistration struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UserCredentials represents the login credentials provided by a user.
type UserCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangePasswordRequest represents an authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

// ForgotPasswordRequest starts the password reset handshake.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password reset handshake. The raw
// token arrives as a URL path segment, not in the body.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UserUpdate represents the data that can be updated for a user profile.
type UserUpdate struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
