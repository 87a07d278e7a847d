//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/visualflow/visualflow-api/internal/domain/auth"
)

var (
	// ErrCredentialsRequired is returned when an email or password is blank.
	ErrCredentialsRequired = errors.New("Email and password required")
	// ErrUserNotFound is returned by identity stores when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserEmailExists is returned by identity stores when an email is already taken.
	ErrUserEmailExists = errors.New("user email already exists")
)

// User is a principal persisted in the identity store.
// Password is kept as supplied and never serialized.
type User struct {
	ID        int64     `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Password  string    `json:"-"         db:"password"`
	Role      auth.Role `json:"role"      db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Credentials is the email/password pair used by signup and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects empty or whitespace-only fields.
func (c Credentials) Validate() error {
	if IsBlank(c.Email) || IsBlank(c.Password) {
		return ErrCredentialsRequired
	}
	return nil
}

// CreateUserRequest represents parameters to create a User.
type CreateUserRequest struct {
	Email    string
	Password string
	Role     auth.Role
}

// Validate validates CreateUserRequest and defaults the role.
func (r *CreateUserRequest) Validate() error {
	if IsBlank(r.Email) || IsBlank(r.Password) {
		return ErrCredentialsRequired
	}
	if r.Role == "" {
		r.Role = auth.RoleUser
	}
	return nil
}

// UpdateUserRequest carries the fields to overwrite on a User. Nil fields are left as-is.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Normalize drops blank fields so they are treated as absent.
func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil && IsBlank(*r.Email) {
		r.Email = nil
	}
	if r.Password != nil && IsBlank(*r.Password) {
		r.Password = nil
	}
}

// HasUpdates reports whether any field is set in UpdateUserRequest.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Email != nil || r.Password != nil
}

// Apply copies the set fields onto u.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Password != nil {
		u.Password = *r.Password
	}
}

// UserProfile is the self view returned by fetch-self.
type UserProfile struct {
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
