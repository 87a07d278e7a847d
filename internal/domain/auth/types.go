package auth

// Package auth contains domain-level types for principals and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// Role represents an application's authorization role.
// The string form is persisted verbatim and returned to clients.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// PrincipalKind tells built-in registry accounts apart from stored users.
type PrincipalKind string

const (
	PrincipalBuiltin PrincipalKind = "builtin"
	PrincipalStored  PrincipalKind = "stored"
)

// ErrSessionNotFound is returned when a token does not resolve to a session.
var ErrSessionNotFound = errors.New("session not found")

// Principal is a built-in identity held by the credential registry.
type Principal struct {
	Email    string
	Password string
	Role     Role
}

// PrincipalRef identifies who a session was issued for.
// UserID is only meaningful for stored principals.
type PrincipalRef struct {
	Kind   PrincipalKind
	Email  string
	UserID int64
}

// Session is the in-memory record behind an opaque token.
type Session struct {
	Token    string        `json:"token"`
	Email    string        `json:"email"`
	Kind     PrincipalKind `json:"kind"`
	UserID   int64         `json:"user_id,omitempty"`
	IssuedAt time.Time     `json:"issued_at"`
}

// IsBuiltin reports whether the session belongs to a registry principal.
func (s Session) IsBuiltin() bool { return s.Kind == PrincipalBuiltin }

// Ref returns the principal reference the session points at.
func (s Session) Ref() PrincipalRef {
	return PrincipalRef{Kind: s.Kind, Email: s.Email, UserID: s.UserID}
}

// BuiltinRef returns a reference to a registry principal.
func BuiltinRef(email string) PrincipalRef {
	return PrincipalRef{Kind: PrincipalBuiltin, Email: email}
}

// StoredRef returns a reference to a persisted user.
func StoredRef(id int64, email string) PrincipalRef {
	return PrincipalRef{Kind: PrincipalStored, Email: email, UserID: id}
}
