package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// SessionStore maps opaque tokens to the principal they were issued for.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Issue creates a fresh token for ref. Every call yields a new, independent token.
	Issue(ctx context.Context, ref domainauth.PrincipalRef) (string, error)

	// Resolve returns the session for token or domainauth.ErrSessionNotFound.
	Resolve(ctx context.Context, token string) (domainauth.Session, error)

	// Rebind overwrites the email recorded for token, keeping the token string. Unknown tokens are ignored.
	Rebind(ctx context.Context, token, email string) error

	// Revoke removes token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}

// CredentialRegistry holds the built-in principals fixed at process start.
type CredentialRegistry interface {
	Lookup(email string) (domainauth.Principal, bool)
}

// AnalysisClient forwards a raw JSON document to the downstream analysis service.
type AnalysisClient interface {
	Analyze(ctx context.Context, body []byte) (*model.AnalysisResponse, error)
}
