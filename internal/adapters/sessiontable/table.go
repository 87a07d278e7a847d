// Package sessiontable provides the in-process session table: opaque token → principal reference.
// Entries never expire; they live until revoked or the process exits.
package sessiontable

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
)

// Options configures a Table. Zero values select production defaults.
type Options struct {
	// NewToken generates tokens. Defaults to random (v4) UUID strings.
	NewToken func() string
	// Now supplies IssuedAt timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Table is a concurrency-safe in-memory session store.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session

	newToken func() string
	now      func() time.Time
}

// New creates an empty Table.
func New(opts Options) *Table {
	t := &Table{
		sessions: make(map[string]domainauth.Session),
		newToken: opts.NewToken,
		now:      opts.Now,
	}
	if t.newToken == nil {
		t.newToken = uuid.NewString
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Issue stores a new session for ref and returns its token.
func (t *Table) Issue(_ context.Context, ref domainauth.PrincipalRef) (string, error) {
	if ref.Email == "" {
		return "", errors.New("principal email cannot be empty")
	}

	sess := domainauth.Session{
		Email:    ref.Email,
		Kind:     ref.Kind,
		UserID:   ref.UserID,
		IssuedAt: t.now().UTC(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A v4 UUID collision is not expected; retry rather than overwrite a live session.
	for range 3 {
		token := t.newToken()
		if token == "" {
			continue
		}
		if _, exists := t.sessions[token]; exists {
			continue
		}
		sess.Token = token
		t.sessions[token] = sess
		return token, nil
	}
	return "", errors.New("generate session token: no unique token produced")
}

// Resolve returns the session bound to token.
func (t *Table) Resolve(_ context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	sess, ok := t.sessions[token]
	if !ok {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return sess, nil
}

// Rebind replaces the email recorded for token in place.
func (t *Table) Rebind(_ context.Context, token, email string) error {
	if token == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[token]
	if !ok {
		return nil
	}
	sess.Email = email
	t.sessions[token] = sess
	return nil
}

// Revoke deletes token. Unknown tokens are ignored.
func (t *Table) Revoke(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, token)
	return nil
}

// Len returns the number of live sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
