package registry

import (
	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
)

// Static is a read-only set of built-in principals keyed by email.
// It is populated once at startup and never mutated, so lookups need no locking.
type Static struct {
	principals map[string]domainauth.Principal
}

// NewStatic builds a registry from principals. Entries with an empty email are skipped;
// a later entry with the same email replaces an earlier one.
func NewStatic(principals ...domainauth.Principal) *Static {
	m := make(map[string]domainauth.Principal, len(principals))
	for _, p := range principals {
		if p.Email == "" {
			continue
		}
		m[p.Email] = p
	}
	return &Static{principals: m}
}

// NewAdmin returns a registry holding a single ADMIN principal.
func NewAdmin(email, password string) *Static {
	return NewStatic(domainauth.Principal{
		Email:    email,
		Password: password,
		Role:     domainauth.RoleAdmin,
	})
}

// Lookup returns the built-in principal registered under email.
func (s *Static) Lookup(email string) (domainauth.Principal, bool) {
	if s == nil {
		return domainauth.Principal{}, false
	}
	p, ok := s.principals[email]
	return p, ok
}

// Len returns the number of registered principals.
func (s *Static) Len() int {
	if s == nil {
		return 0
	}
	return len(s.principals)
}
