package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	"github.com/visualflow/visualflow-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore   = (*FailingSessionStore)(nil)
	_ ports.AnalysisClient = (*StubAnalysisClient)(nil)
)

// ErrStoreUnavailable is the default error returned by FailingSessionStore.
var ErrStoreUnavailable = errors.New("session store unavailable")

// FailingSessionStore returns Err from every operation. Useful for exercising error paths.
type FailingSessionStore struct {
	Err error
}

func (f *FailingSessionStore) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrStoreUnavailable
}

func (f *FailingSessionStore) Issue(context.Context, domainauth.PrincipalRef) (string, error) {
	return "", f.err()
}

func (f *FailingSessionStore) Resolve(context.Context, string) (domainauth.Session, error) {
	return domainauth.Session{}, f.err()
}

func (f *FailingSessionStore) Rebind(context.Context, string, string) error { return f.err() }

func (f *FailingSessionStore) Revoke(context.Context, string) error { return f.err() }

// StubAnalysisClient answers Analyze with AnalyzeFunc, or echoes the body with 200 when unset.
type StubAnalysisClient struct {
	AnalyzeFunc func(ctx context.Context, body []byte) (*model.AnalysisResponse, error)

	mu    sync.Mutex
	calls [][]byte
}

// SetAnalyzeFunc swaps the reply function; safe while handlers are running.
func (s *StubAnalysisClient) SetAnalyzeFunc(fn func(ctx context.Context, body []byte) (*model.AnalysisResponse, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AnalyzeFunc = fn
}

// Calls returns the bodies received so far.
func (s *StubAnalysisClient) Calls() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *StubAnalysisClient) Analyze(ctx context.Context, body []byte) (*model.AnalysisResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, body)
	fn := s.AnalyzeFunc
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, body)
	}
	return &model.AnalysisResponse{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        body,
	}, nil
}
