// Package mocks provides mock implementations for testing the visualflow services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for repository and port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockUserRepository(ctrl)
//	mockRepo.EXPECT().GetByEmail(gomock.Any(), "a@b.c").Return(user, nil)
package mocks

// Generate mock for UserRepository interface from internal/core package.
// This creates MockUserRepository with methods for all UserRepository interface methods:
// Create, GetByID, GetByEmail, Update, Delete, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/visualflow/visualflow-api/internal/core UserRepository

// Generate mocks for SessionStore and AnalysisClient interfaces from internal/ports package.
// SessionStore: Issue, Resolve, Rebind, Revoke
// AnalysisClient: Analyze
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/visualflow/visualflow-api/internal/ports SessionStore,AnalysisClient
