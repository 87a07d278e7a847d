package data

import (
	"errors"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = model.ErrUserNotFound
	// ErrUserEmailExists is returned when a create or update would duplicate an email.
	ErrUserEmailExists = model.ErrUserEmailExists
	// ErrUserRequestRequired is returned when Create is called with a nil request.
	ErrUserRequestRequired = errors.New("create user request is required")
)
