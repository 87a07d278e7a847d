package core

import (
	"context"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on the concrete stores in internal/data.

// UserRepository defines the identity store contract. Email is unique across users.
//
// Implementations return model.ErrUserNotFound for missing users and
// model.ErrUserEmailExists when an email is already taken.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*model.User, error)
}
