package data

import (
	"context"
	"sort"
	"sync"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// MemoryUserRepo keeps users in process memory. It is used when no database is configured
// and in tests that exercise services without Postgres.
type MemoryUserRepo struct {
	mu           sync.RWMutex
	nextID       int64
	byID         map[int64]model.User
	timeProvider TimeProvider
}

// NewMemoryUserRepo creates an empty MemoryUserRepo.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:         make(map[int64]model.User),
		timeProvider: &RealTimeProvider{},
	}
}

// Create inserts a new user, rejecting duplicate emails.
func (r *MemoryUserRepo) Create(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrUserRequestRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findByEmailLocked(req.Email); ok {
		return nil, ErrUserEmailExists
	}
	r.nextID++
	u := model.User{
		ID:        r.nextID,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: r.timeProvider.Now().UTC(),
	}
	r.byID[u.ID] = u
	return &u, nil
}

// GetByID retrieves a user by ID.
func (r *MemoryUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail retrieves a user by exact email.
func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.findByEmailLocked(email)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Update overwrites the set fields of a user.
func (r *MemoryUserRepo) Update(_ context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if req.Email != nil && *req.Email != u.Email {
		if _, taken := r.findByEmailLocked(*req.Email); taken {
			return nil, ErrUserEmailExists
		}
	}
	req.Apply(&u)
	r.byID[id] = u
	return &u, nil
}

// Delete removes a user by ID and reports whether it existed.
func (r *MemoryUserRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

// List returns every user ordered by ID.
func (r *MemoryUserRepo) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUserRepo) findByEmailLocked(email string) (model.User, bool) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}
