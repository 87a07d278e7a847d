package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// sqliteQueryTimeout bounds each statement against the embedded database.
const sqliteQueryTimeout = 3 * time.Second

const sqliteUserColumns = `id, email, password, role, created_at`

// SQLiteUserRepo provides SQLite operations for users.
type SQLiteUserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo with real time provider.
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSQLiteUserRepoWithTimeProvider creates a new SQLiteUserRepo with a custom time provider.
func NewSQLiteUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SQLiteUserRepo {
	return &SQLiteUserRepo{DB: db, timeProvider: tp}
}

// Create inserts a new user.
func (r *SQLiteUserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrUserRequestRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, sqliteQueryTimeout)
	defer cancel()

	createdAt := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password, role, created_at) VALUES (?, ?, ?, ?)`,
		req.Email, req.Password, string(req.Role), createdAt,
	)
	if err != nil {
		return nil, mapUserWriteErr(err, false)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted user id: %w", err)
	}

	return &model.User{
		ID:        id,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: createdAt,
	}, nil
}

// GetByID retrieves a user by ID.
func (r *SQLiteUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "failed to get user by ID",
		`SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by exact email.
func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "failed to get user by email",
		`SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, email)
}

// List returns every user ordered by ID.
func (r *SQLiteUserRepo) List(ctx context.Context) ([]*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, sqliteQueryTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `SELECT `+sqliteUserColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan user: %w", scanErr)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

// Update overwrites the set fields of a user. An empty request returns the current row.
func (r *SQLiteUserRepo) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	setClause, args := buildUserUpdateClause(req, func(int) string { return "?" })
	if setClause == "" {
		return r.GetByID(ctx, id)
	}

	execCtx, cancel := context.WithTimeout(ctx, sqliteQueryTimeout)
	defer cancel()

	args = append(args, id)
	res, err := r.DB.ExecContext(execCtx, "UPDATE users SET "+setClause+" WHERE id = ?", args...)
	if err != nil {
		return nil, mapUserWriteErr(err, true)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a user by ID and reports whether a row was removed.
func (r *SQLiteUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, sqliteQueryTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteUserRepo) getOne(ctx context.Context, errMsg, q string, args ...any) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, sqliteQueryTimeout)
	defer cancel()

	u, err := scanUser(r.DB.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return u, nil
}
