package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/visualflow/visualflow-api/internal/data/pgxutil"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
)

// UserRepo provides Postgres operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrUserRequestRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (email, password, role, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, email, password, role, created_at
		`, req.Email, req.Password, string(req.Role), r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, mapUserWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, "failed to get user by ID", id)
}

// GetByEmail retrieves a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByEmailQuery, "failed to get user by email", email)
}

// List returns every user ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	var rowsOut []model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, userListQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	res := make([]*model.User, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update overwrites the set fields of a user. An empty request returns the current row.
func (r *UserRepo) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	setClause, args := buildUserUpdateClause(req, func(i int) string { return "$" + strconv.Itoa(i) })
	if setClause == "" {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := "UPDATE users SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING id, email, password, role, created_at"

	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return e
	})
	if err != nil {
		return nil, mapUserWriteErr(err, true)
	}
	return &out, nil
}

// Delete deletes a user by ID and reports whether a row was removed.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return rows > 0, nil
}

// --- helpers ---

const (
	userGetByIDQuery = `
		SELECT id, email, password, role, created_at
		FROM users
		WHERE id = $1`

	userGetByEmailQuery = `
		SELECT id, email, password, role, created_at
		FROM users
		WHERE email = $1`

	userListQuery = `
		SELECT id, email, password, role, created_at
		FROM users
		ORDER BY id`
)

func (r *UserRepo) getByQuery(ctx context.Context, q, errMsg string, args ...any) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &user, nil
}

// buildUserUpdateClause builds the SET clause for the set fields of req.
// placeholder renders the n-th bind parameter for the target dialect.
func buildUserUpdateClause(req model.UpdateUserRequest, placeholder func(int) string) (string, []any) {
	setParts := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if req.Email != nil {
		args = append(args, *req.Email)
		setParts = append(setParts, "email = "+placeholder(len(args)))
	}
	if req.Password != nil {
		args = append(args, *req.Password)
		setParts = append(setParts, "password = "+placeholder(len(args)))
	}

	if len(setParts) == 0 {
		return "", nil
	}
	return strings.Join(setParts, ", "), args
}

// mapUserWriteErr translates driver errors from either backend into the repository sentinels.
func mapUserWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && (errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)) {
		return ErrUserNotFound
	}
	if apperrors.IsUniqueViolation(err) {
		return ErrUserEmailExists
	}
	return err
}
