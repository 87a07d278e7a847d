package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if !IsAppError(err, tt.wantCode) {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	for _, in := range []error{pgx.ErrNoRows, sql.ErrNoRows, fmt.Errorf("get: %w", sql.ErrNoRows)} {
		if err := MapDBError(in); !IsNotFound(err) {
			t.Errorf("MapDBError(%v) should be NotFound, got %v", in, GetCode(err))
		}
	}
}

func TestMapDBError_PgUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (email)=(a@b.c) already exists.",
	}
	err := MapDBError(fmt.Errorf("insert: %w", pgErr))
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", GetCode(err))
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Field != "email" {
		t.Errorf("expected field email, got %+v", appErr)
	}
	if !IsUniqueViolation(pgErr) {
		t.Errorf("IsUniqueViolation(pg) = false")
	}
}

func TestMapDBError_PgNotNull(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "password"})
	if !IsBadRequest(err) {
		t.Errorf("expected bad request, got %v", GetCode(err))
	}
}

func TestMapDBError_PgOther(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	if !IsInternal(err) {
		t.Errorf("expected internal, got %v", GetCode(err))
	}
}

func TestMapDBError_SQLiteUnique(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	err := MapDBError(liteErr)
	if !IsConflict(err) {
		t.Errorf("expected conflict, got %v", GetCode(err))
	}
	if !IsUniqueViolation(liteErr) {
		t.Errorf("IsUniqueViolation(sqlite) = false")
	}
}

func TestMapDBError_Unrecognized(t *testing.T) {
	in := errors.New("boom")
	if err := MapDBError(in); !errors.Is(err, in) || GetCode(err) != "" {
		t.Errorf("expected passthrough, got %v", err)
	}
}
