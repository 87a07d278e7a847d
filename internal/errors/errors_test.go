package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "User not found"},
			want: "User not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "AI service error",
				Cause:   errors.New("connection refused"),
			},
			want: "AI service error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(wrapped, cause) = false")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		check func(error) bool
	}{
		{"bad request", BadRequest("Email and password required"), ErrCodeBadRequest, IsBadRequest},
		{"conflict", Conflict("User already exists"), ErrCodeConflict, IsConflict},
		{"unauthorized", Unauthorized("Invalid credentials"), ErrCodeUnauthorized, IsUnauthorized},
		{"unauthenticated", Unauthenticated("Missing or invalid token"), ErrCodeUnauthenticated, IsUnauthenticated},
		{"forbidden", Forbidden("Admin only"), ErrCodeForbidden, IsForbidden},
		{"not found", NotFound("User not found"), ErrCodeNotFound, IsNotFound},
		{"internal", Internal("boom"), ErrCodeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("predicate did not match wrapped %v", tt.code)
			}
			if GetCode(wrapped) != tt.code {
				t.Errorf("GetCode() = %v, want %v", GetCode(wrapped), tt.code)
			}
		})
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestGetMessage(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFoundf("user %d not found", 7))
	if got := GetMessage(err); got != "user 7 not found" {
		t.Errorf("GetMessage() = %q", got)
	}
	if got := GetMessage(errors.New("plain")); got != "" {
		t.Errorf("GetMessage(plain) = %q, want empty", got)
	}
}

func TestBadRequestField(t *testing.T) {
	err := BadRequestField("id", "invalid user id")
	if err.Field != "id" || err.Code != ErrCodeBadRequest {
		t.Errorf("unexpected error: %+v", err)
	}
}
