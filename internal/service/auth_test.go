package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/visualflow/visualflow-api/internal/adapters/registry"
	"github.com/visualflow/visualflow-api/internal/adapters/sessiontable"
	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	apperrors "github.com/visualflow/visualflow-api/internal/errors"
	"github.com/visualflow/visualflow-api/internal/mocks"
	authmocks "github.com/visualflow/visualflow-api/internal/mocks/auth"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
)

const (
	testAdminEmail    = "admin"
	testAdminPassword = "1234"
)

type authFixture struct {
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionStore
	metrics  *statsd.Recorder
	svc      *AuthService
}

// newAuthService wires AuthService to gomock repositories and a real admin registry.
func newAuthService(t *testing.T) authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := authFixture{
		users:    mocks.NewMockUserRepository(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
		metrics:  &statsd.Recorder{},
	}
	f.svc = NewAuthService(AuthServiceOptions{
		Users:     f.users,
		Sessions:  f.sessions,
		Registry:  registry.NewAdmin(testAdminEmail, testAdminPassword),
		Telemetry: Telemetry{Metrics: f.metrics},
	})
	return f
}

func storedSession(token string, id int64, email string) domainauth.Session {
	return domainauth.Session{Token: token, Email: email, Kind: domainauth.PrincipalStored, UserID: id}
}

func TestNewAuthService_PanicsWithoutDependencies(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)

	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{}) })
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Users: users, Registry: registry.NewStatic()}) })
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Users: users, Sessions: sessiontable.New(sessiontable.Options{})}) })
}

func TestAuthService_Signup(t *testing.T) {
	t.Parallel()

	t.Run("creates user with role USER", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "a@x.io").Return(nil, model.ErrUserNotFound)
		f.users.EXPECT().Create(ctx, &model.CreateUserRequest{Email: "a@x.io", Password: "p", Role: domainauth.RoleUser}).
			Return(&model.User{ID: 1, Email: "a@x.io", Role: domainauth.RoleUser}, nil)

		require.NoError(t, f.svc.Signup(ctx, model.Credentials{Email: "a@x.io", Password: "p"}))
		got := f.metrics.Find("auth.signup")
		require.Len(t, got, 1)
		assert.Equal(t, "success", got[0].Tags["result"])
	})

	t.Run("blank fields are bad request", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)

		err := f.svc.Signup(context.Background(), model.Credentials{Email: "a@x.io", Password: "   "})
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
		assert.Equal(t, MsgCredentialsRequired, apperrors.GetMessage(err))
	})

	t.Run("existing email conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "a@x.io").Return(&model.User{ID: 1, Email: "a@x.io"}, nil)

		err := f.svc.Signup(ctx, model.Credentials{Email: "a@x.io", Password: "p"})
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, MsgUserExists, apperrors.GetMessage(err))
	})

	t.Run("concurrent duplicate insert conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "a@x.io").Return(nil, model.ErrUserNotFound)
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(nil, model.ErrUserEmailExists)

		err := f.svc.Signup(ctx, model.Credentials{Email: "a@x.io", Password: "p"})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "a@x.io").Return(nil, errors.New("connection reset"))

		err := f.svc.Signup(ctx, model.Credentials{Email: "a@x.io", Password: "p"})
		assert.True(t, apperrors.IsInternal(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("built-in admin", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.sessions.EXPECT().Issue(ctx, domainauth.BuiltinRef(testAdminEmail)).Return("tok-admin", nil)

		res, err := f.svc.Login(ctx, model.Credentials{Email: testAdminEmail, Password: testAdminPassword})
		require.NoError(t, err)
		assert.Equal(t, &model.LoginResult{Token: "tok-admin", Role: domainauth.RoleAdmin}, res)
		assert.Equal(t, "builtin", f.metrics.Find("auth.login")[0].Tags["principal"])
	})

	t.Run("stored user", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "u@x.io").
			Return(&model.User{ID: 7, Email: "u@x.io", Password: "pw", Role: domainauth.RoleUser}, nil)
		f.sessions.EXPECT().Issue(ctx, domainauth.StoredRef(7, "u@x.io")).Return("tok-7", nil)

		res, err := f.svc.Login(ctx, model.Credentials{Email: "u@x.io", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "tok-7", res.Token)
		assert.Equal(t, domainauth.RoleUser, res.Role)
	})

	t.Run("stored admin role is returned verbatim", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "boss@x.io").
			Return(&model.User{ID: 3, Email: "boss@x.io", Password: "pw", Role: domainauth.RoleAdmin}, nil)
		f.sessions.EXPECT().Issue(ctx, gomock.Any()).Return("tok-3", nil)

		res, err := f.svc.Login(ctx, model.Credentials{Email: "boss@x.io", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, res.Role)
	})

	t.Run("registry email with wrong password falls through to store", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, testAdminEmail).Return(nil, model.ErrUserNotFound)

		_, err := f.svc.Login(ctx, model.Credentials{Email: testAdminEmail, Password: "nope"})
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Equal(t, MsgInvalidCredentials, apperrors.GetMessage(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByEmail(ctx, "u@x.io").Return(&model.User{ID: 7, Email: "u@x.io", Password: "pw"}, nil)

		_, err := f.svc.Login(ctx, model.Credentials{Email: "u@x.io", Password: "PW"})
		assert.True(t, apperrors.IsUnauthorized(err))
		got := f.metrics.Find("auth.login")
		require.Len(t, got, 1)
		assert.Equal(t, "unauthorized", got[0].Tags["error_class"])
	})

	t.Run("blank fields", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)

		_, err := f.svc.Login(context.Background(), model.Credentials{Email: "", Password: "x"})
		assert.True(t, apperrors.IsBadRequest(err))
	})

	t.Run("issue failure is internal", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := NewAuthService(AuthServiceOptions{
			Users:    mocks.NewMockUserRepository(ctrl),
			Sessions: &authmocks.FailingSessionStore{},
			Registry: registry.NewAdmin(testAdminEmail, testAdminPassword),
		})

		_, err := svc.Login(context.Background(), model.Credentials{Email: testAdminEmail, Password: testAdminPassword})
		assert.True(t, apperrors.IsInternal(err))
		assert.ErrorIs(t, err, authmocks.ErrStoreUnavailable)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	f := newAuthService(t)
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "  ")
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Equal(t, MsgInvalidToken, apperrors.GetMessage(err))

	f.sessions.EXPECT().Resolve(ctx, "unknown").Return(domainauth.Session{}, domainauth.ErrSessionNotFound)
	_, err = f.svc.Authenticate(ctx, "unknown")
	assert.True(t, apperrors.IsUnauthenticated(err))

	want := storedSession("tok", 1, "a@x.io")
	f.sessions.EXPECT().Resolve(ctx, "tok").Return(want, nil)
	got, err := f.svc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAuthService_AuthorizeAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session domainauth.Session
		allowed bool
	}{
		{
			name:    "built-in admin passes",
			session: domainauth.Session{Token: "t", Email: testAdminEmail, Kind: domainauth.PrincipalBuiltin},
			allowed: true,
		},
		{
			name:    "stored user with ADMIN role is refused",
			session: domainauth.Session{Token: "t", Email: testAdminEmail, Kind: domainauth.PrincipalStored, UserID: 9},
		},
		{
			name:    "built-in kind with unknown email is refused",
			session: domainauth.Session{Token: "t", Email: "ghost", Kind: domainauth.PrincipalBuiltin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthService(t)
			ctx := context.Background()
			f.sessions.EXPECT().Resolve(ctx, "t").Return(tt.session, nil)

			_, err := f.svc.AuthorizeAdmin(ctx, "t")
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsForbidden(err))
			assert.Equal(t, MsgAdminOnly, apperrors.GetMessage(err))
		})
	}

	t.Run("missing or unknown token is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		_, err := f.svc.AuthorizeAdmin(ctx, "")
		assert.True(t, apperrors.IsForbidden(err))

		f.sessions.EXPECT().Resolve(ctx, "nope").Return(domainauth.Session{}, domainauth.ErrSessionNotFound)
		_, err = f.svc.AuthorizeAdmin(ctx, "nope")
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestAuthService_Me(t *testing.T) {
	t.Parallel()
	f := newAuthService(t)
	ctx := context.Background()

	f.users.EXPECT().GetByID(ctx, int64(4)).Return(&model.User{ID: 4, Email: "m@x.io", Role: domainauth.RoleUser}, nil)
	profile, err := f.svc.Me(ctx, storedSession("t", 4, "m@x.io"))
	require.NoError(t, err)
	assert.Equal(t, &model.UserProfile{Email: "m@x.io", Role: domainauth.RoleUser}, profile)

	f.users.EXPECT().GetByID(ctx, int64(5)).Return(nil, model.ErrUserNotFound)
	_, err = f.svc.Me(ctx, storedSession("t", 5, "gone@x.io"))
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, MsgUserNotFound, apperrors.GetMessage(err))

	_, err = f.svc.Me(ctx, domainauth.Session{Token: "t", Email: testAdminEmail, Kind: domainauth.PrincipalBuiltin})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAuthService_UpdateSelf(t *testing.T) {
	t.Parallel()

	t.Run("email change rebinds the presenting token", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()
		sess := storedSession("tok", 2, "old@x.io")
		newEmail := "new@x.io"

		f.users.EXPECT().GetByID(ctx, int64(2)).Return(&model.User{ID: 2, Email: "old@x.io", Password: "p"}, nil)
		f.users.EXPECT().Update(ctx, int64(2), model.UpdateUserRequest{Email: &newEmail}).
			Return(&model.User{ID: 2, Email: newEmail, Password: "p"}, nil)
		f.sessions.EXPECT().Rebind(ctx, "tok", newEmail).Return(nil)

		blank := " "
		require.NoError(t, f.svc.UpdateSelf(ctx, sess, model.UpdateUserRequest{Email: &newEmail, Password: &blank}))
	})

	t.Run("password only does not rebind", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()
		pw := "s3cret"

		f.users.EXPECT().GetByID(ctx, int64(2)).Return(&model.User{ID: 2, Email: "a@x.io"}, nil)
		f.users.EXPECT().Update(ctx, int64(2), model.UpdateUserRequest{Password: &pw}).
			Return(&model.User{ID: 2, Email: "a@x.io", Password: pw}, nil)

		require.NoError(t, f.svc.UpdateSelf(ctx, storedSession("tok", 2, "a@x.io"), model.UpdateUserRequest{Password: &pw}))
	})

	t.Run("no fields is a successful no-op", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByID(ctx, int64(2)).Return(&model.User{ID: 2, Email: "a@x.io"}, nil)

		require.NoError(t, f.svc.UpdateSelf(ctx, storedSession("tok", 2, "a@x.io"), model.UpdateUserRequest{}))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()
		taken := "taken@x.io"

		f.users.EXPECT().GetByID(ctx, int64(2)).Return(&model.User{ID: 2, Email: "a@x.io"}, nil)
		f.users.EXPECT().Update(ctx, int64(2), gomock.Any()).Return(nil, model.ErrUserEmailExists)

		err := f.svc.UpdateSelf(ctx, storedSession("tok", 2, "a@x.io"), model.UpdateUserRequest{Email: &taken})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("principal gone", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByID(ctx, int64(2)).Return(nil, model.ErrUserNotFound)

		err := f.svc.UpdateSelf(ctx, storedSession("tok", 2, "a@x.io"), model.UpdateUserRequest{})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestAuthService_DeleteSelf(t *testing.T) {
	t.Parallel()

	t.Run("deletes and revokes presenting token", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		gomock.InOrder(
			f.users.EXPECT().GetByID(ctx, int64(8)).Return(&model.User{ID: 8, Email: "d@x.io"}, nil),
			f.users.EXPECT().Delete(ctx, int64(8)).Return(true, nil),
			f.sessions.EXPECT().Revoke(ctx, "tok").Return(nil),
		)

		require.NoError(t, f.svc.DeleteSelf(ctx, storedSession("tok", 8, "d@x.io")))
		assert.Len(t, f.metrics.Find("auth.account_deleted"), 1)
	})

	t.Run("already gone", func(t *testing.T) {
		t.Parallel()
		f := newAuthService(t)
		ctx := context.Background()

		f.users.EXPECT().GetByID(ctx, int64(8)).Return(&model.User{ID: 8}, nil)
		f.users.EXPECT().Delete(ctx, int64(8)).Return(false, nil)

		err := f.svc.DeleteSelf(ctx, storedSession("tok", 8, "d@x.io"))
		assert.True(t, apperrors.IsNotFound(err))
	})
}

// TestAuthService_SessionTableMetrics checks the active-session gauge with a real table.
func TestAuthService_SessionTableMetrics(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	rec := &statsd.Recorder{}
	svc := NewAuthService(AuthServiceOptions{
		Users:     mocks.NewMockUserRepository(ctrl),
		Sessions:  sessiontable.New(sessiontable.Options{}),
		Registry:  registry.NewAdmin(testAdminEmail, testAdminPassword),
		Telemetry: Telemetry{Metrics: rec},
	})

	for range 2 {
		_, err := svc.Login(context.Background(), model.Credentials{Email: testAdminEmail, Password: testAdminPassword})
		require.NoError(t, err)
	}

	gauges := rec.Find("sessions.active")
	require.Len(t, gauges, 2)
	assert.InDelta(t, 2.0, gauges[1].Value, 0)
}
