package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualflow/visualflow-api/config"
	"github.com/visualflow/visualflow-api/internal/data"
	"github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
	authmocks "github.com/visualflow/visualflow-api/internal/mocks/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Auth: config.AuthConfig{BuiltinAdminEmail: "admin@example.com", BuiltinAdminPassword: "admin123"},
		DB:   config.DBConfig{Driver: config.DBDriverMemory},
		HTTP: config.HTTPConfig{Addr: "127.0.0.1:0", CORSAllowedOrigin: "http://localhost:3000"},
	}
	cfg.Sanitize()
	return cfg
}

func TestBuildCredentialRegistry(t *testing.T) {
	reg := BuildCredentialRegistry(config.AuthConfig{BuiltinAdminEmail: "root@x.io", BuiltinAdminPassword: "pw"}, discardLogger())
	p, ok := reg.Lookup("root@x.io")
	require.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, p.Role)

	empty := BuildCredentialRegistry(config.AuthConfig{BuiltinAdminEmail: "root@x.io"}, discardLogger())
	assert.Zero(t, empty.Len())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	dsn := postgresDSN(config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "p@ss/word", Name: "visualflow", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/visualflow?sslmode=disable", dsn)
}

func TestOpenIdentityStore_Memory(t *testing.T) {
	store, err := OpenIdentityStore(context.Background(), DatabaseConfig{
		DBConfig: config.DBConfig{Driver: config.DBDriverMemory},
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	assert.Nil(t, store.DB)
	assert.IsType(t, &data.MemoryUserRepo{}, store.Users)
	assert.NoError(t, store.Close())
}

func TestOpenIdentityStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := OpenIdentityStore(ctx, DatabaseConfig{
		DBConfig: config.DBConfig{
			Driver:               config.DBDriverSQLite,
			SQLitePath:           filepath.Join(t.TempDir(), "users.db"),
			RunMigrationsOnStart: true,
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	user, err := store.Users.Create(ctx, &model.CreateUserRequest{Email: "a@x.io", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, user.Role)
}

func TestConnectDB_UnknownDriver(t *testing.T) {
	_, err := ConnectDB(DatabaseConfig{DBConfig: config.DBConfig{Driver: "oracle"}})
	require.Error(t, err)
}

func TestNewServicesRequiresDeps(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testAppConfig()})
	require.Error(t, err)
}

func TestNewHTTPServerServesAPI(t *testing.T) {
	cfg := testAppConfig()
	services, err := NewServices(&ServiceDeps{
		Config:         cfg,
		Users:          data.NewMemoryUserRepo(),
		Logger:         discardLogger(),
		AnalysisClient: &authmocks.StubAnalysisClient{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	server := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: services, Logger: discardLogger()})
	require.NotNil(t, server)
	assert.Equal(t, 30*time.Second, server.ReadTimeout)
	assert.Equal(t, 120*time.Second, server.IdleTimeout)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Post(ts.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"admin@example.com","password":"admin123"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login model.LoginResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, auth.RoleAdmin, login.Role)
	assert.NotEmpty(t, login.Token)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testAppConfig()
	services, err := NewServices(&ServiceDeps{
		Config:         cfg,
		Users:          data.NewMemoryUserRepo(),
		Logger:         discardLogger(),
		AnalysisClient: &authmocks.StubAnalysisClient{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, RunConfig{Config: cfg, Services: services, Logger: discardLogger(), Listener: ln})
	}()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, getErr := http.Get(url) //nolint:noctx // test probe
		if getErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case runErr := <-done:
		assert.NoError(t, runErr)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	require.Error(t, Run(context.Background(), RunConfig{}))
}
