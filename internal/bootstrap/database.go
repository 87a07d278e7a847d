package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	// Register the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Register the sqlite3 database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/visualflow/visualflow-api/config"
	"github.com/visualflow/visualflow-api/internal/core"
	"github.com/visualflow/visualflow-api/internal/data"
	"github.com/visualflow/visualflow-api/internal/migrate"
)

const pingTimeout = 5 * time.Second

// DatabaseConfig contains configuration for the identity store connection.
type DatabaseConfig struct {
	DBConfig config.DBConfig
	Logger   *slog.Logger
}

// IdentityStore bundles the user repository with the database handle behind it.
// DB is nil for the memory driver.
type IdentityStore struct {
	Users core.UserRepository
	DB    *sql.DB
}

// Close releases the database handle, if any.
func (s *IdentityStore) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenIdentityStore connects the configured backend, applies migrations when enabled,
// and returns the matching repository.
func OpenIdentityStore(ctx context.Context, cfg DatabaseConfig) (*IdentityStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DBConfig.Driver == config.DBDriverMemory {
		logger.WarnContext(ctx, "using in-memory identity store; users are lost on restart")
		return &IdentityStore{Users: data.NewMemoryUserRepo()}, nil
	}

	db, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DBConfig.RunMigrationsOnStart {
		if err = RunMigrations(ctx, db, dialectFor(cfg.DBConfig.Driver), logger); err != nil {
			return nil, closeOnErr(db, err)
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	store := &IdentityStore{DB: db}
	if cfg.DBConfig.Driver == config.DBDriverSQLite {
		store.Users = data.NewSQLiteUserRepo(db)
	} else {
		store.Users = data.NewUserRepo(db)
	}
	return store, nil
}

// ConnectDB opens and pings the configured SQL database.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	switch cfg.DBConfig.Driver {
	case config.DBDriverSQLite:
		return connectSQLite(cfg)
	case config.DBDriverPostgres, "":
		return connectPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBConfig.Driver)
	}
}

func connectPostgres(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = ping(db); err != nil {
		return nil, err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"driver", string(config.DBDriverPostgres),
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}
	return db, nil
}

// postgresDSN builds the DSN using url.URL to safely handle special characters in credentials.
func postgresDSN(c config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func connectSQLite(cfg DatabaseConfig) (*sql.DB, error) {
	path := cfg.DBConfig.SQLitePath
	if path == "" {
		path = "visualflow.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err = ping(db); err != nil {
		return nil, err
	}

	// journal_mode is unsupported for some targets (e.g. in-memory); ignore failures.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	for _, pragma := range []string{`PRAGMA busy_timeout=5000`, `PRAGMA foreign_keys=ON`} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			return nil, closeOnErr(db, fmt.Errorf("apply %s: %w", pragma, execErr))
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected", "driver", string(config.DBDriverSQLite), "path", path)
	}
	return db, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return closeOnErr(db, fmt.Errorf("ping database: %w", err))
	}
	return nil
}

func closeOnErr(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close database connection: %w", closeErr))
	}
	return err
}

func dialectFor(driver config.DBDriver) migrate.Dialect {
	if driver == config.DBDriverSQLite {
		return migrate.SQLite
	}
	return migrate.Postgres
}

// RunMigrations runs database migrations.
func RunMigrations(ctx context.Context, db *sql.DB, dialect migrate.Dialect, logger *slog.Logger) error {
	if err := data.RunMigrations(ctx, db, dialect); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "dialect", string(dialect))
	}

	return nil
}
