package config

import (
	"fmt"
	"strings"
)

// DBDriver selects the identity store backend.
type DBDriver string

const (
	// DBDriverPostgres stores users in PostgreSQL via pgx.
	DBDriverPostgres DBDriver = "postgres"
	// DBDriverSQLite stores users in a local SQLite file.
	DBDriverSQLite DBDriver = "sqlite"
	// DBDriverMemory keeps users in process memory (lost on restart).
	DBDriverMemory DBDriver = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for DBDriver.
func (d *DBDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "postgresql", "pg":
		*d = DBDriverPostgres
	case "sqlite", "sqlite3":
		*d = DBDriverSQLite
	case "memory", "mem":
		*d = DBDriverMemory
	default:
		return fmt.Errorf("invalid DBDriver: %q (valid options: postgres, sqlite, memory)", v)
	}
	return nil
}

// DBConfig contains identity store configuration.
type DBConfig struct {
	Driver   DBDriver `env:"DRIVER"   envDefault:"postgres"`
	Host     string   `env:"HOST"     envDefault:"localhost"`
	Port     int      `env:"PORT"     envDefault:"5432"`
	User     string   `env:"USER"     envDefault:"visualflow"`
	Password string   `env:"PASSWORD" envDefault:"visualflow"`
	Name     string   `env:"NAME"     envDefault:"visualflow"`
	SSLMode  string   `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// SQLitePath is the database file used when Driver is sqlite.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"visualflow.db"`
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize fills blank values with defaults.
func (c *DBConfig) Sanitize() {
	if c.Driver == "" {
		c.Driver = DBDriverPostgres
	}
	if c.Port <= 0 {
		c.Port = 5432
	}
	if c.SSLMode = strings.TrimSpace(c.SSLMode); c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.SQLitePath = strings.TrimSpace(c.SQLitePath); c.SQLitePath == "" {
		c.SQLitePath = "visualflow.db"
	}
}
