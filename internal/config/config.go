// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/kalima/internal/store"
)

// DefaultUser is the learner id used when none is configured.
const DefaultUser = "local"

// Config holds all runtime configuration.
type Config struct {
	DB DBConfig

	// UserID identifies the learner whose progress is read and written.
	UserID string

	Log LogConfig

	// TimeZone names the IANA zone used for calendar dates in analytics.
	// Empty means the system zone.
	TimeZone string
}

// DBConfig selects the database.
type DBConfig struct {
	Driver string // sqlite (default), postgres or mysql
	DSN    string // Connection string for postgres and mysql
	Path   string // SQLite file; empty means store.DefaultDBPath
}

// LogConfig configures the structured log file.
type LogConfig struct {
	File  string // Empty means kalima.log next to the database
	Level string // debug, info, warn or error
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DB:     DBConfig{Driver: store.DriverSQLite},
		UserID: DefaultUser,
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads .env from the working directory if present, then builds the
// Config from the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("KALIMA_DB_DRIVER"); v != "" {
		cfg.DB.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("KALIMA_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("KALIMA_DB"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("KALIMA_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("KALIMA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("KALIMA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KALIMA_TZ"); v != "" {
		cfg.TimeZone = v
	}

	return cfg
}

// Validate checks that the selected driver has what it needs.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres, store.DriverMySQL:
		if c.DB.DSN == "" {
			return fmt.Errorf("KALIMA_DB_DSN is required for the %s driver", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user id must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// StoreConfig resolves the store connection settings. For SQLite without
// an explicit path the default data directory is created.
func (c Config) StoreConfig() (store.Config, error) {
	if c.DB.Driver != store.DriverSQLite {
		return store.Config{Driver: c.DB.Driver, DSN: c.DB.DSN}, nil
	}

	path := c.DB.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return store.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return store.Config{}, fmt.Errorf("create database directory: %w", err)
	}
	return store.Config{Driver: store.DriverSQLite, DSN: path}, nil
}
