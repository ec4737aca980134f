package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"

	// Database drivers. modernc is the pure Go SQLite driver (no CGO).
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values for Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config selects the backend and connection string.
type Config struct {
	Driver string // sqlite (default), postgres or mysql
	DSN    string
}

// Store is the SQL-backed implementation of ProgressStore, ProgressQuerier,
// LessonContent and ContentWriter.
type Store struct {
	db      *sqlx.DB
	dialect string
	now     func() time.Time
}

// Open connects to the configured database, applies SQLite pragmas when
// relevant and runs auto-migration.
func Open(cfg Config) (*Store, error) {
	driverName, entDialect, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	switch entDialect {
	case dialect.MySQL:
		// Scan DATETIME columns into time.Time.
		dsn = withParam(dsn, "parseTime", "true")
	case dialect.SQLite:
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if entDialect == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := migrate(context.Background(), entsql.OpenDB(entDialect, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{
		db:      sqlx.NewDb(db, sqlxDriverName(entDialect)),
		dialect: entDialect,
		now:     time.Now,
	}, nil
}

// OpenSQLite opens a SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(Config{Driver: DriverSQLite, DSN: path})
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Dialect returns the ent dialect name the store generates SQL for.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

func resolveDriver(name string) (driverName, entDialect string, err error) {
	switch strings.ToLower(name) {
	case "", DriverSQLite, "sqlite3":
		return "sqlite", dialect.SQLite, nil
	case DriverPostgres, "postgresql", "pg":
		return "postgres", dialect.Postgres, nil
	case DriverMySQL:
		return "mysql", dialect.MySQL, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// sqlxDriverName maps the ent dialect to a name sqlx knows the bind type of.
func sqlxDriverName(entDialect string) string {
	switch entDialect {
	case dialect.Postgres:
		return "postgres"
	case dialect.MySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// withParam appends key=value to the DSN query unless key is already set.
func withParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + key + "=" + value
	}
	return dsn + "?" + key + "=" + value
}

// sqliteDSN makes every pooled connection enforce foreign keys and wait on
// locks, and stores timestamps as sortable text.
func sqliteDSN(dsn string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_time_format=sqlite",
	}
	for _, p := range params {
		if strings.Contains(dsn, p) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. KALIMA_DB environment variable
// 2. $XDG_DATA_HOME/kalima/kalima.db
// 3. ~/.local/share/kalima/kalima.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("KALIMA_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "kalima", "kalima.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
