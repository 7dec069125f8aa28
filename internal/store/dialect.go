package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect isolates the differences between the supported SQL backends.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect interface {
	// Name is a short identifier used in logs ("sqlite", "postgres").
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN turns the configured path or URL into a driver DSN.
	DSN(dsn string) (string, error)

	// Rebind converts ? placeholders to the dialect's syntax.
	Rebind(query string) string

	// Configure applies connection settings after sql.Open.
	Configure(db *sql.DB) error
}

type sqliteDialect struct{}

// NewSQLiteDialect returns the dialect for github.com/mattn/go-sqlite3.
func NewSQLiteDialect() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite3" }

// DSN ensures the parent directory exists for relative paths like
// ./data/bot.db and enables a busy timeout and WAL journaling.
func (sqliteDialect) DSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite: empty database path")
	}
	if path == ":memory:" {
		return "file::memory:?cache=shared", nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL", nil
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) Configure(db *sql.DB) error {
	// One writer at a time; the dispatcher already serialises per chat.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return fmt.Errorf("set pragmas: %w", err)
	}
	return nil
}

type postgresDialect struct{}

// NewPostgresDialect returns the dialect for github.com/lib/pq.
func NewPostgresDialect() Dialect { return postgresDialect{} }

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("postgres: DATABASE_URL is required")
	}
	return url, nil
}

// Rebind converts ? placeholders to $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}
