// Package store persists chat sessions.
package store

import (
	"context"
	"fmt"

	"github.com/robalobadob/guesstheword/internal/game"
)

// Store defines the persistence interface for chat sessions.
// Implementations: memory (this package), SQLite and PostgreSQL (SQLStore).
type Store interface {
	// Load returns the session of a chat, or game.NewSession() for a chat
	// that was never saved.
	Load(ctx context.Context, chatID int64) (*game.Session, error)

	// Save persists the full session of a chat.
	Save(ctx context.Context, chatID int64, s *game.Session) error

	// Close releases resources.
	Close() error
}

// Open returns the store for driver: "memory", "sqlite" or "postgres".
// dsn is a file path for sqlite and a connection URL for postgres.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3", "":
		return openSQL(NewSQLiteDialect(), dsn)
	case "postgres", "postgresql":
		return openSQL(NewPostgresDialect(), dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// openSQL avoids returning a typed nil *SQLStore inside the Store interface.
func openSQL(d Dialect, dsn string) (Store, error) {
	s, err := OpenSQL(d, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}
