// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used in development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores sessions keyed by chat id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions are deep-copied on the way in and out, so callers never share state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/guesstheword/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex            // guards sessions map
	sessions map[int64]*game.Session // keyed by chat id
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[int64]*game.Session)}
}

// Load returns a copy of the chat's session, or a fresh one.
func (m *memory) Load(ctx context.Context, chatID int64) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[chatID]; ok {
		return s.Clone(), nil
	}
	return game.NewSession(), nil
}

// Save replaces the chat's session with a copy of s.
func (m *memory) Save(ctx context.Context, chatID int64, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = s.Clone()
	return nil
}

func (m *memory) Close() error { return nil }
