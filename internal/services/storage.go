package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/parley-engine/parley/pkg/session"
)

// SessionStore persists negotiation sessions between turns.
type SessionStore interface {
	// SaveSession writes the session under its ID.
	SaveSession(ctx context.Context, s *session.Session) error

	// LoadSession returns the session, or nil when not found.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// DeleteSession removes the session. Deleting an absent session is
	// not an error.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// MemoryStore keeps sessions in process memory. It is the default store;
// sessions do not survive the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Session
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

func (m *MemoryStore) SaveSession(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id], nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
