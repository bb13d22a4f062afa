package session

import (
	"context"
	"errors"
	"sync"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// MemoryRepository is an in-memory implementation of SessionRepository.
// Session state is transient by contract, so a mutex-guarded map is
// the whole storage backend.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

var _ repositories.SessionRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*entities.Session),
	}
}

// Create registers and returns a fresh session.
func (m *MemoryRepository) Create(ctx context.Context) (*entities.Session, error) {
	session := entities.NewSession()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session

	return session, nil
}

// Get returns the session with the given ID.
func (m *MemoryRepository) Get(ctx context.Context, id string) (*entities.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return session, nil
}

// Save stores the session under its ID.
func (m *MemoryRepository) Save(ctx context.Context, session *entities.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session with ID is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session

	return nil
}

// Delete removes the session. Unknown IDs are ignored.
func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)

	return nil
}
