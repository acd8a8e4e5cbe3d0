package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

// MockSessionStore keeps sessions in memory. Stored sessions are copies, so
// later changes to the caller's value are only visible after SaveSession or
// UpdateSession.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	SaveCalls   int
	UpdateCalls int
	DeleteCalls []string

	SaveError   error
	UpdateError error
	LoadError   error
	DeleteError error
}

var _ ports.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]domain.Session)}
}

func (m *MockSessionStore) SaveSession(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.store(session)
	return nil
}

func (m *MockSessionStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.sessions[session.ID]; !ok {
		return domain.ErrAccessDenied
	}
	m.store(session)
	return nil
}

func (m *MockSessionStore) store(session *domain.Session) {
	stored := *session
	if session.PendingDelete != nil {
		pending := *session.PendingDelete
		stored.PendingDelete = &pending
	}
	m.sessions[session.ID] = stored
}

func (m *MockSessionStore) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadError != nil {
		return nil, m.LoadError
	}
	stored, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &stored, nil
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.sessions, id)
	return nil
}

// Has reports whether a session with id is stored.
func (m *MockSessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}
