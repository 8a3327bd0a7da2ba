package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Vycas/1000-online/internal/domain"
	"github.com/Vycas/1000-online/internal/ports"
)

// Store is an in-memory SessionStore for tests and single-node runs.
// Snapshots are deep-copied through JSON so callers never share state with
// the store.
type Store struct {
	mutex    sync.RWMutex
	sessions map[string][]byte
	history  map[string][]domain.History
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]byte),
		history:  make(map[string][]domain.History),
	}
}

func (s *Store) Create(ctx context.Context, session *domain.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.sessions[session.ID] = data
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, exists := s.sessions[id]
	if !exists {
		return nil, ports.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Session) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, exists := s.sessions[id]
	if !exists {
		return ports.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if err := fn(&session); err != nil {
		return err
	}
	updated, err := json.Marshal(&session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.sessions[id] = updated
	return nil
}

func (s *Store) AppendHistory(ctx context.Context, record domain.History) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.history[record.SessionID] = append(s.history[record.SessionID], record)
	return nil
}

func (s *Store) ListHistory(ctx context.Context, sessionID string) ([]domain.History, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := s.history[sessionID]
	out := make([]domain.History, len(records))
	copy(out, records)
	return out, nil
}
