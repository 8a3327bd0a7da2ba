package ports

import (
	"context"
	"errors"

	"github.com/Vycas/1000-online/internal/domain"
)

// ErrSessionNotFound is returned when a session ID resolves to nothing.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore defines the interface for persisting session snapshots and
// deal history. Get returns a private copy; mutations go through Update,
// which serializes read-modify-write cycles per session.
type SessionStore interface {
	// Create persists a brand new session. Fails if the ID is taken.
	Create(ctx context.Context, session *domain.Session) error

	// Get returns a snapshot copy of the session.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update applies fn to the current session state and persists the
	// result. If fn returns an error nothing is written and the error is
	// passed through.
	Update(ctx context.Context, id string, fn func(*domain.Session) error) error

	// AppendHistory records a completed deal's score snapshot.
	AppendHistory(ctx context.Context, record domain.History) error

	// ListHistory returns the recorded deals of a session, oldest first.
	ListHistory(ctx context.Context, sessionID string) ([]domain.History, error)
}
