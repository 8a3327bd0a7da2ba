package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Vycas/1000-online/internal/domain"
	"github.com/Vycas/1000-online/internal/ports"
)

const (
	sessionCollection = "thousand_sessions"
	historyCollection = "thousand_history"

	// updateRetries bounds optimistic concurrency retries on version clashes.
	updateRetries = 3
)

// storageAPI is the slice of runtime.NakamaModule the adapter needs.
type storageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// StorageStore persists sessions and deal history in Nakama storage. Each
// session lives under its own user-less storage object; writes carry the
// object version so concurrent updates are rejected rather than lost.
type StorageStore struct {
	nk storageAPI
}

var _ ports.SessionStore = (*StorageStore)(nil)

// NewStorageStore creates a session store backed by Nakama storage.
func NewStorageStore(nk storageAPI) *StorageStore {
	return &StorageStore{nk: nk}
}

type historyEnvelope struct {
	Records []domain.History `json:"records"`
}

func (s *StorageStore) Create(ctx context.Context, session *domain.Session) error {
	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      sessionCollection,
		Key:             session.ID,
		UserID:          "", // system owned
		Value:           string(value),
		Version:         "*", // only if absent
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return fmt.Errorf("session %s already exists", session.ID)
		}
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *StorageStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, _, err := s.read(ctx, id)
	return session, err
}

func (s *StorageStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) error {
	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		session, version, err := s.read(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		value, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      sessionCollection,
			Key:             id,
			UserID:          "",
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		}})
		if err == nil {
			return nil
		}
		if !errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return fmt.Errorf("failed to write session: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("session %s update kept clashing: %w", id, lastErr)
}

func (s *StorageStore) AppendHistory(ctx context.Context, record domain.History) error {
	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		envelope, version, err := s.readHistory(ctx, record.SessionID)
		if err != nil {
			return err
		}
		envelope.Records = append(envelope.Records, record)
		value, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		if version == "" {
			version = "*"
		}
		_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      historyCollection,
			Key:             record.SessionID,
			UserID:          "",
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		}})
		if err == nil {
			return nil
		}
		if !errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return fmt.Errorf("failed to write history: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("history of %s kept clashing: %w", record.SessionID, lastErr)
}

func (s *StorageStore) ListHistory(ctx context.Context, sessionID string) ([]domain.History, error) {
	envelope, _, err := s.readHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return envelope.Records, nil
}

func (s *StorageStore) read(ctx context.Context, id string) (*domain.Session, string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: sessionCollection,
		Key:        id,
	}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read session: %w", err)
	}
	if len(objects) == 0 {
		return nil, "", ports.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &session); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, objects[0].GetVersion(), nil
}

func (s *StorageStore) readHistory(ctx context.Context, sessionID string) (*historyEnvelope, string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: historyCollection,
		Key:        sessionID,
	}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read history: %w", err)
	}
	if len(objects) == 0 {
		return &historyEnvelope{}, "", nil
	}
	var envelope historyEnvelope
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &envelope); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &envelope, objects[0].GetVersion(), nil
}
