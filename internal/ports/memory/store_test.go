package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vycas/1000-online/internal/domain"
	"github.com/Vycas/1000-online/internal/ports"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	session := domain.NewSession(domain.DefaultRules(), "alice")
	session.ID = "s1"
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := store.Create(ctx, session); err == nil {
		t.Fatal("creating the same ID twice should fail")
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.PlayerAt(domain.SeatA).UserID != "alice" {
		t.Fatalf("host = %q, want alice", got.PlayerAt(domain.SeatA).UserID)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ports.ErrSessionNotFound) {
		t.Fatalf("get missing error = %v, want ErrSessionNotFound", err)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	session := domain.NewSession(domain.DefaultRules(), "alice")
	session.ID = "s1"
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create error: %v", err)
	}

	snap, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	// Mutating the snapshot must not leak into the store.
	if _, err := snap.Join("bob"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	fresh, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if fresh.Joined != 1 {
		t.Fatalf("stored session has %d players, want 1", fresh.Joined)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	session := domain.NewSession(domain.DefaultRules(), "alice")
	session.ID = "s1"
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create error: %v", err)
	}

	err := store.Update(ctx, "s1", func(s *domain.Session) error {
		_, err := s.Join("bob")
		return err
	})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Joined != 2 {
		t.Fatalf("stored session has %d players, want 2", got.Joined)
	}
}

func TestUpdateErrorDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	session := domain.NewSession(domain.DefaultRules(), "alice")
	session.ID = "s1"
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create error: %v", err)
	}

	boom := errors.New("boom")
	err := store.Update(ctx, "s1", func(s *domain.Session) error {
		if _, err := s.Join("bob"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("update error = %v, want boom", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Joined != 1 {
		t.Fatalf("stored session has %d players, want 1 after failed update", got.Joined)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := domain.History{
			SessionID: "s1",
			At:        at.Add(time.Duration(i) * time.Minute),
			Scores:    [domain.NumSeats]int{i * 100, 0, 0},
		}
		if err := store.AppendHistory(ctx, record); err != nil {
			t.Fatalf("append error: %v", err)
		}
	}

	records, err := store.ListHistory(ctx, "s1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("history length = %d, want 3", len(records))
	}
	for i, r := range records {
		if r.Scores[0] != i*100 {
			t.Fatalf("record %d scores = %v, want first seat %d", i, r.Scores, i*100)
		}
	}

	empty, err := store.ListHistory(ctx, "other")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("unknown session history = %d records, want 0", len(empty))
	}
}
