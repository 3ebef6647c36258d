package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gincana-service/internal/domain"
)

func TestMatchStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMatchStore()

	m := domain.Match{ID: "m1", Status: domain.StatusActive, CurrentRound: 1, Teams: []domain.MatchTeam{{ID: "a"}}}
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, m); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}

	got, err := store.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Teams[0].Score = 99
	again, _ := store.Get(ctx, "m1")
	if again.Teams[0].Score != 0 {
		t.Fatalf("store leaked a mutable reference")
	}

	if err := store.Delete(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "m1"); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchStoreUpdateDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMatchStore()
	_ = store.Create(ctx, domain.Match{ID: "m1", Teams: []domain.MatchTeam{{ID: "a"}}})

	boom := errors.New("boom")
	_, err := store.Update(ctx, "m1", func(m *domain.Match) error {
		m.Teams[0].Score = 10
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	m, _ := store.Get(ctx, "m1")
	if m.Teams[0].Score != 0 {
		t.Fatalf("failed update must not be persisted, score=%d", m.Teams[0].Score)
	}

	if _, err := store.Update(ctx, "missing", func(*domain.Match) error { return nil }); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMatchStore()
	_ = store.Create(ctx, domain.Match{ID: "m1", Teams: []domain.MatchTeam{{ID: "a"}}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "m1", func(m *domain.Match) error {
				m.Teams[0].Score++
				return nil
			})
		}()
	}
	wg.Wait()

	m, _ := store.Get(ctx, "m1")
	if m.Teams[0].Score != 50 {
		t.Fatalf("expected 50 increments, got %d", m.Teams[0].Score)
	}
}
