package memory

import (
	"context"
	"errors"
	"testing"

	"gincana-service/internal/domain"
)

func TestQuestionStoreKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	for _, id := range []string{"q1", "q2", "q3"} {
		if err := store.Create(ctx, domain.Question{ID: id, Text: id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.Delete(ctx, "q2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	qs, _ := store.List(ctx)
	if len(qs) != 2 || qs[0].ID != "q1" || qs[1].ID != "q3" {
		t.Fatalf("unexpected order: %+v", qs)
	}

	if err := store.Update(ctx, domain.Question{ID: "q2"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTeamStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewTeamStore()
	_ = store.Create(ctx, domain.Team{ID: "old", Name: "Old"})

	if err := store.ReplaceAll(ctx, []domain.Team{{ID: "a", Name: "Leões"}, {ID: "b", Name: "Águias"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ts, _ := store.List(ctx)
	if len(ts) != 2 || ts[0].ID != "a" {
		t.Fatalf("unexpected teams: %+v", ts)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("replace must drop previous teams, got %v", err)
	}
}
