package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gincana-service/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleMatch(id string) domain.Match {
	return domain.Match{
		ID:           id,
		Mode:         domain.ModeQuick,
		Status:       domain.StatusActive,
		CurrentRound: 1,
		MaxRounds:    10,
		Teams: []domain.MatchTeam{
			{ID: "t1", Name: "Leões"},
			{ID: "t2", Name: "Águias"},
		},
		AskedQuestions: []string{},
		CreatedAt:      time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
}

func TestMatchStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	store := NewMatchStore(client, 0)

	require.NoError(t, store.Create(ctx, sampleMatch("m1")))
	assert.True(t, mr.Exists("gincana:match:m1"))
	assert.ErrorIs(t, store.Create(ctx, sampleMatch("m1")), domain.ErrValidation)

	updated, err := store.Update(ctx, "m1", func(m *domain.Match) error {
		m.Teams[0].Score += 10
		m.AskedQuestions = append(m.AskedQuestions, "q1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Teams[0].Score)

	got, err := store.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = store.Update(ctx, "m1", func(m *domain.Match) error {
		m.Teams[0].Score = 999
		return domain.ErrMatchFinished
	})
	assert.ErrorIs(t, err, domain.ErrMatchFinished)
	got, _ = store.Get(ctx, "m1")
	assert.Equal(t, 10, got.Teams[0].Score, "failed update must not persist")

	_, err = store.Update(ctx, "missing", func(*domain.Match) error { return nil })
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, "m1"))
	assert.ErrorIs(t, store.Delete(ctx, "m1"), domain.ErrNotFound)
	list, _ = store.List(ctx)
	assert.Empty(t, list)
}

func TestMatchStoreConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	store := NewMatchStore(client, 1000)
	require.NoError(t, store.Create(ctx, sampleMatch("m1")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "m1", func(m *domain.Match) error {
				m.Teams[1].Score++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Teams[1].Score)
}

func TestMatchStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	store := NewMatchStore(client, 0)
	require.NoError(t, store.Create(ctx, sampleMatch("old")))

	require.NoError(t, store.ReplaceAll(ctx, []domain.Match{sampleMatch("a"), sampleMatch("b")}))
	assert.False(t, mr.Exists("gincana:match:old"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTeamStoreKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	store := NewTeamStore(client)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Create(ctx, domain.Team{ID: id, Name: "Time " + id}))
	}
	assert.ErrorIs(t, store.Create(ctx, domain.Team{ID: "a", Name: "dup"}), domain.ErrValidation)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, store.Update(ctx, domain.Team{ID: "a", Name: "Renomeado"}))
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renomeado", got.Name)
	assert.ErrorIs(t, store.Update(ctx, domain.Team{ID: "zz", Name: "x"}), domain.ErrTeamNotFound)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	require.NoError(t, store.ReplaceAll(ctx, []domain.Team{{ID: "z", Name: "Zebra"}}))
	list, _ = store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "z", list[0].ID)
}

func TestQuestionStoreSharedAcrossClients(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })

	require.NoError(t, NewQuestionStore(client).Create(ctx, sampleQuestion("q1")))

	got, err := NewQuestionStore(other).Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", got.ID)

	_, err = NewQuestionStore(other).Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
	assert.ErrorIs(t, NewQuestionStore(other).Delete(ctx, "missing"), domain.ErrQuestionNotFound)
}

func TestTeamUpdateRacingDeleteNeverResurrects(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	store := NewTeamStore(client)

	for i := 0; i < 50; i++ {
		team := domain.Team{ID: "t", Name: "Leões"}
		require.NoError(t, store.Create(ctx, team))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, domain.Team{ID: "t", Name: "Renomeado"})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrTeamNotFound)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Delete(ctx, "t"))
		}()
		wg.Wait()

		_, err := store.Get(ctx, "t")
		require.ErrorIs(t, err, domain.ErrTeamNotFound, "iteration %d", i)
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	}
}
