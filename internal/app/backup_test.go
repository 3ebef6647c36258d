package app_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
	"gincana-service/internal/infra/memory"
)

func TestBackupRoundTripReplacesCollections(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	questions := memory.NewQuestionStore()
	teams := memory.NewTeamStore()
	matches := memory.NewMatchStore()

	qsvc := app.NewQuestionService(questions, logger, app.QuestionServiceOptions{Seed: 1})
	tsvc := app.NewTeamService(teams)
	engine := app.NewMatchService(matches, tsvc, qsvc, nil, app.MatchServiceOptions{}, logger)
	backup := app.NewBackupService(questions, teams, matches, logger)

	_, err := qsvc.Add(ctx, question("Quem abriu o Mar Vermelho?", domain.CategoryMiracles, "Êxodo 14:21"))
	require.NoError(t, err)
	team, err := tsvc.Create(ctx, "Leões", "#f5a623")
	require.NoError(t, err)
	_, err = engine.CreateMatch(ctx, domain.ModeQuick, []string{team.ID}, domain.MatchOptions{})
	require.NoError(t, err)

	snap, err := backup.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.SnapshotVersion, snap.Version)
	assert.Len(t, snap.Questions, 1)
	assert.Len(t, snap.Teams, 1)
	assert.Len(t, snap.Matches, 1)

	_, err = tsvc.Create(ctx, "Águias", "#000")
	require.NoError(t, err)
	_, err = qsvc.Add(ctx, question("Extra", domain.CategoryBooks, ""))
	require.NoError(t, err)

	require.NoError(t, backup.Restore(ctx, snap))

	ts, _ := tsvc.List(ctx)
	assert.Len(t, ts, 1, "restore replaces rather than merges")
	qs, _ := qsvc.List(ctx, domain.QuestionFilter{})
	assert.Len(t, qs, 1)
}

func TestRestoreRejectsInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	questions := memory.NewQuestionStore()
	teams := memory.NewTeamStore()
	backup := app.NewBackupService(questions, teams, memory.NewMatchStore(), logger)

	require.NoError(t, teams.Create(ctx, domain.Team{ID: "keep", Name: "Keep"}))

	bad := question("Sem id", domain.CategoryBooks, "")
	err := backup.Restore(ctx, app.Snapshot{Version: app.SnapshotVersion, Questions: []domain.Question{bad}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = backup.Restore(ctx, app.Snapshot{Version: 99})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = backup.Restore(ctx, app.Snapshot{
		Version: app.SnapshotVersion,
		Matches: []domain.Match{{ID: "m", Status: domain.StatusActive, CurrentRound: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ts, _ := teams.List(ctx)
	assert.Len(t, ts, 1, "invalid snapshot must not replace anything")
}

type brokenCatalog struct {
	*memory.QuestionStore
}

func (brokenCatalog) ReplaceAll(context.Context, []domain.Question) error {
	return errors.New("disk full")
}

func TestRestoreFailureLeavesPreviousState(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	questions := brokenCatalog{memory.NewQuestionStore()}
	teams := memory.NewTeamStore()
	matches := memory.NewMatchStore()

	qsvc := app.NewQuestionService(questions, logger, app.QuestionServiceOptions{Seed: 1})
	tsvc := app.NewTeamService(teams)
	engine := app.NewMatchService(matches, tsvc, qsvc, nil, app.MatchServiceOptions{}, logger)
	backup := app.NewBackupService(questions, teams, matches, logger)

	team, err := tsvc.Create(ctx, "Leões", "#f5a623")
	require.NoError(t, err)
	m, err := engine.CreateMatch(ctx, domain.ModeQuick, []string{team.ID}, domain.MatchOptions{})
	require.NoError(t, err)

	err = backup.Restore(ctx, app.Snapshot{
		Version: app.SnapshotVersion,
		Teams:   []domain.Team{{ID: "other", Name: "Águias"}},
	})
	require.Error(t, err)

	ts, err := tsvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, team.ID, ts[0].ID)
	_, err = engine.GetMatch(ctx, m.ID)
	assert.NoError(t, err, "matches are put back when a later step fails")
}
