package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
	"gincana-service/internal/infra/memory"
)

func TestTeamRegistryCRUD(t *testing.T) {
	ctx := context.Background()
	svc := app.NewTeamService(memory.NewTeamStore())

	_, err := svc.Create(ctx, "   ", "#fff")
	assert.ErrorIs(t, err, domain.ErrValidation)

	lions, err := svc.Create(ctx, " Leões ", "#f5a623")
	require.NoError(t, err)
	assert.Equal(t, "Leões", lions.Name)
	eagles, err := svc.Create(ctx, "Águias", "#4a90e2")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, lions.ID, list[0].ID)

	color := "#000000"
	updated, err := svc.Update(ctx, eagles.ID, app.TeamPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Águias", updated.Name)
	assert.Equal(t, color, updated.Color)

	blank := ""
	_, err = svc.Update(ctx, eagles.ID, app.TeamPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Delete(ctx, lions.ID))
	_, err = svc.Get(ctx, lions.ID)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, lions.ID), domain.ErrNotFound)
}
