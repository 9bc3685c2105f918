package tag

import (
	"context"
	"errors"
	"testing"

	"pazuzu-registry/internal/dto"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Upsert(t *testing.T) {
	ctx := context.Background()
	uow := memory.NewRepositoryFactory(memory.NewStore()).NewUnitOfWork(ctx)
	m := NewManager()

	first, err := m.Upsert(ctx, uow, []dto.TagRequest{
		{Name: "lang", Value: "go"},
		{Name: " lang ", Value: "go"},
		{Name: "arch", Value: "amd64"},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "lang", first[0].Name)

	second, err := m.Upsert(ctx, uow, []dto.TagRequest{{Name: "lang", Value: "go"}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Id, second[0].Id)

	all, err := m.List(ctx, uow)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManager_UpsertRejectsBlankName(t *testing.T) {
	ctx := context.Background()
	uow := memory.NewRepositoryFactory(memory.NewStore()).NewUnitOfWork(ctx)

	_, err := NewManager().Upsert(ctx, uow, []dto.TagRequest{{Name: "  ", Value: "x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}
