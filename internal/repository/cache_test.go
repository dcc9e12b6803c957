package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
	"github.com/mamadbah2/labstock/internal/repository/memory"
)

func TestCachedStoreServesFreshCopies(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	store := repository.NewCachedStore(backing, time.Minute, nil)
	schema := electronics(t)

	first, err := store.Load(ctx, schema)
	require.NoError(t, err)
	first.Rows = append(first.Rows, models.NewRecord(map[string]string{"name": "mutated"}, 1))

	second, err := store.Load(ctx, schema)
	require.NoError(t, err)
	assert.Empty(t, second.Rows, "cached table must not alias the caller's copy")
	assert.Equal(t, 1, backing.Loads())
}

func TestCachedStoreInvalidatesOnSave(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	store := repository.NewCachedStore(backing, time.Minute, nil)
	schema := electronics(t)

	table, err := store.Load(ctx, schema)
	require.NoError(t, err)
	table.Rows = append(table.Rows, models.NewRecord(map[string]string{"name": "LED"}, 5))
	require.NoError(t, store.Save(ctx, table))

	reloaded, err := store.Load(ctx, schema)
	require.NoError(t, err)
	require.Len(t, reloaded.Rows, 1)
	assert.Equal(t, 2, backing.Loads())
}

func TestCachedStoreKeepsEntryWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	store := repository.NewCachedStore(backing, time.Minute, nil)
	schema := electronics(t)

	table, err := store.Load(ctx, schema)
	require.NoError(t, err)

	backing.FailSaves(repository.ErrStoreLocked)
	table.Rows = append(table.Rows, models.NewRecord(map[string]string{"name": "LED"}, 5))

	err = store.Save(ctx, table)
	var saveErr *repository.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.ErrorIs(t, err, repository.ErrStoreLocked)

	again, err := store.Load(ctx, schema)
	require.NoError(t, err)
	assert.Empty(t, again.Rows)
}

func TestNewCachedStoreWithoutTTLReturnsNext(t *testing.T) {
	backing := memory.NewStore()
	assert.Same(t, backing, repository.NewCachedStore(backing, 0, nil))
}
