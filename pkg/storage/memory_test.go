package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/pkg/storage"
	"github.com/craftml/mlbuilder/wizard"
)

func TestMemoryCreateGet(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	ctx := context.Background()

	w := wizard.Wizard{ID: "w1", Name: "iris-run", CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, w))

	got, err := s.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "iris-run", got.Name)

	assert.ErrorIs(t, s.Create(ctx, w), errors.ErrEntityExists)
	assert.ErrorIs(t, s.Create(ctx, wizard.Wizard{}), errors.ErrEmptyKey)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryUpdate(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, wizard.Wizard{ID: "nope"}), errors.ErrNotFound)

	w := wizard.Wizard{ID: "w1"}
	require.NoError(t, s.Create(ctx, w))

	w.SessionID = "sess-1"
	require.NoError(t, w.Advance())
	require.NoError(t, s.Update(ctx, w))

	got, err := s.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, wizard.StagePreprocess, got.Stage)
}

func TestMemoryListPagination(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, wizard.Wizard{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, total, err := s.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.Equal(t, "c", page[1].ID)

	page, total, err = s.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Empty(t, page)
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, wizard.Wizard{ID: "w1"}))
	require.NoError(t, s.Delete(ctx, "w1"))

	_, err := s.Get(ctx, "w1")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
