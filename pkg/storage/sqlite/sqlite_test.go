package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/pkg/storage/sqlite"
	"github.com/craftml/mlbuilder/wizard"
)

func TestWizardStoreRoundTrip(t *testing.T) {
	t.Parallel()

	db, err := sqlite.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := sqlite.NewWizardStore(db)
	ctx := context.Background()

	w := wizard.Wizard{
		ID:        "w1",
		Name:      "iris-run",
		SessionID: "sess-1",
		Dataset: &wizard.Dataset{
			Columns: []string{"sepal_length", "species"},
			NumRows: 150,
			NumCols: 2,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, w))
	assert.ErrorIs(t, s.Create(ctx, w), pkgerrors.ErrEntityExists)

	got, err := s.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	require.NotNil(t, got.Dataset)
	assert.Equal(t, []string{"sepal_length", "species"}, got.Dataset.Columns)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestWizardStoreUpdateAndList(t *testing.T) {
	t.Parallel()

	db, err := sqlite.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := sqlite.NewWizardStore(db)
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, wizard.Wizard{ID: "nope"}), pkgerrors.ErrNotFound)

	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, wizard.Wizard{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base,
		}))
	}

	w, err := s.Get(ctx, "b")
	require.NoError(t, err)
	w.Models = []string{"perceptron", "mlp"}
	require.NoError(t, w.Advance())
	require.NoError(t, s.Update(ctx, w))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"perceptron", "mlp"}, got.Models)
	assert.Equal(t, wizard.StagePreprocess, got.Stage)

	page, total, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	require.NoError(t, s.Delete(ctx, "a"))
	_, total, err = s.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}
