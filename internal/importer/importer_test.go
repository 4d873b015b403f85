package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/budget-buddy/internal/csvcodec"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/Veraticus/budget-buddy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lunchCSV = "date,amount,description,category,type\n" +
	"2024-02-01,50,Lunch,Food,expense\n" +
	"2024-02-01,Lunch,Food,expense\n"

type fakeSnapshotter struct {
	err     error
	reasons []string
}

func (f *fakeSnapshotter) AutoCheckpoint(_ context.Context, reason string) error {
	f.reasons = append(f.reasons, reason)
	return f.err
}

func TestImportCSV_AddsThenNoop(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.NewLedgerBuilder().WithIncome("Salary", 1000).Build()...)
	imp := NewImporter(db.Storage)

	first, err := imp.ImportCSV(ctx, lunchCSV, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportKindAdded, first.Kind)
	assert.Equal(t, 1, first.Count)
	assert.Len(t, first.Skipped, 1)
	assert.Len(t, db.MustLoad(), 2)

	second, err := imp.ImportCSV(ctx, lunchCSV, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportKindNoop, second.Kind)
	assert.Equal(t, 1, second.Duplicates)
	assert.Len(t, db.MustLoad(), 2)
}

func TestImportCSV_PreviewTouchesNothing(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Close())
	imp := NewImporter(store)

	report, err := imp.ImportCSV(context.Background(), lunchCSV, true)
	require.NoError(t, err, "a closed store proves preview never loads or saves")
	assert.Equal(t, ledger.ImportKindImported, report.Kind)
	assert.Equal(t, 1, report.Count)
	assert.Nil(t, report.Ledger)
}

func TestImportCSV_ParseErrorsAreFatal(t *testing.T) {
	store := storage.NewMemoryStorage()
	imp := NewImporter(store)
	ctx := context.Background()

	_, err := imp.ImportCSV(ctx, "date,amount\n2024-01-01,5\n", false)
	var missing *csvcodec.MissingColumnsError
	assert.ErrorAs(t, err, &missing)

	_, err = imp.ImportCSV(ctx, "", false)
	assert.ErrorIs(t, err, csvcodec.ErrEmptyImport)
	assert.Zero(t, store.SaveCount())
}

func TestImportTransactions_SavesOnlyWhenAdded(t *testing.T) {
	ctx := context.Background()
	existing := testutil.NewLedgerBuilder().WithExpense(model.CategoryFood, "Lunch", 12).Build()
	store := storage.NewMemoryStorage(existing...)
	snap := &fakeSnapshotter{}
	imp := NewImporter(store, WithSnapshotter(snap))

	dup := existing[0]
	dup.ID = model.NewID()
	dup.Category = model.CategoryOther
	result, err := imp.ImportTransactions(ctx, []model.Transaction{dup}, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportKindNoop, result.Kind)
	assert.Zero(t, store.SaveCount())
	assert.Empty(t, snap.reasons)

	fresh := model.Transaction{ID: model.NewID(), Date: "2024-01-02", Amount: 8, Description: "Coffee", Category: model.CategoryFood, Type: model.TypeExpense}
	result, err = imp.ImportTransactions(ctx, []model.Transaction{fresh}, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportKindAdded, result.Kind)
	assert.Equal(t, 1, store.SaveCount())
	assert.Equal(t, []string{"import"}, snap.reasons)

	stored, err := store.LoadTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, append(existing, fresh), stored)
}

func TestImportTransactions_SnapshotFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	errDisk := errors.New("disk full")
	imp := NewImporter(store, WithSnapshotter(&fakeSnapshotter{err: errDisk}))

	fresh := model.Transaction{ID: "a", Date: "2024-01-02", Amount: 8, Description: "Coffee", Category: model.CategoryFood, Type: model.TypeExpense}
	_, err := imp.ImportTransactions(ctx, []model.Transaction{fresh}, false)
	assert.ErrorIs(t, err, errDisk)
	assert.Zero(t, store.SaveCount())
}

func TestImportTransactions_WithCheckpointManager(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStorage(t.TempDir() + "/budget.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	imp := NewImporter(store, WithSnapshotter(cm))

	_, err = imp.ImportCSV(ctx, lunchCSV, false)
	require.NoError(t, err)

	checkpoints, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, checkpoints, 1)
	assert.True(t, checkpoints[0].IsAuto)
	assert.Zero(t, checkpoints[0].Transactions(), "snapshot is taken before the save")
}
