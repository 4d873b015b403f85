package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_Seeds(t *testing.T) {
	db := SetupTestDB(t, MonthlyLedger()...)
	assert.Equal(t, MonthlyLedger(), db.MustLoad())
	assert.Empty(t, db.MustLoadBudget())
}

func TestSetupTestDBWithOptions(t *testing.T) {
	called := false
	budget := model.Budget{{Category: model.CategoryFood, Amount: 250}}

	db := SetupTestDBWithOptions(t, TestDBOptions{
		Budget: budget,
		CustomSetup: func(ctx context.Context, store service.Storage) error {
			called = true
			return store.SaveTransactions(ctx, NewLedgerBuilder().WithIncome("Gift", 50).Build())
		},
	})

	require.True(t, called)
	assert.Equal(t, budget, db.MustLoadBudget())
	assert.Len(t, db.MustLoad(), 1)
}

func TestLedgerBuilder(t *testing.T) {
	txns := NewLedgerBuilder().
		WithIncome("Salary", 100).
		OnDate("2024-02-02").
		WithExpense(model.CategoryShopping, "Shoes", 40).
		Build()

	require.Len(t, txns, 2)
	assert.Equal(t, "test-001", txns[0].ID)
	assert.Equal(t, model.TypeIncome, txns[0].Type)
	assert.Equal(t, "2024-01-01", txns[0].Date)
	assert.Equal(t, "2024-02-02", txns[1].Date)
	assert.Equal(t, model.CategoryShopping, txns[1].Category)
}
