// Package testutil provides test utilities for the budget ledger: migrated
// in-memory databases and fluent transaction fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
	"github.com/Veraticus/budget-buddy/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage      *storage.SQLiteStorage
	t            *testing.T
	Transactions []model.Transaction
}

// SetupTestDB creates a new in-memory test database seeded with txns.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewLedgerBuilder().
//			WithIncome("Salary", 1000).
//			WithExpense(model.CategoryFood, "Groceries", 200).
//			Build()...,
//	)
func SetupTestDB(t *testing.T, txns ...model.Transaction) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Transactions: txns})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Transactions   []model.Transaction
	Budget         model.Budget
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Transactions) > 0 {
		if err := store.SaveTransactions(ctx, opts.Transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}

	if len(opts.Budget) > 0 {
		if err := store.SaveBudget(ctx, opts.Budget); err != nil {
			t.Fatalf("failed to seed budget: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:      store,
		Transactions: opts.Transactions,
		t:            t,
	}
}

// MustLoad returns the stored ledger or fails the test.
func (db *TestDB) MustLoad() []model.Transaction {
	db.t.Helper()
	txns, err := db.Storage.LoadTransactions(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load transactions: %v", err)
	}
	return txns
}

// MustLoadBudget returns the stored budget or fails the test.
func (db *TestDB) MustLoadBudget() model.Budget {
	db.t.Helper()
	budget, err := db.Storage.LoadBudget(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load budget: %v", err)
	}
	return budget
}
