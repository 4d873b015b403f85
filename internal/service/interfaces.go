// Package service defines the interfaces between the ledger engine and its
// collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
)

// Storage defines the contract for our persistence layer.
//
// The ledger and the budget are each read and replaced as a whole. A save
// either stores the full new set or leaves the old one untouched.
type Storage interface {
	// Transaction operations
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error

	// Budget operations
	LoadBudget(ctx context.Context) (model.Budget, error)
	SaveBudget(ctx context.Context, budget model.Budget) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// LedgerWriter exports a ledger and its summary to an external destination.
type LedgerWriter interface {
	Write(ctx context.Context, transactions []model.Transaction, summary ledger.Summary) error
}

// Snapshotter takes a restorable copy of the store before a destructive change.
type Snapshotter interface {
	AutoCheckpoint(ctx context.Context, reason string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
