package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
)

// ErrStorageClosed is returned by MemoryStorage after Close.
var ErrStorageClosed = errors.New("storage is closed")

var _ service.Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps the ledger and budget in process memory. It copies on
// every read and write, so callers never share slices with the store.
type MemoryStorage struct {
	transactions []model.Transaction
	budget       model.Budget
	saves        int
	mu           sync.Mutex
	closed       bool
}

// NewMemoryStorage returns a store seeded with a copy of transactions.
func NewMemoryStorage(transactions ...model.Transaction) *MemoryStorage {
	return &MemoryStorage{transactions: cloneTransactions(transactions)}
}

// LoadTransactions returns a copy of the stored ledger.
func (m *MemoryStorage) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	return cloneTransactions(m.transactions), nil
}

// SaveTransactions replaces the stored ledger.
func (m *MemoryStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}
	m.transactions = cloneTransactions(transactions)
	m.saves++
	return nil
}

// LoadBudget returns a copy of the stored budget.
func (m *MemoryStorage) LoadBudget(ctx context.Context) (model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStorageClosed
	}
	return append(model.Budget{}, m.budget...), nil
}

// SaveBudget replaces the stored budget.
func (m *MemoryStorage) SaveBudget(ctx context.Context, budget model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := budget.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}
	m.budget = append(model.Budget{}, budget...)
	return nil
}

// SaveCount reports how many times SaveTransactions succeeded.
func (m *MemoryStorage) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Migrate is a no-op.
func (m *MemoryStorage) Migrate(ctx context.Context) error {
	return validateContext(ctx)
}

// Close marks the store closed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneTransactions(transactions []model.Transaction) []model.Transaction {
	return append([]model.Transaction{}, transactions...)
}
