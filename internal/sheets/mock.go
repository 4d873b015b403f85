package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
)

// MockWriter records Write calls in place of a real spreadsheet.
type MockWriter struct {
	WriteFunc func(ctx context.Context, txns []model.Transaction, summary ledger.Summary) error
	calls     []WriteCall
	mu        sync.Mutex
}

var _ service.LedgerWriter = (*MockWriter)(nil)

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error        error
	Transactions []model.Transaction
	Summary      ledger.Summary
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements service.LedgerWriter.
func (m *MockWriter) Write(ctx context.Context, txns []model.Transaction, summary ledger.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, txns, summary)
	}

	recorded := make([]model.Transaction, len(txns))
	copy(recorded, txns)
	m.calls = append(m.calls, WriteCall{Transactions: recorded, Summary: summary, Error: err})

	return err
}

// Calls returns a copy of all write calls.
func (m *MockWriter) Calls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// SetWriteError makes every subsequent Write return err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, []model.Transaction, ledger.Summary) error {
		return err
	}
}
