package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrDuplicateID        = errors.New("duplicate transaction id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions checks every transaction and rejects repeated IDs.
// An empty ledger is valid.
func validateTransactions(transactions []model.Transaction) error {
	seen := make(map[string]bool, len(transactions))
	for i, txn := range transactions {
		if err := validateTransaction(txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
		if seen[txn.ID] {
			return fmt.Errorf("transaction at index %d: %w: %s", i, ErrDuplicateID, txn.ID)
		}
		seen[txn.ID] = true
	}
	return nil
}

// validateTransaction validates a single transaction. It is lenient about
// free-form fields so imported rows always round-trip through storage.
func validateTransaction(txn model.Transaction) error {
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if !txn.Type.IsValid() {
		return fmt.Errorf("%w: type %q", ErrInvalidTransaction, txn.Type)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) || txn.Amount < 0 {
		return fmt.Errorf("%w: amount %v", ErrInvalidTransaction, txn.Amount)
	}
	return nil
}
