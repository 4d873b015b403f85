package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// TransactionType carries the economic sign of a transaction.
type TransactionType string

const (
	// TypeIncome adds to the balance.
	TypeIncome TransactionType = "income"
	// TypeExpense subtracts from the balance.
	TypeExpense TransactionType = "expense"
)

// Validation errors.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyDate          = errors.New("empty date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrTransactionMissing = errors.New("transaction not found")
)

// Transaction is a single ledger entry.
//
// Amount is always a non-negative magnitude; the sign lives in Type.
type Transaction struct {
	ID          string
	Date        string // Kept verbatim as entered or imported
	Description string
	Category    Category
	Type        TransactionType
	Amount      float64
}

// IsValid reports whether t is one of the two known types.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ResolveType normalizes a raw type field.
//
// Case-insensitive "income" and "expense" are taken as-is. Anything else,
// including an empty field, falls back to the sign of the parsed amount:
// negative means expense, zero or positive means income.
func ResolveType(raw string, parsedAmount float64) TransactionType {
	switch TransactionType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeIncome:
		return TypeIncome
	case TypeExpense:
		return TypeExpense
	}
	if parsedAmount < 0 {
		return TypeExpense
	}
	return TypeIncome
}

// NewID mints an opaque transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// NewTransaction builds a manually entered transaction with a fresh ID.
//
// Manual entry is strict: the amount must be a finite number greater than zero
// and the category and type must be known values.
func NewTransaction(date string, amount float64, description string, category Category, txnType TransactionType) (Transaction, error) {
	if strings.TrimSpace(date) == "" {
		return Transaction{}, ErrEmptyDate
	}
	if strings.TrimSpace(description) == "" {
		return Transaction{}, ErrEmptyDescription
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if !IsValidCategory(string(category)) {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if !txnType.IsValid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidType, txnType)
	}

	return Transaction{
		ID:          NewID(),
		Date:        strings.TrimSpace(date),
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Category:    category,
		Type:        txnType,
	}, nil
}

// SignedAmount returns +Amount for income and -Amount for expenses.
func (t Transaction) SignedAmount() float64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}
	return t.Amount
}

// IsExpense reports whether the transaction reduces the balance.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// IsIncome reports whether the transaction increases the balance.
func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// SameEntry reports whether t and other describe the same real-world entry.
// Only date, description and amount take part; category and type do not.
func (t Transaction) SameEntry(other Transaction) bool {
	return t.Date == other.Date &&
		t.Description == other.Description &&
		t.Amount == other.Amount
}
