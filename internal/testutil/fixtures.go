package testutil

import (
	"fmt"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// LedgerBuilder assembles transactions with predictable IDs and dates.
type LedgerBuilder struct {
	date  string
	txns  []model.Transaction
	count int
}

// NewLedgerBuilder starts an empty ledger dated 2024-01-01.
func NewLedgerBuilder() *LedgerBuilder {
	return &LedgerBuilder{date: "2024-01-01"}
}

// OnDate sets the date used by transactions added after it.
func (b *LedgerBuilder) OnDate(date string) *LedgerBuilder {
	b.date = date
	return b
}

// WithIncome adds an income transaction in the Income category.
func (b *LedgerBuilder) WithIncome(description string, amount float64) *LedgerBuilder {
	return b.With(model.CategoryIncome, model.TypeIncome, description, amount)
}

// WithExpense adds an expense transaction.
func (b *LedgerBuilder) WithExpense(category model.Category, description string, amount float64) *LedgerBuilder {
	return b.With(category, model.TypeExpense, description, amount)
}

// With adds an arbitrary transaction.
func (b *LedgerBuilder) With(category model.Category, txnType model.TransactionType, description string, amount float64) *LedgerBuilder {
	b.count++
	b.txns = append(b.txns, model.Transaction{
		ID:          fmt.Sprintf("test-%03d", b.count),
		Date:        b.date,
		Amount:      amount,
		Description: description,
		Category:    category,
		Type:        txnType,
	})
	return b
}

// Build returns a copy of the assembled transactions.
func (b *LedgerBuilder) Build() []model.Transaction {
	return append([]model.Transaction{}, b.txns...)
}

// MonthlyLedger is a small, realistic month of activity: 3000 in, 1850 out.
func MonthlyLedger() []model.Transaction {
	return NewLedgerBuilder().
		OnDate("2024-03-01").WithIncome("Salary", 3000).
		OnDate("2024-03-02").WithExpense(model.CategoryHousing, "Rent", 1200).
		OnDate("2024-03-05").WithExpense(model.CategoryFood, "Groceries", 300).
		OnDate("2024-03-09").WithExpense(model.CategoryTransportation, "Fuel", 150).
		OnDate("2024-03-15").WithExpense(model.CategoryEntertainment, "Concert", 120).
		OnDate("2024-03-20").WithExpense(model.CategoryUtilities, "Power, water", 80).
		Build()
}
