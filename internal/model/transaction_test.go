package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Category
	}{
		{name: "known category", in: "Food", want: CategoryFood},
		{name: "surrounding whitespace", in: "  Utilities ", want: CategoryUtilities},
		{name: "income label", in: "Income", want: CategoryIncome},
		{name: "unknown falls back to other", in: "Groceries", want: CategoryOther},
		{name: "case mismatch falls back to other", in: "food", want: CategoryOther},
		{name: "empty falls back to other", in: "", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.in))
		})
	}
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		amount float64
		want   TransactionType
	}{
		{name: "explicit income", raw: "income", amount: -5, want: TypeIncome},
		{name: "explicit expense uppercase", raw: "EXPENSE", amount: 5, want: TypeExpense},
		{name: "mixed case with spaces", raw: " Income ", amount: 5, want: TypeIncome},
		{name: "empty negative is expense", raw: "", amount: -12.5, want: TypeExpense},
		{name: "empty positive is income", raw: "", amount: 12.5, want: TypeIncome},
		{name: "garbage zero is income", raw: "debit", amount: 0, want: TypeIncome},
		{name: "garbage negative is expense", raw: "debit", amount: -1, want: TypeExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveType(tt.raw, tt.amount))
		})
	}
}

func TestNewTransaction(t *testing.T) {
	txn, err := NewTransaction("2024-01-02", 12.5, " Lunch ", CategoryFood, TypeExpense)
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, "Lunch", txn.Description)
	assert.Equal(t, 12.5, txn.Amount)
	assert.Equal(t, -12.5, txn.SignedAmount())
	assert.True(t, txn.IsExpense())

	other, err := NewTransaction("2024-01-02", 12.5, "Lunch", CategoryFood, TypeExpense)
	require.NoError(t, err)
	assert.NotEqual(t, txn.ID, other.ID, "every entry gets its own id")
}

func TestNewTransaction_Rejects(t *testing.T) {
	tests := []struct {
		wantErr     error
		name        string
		date        string
		description string
		category    Category
		txnType     TransactionType
		amount      float64
	}{
		{name: "zero amount", date: "2024-01-01", description: "x", category: CategoryFood, txnType: TypeExpense, amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative amount", date: "2024-01-01", description: "x", category: CategoryFood, txnType: TypeExpense, amount: -3, wantErr: ErrInvalidAmount},
		{name: "nan amount", date: "2024-01-01", description: "x", category: CategoryFood, txnType: TypeExpense, amount: math.NaN(), wantErr: ErrInvalidAmount},
		{name: "infinite amount", date: "2024-01-01", description: "x", category: CategoryFood, txnType: TypeExpense, amount: math.Inf(1), wantErr: ErrInvalidAmount},
		{name: "empty description", date: "2024-01-01", description: "  ", category: CategoryFood, txnType: TypeExpense, amount: 1, wantErr: ErrEmptyDescription},
		{name: "empty date", date: "", description: "x", category: CategoryFood, txnType: TypeExpense, amount: 1, wantErr: ErrEmptyDate},
		{name: "unknown category", date: "2024-01-01", description: "x", category: "Pets", txnType: TypeExpense, amount: 1, wantErr: ErrInvalidCategory},
		{name: "unknown type", date: "2024-01-01", description: "x", category: CategoryFood, txnType: "transfer", amount: 1, wantErr: ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.date, tt.amount, tt.description, tt.category, tt.txnType)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransaction_SameEntry(t *testing.T) {
	base := Transaction{ID: "a", Date: "2024-01-01", Description: "Rent", Amount: 900, Category: CategoryHousing, Type: TypeExpense}

	recategorized := base
	recategorized.ID = "b"
	recategorized.Category = CategoryOther
	recategorized.Type = TypeIncome
	assert.True(t, base.SameEntry(recategorized), "category and type are not part of the key")

	differentAmount := base
	differentAmount.Amount = 901
	assert.False(t, base.SameEntry(differentAmount))

	differentDate := base
	differentDate.Date = "2024-01-02"
	assert.False(t, base.SameEntry(differentDate))

	differentDescription := base
	differentDescription.Description = "rent"
	assert.False(t, base.SameEntry(differentDescription))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
		year   int
	}{
		{in: "2024-02-01", wantOK: true, year: 2024},
		{in: "2023/12/31", wantOK: true, year: 2023},
		{in: "03/15/2022", wantOK: true, year: 2022},
		{in: "Jan 5, 2021", wantOK: true, year: 2021},
		{in: "2024-02-01T10:00:00Z", wantOK: true, year: 2024},
		{in: "yesterday", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.year, got.Year())
			}
		})
	}
}
