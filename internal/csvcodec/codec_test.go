package csvcodec

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "date,amount,description,category,type\n"

func TestParse_SkipsRowWithMissingField(t *testing.T) {
	text := "date,amount,description,category,type\n2024-02-01,50,Lunch,Food,expense\n2024-02-01,Lunch,Food,expense"

	result, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Skipped, 1)

	txn := result.Transactions[0]
	assert.Equal(t, "2024-02-01", txn.Date)
	assert.Equal(t, 50.0, txn.Amount)
	assert.Equal(t, "Lunch", txn.Description)
	assert.Equal(t, model.CategoryFood, txn.Category)
	assert.Equal(t, model.TypeExpense, txn.Type)
	assert.NotEmpty(t, txn.ID)

	assert.Equal(t, 3, result.Skipped[0].Line)
	assert.ErrorIs(t, result.Skipped[0], ErrFieldCount)
}

func TestParse_ColumnsInAnyOrderAndCase(t *testing.T) {
	text := " Type , CATEGORY,Description,Amount,Date\nincome,Income,Salary,2500,2024-01-31\n"

	result, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	txn := result.Transactions[0]
	assert.Equal(t, "2024-01-31", txn.Date)
	assert.Equal(t, 2500.0, txn.Amount)
	assert.Equal(t, "Salary", txn.Description)
	assert.Equal(t, model.CategoryIncome, txn.Category)
	assert.Equal(t, model.TypeIncome, txn.Type)
}

func TestParse_MissingColumns(t *testing.T) {
	_, err := Parse("date,amount,description\n2024-01-01,5,Coffee\n")

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"category", "type"}, missing.Missing)
	assert.Contains(t, err.Error(), "Required: date, amount, description, category, type")
}

func TestParse_EmptyImport(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSkipped int
	}{
		{name: "empty text", text: ""},
		{name: "blank lines only", text: "\n  \n\r\n"},
		{name: "header only", text: header},
		{name: "every row malformed", text: header + "2024-01-01,abc,Coffee,Food,expense\n2024-01-01,Coffee\n", wantSkipped: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyImport))

			var empty *EmptyImportError
			require.ErrorAs(t, err, &empty)
			assert.Len(t, empty.Skipped, tt.wantSkipped)
		})
	}
}

func TestParse_LeniencyRules(t *testing.T) {
	text := header +
		"2024-01-01,-42.5,Refund?,Groceries,\n" +
		"2024-01-02,42.5,Bonus,Income,BONUS\n" +
		"2024-01-03,-7,Parking,Transportation,Income\n" +
		"2024-01-04,0,Nothing,Other,\n"

	result, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 4)

	first := result.Transactions[0]
	assert.Equal(t, 42.5, first.Amount, "stored as magnitude")
	assert.Equal(t, model.CategoryOther, first.Category, "unknown category coerced")
	assert.Equal(t, model.TypeExpense, first.Type, "negative amount without type is an expense")

	assert.Equal(t, model.TypeIncome, result.Transactions[1].Type, "unknown type with positive amount is income")

	third := result.Transactions[2]
	assert.Equal(t, model.TypeIncome, third.Type, "explicit type wins over the sign")
	assert.Equal(t, 7.0, third.Amount)

	assert.Equal(t, model.TypeIncome, result.Transactions[3].Type, "zero is not negative")
}

func TestParse_InvalidAmountRowIsSkipped(t *testing.T) {
	text := header +
		"2024-01-01,twelve,Lunch,Food,expense\n" +
		"2024-01-01,NaN,Lunch,Food,expense\n" +
		"2024-01-01,12,Lunch,Food,expense\n"

	result, err := Parse(text)
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 1)
	require.Len(t, result.Skipped, 2)

	var invalid *InvalidAmountError
	require.ErrorAs(t, result.Skipped[0], &invalid)
	assert.Equal(t, "twelve", invalid.Value)
	assert.Equal(t, 2, result.Skipped[0].Line)
}

func TestParse_QuotedDescriptionAndCRLF(t *testing.T) {
	text := "date,amount,description,category,type\r\n2024-03-01,19.99,\"Books, magazines\",Shopping,expense\r\n"

	result, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "Books, magazines", result.Transactions[0].Description)
	assert.Equal(t, model.TypeExpense, result.Transactions[0].Type)
}

func TestParse_ByteOrderMark(t *testing.T) {
	text := "\ufeffdate,amount,description,category,type\r\n2024-03-01,12,Coffee,Food,expense\r\n"

	result, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "2024-03-01", result.Transactions[0].Date)
	assert.Empty(t, result.Skipped)
}

func TestRoundTrip_TrimsDescriptionPadding(t *testing.T) {
	txns := []model.Transaction{{Date: "2024-03-01", Amount: 5, Description: "  padded, x ", Category: model.CategoryFood, Type: model.TypeExpense}}

	result, err := Parse(Generate(txns))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "padded, x", result.Transactions[0].Description)
}

func TestParse_MintsFreshIDs(t *testing.T) {
	text := header + "2024-01-01,1,A,Food,expense\n2024-01-01,1,A,Food,expense\n"

	first, err := Parse(text)
	require.NoError(t, err)
	second, err := Parse(text)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, txn := range append(first.Transactions, second.Transactions...) {
		assert.False(t, seen[txn.ID], "id %s reused", txn.ID)
		seen[txn.ID] = true
	}
}

func TestGenerate(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: "2024-01-01", Amount: 1000, Description: "Salary", Category: model.CategoryIncome, Type: model.TypeIncome},
		{ID: "2", Date: "2024-01-02", Amount: 12.5, Description: "Pizza, drinks", Category: model.CategoryFood, Type: model.TypeExpense},
	}

	want := "date,amount,description,category,type\n" +
		"2024-01-01,1000,Salary,Income,income\n" +
		"2024-01-02,12.5,\"Pizza, drinks\",Food,expense\n"

	assert.Equal(t, want, Generate(txns))
	assert.Equal(t, header, Generate(nil))
}

type tuple struct {
	Date        string
	Description string
	Category    model.Category
	Type        model.TransactionType
	Amount      float64
}

func tuples(txns []model.Transaction) []tuple {
	out := make([]tuple, len(txns))
	for i, txn := range txns {
		out[i] = tuple{Date: txn.Date, Amount: txn.Amount, Description: txn.Description, Category: txn.Category, Type: txn.Type}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return out[i].Amount < out[j].Amount
	})
	return out
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	categories := model.Categories()
	descriptions := []string{"Rent", "Coffee, large", "Bus", "Dinner, wine, dessert", "Salary", "Gym"}

	for i := 0; i < 25; i++ {
		n := 1 + r.Intn(20)
		txns := make([]model.Transaction, n)
		for j := range txns {
			txnType := model.TypeExpense
			if r.Intn(2) == 0 {
				txnType = model.TypeIncome
			}
			txns[j] = model.Transaction{
				ID:          model.NewID(),
				Date:        time.Date(2024, time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
				Amount:      float64(r.Intn(1000000)) / 100,
				Description: descriptions[r.Intn(len(descriptions))],
				Category:    categories[r.Intn(len(categories))],
				Type:        txnType,
			}
		}

		result, err := Parse(Generate(txns))
		require.NoError(t, err)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, tuples(txns), tuples(result.Transactions))
	}
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, time.March, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "budgetbuddy_transactions_2024-03-01.csv", ExportFilename("budgetbuddy", day))
}
