package sheets

import (
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionRow represents a single row in the Transactions section.
type TransactionRow struct {
	Date        string
	Description string
	Category    string
	Type        string
	Amount      decimal.Decimal
	Signed      decimal.Decimal // Income positive, expenses negative
}

// CategoryRow represents a single row in the Spending by Category section.
type CategoryRow struct {
	Category string
	Amount   decimal.Decimal
	Share    decimal.Decimal // Percent of total expenses, two decimals
}

// Report holds everything a ledger export writes.
type Report struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Categories    []CategoryRow
	Transactions  []TransactionRow
}

var hundred = decimal.NewFromInt(100)

// BuildReport converts a ledger into report rows. Totals are recomputed in
// decimal from the rows so the sheet sums exactly; summary supplies the
// category breakdown order. Transactions are listed newest first.
func BuildReport(txns []model.Transaction, summary ledger.Summary) Report {
	sorted := ledger.SortNewestFirst(txns)

	report := Report{Transactions: make([]TransactionRow, 0, len(sorted))}
	spending := make(map[model.Category]decimal.Decimal)

	for _, txn := range sorted {
		amount := decimal.NewFromFloat(txn.Amount).Abs()
		signed := amount
		if txn.IsExpense() {
			signed = amount.Neg()
			report.TotalExpenses = report.TotalExpenses.Add(amount)
			spending[txn.Category] = spending[txn.Category].Add(amount)
		} else {
			report.TotalIncome = report.TotalIncome.Add(amount)
		}

		report.Transactions = append(report.Transactions, TransactionRow{
			Date:        txn.Date,
			Description: txn.Description,
			Category:    string(txn.Category),
			Type:        string(txn.Type),
			Amount:      amount,
			Signed:      signed,
		})
	}
	report.Balance = report.TotalIncome.Sub(report.TotalExpenses)

	for _, spend := range ledger.TopCategories(summary.SpendingByCategory, 0) {
		amount := spending[spend.Category]
		share := decimal.Zero
		if report.TotalExpenses.IsPositive() {
			share = amount.Div(report.TotalExpenses).Mul(hundred).Round(2)
		}
		report.Categories = append(report.Categories, CategoryRow{
			Category: string(spend.Category),
			Amount:   amount,
			Share:    share,
		})
	}

	return report
}
