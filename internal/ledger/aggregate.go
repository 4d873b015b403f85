// Package ledger derives metrics from a transaction set and reconciles
// imported transactions against an existing ledger.
package ledger

import (
	"math"
	"sort"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// Summary holds every aggregate the presentation layer needs.
type Summary struct {
	SpendingByCategory map[model.Category]float64
	TotalIncome        float64
	TotalExpenses      float64
	Balance            float64
	TransactionCount   int
}

// CategorySpend is one row of a category breakdown.
type CategorySpend struct {
	Category model.Category
	Amount   float64
}

// TotalIncome sums the amount of every income transaction.
func TotalIncome(txns []model.Transaction) float64 {
	total := 0.0
	for _, txn := range txns {
		if txn.Type == model.TypeIncome {
			total += txn.Amount
		}
	}
	return total
}

// TotalExpenses sums the amount of every expense transaction.
func TotalExpenses(txns []model.Transaction) float64 {
	total := 0.0
	for _, txn := range txns {
		if txn.Type == model.TypeExpense {
			total += txn.Amount
		}
	}
	return total
}

// Balance is income minus expenses and may be negative.
func Balance(txns []model.Transaction) float64 {
	return TotalIncome(txns) - TotalExpenses(txns)
}

// SpendingByCategory sums expense amounts per category. Income transactions
// are excluded whatever their category, and categories without expenses are
// absent from the map.
func SpendingByCategory(txns []model.Transaction) map[model.Category]float64 {
	spending := make(map[model.Category]float64)
	for _, txn := range txns {
		if txn.Type != model.TypeExpense {
			continue
		}
		spending[txn.Category] += txn.Amount
	}
	return spending
}

// Summarize computes all aggregates in one pass.
func Summarize(txns []model.Transaction) Summary {
	summary := Summary{
		SpendingByCategory: make(map[model.Category]float64),
		TransactionCount:   len(txns),
	}
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			summary.TotalIncome += txn.Amount
		case model.TypeExpense:
			summary.TotalExpenses += txn.Amount
			summary.SpendingByCategory[txn.Category] += txn.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	return summary
}

// SavingsRate returns (income - expenses) / income. The second value is false
// when income is zero and the rate is undefined.
func SavingsRate(income, expenses float64) (float64, bool) {
	if income == 0 {
		return 0, false
	}
	return (income - expenses) / income, true
}

// SavingsRate returns the summary's savings rate, see SavingsRate.
func (s Summary) SavingsRate() (float64, bool) {
	return SavingsRate(s.TotalIncome, s.TotalExpenses)
}

// TopCategories returns the breakdown sorted by amount descending, truncated
// to limit entries when limit > 0. Equal amounts keep the canonical category
// order so the result is deterministic.
func TopCategories(spending map[model.Category]float64, limit int) []CategorySpend {
	rows := make([]CategorySpend, 0, len(spending))
	for category, amount := range spending {
		rows = append(rows, CategorySpend{Category: category, Amount: amount})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		ci, cj := model.CategoryIndex(rows[i].Category), model.CategoryIndex(rows[j].Category)
		if ci != cj {
			return ci < cj
		}
		return rows[i].Category < rows[j].Category
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Round2 rounds v to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
