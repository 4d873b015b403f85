package ledger

import "github.com/Veraticus/budget-buddy/internal/model"

// BudgetComparison contrasts one category's allocation with actual spending.
type BudgetComparison struct {
	Category    model.Category
	Budgeted    float64
	Spent       float64
	Remaining   float64
	PercentUsed float64 // 0 when nothing is budgeted
	OverBudget  bool
}

// CompareBudget lines spending up against budget. Budget order is preserved;
// categories with spending but no allocation are appended afterwards in
// canonical category order and are always over budget.
func CompareBudget(budget model.Budget, spending map[model.Category]float64) []BudgetComparison {
	rows := make([]BudgetComparison, 0, len(budget)+len(spending))
	seen := make(map[model.Category]bool, len(budget))

	for _, entry := range budget {
		if seen[entry.Category] {
			continue
		}
		seen[entry.Category] = true
		rows = append(rows, compare(entry.Category, entry.Amount, spending[entry.Category]))
	}

	for _, category := range model.Categories() {
		spent, ok := spending[category]
		if !ok || seen[category] {
			continue
		}
		rows = append(rows, compare(category, 0, spent))
	}

	return rows
}

func compare(category model.Category, budgeted, spent float64) BudgetComparison {
	row := BudgetComparison{
		Category:   category,
		Budgeted:   budgeted,
		Spent:      spent,
		Remaining:  budgeted - spent,
		OverBudget: spent > budgeted,
	}
	if budgeted > 0 {
		row.PercentUsed = spent / budgeted * 100
	}
	return row
}
