package tips

import (
	"strings"
	"testing"

	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/stretchr/testify/assert"
)

func txn(amount float64, category model.Category, txnType model.TransactionType) model.Transaction {
	return model.Transaction{ID: model.NewID(), Date: "2024-01-01", Description: "x", Amount: amount, Category: category, Type: txnType}
}

func TestGenerate_FullText(t *testing.T) {
	summary := ledger.Summarize([]model.Transaction{
		txn(1000, model.CategoryIncome, model.TypeIncome),
		txn(200, model.CategoryFood, model.TypeExpense),
	})

	want := "# 💰 Smart Budget Recommendations\n\n" +
		"## 🌟 Great Savings Rate\n" +
		"You're saving 80% of your income. Keep up the good work!\n\n" +
		"## 📊 Category Recommendations\n\n" +
		"### Food (100% of expenses)\n" +
		"- Try meal planning to reduce grocery costs\n" +
		"- Limit dining out to special occasions\n" +
		"- Consider bulk purchases for non-perishables\n\n" +
		"## 💡 Smart Money Moves\n\n" +
		"1. **Emergency Fund**: Aim to save 3-6 months of expenses\n" +
		"2. **Debt Reduction**: Prioritize high-interest debt\n" +
		"3. **Automate Savings**: Set up automatic transfers on payday\n" +
		"4. **Review Regularly**: Check your budget monthly to stay on track\n"

	assert.Equal(t, want, Generate(summary))
}

func TestGenerate_SavingsBanner(t *testing.T) {
	tests := []struct {
		name    string
		income  float64
		expense float64
		want    string
		absent  []string
	}{
		{name: "overspending", income: 100, expense: 150, want: "## 🚨 Spending Alert"},
		{name: "low savings", income: 100, expense: 95, want: "## ⚠️ Low Savings Rate"},
		{name: "exactly zero savings", income: 100, expense: 100, want: "## ⚠️ Low Savings Rate"},
		{name: "great savings at threshold", income: 100, expense: 80, want: "You're saving 20% of your income."},
		{name: "no income with spending", income: 0, expense: 10, want: "## 🚨 Spending Alert"},
		{
			name: "middle band has no banner", income: 100, expense: 85,
			absent: []string{"Spending Alert", "Low Savings Rate", "Great Savings Rate"},
		},
		{
			name: "empty ledger has no banner",
			absent: []string{"Spending Alert", "Low Savings Rate", "Great Savings Rate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txns []model.Transaction
			if tt.income > 0 {
				txns = append(txns, txn(tt.income, model.CategoryIncome, model.TypeIncome))
			}
			if tt.expense > 0 {
				txns = append(txns, txn(tt.expense, model.CategoryOther, model.TypeExpense))
			}

			out := Generate(ledger.Summarize(txns))
			if tt.want != "" {
				assert.Contains(t, out, tt.want)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
			assert.True(t, strings.HasPrefix(out, "# 💰 Smart Budget Recommendations\n\n"))
			assert.Contains(t, out, "## 💡 Smart Money Moves")
		})
	}
}

func TestGenerate_TopThreeCategories(t *testing.T) {
	summary := ledger.Summarize([]model.Transaction{
		txn(5000, model.CategoryIncome, model.TypeIncome),
		txn(500, model.CategoryHousing, model.TypeExpense),
		txn(250, model.CategoryHealthcare, model.TypeExpense),
		txn(150, model.CategoryShopping, model.TypeExpense),
		txn(100, model.CategoryFood, model.TypeExpense),
	})

	out := Generate(summary)

	assert.Contains(t, out, "### Housing (50% of expenses)\n- Housing should ideally be under 30% of income\n")
	assert.Contains(t, out, "### Healthcare (25% of expenses)\n- Analyze if expenses in this category align with your priorities\n")
	assert.Contains(t, out, "### Shopping (15% of expenses)\n- Implement a 24-hour rule before non-essential purchases\n")
	assert.NotContains(t, out, "### Food")

	housing := strings.Index(out, "### Housing")
	healthcare := strings.Index(out, "### Healthcare")
	shopping := strings.Index(out, "### Shopping")
	assert.Less(t, housing, healthcare)
	assert.Less(t, healthcare, shopping)
}

func TestGenerate_TiesFollowCategoryOrder(t *testing.T) {
	summary := ledger.Summarize([]model.Transaction{
		txn(100, model.CategoryOther, model.TypeExpense),
		txn(100, model.CategoryUtilities, model.TypeExpense),
		txn(100, model.CategoryTransportation, model.TypeExpense),
		txn(100, model.CategoryEntertainment, model.TypeExpense),
	})

	out := Generate(summary)

	assert.Contains(t, out, "### Transportation (25% of expenses)")
	assert.Contains(t, out, "### Entertainment (25% of expenses)")
	assert.Contains(t, out, "### Utilities (25% of expenses)")
	assert.NotContains(t, out, "### Other")
	assert.Less(t, strings.Index(out, "### Transportation"), strings.Index(out, "### Entertainment"))
	assert.Equal(t, out, Generate(summary))
}

func TestGenerate_IncomeOnlyHasNoCategories(t *testing.T) {
	out := Generate(ledger.Summarize([]model.Transaction{
		txn(300, model.CategoryIncome, model.TypeIncome),
	}))

	assert.Contains(t, out, "You're saving 100% of your income.")
	assert.NotContains(t, out, "###")
}

func TestGenerate_HalfPercentsRoundUp(t *testing.T) {
	out := Generate(ledger.Summarize([]model.Transaction{
		txn(1000, model.CategoryIncome, model.TypeIncome),
		txn(1, model.CategoryFood, model.TypeExpense),
		txn(7, model.CategoryHousing, model.TypeExpense),
	}))

	assert.Contains(t, out, "### Housing (88% of expenses)")
	assert.Contains(t, out, "### Food (13% of expenses)")

	out = Generate(ledger.Summarize([]model.Transaction{
		txn(800, model.CategoryIncome, model.TypeIncome),
		txn(500, model.CategoryOther, model.TypeExpense),
	}))

	assert.Contains(t, out, "You're saving 38% of your income.")
}
