// Package tips renders rule-based budget recommendations from ledger
// aggregates.
package tips

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
)

// TopCategoryLimit is how many expense categories receive advice.
const TopCategoryLimit = 3

const (
	lowSavingsThreshold   = 0.1
	greatSavingsThreshold = 0.2
)

var categoryAdvice = map[model.Category][]string{
	model.CategoryHousing: {
		"Housing should ideally be under 30% of income",
		"Consider negotiating rent or refinancing mortgage",
		"Evaluate if downsizing could benefit your finances",
	},
	model.CategoryFood: {
		"Try meal planning to reduce grocery costs",
		"Limit dining out to special occasions",
		"Consider bulk purchases for non-perishables",
	},
	model.CategoryTransportation: {
		"Evaluate if public transport could replace car usage",
		"Consider carpooling to reduce fuel costs",
		"Look into fuel rewards programs",
	},
	model.CategoryEntertainment: {
		"Look for free or low-cost entertainment options",
		"Review subscription services - keep only what you use regularly",
		"Set a monthly entertainment budget and stick to it",
	},
	model.CategoryShopping: {
		"Implement a 24-hour rule before non-essential purchases",
		"Look for sales and use cashback apps",
		"Consider quality over quantity for lasting value",
	},
}

var genericAdvice = []string{
	"Analyze if expenses in this category align with your priorities",
	"Look for ways to reduce costs without sacrificing quality",
	"Track this category closely for the next month",
}

var moneyMoves = []string{
	"**Emergency Fund**: Aim to save 3-6 months of expenses",
	"**Debt Reduction**: Prioritize high-interest debt",
	"**Automate Savings**: Set up automatic transfers on payday",
	"**Review Regularly**: Check your budget monthly to stay on track",
}

// Generate returns the recommendation text for a ledger summary. The output
// depends only on the summary, so equal summaries give identical text.
func Generate(summary ledger.Summary) string {
	var b strings.Builder
	b.WriteString("# 💰 Smart Budget Recommendations\n\n")

	writeSavingsBanner(&b, summary)

	b.WriteString("## 📊 Category Recommendations\n\n")
	for _, spend := range ledger.TopCategories(summary.SpendingByCategory, TopCategoryLimit) {
		writeCategory(&b, spend, summary.TotalExpenses)
	}

	b.WriteString("## 💡 Smart Money Moves\n\n")
	for i, move := range moneyMoves {
		fmt.Fprintf(&b, "%d. %s\n", i+1, move)
	}

	return b.String()
}

func writeSavingsBanner(b *strings.Builder, summary ledger.Summary) {
	rate, ok := summary.SavingsRate()
	if !ok {
		// No income: any spending at all is overspending.
		if summary.TotalExpenses > 0 {
			writeSpendingAlert(b)
		}
		return
	}

	switch {
	case rate < 0:
		writeSpendingAlert(b)
	case rate < lowSavingsThreshold:
		b.WriteString("## ⚠️ Low Savings Rate\n")
		b.WriteString("Your savings rate is below 10%. Financial experts recommend saving at least 20% of income.\n\n")
	case rate >= greatSavingsThreshold:
		b.WriteString("## 🌟 Great Savings Rate\n")
		fmt.Fprintf(b, "You're saving %s%% of your income. Keep up the good work!\n\n", wholePercent(rate*100))
	}
}

func writeSpendingAlert(b *strings.Builder) {
	b.WriteString("## 🚨 Spending Alert\n")
	b.WriteString("You're spending more than you earn. Consider reducing expenses immediately.\n\n")
}

func writeCategory(b *strings.Builder, spend ledger.CategorySpend, totalExpenses float64) {
	var percentage float64
	if totalExpenses > 0 {
		percentage = spend.Amount / totalExpenses * 100
	}
	fmt.Fprintf(b, "### %s (%s%% of expenses)\n", spend.Category, wholePercent(percentage))

	advice, ok := categoryAdvice[spend.Category]
	if !ok {
		advice = genericAdvice
	}
	for _, line := range advice {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

// wholePercent rounds halves away from zero, so 12.5 prints as 13.
func wholePercent(v float64) string {
	return fmt.Sprintf("%.0f", math.Round(v))
}
