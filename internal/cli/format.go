package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/shopspring/decimal"
)

// FormatMoney renders v as dollars with two decimals, e.g. "-$12.50".
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatFileSize renders a byte count with binary units.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatRelativeTime describes t relative to now.
func FormatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return plural(int(duration.Minutes()), "minute")
	case duration < 24*time.Hour:
		return plural(int(duration.Hours()), "hour")
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func header(w io.Writer, columns ...string) {
	rendered := make([]string, len(columns))
	for i, column := range columns {
		rendered[i] = HeaderStyle.Render(column)
	}
	_, _ = fmt.Fprintln(w, strings.Join(rendered, "\t"))
}

// RenderSummary writes totals, balance and the category breakdown.
func RenderSummary(out io.Writer, summary ledger.Summary) error {
	var b strings.Builder
	b.WriteString(FormatTitle("Summary") + "\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total income\t%s\n", IncomeStyle.Render(FormatMoney(summary.TotalIncome)))
	_, _ = fmt.Fprintf(w, "Total expenses\t%s\n", ExpenseStyle.Render(FormatMoney(summary.TotalExpenses)))
	_, _ = fmt.Fprintf(w, "Balance\t%s\n", BoldStyle.Render(FormatMoney(summary.Balance)))
	_, _ = fmt.Fprintf(w, "Transactions\t%d\n", summary.TransactionCount)
	if err := w.Flush(); err != nil {
		return err
	}

	rows := ledger.TopCategories(summary.SpendingByCategory, 0)
	if len(rows) > 0 {
		b.WriteString("\n" + BoldStyle.Render(ChartIcon+" Spending by category") + "\n")
		w = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, row := range rows {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", row.Category, FormatMoney(row.Amount))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// RenderTransactions writes txns as a table in the order given.
func RenderTransactions(out io.Writer, txns []model.Transaction) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(out, SubtitleStyle.Render("No transactions found."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "DATE", "DESCRIPTION", "CATEGORY", "AMOUNT", "ID")
	for _, txn := range txns {
		amount := IncomeStyle.Render(FormatMoney(txn.SignedAmount()))
		if txn.IsExpense() {
			amount = ExpenseStyle.Render(FormatMoney(txn.SignedAmount()))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			txn.Date,
			txn.Description,
			txn.Category,
			amount,
			SubtleStyle.Render(txn.ID),
		)
	}
	return w.Flush()
}

// RenderBudget writes the budget allocations and their total.
func RenderBudget(out io.Writer, budget model.Budget) error {
	if len(budget) == 0 {
		_, err := fmt.Fprintln(out, SubtitleStyle.Render("No budget set."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "CATEGORY", "BUDGET")
	for _, entry := range budget {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", entry.Category, FormatMoney(entry.Amount))
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\n", BoldStyle.Render("Total"), FormatMoney(budget.Total()))
	return w.Flush()
}

// RenderBudgetComparison writes budgeted against spent per category.
func RenderBudgetComparison(out io.Writer, rows []ledger.BudgetComparison) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, SubtitleStyle.Render("Nothing to compare: no budget and no spending."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "CATEGORY", "BUDGET", "SPENT", "REMAINING", "USED")
	for _, row := range rows {
		status := SuccessStyle.Render(fmt.Sprintf("%.0f%%", row.PercentUsed))
		if row.OverBudget {
			status = ErrorStyle.Render(ErrorIcon + " over")
			if row.Budgeted > 0 {
				status = ErrorStyle.Render(fmt.Sprintf("%.0f%% %s over", row.PercentUsed, ErrorIcon))
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Category,
			FormatMoney(row.Budgeted),
			FormatMoney(row.Spent),
			FormatMoney(row.Remaining),
			status,
		)
	}
	return w.Flush()
}

// RenderCheckpoints writes the checkpoint listing, newest first.
func RenderCheckpoints(out io.Writer, checkpoints []storage.CheckpointInfo, now time.Time) error {
	if len(checkpoints) == 0 {
		_, err := fmt.Fprintln(out, SubtitleStyle.Render("No checkpoints found."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header(w, "NAME", "CREATED", "SIZE", "TRANSACTIONS", "BUDGET", "TYPE")
	for _, cp := range checkpoints {
		typeLabel := "manual"
		if cp.IsAuto {
			typeLabel = "auto"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			InfoStyle.Render(cp.ID),
			FormatRelativeTime(cp.CreatedAt, now),
			FormatFileSize(cp.FileSize),
			cp.Transactions(),
			cp.BudgetEntries(),
			SubtitleStyle.Render(typeLabel),
		)
	}
	return w.Flush()
}

// Confirm writes prompt and reports whether the reply starts with y.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, FormatPrompt(prompt))
	reply, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && reply == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "y")
}
