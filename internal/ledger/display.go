package ledger

import (
	"sort"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// FilterOptions narrows a transaction listing. Zero values match everything.
type FilterOptions struct {
	Category model.Category
	Type     model.TransactionType
	Query    string
}

// SortNewestFirst returns a copy of txns ordered by date, newest first.
// Dates that cannot be parsed sort after every parseable date; ties keep
// their original order.
func SortNewestFirst(txns []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)

	sort.SliceStable(sorted, func(i, j int) bool {
		di, okI := model.ParseDate(sorted[i].Date)
		dj, okJ := model.ParseDate(sorted[j].Date)
		switch {
		case okI && okJ:
			return di.After(dj)
		case okI:
			return true
		default:
			return false
		}
	})

	return sorted
}

// Filter applies opts and returns the matches newest first. The query matches
// case-insensitively against description or category.
func Filter(txns []model.Transaction, opts FilterOptions) []model.Transaction {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	filtered := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if opts.Category != "" && txn.Category != opts.Category {
			continue
		}
		if opts.Type != "" && txn.Type != opts.Type {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(txn.Description), query) &&
			!strings.Contains(strings.ToLower(string(txn.Category)), query) {
			continue
		}
		filtered = append(filtered, txn)
	}

	return SortNewestFirst(filtered)
}

// Remove returns txns without the entry whose ID is id. The second value is
// false when no entry matched.
func Remove(txns []model.Transaction, id string) ([]model.Transaction, bool) {
	out := make([]model.Transaction, 0, len(txns))
	found := false
	for _, txn := range txns {
		if txn.ID == id {
			found = true
			continue
		}
		out = append(out, txn)
	}
	return out, found
}
